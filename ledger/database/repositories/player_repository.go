package repositories

import (
	"context"
	"time"

	"github.com/mmomarket/marketd/ledger/database/models"
	"github.com/uptrace/bun"
)

const playerEntity = "player"

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int64) (*models.Player, error)
	GetNames(ctx context.Context, ids []int64) (map[int64]string, error)
	UpdateBalance(ctx context.Context, id int64, balance int64) error
	IncreaseBankBalance(ctx context.Context, id int64, amount int64) error
}

type playerRepository struct {
	*BaseRepository
}

func NewPlayerRepository(db *bun.DB) PlayerRepository {
	return &playerRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *playerRepository) Create(ctx context.Context, player *models.Player) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	player.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(player).Exec(ctx)
	return r.HandleError("create", playerEntity, err)
}

func (r *playerRepository) GetByID(ctx context.Context, id int64) (*models.Player, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	player := new(models.Player)
	if err := r.db.NewSelect().Model(player).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, r.HandleErrorWithID("get", playerEntity, id, err)
	}
	return player, nil
}

// GetNames resolves player names; unknown ids are absent from the map.
func (r *playerRepository) GetNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var players []*models.Player
	err := r.db.NewSelect().
		Model(&players).
		Column("id", "name").
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("get_names", playerEntity, err)
	}
	for _, p := range players {
		names[p.ID] = p.Name
	}
	return names, nil
}

func (r *playerRepository) UpdateBalance(ctx context.Context, id int64, balance int64) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	_, err := r.db.NewUpdate().
		Model((*models.Player)(nil)).
		Set("balance = ?", balance).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return r.HandleErrorWithID("update_balance", playerEntity, id, err)
}

// IncreaseBankBalance credits an offline player in a single statement.
func (r *playerRepository) IncreaseBankBalance(ctx context.Context, id int64, amount int64) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	res, err := r.db.NewUpdate().
		Model((*models.Player)(nil)).
		Set("balance = balance + ?", amount).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return r.HandleErrorWithID("increase_balance", playerEntity, id, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return &NotFoundError{Entity: playerEntity, ID: id}
	}
	return nil
}
