package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/mmomarket/marketd/ledger/config"
	"github.com/mmomarket/marketd/ledger/database/models"
	"github.com/uptrace/bun"
)

const inboxEntity = "inbox_item"

var ErrInboxFull = errors.New("inbox is full")

type InboxRepository interface {
	Deposit(ctx context.Context, playerID int64, itemType uint16, subType int) error
	GetByPlayer(ctx context.Context, playerID int64) ([]*models.InboxItem, error)
}

type inboxRepository struct {
	*BaseRepository
	capacity int
}

// NewInboxRepository stores at most capacity rows per player; a
// non-positive capacity uses the default.
func NewInboxRepository(db *bun.DB, capacity int) InboxRepository {
	if capacity <= 0 {
		capacity = config.DefaultInboxCapacity
	}
	return &inboxRepository{BaseRepository: NewBaseRepository(db), capacity: capacity}
}

func (r *inboxRepository) Deposit(ctx context.Context, playerID int64, itemType uint16, subType int) error {
	err := r.Transaction(ctx, func(ctx context.Context, tx bun.Tx) error {
		count, err := tx.NewSelect().
			Model((*models.InboxItem)(nil)).
			Where("player_id = ?", playerID).
			Count(ctx)
		if err != nil {
			return err
		}
		if count >= r.capacity {
			return ErrInboxFull
		}

		_, err = tx.NewInsert().
			Model(&models.InboxItem{
				PlayerID:  playerID,
				ItemType:  itemType,
				SubType:   subType,
				CreatedAt: time.Now(),
			}).
			Exec(ctx)
		return err
	})
	if errors.Is(err, ErrInboxFull) {
		return err
	}
	return r.HandleErrorWithID("deposit", inboxEntity, playerID, err)
}

func (r *inboxRepository) GetByPlayer(ctx context.Context, playerID int64) ([]*models.InboxItem, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var items []*models.InboxItem
	err := r.db.NewSelect().
		Model(&items).
		Where("player_id = ?", playerID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("get_by_player", inboxEntity, err)
	}
	return items, nil
}
