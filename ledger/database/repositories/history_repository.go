package repositories

import (
	"context"
	"time"

	"github.com/mmomarket/marketd/ledger/config"
	"github.com/mmomarket/marketd/ledger/database/models"
	"github.com/mmomarket/marketd/ledger/logger"
	"github.com/uptrace/bun"
)

const historyEntity = "market_history"

type HistoryRepository interface {
	Append(ctx context.Context, entry *models.MarketHistory) error
	GetByPlayer(ctx context.Context, playerID int64, action models.MarketAction) ([]*models.MarketHistory, error)
	AggregateAccepted(ctx context.Context) ([]models.MarketStatisticsRow, error)
}

type historyRepository struct {
	*BaseRepository
}

func NewHistoryRepository(db *bun.DB) HistoryRepository {
	return &historyRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *historyRepository) Append(ctx context.Context, entry *models.MarketHistory) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	ql := logger.NewQueryLogger("history.append", "INSERT market_history", entry.PlayerID, entry.ItemType, entry.State)
	_, err := r.db.NewInsert().Model(entry).Exec(ctx)
	ql.Log(err, 1)
	return r.HandleError("append", historyEntity, err)
}

func (r *historyRepository) GetByPlayer(ctx context.Context, playerID int64, action models.MarketAction) ([]*models.MarketHistory, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var entries []*models.MarketHistory
	err := r.db.NewSelect().
		Model(&entries).
		Where("player_id = ?", playerID).
		Where("sale = ?", action).
		Order("inserted ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("get_by_player", historyEntity, err)
	}
	return entries, nil
}

// AggregateAccepted groups accepted trades by item and side. AcceptedEx rows
// mirror the counterparty of the same trade and are left out.
func (r *historyRepository) AggregateAccepted(ctx context.Context) ([]models.MarketStatisticsRow, error) {
	ctx, cancel := context.WithTimeout(ctx, config.StatsQueryTimeout)
	defer cancel()

	start := time.Now()
	var rows []models.MarketStatisticsRow
	err := r.db.NewSelect().
		Model((*models.MarketHistory)(nil)).
		Column("sale", "itemtype").
		ColumnExpr("COUNT(price) AS num_transactions").
		ColumnExpr("MIN(price) AS lowest_price").
		ColumnExpr("MAX(price) AS highest_price").
		ColumnExpr("CAST(SUM(price) AS BIGINT) AS total_price").
		Where("state = ?", models.OfferStateAccepted).
		Group("itemtype", "sale").
		Scan(ctx, &rows)
	logger.LogQuery("SELECT aggregate accepted market_history", time.Since(start), err)
	if err != nil {
		return nil, r.HandleError("aggregate", historyEntity, err)
	}
	return rows, nil
}
