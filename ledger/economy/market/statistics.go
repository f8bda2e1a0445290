package market

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/mmomarket/marketd/ledger/config"
	"github.com/mmomarket/marketd/ledger/database/models"
	"github.com/mmomarket/marketd/ledger/logger"
	"golang.org/x/sync/singleflight"
)

// Statistics summarises accepted trades of one item on one side.
type Statistics struct {
	NumTransactions int64
	LowestPrice     int64
	HighestPrice    int64
	TotalPrice      int64
}

func (s Statistics) AveragePrice() int64 {
	if s.NumTransactions == 0 {
		return 0
	}
	return s.TotalPrice / s.NumTransactions
}

// StatisticsSource is the aggregate query over accepted history.
type StatisticsSource interface {
	AggregateAccepted(ctx context.Context) ([]models.MarketStatisticsRow, error)
}

// Snapshot is an immutable view of the statistics at one point in time.
// Purchase holds buy-side trades, Sale holds sell-side trades.
type Snapshot struct {
	Version  uint64
	BuiltAt  time.Time
	purchase map[uint16]Statistics
	sale     map[uint16]Statistics
}

func (s *Snapshot) Purchase(itemID uint16) (Statistics, bool) {
	st, ok := s.purchase[itemID]
	return st, ok
}

func (s *Snapshot) Sale(itemID uint16) (Statistics, bool) {
	st, ok := s.sale[itemID]
	return st, ok
}

func (s *Snapshot) Len() int {
	return len(s.purchase) + len(s.sale)
}

// Aggregator rebuilds statistics from history and publishes each rebuild as
// a new Snapshot. Readers never block on a rebuild.
type Aggregator struct {
	source  StatisticsSource
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
	group   singleflight.Group
	now     func() time.Time
}

func NewAggregator(source StatisticsSource, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	a := &Aggregator{source: source, now: now}
	a.current.Store(&Snapshot{
		purchase: map[uint16]Statistics{},
		sale:     map[uint16]Statistics{},
	})
	return a
}

// Snapshot returns the latest published snapshot, version 0 before the
// first successful update.
func (a *Aggregator) Snapshot() *Snapshot {
	return a.current.Load()
}

func (a *Aggregator) PurchaseStatistics(itemID uint16) (Statistics, bool) {
	return a.Snapshot().Purchase(itemID)
}

func (a *Aggregator) SaleStatistics(itemID uint16) (Statistics, bool) {
	return a.Snapshot().Sale(itemID)
}

// UpdateStatistics rebuilds the snapshot. Pairs missing from the new result
// are dropped. On error the previous snapshot stays published. Concurrent
// callers share one query.
func (a *Aggregator) UpdateStatistics(ctx context.Context) (*Snapshot, error) {
	v, err, _ := a.group.Do("update", func() (any, error) {
		start := time.Now()
		ctx, cancel := context.WithTimeout(ctx, config.StatsQueryTimeout)
		defer cancel()

		rows, err := a.source.AggregateAccepted(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate market statistics: %w", err)
		}

		snap := &Snapshot{
			Version:  a.version.Add(1),
			BuiltAt:  a.now(),
			purchase: make(map[uint16]Statistics),
			sale:     make(map[uint16]Statistics),
		}
		for _, row := range rows {
			st := Statistics{
				NumTransactions: row.Num,
				LowestPrice:     row.Lowest,
				HighestPrice:    row.Highest,
				TotalPrice:      row.Total,
			}
			if row.Sale == ActionBuy {
				snap.purchase[row.ItemType] = st
			} else {
				snap.sale[row.ItemType] = st
			}
		}
		a.current.Store(snap)

		logger.LogMarket("Market statistics updated",
			slog.Uint64("version", snap.Version),
			slog.Int("entries", snap.Len()),
			logger.Elapsed(start))
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Run updates the statistics now and then every interval until ctx is done.
func (a *Aggregator) Run(ctx context.Context, interval time.Duration) {
	if _, err := a.UpdateStatistics(ctx); err != nil {
		logger.LogError("Market statistics update failed", err)
	}
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := a.UpdateStatistics(ctx); err != nil {
				logger.LogError("Market statistics update failed", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
