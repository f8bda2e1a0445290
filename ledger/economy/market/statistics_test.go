package market

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mmomarket/marketd/ledger/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	mu    sync.Mutex
	rows  []models.MarketStatisticsRow
	err   error
	calls int
}

func (s *stubSource) AggregateAccepted(context.Context) ([]models.MarketStatisticsRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.rows, s.err
}

func (s *stubSource) set(rows []models.MarketStatisticsRow, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows, s.err = rows, err
}

func TestAggregator_UpdateStatisticsFromHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, price := range []int64{10, 20, 30} {
		require.NoError(t, f.history.Append(ctx, &models.MarketHistory{
			PlayerID: 1, Sale: ActionSell, ItemType: crystalCoin, Amount: 1, Price: price, State: OfferStateAccepted,
		}))
	}

	snap, err := f.stats.UpdateStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Version)
	assert.Equal(t, time.Unix(testEpoch, 0), snap.BuiltAt)

	sale, ok := f.stats.SaleStatistics(crystalCoin)
	require.True(t, ok)
	assert.Equal(t, Statistics{NumTransactions: 3, LowestPrice: 10, HighestPrice: 30, TotalPrice: 60}, sale)
	assert.Equal(t, int64(20), sale.AveragePrice())

	_, ok = f.stats.PurchaseStatistics(crystalCoin)
	assert.False(t, ok)
}

func TestAggregator_Snapshots(t *testing.T) {
	source := &stubSource{}
	agg := NewAggregator(source, nil)
	ctx := context.Background()

	initial := agg.Snapshot()
	assert.Equal(t, uint64(0), initial.Version)
	assert.Zero(t, initial.Len())

	source.set([]models.MarketStatisticsRow{
		{Sale: ActionBuy, ItemType: 1, Num: 2, Lowest: 5, Highest: 7, Total: 12},
		{Sale: ActionSell, ItemType: 2, Num: 1, Lowest: 9, Highest: 9, Total: 9},
	}, nil)
	first, err := agg.UpdateStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Len())

	t.Run("failed query keeps previous snapshot", func(t *testing.T) {
		source.set(nil, errors.New("connection reset"))
		_, err := agg.UpdateStatistics(ctx)
		require.Error(t, err)
		assert.Same(t, first, agg.Snapshot())
	})

	t.Run("rebuild evicts missing pairs", func(t *testing.T) {
		source.set([]models.MarketStatisticsRow{
			{Sale: ActionSell, ItemType: 2, Num: 2, Lowest: 9, Highest: 11, Total: 20},
		}, nil)
		second, err := agg.UpdateStatistics(ctx)
		require.NoError(t, err)
		assert.Greater(t, second.Version, first.Version)

		_, ok := agg.PurchaseStatistics(1)
		assert.False(t, ok)
		sale, ok := agg.SaleStatistics(2)
		require.True(t, ok)
		assert.Equal(t, int64(2), sale.NumTransactions)

		// Readers holding the old snapshot still see it unchanged.
		_, ok = first.Purchase(1)
		assert.True(t, ok)
	})
}

func TestAggregator_Run(t *testing.T) {
	source := &stubSource{}
	agg := NewAggregator(source, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		agg.Run(ctx, 10*time.Millisecond)
	}()

	assert.Eventually(t, func() bool { return agg.Snapshot().Version >= 2 }, 5*time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestStatistics_AveragePrice(t *testing.T) {
	assert.Zero(t, Statistics{}.AveragePrice())
	assert.Equal(t, int64(15), Statistics{NumTransactions: 2, TotalPrice: 30}.AveragePrice())
}
