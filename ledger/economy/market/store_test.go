package market

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mmomarket/marketd/ledger/database/models"
	"github.com/mmomarket/marketd/ledger/database/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_CreateOffer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		action  Action
		amount  int64
		price   int64
		wantErr bool
	}{
		{name: "sell", action: ActionSell, amount: 5, price: 100},
		{name: "buy", action: ActionBuy, amount: 1, price: 1},
		{name: "zero amount", action: ActionSell, amount: 0, price: 100, wantErr: true},
		{name: "negative price", action: ActionBuy, amount: 1, price: -3, wantErr: true},
		{name: "unknown action", action: Action(7), amount: 1, price: 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.service.CreateOffer(ctx, 1, tt.action, 2160, tt.amount, tt.price, false)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidOffer)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Found())
			assert.Equal(t, testEpoch, got.CreatedAt)
			assert.Equal(t, uint16(got.ID&0xFFFF), got.Counter)
			assert.Equal(t, tt.amount, got.Amount)
		})
	}
}

func TestService_AcceptOffer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	offer := f.createOffer(t, 1, ActionSell, 2160, 10, 100)

	remaining, err := f.service.AcceptOffer(ctx, offer.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), remaining)

	_, err = f.service.AcceptOffer(ctx, offer.ID, 8)
	assert.ErrorIs(t, err, ErrInsufficientAmount)

	_, err = f.service.AcceptOffer(ctx, offer.ID+1, 1)
	assert.ErrorIs(t, err, ErrOfferNotFound)

	_, err = f.service.AcceptOffer(ctx, offer.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidOffer)

	own, err := f.service.GetOwnOffers(ctx, ActionSell, 1)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, int64(7), own[0].Amount)
}

func TestService_AcceptOfferRemovesEmptyOffer(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.MaxOffersPerPlayer = 1 })
	ctx := context.Background()
	offer := f.createOffer(t, 1, ActionSell, 2160, 10, 100)

	remaining, err := f.service.AcceptOffer(ctx, offer.ID, 10)
	require.NoError(t, err)
	assert.Zero(t, remaining)

	active, err := f.service.GetActiveOffers(ctx, ActionSell, 2160)
	require.NoError(t, err)
	assert.Empty(t, active)

	count, err := f.service.GetPlayerOfferCount(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, count)

	ok, err := f.service.CanPostOffer(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestService_DeleteOffer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	offer := f.createOffer(t, 1, ActionBuy, 2160, 1, 100)

	require.NoError(t, f.service.DeleteOffer(ctx, offer.ID))
	require.NoError(t, f.service.DeleteOffer(ctx, offer.ID))

	count, err := f.service.GetPlayerOfferCount(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestService_MoveOfferToHistoryExactlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	offer := f.createOffer(t, 1, ActionSell, 2160, 4, 25)

	var (
		wg    sync.WaitGroup
		moved atomic.Int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := f.service.MoveOfferToHistory(ctx, offer.ID, OfferStateExpired)
			assert.NoError(t, err)
			if ok {
				moved.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), moved.Load())

	history, err := f.service.GetOwnHistory(ctx, ActionSell, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, HistoryOffer{ItemID: 2160, Amount: 4, Price: 25, Timestamp: testEpoch, State: OfferStateExpired}, history[0])
}

func TestService_MoveOfferToHistoryMissing(t *testing.T) {
	f := newFixture(t)
	moved, err := f.service.MoveOfferToHistory(context.Background(), 42, OfferStateCancelled)
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestService_FulfillOfferPartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.createPlayer(t, "Seller")
	buyer := f.createPlayer(t, "Buyer")
	offer := f.createOffer(t, seller, ActionSell, 2160, 10, 100)

	remaining, err := f.service.FulfillOffer(ctx, offer.ID, buyer, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(6), remaining)
	f.flush(t)

	sellerHistory, err := f.service.GetOwnHistory(ctx, ActionSell, seller)
	require.NoError(t, err)
	require.Len(t, sellerHistory, 1)
	assert.Equal(t, OfferStateAccepted, sellerHistory[0].State)
	assert.Equal(t, int64(4), sellerHistory[0].Amount)
	assert.Equal(t, testEpoch, sellerHistory[0].Timestamp)

	// The buyer took a sell offer, so the entry is on the buy side and
	// reads back as Accepted.
	buyerHistory, err := f.service.GetOwnHistory(ctx, ActionBuy, buyer)
	require.NoError(t, err)
	require.Len(t, buyerHistory, 1)
	assert.Equal(t, OfferStateAccepted, buyerHistory[0].State)

	stored, err := f.history.GetByPlayer(ctx, buyer, ActionBuy)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, OfferStateAcceptedEx, stored[0].State)
}

func TestService_FulfillOfferFull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	offer := f.createOffer(t, 1, ActionBuy, 2160, 3, 50)

	remaining, err := f.service.FulfillOffer(ctx, offer.ID, 2, 3)
	require.NoError(t, err)
	assert.Zero(t, remaining)
	f.flush(t)

	count, err := f.service.GetPlayerOfferCount(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = f.service.FulfillOffer(ctx, offer.ID, 2, 1)
	assert.ErrorIs(t, err, ErrOfferNotFound)

	snap, err := f.stats.UpdateStatistics(ctx)
	require.NoError(t, err)
	purchase, ok := snap.Purchase(2160)
	require.True(t, ok)
	assert.Equal(t, Statistics{NumTransactions: 1, LowestPrice: 50, HighestPrice: 50, TotalPrice: 50}, purchase)
	_, ok = snap.Sale(2160)
	assert.False(t, ok)
}

// racingOffers lets another accepter take part of an offer just before a
// fill reaches the store.
type racingOffers struct {
	repositories.OfferRepository
	steal int64
}

func (r *racingOffers) Fill(ctx context.Context, id int64, amount int64, now int64) (*models.MarketOffer, error) {
	if r.steal > 0 {
		if _, err := r.OfferRepository.Accept(ctx, id, r.steal); err != nil {
			return nil, err
		}
		r.steal = 0
	}
	return r.OfferRepository.Fill(ctx, id, amount, now)
}

func TestService_FulfillOfferAfterConcurrentAccept(t *testing.T) {
	f := newFixture(t, func(o *Options) {
		o.Offers = &racingOffers{OfferRepository: o.Offers, steal: 5}
	})
	ctx := context.Background()
	offer := f.createOffer(t, 1, ActionSell, 2160, 10, 100)

	_, err := f.service.FulfillOffer(ctx, offer.ID, 2, 10)
	assert.ErrorIs(t, err, ErrInsufficientAmount)
	f.flush(t)

	ownerHistory, err := f.history.GetByPlayer(ctx, 1, ActionSell)
	require.NoError(t, err)
	assert.Empty(t, ownerHistory)
	accepterHistory, err := f.history.GetByPlayer(ctx, 2, ActionBuy)
	require.NoError(t, err)
	assert.Empty(t, accepterHistory)

	remaining, err := f.service.FulfillOffer(ctx, offer.ID, 2, 5)
	require.NoError(t, err)
	assert.Zero(t, remaining)
	f.flush(t)

	ownerHistory, err = f.history.GetByPlayer(ctx, 1, ActionSell)
	require.NoError(t, err)
	require.Len(t, ownerHistory, 1)
	assert.Equal(t, int64(5), ownerHistory[0].Amount)
	accepterHistory, err = f.history.GetByPlayer(ctx, 2, ActionBuy)
	require.NoError(t, err)
	require.Len(t, accepterHistory, 1)
	assert.Equal(t, int64(5), accepterHistory[0].Amount)
}

func TestService_FulfillOfferTooMuch(t *testing.T) {
	f := newFixture(t)
	offer := f.createOffer(t, 1, ActionSell, 2160, 3, 50)

	_, err := f.service.FulfillOffer(context.Background(), offer.ID, 2, 4)
	assert.ErrorIs(t, err, ErrInsufficientAmount)
}

func TestService_CanPostOffer(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.MaxOffersPerPlayer = 2 })
	ctx := context.Background()

	ok, err := f.service.CanPostOffer(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	f.createOffer(t, 1, ActionSell, 1, 1, 1)
	f.createOffer(t, 1, ActionBuy, 1, 1, 1)

	ok, err = f.service.CanPostOffer(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	unlimited := newFixture(t)
	unlimited.createOffer(t, 1, ActionSell, 1, 1, 1)
	ok, err = unlimited.service.CanPostOffer(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}
