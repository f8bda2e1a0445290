package market

import (
	"context"
	"testing"

	"github.com/mmomarket/marketd/ledger/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_GetActiveOffers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createPlayer(t, "Alice")
	bob := f.createPlayer(t, "Bob")

	first := f.createOffer(t, alice, ActionSell, crystalCoin, 5, 100)
	_, err := f.service.CreateOffer(ctx, bob, ActionSell, crystalCoin, 1, 90, true)
	require.NoError(t, err)
	f.createOffer(t, bob, ActionBuy, crystalCoin, 1, 80)
	f.createOffer(t, bob, ActionSell, wand, 1, 70)

	offers, err := f.service.GetActiveOffers(ctx, ActionSell, crystalCoin)
	require.NoError(t, err)
	require.Len(t, offers, 2)

	expiry := testEpoch + int64(testDuration.Seconds())
	assert.Equal(t, Offer{
		ItemID:     crystalCoin,
		Amount:     5,
		Price:      100,
		Timestamp:  expiry,
		Counter:    first.Counter,
		PlayerName: "Alice",
	}, offers[0])
	assert.Equal(t, "Anonymous", offers[1].PlayerName)

	none, err := f.service.GetActiveOffers(ctx, ActionBuy, wand)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestService_GetOwnOffers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.createOffer(t, 1, ActionSell, crystalCoin, 5, 100)
	f.createOffer(t, 1, ActionSell, wand, 2, 300)
	f.createOffer(t, 1, ActionBuy, wand, 1, 250)
	f.createOffer(t, 2, ActionSell, wand, 1, 200)

	own, err := f.service.GetOwnOffers(ctx, ActionSell, 1)
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, crystalCoin, own[0].ItemID)
	assert.Equal(t, wand, own[1].ItemID)
	for _, o := range own {
		assert.Empty(t, o.PlayerName)
	}
}

func TestService_GetOwnHistoryNormalizesAcceptedEx(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, state := range []OfferState{OfferStateAcceptedEx, OfferStateCancelled} {
		require.NoError(t, f.service.AppendHistory(ctx, 1, ActionBuy, crystalCoin, 1, 10, testEpoch, state))
	}
	f.flush(t)

	history, err := f.service.GetOwnHistory(ctx, ActionBuy, 1)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, OfferStateAccepted, history[0].State)
	assert.Equal(t, OfferStateCancelled, history[1].State)
}

func TestService_GetOfferByCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createPlayer(t, "Alice")
	offer := f.createOffer(t, alice, ActionSell, crystalCoin, 5, 100)

	listed, err := f.service.GetOwnOffers(ctx, ActionSell, alice)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	got, err := f.service.GetOfferByCounter(ctx, listed[0].Timestamp, listed[0].Counter)
	require.NoError(t, err)
	assert.True(t, got.Found())
	assert.Equal(t, offer.ID, got.ID)
	assert.Equal(t, "Alice", got.PlayerName)
	assert.Equal(t, int64(5), got.Amount)

	miss, err := f.service.GetOfferByCounter(ctx, listed[0].Timestamp+1, listed[0].Counter)
	require.NoError(t, err)
	assert.False(t, miss.Found())
	assert.Equal(t, OfferEx{}, miss)
}

func TestService_GetOfferByCounterAnonymous(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	offer, err := f.service.CreateOffer(ctx, 3, ActionBuy, wand, 1, 10, true)
	require.NoError(t, err)

	got, err := f.service.GetOfferByCounter(ctx, offer.CreatedAt+f.service.OfferDuration(), offer.Counter)
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", got.PlayerName)
	assert.True(t, got.Anonymous)
}

func TestService_BrowseItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.createPlayer(t, "Seller")

	f.createOffer(t, seller, ActionSell, crystalCoin, 5, 100)
	f.createOffer(t, seller, ActionBuy, crystalCoin, 1, 90)
	f.createOffer(t, seller, ActionBuy, crystalCoin, 1, 95)
	require.NoError(t, f.history.Append(ctx, &models.MarketHistory{
		PlayerID: seller, Sale: ActionSell, ItemType: crystalCoin, Amount: 1, Price: 120, State: OfferStateAccepted,
	}))
	_, err := f.stats.UpdateStatistics(ctx)
	require.NoError(t, err)

	browse, err := f.service.BrowseItem(ctx, crystalCoin)
	require.NoError(t, err)
	assert.Len(t, browse.BuyOffers, 2)
	assert.Len(t, browse.SellOffers, 1)
	assert.Nil(t, browse.Purchase)
	require.NotNil(t, browse.Sale)
	assert.Equal(t, int64(120), browse.Sale.AveragePrice())
}
