package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmomarket/marketd/ledger/config"
	"github.com/mmomarket/marketd/ledger/database/models"
	"github.com/mmomarket/marketd/ledger/economy/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testItems = `
items:
  - id: 2160
    name: crystal coin
    stackable: true
  - id: 2400
    name: magic sword
`

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	dir := t.TempDir()
	itemsPath := filepath.Join(dir, "items.yaml")
	require.NoError(t, os.WriteFile(itemsPath, []byte(testItems), 0o644))

	cfg := Config{
		DB:      DBConfig{Driver: config.DriverSQLite, Path: filepath.Join(dir, "market.db")},
		Market:  MarketConfig{OfferDuration: 1},
		Catalog: CatalogConfig{Path: itemsPath},
	}
	cfg.applyDefaults()

	l := New(cfg, "test", "test")
	require.NoError(t, l.SetupDatabase(context.Background()))
	require.NoError(t, l.SetupMarket(nil, nil))
	return l
}

func TestLedger_ExpiredOffersReturnToStorage(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	seller := &models.Player{Name: "Seller"}
	buyer := &models.Player{Name: "Buyer", Balance: 10}
	require.NoError(t, l.PlayerRepository.Create(ctx, seller))
	require.NoError(t, l.PlayerRepository.Create(ctx, buyer))

	_, err := l.Market.CreateOffer(ctx, seller.ID, market.ActionSell, 2160, 150, 5, false)
	require.NoError(t, err)
	_, err = l.Market.CreateOffer(ctx, seller.ID, market.ActionSell, 2400, 2, 500, false)
	require.NoError(t, err)
	_, err = l.Market.CreateOffer(ctx, buyer.ID, market.ActionBuy, 2160, 3, 7, true)
	require.NoError(t, err)

	// offer_duration is one second.
	time.Sleep(1100 * time.Millisecond)

	archived, err := l.Market.CheckExpiredOffers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, archived)

	items, err := l.InboxRepository.GetByPlayer(ctx, seller.ID)
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, 100, items[0].SubType)
	assert.Equal(t, 50, items[1].SubType)
	assert.Equal(t, uint16(2400), items[2].ItemType)
	assert.Equal(t, -1, items[2].SubType)

	refunded, err := l.PlayerRepository.GetByID(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(31), refunded.Balance)

	l.Shutdown(config.ShutdownTimeout)
}

func TestLedger_StartAndShutdown(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Start(context.Background()))
	assert.Eventually(t, func() bool { return l.Statistics.Snapshot().Version >= 1 }, 5*time.Second, 10*time.Millisecond)

	l.Shutdown(config.ShutdownTimeout)
	assert.False(t, l.Sweeper.Running())
}

func TestLedger_UnsupportedDriver(t *testing.T) {
	l := New(Config{DB: DBConfig{Driver: "oracle"}}, "test", "test")
	assert.Error(t, l.SetupDatabase(context.Background()))
	assert.Error(t, l.SetupMarket(nil, nil))
}
