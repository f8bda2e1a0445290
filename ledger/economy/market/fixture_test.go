package market

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mmomarket/marketd/internal/domain/game/mock"
	"github.com/mmomarket/marketd/ledger/database"
	"github.com/mmomarket/marketd/ledger/database/models"
	"github.com/mmomarket/marketd/ledger/database/repositories"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	testDuration = time.Hour
	testEpoch    = int64(1_700_000_000)
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	clock      *testClock
	offers     repositories.OfferRepository
	history    repositories.HistoryRepository
	playerRepo repositories.PlayerRepository
	tasks      *database.TaskQueue
	stats      *Aggregator

	itemTypes *mock.MockItemTypes
	players   *mock.MockPlayers
	inventory *mock.MockInventory
	ctrl      *gomock.Controller

	service *Service
}

func newFixture(t *testing.T, configure ...func(*Options)) *fixture {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "market.db"))
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.InitializeSchema(context.Background()))

	tasks := database.NewTaskQueue(64)
	t.Cleanup(tasks.Close)

	ctrl := gomock.NewController(t)
	f := &fixture{
		clock:      &testClock{now: time.Unix(testEpoch, 0)},
		offers:     repositories.NewOfferRepository(db.BunDB()),
		history:    repositories.NewHistoryRepository(db.BunDB()),
		playerRepo: repositories.NewPlayerRepository(db.BunDB()),
		tasks:      tasks,
		itemTypes:  mock.NewMockItemTypes(ctrl),
		players:    mock.NewMockPlayers(ctrl),
		inventory:  mock.NewMockInventory(ctrl),
		ctrl:       ctrl,
	}
	f.stats = NewAggregator(f.history, f.clock.Now)

	opts := Options{
		Offers:        f.offers,
		History:       f.history,
		Names:         f.playerRepo,
		Tasks:         tasks,
		Statistics:    f.stats,
		ItemTypes:     f.itemTypes,
		Players:       f.players,
		Inventory:     f.inventory,
		OfferDuration: testDuration,
		Now:           f.clock.Now,
	}
	for _, fn := range configure {
		fn(&opts)
	}

	f.service, err = NewService(opts)
	require.NoError(t, err)
	return f
}

func (f *fixture) flush(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.tasks.Flush(ctx))
}

func (f *fixture) createPlayer(t *testing.T, name string) int64 {
	t.Helper()
	p := &models.Player{Name: name}
	require.NoError(t, f.playerRepo.Create(context.Background(), p))
	return p.ID
}

func (f *fixture) createOffer(t *testing.T, playerID int64, action Action, itemID uint16, amount, price int64) OfferEx {
	t.Helper()
	offer, err := f.service.CreateOffer(context.Background(), playerID, action, itemID, amount, price, false)
	require.NoError(t, err)
	return offer
}
