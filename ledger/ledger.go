package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmomarket/marketd/internal/domain/game"
	"github.com/mmomarket/marketd/ledger/api"
	"github.com/mmomarket/marketd/ledger/catalog"
	"github.com/mmomarket/marketd/ledger/config"
	"github.com/mmomarket/marketd/ledger/database"
	"github.com/mmomarket/marketd/ledger/database/repositories"
	"github.com/mmomarket/marketd/ledger/economy/market"
	"github.com/mmomarket/marketd/ledger/logger"
	"github.com/mmomarket/marketd/ledger/services"
	"github.com/mmomarket/marketd/ledger/utils"
)

func New(cfg Config, version string, commit string) *Ledger {
	return &Ledger{
		Cfg:     cfg,
		Version: version,
		Commit:  commit,
	}
}

// Ledger owns the market's storage, services and background jobs.
type Ledger struct {
	Cfg     Config
	Version string
	Commit  string

	DB                *database.DB
	Tasks             *database.TaskQueue
	OfferRepository   repositories.OfferRepository
	HistoryRepository repositories.HistoryRepository
	PlayerRepository  repositories.PlayerRepository
	InboxRepository   repositories.InboxRepository

	Catalog    *catalog.Catalog
	Statistics *market.Aggregator
	Market     *market.Service
	Sweeper    *market.Sweeper
	API        *api.Server
	Processes  *utils.BackgroundProcessManager
}

// SetupDatabase connects to the configured store and creates the schema.
func (l *Ledger) SetupDatabase(ctx context.Context) error {
	start := time.Now()

	var (
		db  *database.DB
		err error
	)
	switch l.Cfg.DB.Driver {
	case config.DriverPostgres:
		db, err = database.New(ctx, database.DBConfig{
			Host:     l.Cfg.DB.Host,
			Port:     l.Cfg.DB.Port,
			User:     l.Cfg.DB.User,
			Password: l.Cfg.DB.Password,
			Database: l.Cfg.DB.Database,
			PoolSize: l.Cfg.DB.PoolSize,
		})
	case config.DriverSQLite:
		db, err = database.OpenSQLite(l.Cfg.DB.Path)
	default:
		return fmt.Errorf("unsupported database driver %q", l.Cfg.DB.Driver)
	}
	if err != nil {
		return fmt.Errorf("failed to open %s database: %w", l.Cfg.DB.Driver, err)
	}

	if err := db.InitializeSchema(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	l.DB = db
	l.Tasks = database.NewTaskQueue(config.TaskQueueSize)
	l.OfferRepository = repositories.NewOfferRepository(db.BunDB())
	l.HistoryRepository = repositories.NewHistoryRepository(db.BunDB())
	l.PlayerRepository = repositories.NewPlayerRepository(db.BunDB())
	l.InboxRepository = repositories.NewInboxRepository(db.BunDB(), config.DefaultInboxCapacity)

	logger.LogSystem("Database ready",
		slog.String("driver", l.Cfg.DB.Driver),
		logger.Elapsed(start))
	return nil
}

// SetupMarket builds the market service. Nil players or inventory fall back
// to the database-backed implementations.
func (l *Ledger) SetupMarket(players game.Players, inventory game.Inventory) error {
	if l.DB == nil {
		return fmt.Errorf("database is not set up")
	}

	if l.Cfg.Catalog.Path != "" {
		c, err := catalog.Load(l.Cfg.Catalog.Path)
		if err != nil {
			return err
		}
		l.Catalog = c
		logger.LogSystem("Item catalog loaded", slog.Int("items", c.Len()))
	}
	if players == nil {
		players = services.NewPlayerStorage(l.PlayerRepository)
	}
	if inventory == nil {
		inventory = services.NewInboxStorage(l.InboxRepository)
	}

	var itemTypes game.ItemTypes
	if l.Catalog != nil {
		itemTypes = l.Catalog
	}

	l.Statistics = market.NewAggregator(l.HistoryRepository, nil)
	svc, err := market.NewService(market.Options{
		Offers:             l.OfferRepository,
		History:            l.HistoryRepository,
		Names:              l.PlayerRepository,
		Tasks:              l.Tasks,
		Statistics:         l.Statistics,
		ItemTypes:          itemTypes,
		Players:            players,
		Inventory:          inventory,
		OfferDuration:      l.Cfg.Market.OfferDurationTime(),
		MaxOffersPerPlayer: l.Cfg.Market.MaxOffersPerPlayer,
	})
	if err != nil {
		return err
	}
	l.Market = svc
	l.Sweeper = market.NewSweeper(svc, l.Tasks, l.Cfg.Market.ExpiryCheckInterval())

	var items api.ItemSearcher
	if l.Catalog != nil {
		items = l.Catalog
	}
	l.API = api.NewServer(l.Version, svc, l.Statistics, items)
	return nil
}

// Start launches the statistics refresh, the expiry sweeper and, when
// configured, the HTTP API.
func (l *Ledger) Start(ctx context.Context) error {
	if l.Market == nil {
		return fmt.Errorf("market is not set up")
	}

	l.Processes = utils.NewBackgroundProcessManager(ctx)
	interval := l.Cfg.Market.StatisticsRefreshInterval()
	l.Processes.StartProcess("market-statistics", "rebuilds market statistics from history", func(ctx context.Context) {
		l.Statistics.Run(ctx, interval)
	})
	if l.Cfg.Web.Enabled() {
		l.Processes.StartProcess("http-api", "serves the market over HTTP", l.serveAPI)
	}

	return l.Sweeper.Start(l.Processes.Context())
}

func (l *Ledger) serveAPI(ctx context.Context) {
	addr := l.Cfg.Web.Address()
	errCh := make(chan error, 1)
	go func() {
		errCh <- l.API.Listen(addr)
	}()
	logger.LogSystem("HTTP API listening", slog.String("address", addr))

	select {
	case err := <-errCh:
		if err != nil {
			logger.LogError("HTTP API stopped", err, slog.String("address", addr))
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		if err := l.API.Shutdown(shutdownCtx); err != nil {
			logger.LogError("HTTP API shutdown failed", err)
		}
	}
}

// Shutdown stops the jobs, drains queued writes and closes the database.
func (l *Ledger) Shutdown(timeout time.Duration) {
	if l.Sweeper != nil {
		l.Sweeper.Stop()
	}
	if l.Processes != nil {
		if err := l.Processes.Shutdown(timeout); err != nil {
			logger.LogError("Background processes did not stop cleanly", err)
		}
	}
	if l.Tasks != nil {
		l.Tasks.Close()
	}
	if l.DB != nil {
		l.DB.Close()
	}
	logger.LogSystem("Ledger stopped")
}
