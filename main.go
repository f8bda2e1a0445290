package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mmomarket/marketd/ledger"
	"github.com/mmomarket/marketd/ledger/catalog"
	"github.com/mmomarket/marketd/ledger/config"
	"github.com/mmomarket/marketd/ledger/logger"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	path := flag.String("config", "config.toml", "path to config")
	searchItem := flag.String("search-item", "", "print catalog items matching a name and exit")
	flag.Parse()

	cfg, err := ledger.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	setupLogger(cfg.Log)

	if *searchItem != "" {
		os.Exit(runSearch(cfg.Catalog.Path, *searchItem))
	}

	slog.Info("Starting marketd",
		slog.String("type", "sys"),
		slog.String("version", version),
		slog.String("commit", commit))

	l := ledger.New(*cfg, version, commit)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if err = l.SetupDatabase(ctx); err != nil {
		cancel()
		slog.Error("Failed to set up database",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("component", "database"))
		os.Exit(-1)
	}
	cancel()

	if err = l.SetupMarket(nil, nil); err != nil {
		slog.Error("Failed to set up market",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("component", "market"))
		l.Shutdown(config.ShutdownTimeout)
		os.Exit(-1)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = l.Start(runCtx); err != nil {
		slog.Error("Failed to start market jobs",
			slog.String("type", "sys"),
			slog.Any("error", err))
		l.Shutdown(config.ShutdownTimeout)
		os.Exit(-1)
	}

	slog.Info("marketd is running. Press CTRL-C to exit.",
		slog.String("type", "sys"),
		slog.Duration("offer_duration", cfg.Market.OfferDurationTime()),
		slog.Duration("expiry_check_interval", cfg.Market.ExpiryCheckInterval()),
		slog.Duration("statistics_refresh_interval", cfg.Market.StatisticsRefreshInterval()))
	<-runCtx.Done()

	slog.Info("Shutting down marketd...", slog.String("type", "sys"))
	l.Shutdown(config.ShutdownTimeout)
}

func setupLogger(cfg ledger.LogConfig) {
	opts := &slog.HandlerOptions{
		AddSource: cfg.AddSource,
		Level:     cfg.Level,
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = logger.NewHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func runSearch(path, query string) int {
	if path == "" {
		fmt.Fprintln(os.Stderr, "no [catalog] path configured")
		return 1
	}
	c, err := catalog.Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, item := range c.Search(query, 10) {
		fmt.Printf("%5d  %s\n", item.ID, item.Name)
	}
	return 0
}
