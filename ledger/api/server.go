// Package api serves the market over HTTP for tools and game front ends.
package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mmomarket/marketd/ledger/economy/market"
)

type Server struct {
	app        *fiber.App
	version    string
	market     *market.Service
	statistics *market.Aggregator
	items      ItemSearcher
}

// NewServer builds the routes. items may be nil when no catalog is loaded.
func NewServer(version string, svc *market.Service, stats *market.Aggregator, items ItemSearcher) *Server {
	s := &Server{
		version:    version,
		market:     svc,
		statistics: stats,
		items:      items,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "marketd",
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})
	s.app.Use(recover.New())
	s.app.Use(SecurityHeaders())
	s.app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
	s.app.Use(LoggingMiddleware())

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.app.Get("/health", s.health)

	m := s.app.Group("/market")
	m.Get("/items/:item", s.browseItem)
	m.Get("/offers", s.activeOffers)
	m.Post("/offers", s.createOffer)
	m.Get("/offers/:timestamp/:counter", s.offerByCounter)
	m.Post("/offers/:id/accept", s.acceptOffer)
	m.Delete("/offers/:id", s.cancelOffer)
	m.Get("/statistics/:item", s.itemStatistics)

	p := s.app.Group("/players")
	p.Get("/:id/offers", s.ownOffers)
	p.Get("/:id/offers/count", s.offerCount)
	p.Get("/:id/history", s.ownHistory)

	s.app.Get("/catalog/search", s.searchItems)
}

func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks until the server stops.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
