package market

import (
	"errors"
	"fmt"
	"time"

	"github.com/mmomarket/marketd/internal/domain/game"
	"github.com/mmomarket/marketd/ledger/config"
	"github.com/mmomarket/marketd/ledger/database/models"
	"github.com/mmomarket/marketd/ledger/database/repositories"
	"github.com/mmomarket/marketd/ledger/logger"
)

// Options wires a Service. Offers and History are required. Without Players
// or Inventory, settlement of removed offers is skipped and logged. Without
// Tasks, history appends run inline.
type Options struct {
	Offers     repositories.OfferRepository
	History    repositories.HistoryRepository
	Names      NameSource
	Tasks      TaskSubmitter
	Statistics *Aggregator

	ItemTypes game.ItemTypes
	Players   game.Players
	Inventory game.Inventory

	OfferDuration      time.Duration
	MaxOffersPerPlayer int
	Now                func() time.Time
}

// Service owns the offer lifecycle: creation, acceptance, archival,
// expiry settlement and the read paths the market window uses.
type Service struct {
	offers     repositories.OfferRepository
	history    repositories.HistoryRepository
	tasks      TaskSubmitter
	statistics *Aggregator
	names      *nameCache

	itemTypes game.ItemTypes
	players   game.Players
	inventory game.Inventory

	offerDuration      int64
	maxOffersPerPlayer int
	now                func() time.Time
}

func NewService(opts Options) (*Service, error) {
	if opts.Offers == nil || opts.History == nil {
		return nil, errors.New("market service needs offer and history repositories")
	}

	duration := int64(opts.OfferDuration / time.Second)
	if duration <= 0 {
		duration = config.DefaultOfferDuration
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	names, err := newNameCache(opts.Names, config.PlayerNameCacheSize, config.PlayerNameCacheExpiration, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create player name cache: %w", err)
	}

	return &Service{
		offers:             opts.Offers,
		history:            opts.History,
		tasks:              opts.Tasks,
		statistics:         opts.Statistics,
		names:              names,
		itemTypes:          opts.ItemTypes,
		players:            opts.Players,
		inventory:          opts.Inventory,
		offerDuration:      duration,
		maxOffersPerPlayer: opts.MaxOffersPerPlayer,
		now:                now,
	}, nil
}

// OfferDuration is the lifetime of an offer in seconds.
func (s *Service) OfferDuration() int64 {
	return s.offerDuration
}

func (s *Service) unixNow() int64 {
	return s.now().Unix()
}

func (s *Service) expiresAt(offer *models.MarketOffer) int64 {
	return offer.Created + s.offerDuration
}

func (s *Service) logSkippedSettlement(offer *models.MarketOffer, reason string) {
	logger.LogMarket("Settlement skipped",
		"offer_id", offer.ID,
		"player_id", offer.PlayerID,
		"item_id", offer.ItemType,
		"reason", reason)
}
