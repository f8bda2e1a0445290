package market

import (
	"context"
	"fmt"

	"github.com/mmomarket/marketd/ledger/config"
	"github.com/mmomarket/marketd/ledger/database/models"
	"github.com/mmomarket/marketd/ledger/database/repositories"
	"golang.org/x/sync/errgroup"
)

// GetActiveOffers lists the live offers of one side for an item, oldest
// first, with the owner's name or "Anonymous".
func (s *Service) GetActiveOffers(ctx context.Context, action Action, itemID uint16) ([]Offer, error) {
	rows, err := s.offers.GetActive(ctx, action, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active offers: %w", err)
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		if !row.Anonymous {
			ids = append(ids, row.PlayerID)
		}
	}
	names, err := s.names.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	offers := make([]Offer, 0, len(rows))
	for _, row := range rows {
		name := config.AnonymousName
		if !row.Anonymous {
			name = names[row.PlayerID]
		}
		offer := s.offer(row)
		offer.PlayerName = name
		offers = append(offers, offer)
	}
	return offers, nil
}

// GetOwnOffers lists a player's live offers of one side.
func (s *Service) GetOwnOffers(ctx context.Context, action Action, playerID int64) ([]Offer, error) {
	rows, err := s.offers.GetByPlayer(ctx, playerID, action)
	if err != nil {
		return nil, fmt.Errorf("failed to list own offers: %w", err)
	}

	offers := make([]Offer, 0, len(rows))
	for _, row := range rows {
		offers = append(offers, s.offer(row))
	}
	return offers, nil
}

// GetOwnHistory lists a player's archived offers of one side. Trades the
// player took from someone else's offer read as Accepted.
func (s *Service) GetOwnHistory(ctx context.Context, action Action, playerID int64) ([]HistoryOffer, error) {
	rows, err := s.history.GetByPlayer(ctx, playerID, action)
	if err != nil {
		return nil, fmt.Errorf("failed to list own history: %w", err)
	}

	entries := make([]HistoryOffer, 0, len(rows))
	for _, row := range rows {
		state := row.State
		if state == OfferStateAcceptedEx {
			state = OfferStateAccepted
		}
		entries = append(entries, HistoryOffer{
			ItemID:    row.ItemType,
			Amount:    row.Amount,
			Price:     row.Price,
			Timestamp: row.ExpiresAt,
			State:     state,
		})
	}
	return entries, nil
}

// GetOfferByCounter resolves the (timestamp, counter) handle shown to
// players. A miss returns an OfferEx with ID 0.
func (s *Service) GetOfferByCounter(ctx context.Context, timestamp int64, counter uint16) (OfferEx, error) {
	created := timestamp - s.offerDuration
	row, err := s.offers.GetByCounter(ctx, created, counter)
	if repositories.IsNotFound(err) {
		return OfferEx{}, nil
	}
	if err != nil {
		return OfferEx{}, fmt.Errorf("failed to resolve offer handle: %w", err)
	}

	name := config.AnonymousName
	if !row.Anonymous {
		names, err := s.names.resolve(ctx, []int64{row.PlayerID})
		if err != nil {
			return OfferEx{}, err
		}
		name = names[row.PlayerID]
	}
	return s.offerEx(row, name), nil
}

func (s *Service) GetPlayerOfferCount(ctx context.Context, playerID int64) (int, error) {
	count, err := s.offers.CountByPlayer(ctx, playerID)
	if err != nil {
		return 0, fmt.Errorf("failed to count offers of player %d: %w", playerID, err)
	}
	return count, nil
}

// BrowseItem gathers both offer lists and both statistics entries of an item.
func (s *Service) BrowseItem(ctx context.Context, itemID uint16) (ItemBrowse, error) {
	browse := ItemBrowse{ItemID: itemID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		offers, err := s.GetActiveOffers(gctx, ActionBuy, itemID)
		browse.BuyOffers = offers
		return err
	})
	g.Go(func() error {
		offers, err := s.GetActiveOffers(gctx, ActionSell, itemID)
		browse.SellOffers = offers
		return err
	})
	if err := g.Wait(); err != nil {
		return ItemBrowse{}, err
	}

	if s.statistics != nil {
		snap := s.statistics.Snapshot()
		if st, ok := snap.Purchase(itemID); ok {
			browse.Purchase = &st
		}
		if st, ok := snap.Sale(itemID); ok {
			browse.Sale = &st
		}
	}
	return browse, nil
}

func (s *Service) offer(row *models.MarketOffer) Offer {
	return Offer{
		ItemID:    row.ItemType,
		Amount:    row.Amount,
		Price:     row.Price,
		Timestamp: s.expiresAt(row),
		Counter:   row.Counter(),
	}
}
