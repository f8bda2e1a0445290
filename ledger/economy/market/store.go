package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmomarket/marketd/ledger/database/models"
	"github.com/mmomarket/marketd/ledger/database/repositories"
	"github.com/mmomarket/marketd/ledger/logger"
)

// CreateOffer stores a new active offer stamped with the current time.
// Funds and inventory checks belong to the caller.
func (s *Service) CreateOffer(ctx context.Context, playerID int64, action Action, itemID uint16, amount, price int64, anonymous bool) (OfferEx, error) {
	if !action.Valid() || amount <= 0 || price <= 0 {
		return OfferEx{}, fmt.Errorf("%w: action=%d amount=%d price=%d", ErrInvalidOffer, action, amount, price)
	}

	offer := &models.MarketOffer{
		PlayerID:  playerID,
		Sale:      action,
		ItemType:  itemID,
		Amount:    amount,
		Price:     price,
		Created:   s.unixNow(),
		Anonymous: anonymous,
	}
	if err := s.offers.Create(ctx, offer); err != nil {
		return OfferEx{}, fmt.Errorf("failed to create offer: %w", err)
	}

	logger.LogMarket("Offer created",
		slog.Int64("offer_id", offer.ID),
		slog.Int64("player_id", playerID),
		slog.String("action", action.String()),
		slog.Any("item_id", itemID),
		slog.Int64("amount", amount),
		slog.Int64("price", price))

	return s.offerEx(offer, ""), nil
}

// AcceptOffer takes amount units off an offer and returns what remains. An
// offer taken down to zero is removed.
func (s *Service) AcceptOffer(ctx context.Context, offerID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount=%d", ErrInvalidOffer, amount)
	}

	remaining, err := s.offers.Accept(ctx, offerID, amount)
	switch {
	case errors.Is(err, repositories.ErrInsufficientAmount):
		return 0, ErrInsufficientAmount
	case repositories.IsNotFound(err):
		return 0, ErrOfferNotFound
	case err != nil:
		return 0, fmt.Errorf("failed to accept offer %d: %w", offerID, err)
	}
	return remaining, nil
}

func (s *Service) DeleteOffer(ctx context.Context, offerID int64) error {
	if err := s.offers.Delete(ctx, offerID); err != nil {
		return fmt.Errorf("failed to delete offer %d: %w", offerID, err)
	}
	return nil
}

// MoveOfferToHistory archives an offer with a terminal state. moved is false
// when another caller got there first or the offer never existed.
func (s *Service) MoveOfferToHistory(ctx context.Context, offerID int64, state OfferState) (bool, error) {
	offer, err := s.moveOfferToHistory(ctx, offerID, state)
	return offer != nil, err
}

func (s *Service) moveOfferToHistory(ctx context.Context, offerID int64, state OfferState) (*models.MarketOffer, error) {
	offer, err := s.offers.MoveToHistory(ctx, offerID, state, s.unixNow())
	if repositories.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to move offer %d to history: %w", offerID, err)
	}

	logger.LogMarket("Offer archived",
		slog.Int64("offer_id", offerID),
		slog.Int64("player_id", offer.PlayerID),
		slog.String("state", state.String()))
	return offer, nil
}

// AppendHistory records a history entry off the caller's path. Only a
// failure to queue the write is reported.
func (s *Service) AppendHistory(ctx context.Context, playerID int64, action Action, itemID uint16, amount, price, timestamp int64, state OfferState) error {
	entry := &models.MarketHistory{
		PlayerID:  playerID,
		Sale:      action,
		ItemType:  itemID,
		Amount:    amount,
		Price:     price,
		ExpiresAt: timestamp,
		Inserted:  s.unixNow(),
		State:     state,
	}

	write := func(ctx context.Context) error {
		return s.history.Append(ctx, entry)
	}
	if s.tasks == nil {
		return write(ctx)
	}
	return s.tasks.SubmitWithCallback(ctx, "market.append_history", write, nil, 0)
}

// FulfillOffer lets accepterID take amount units of an offer and returns
// what is left of it. The owner is credited with an Accepted entry and the
// accepter with an AcceptedEx entry for the opposite action, so each trade
// is counted once by the statistics. Both entries are stamped with the time
// of the trade, like every other archived offer.
func (s *Service) FulfillOffer(ctx context.Context, offerID, accepterID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount=%d", ErrInvalidOffer, amount)
	}

	now := s.unixNow()
	offer, err := s.offers.Fill(ctx, offerID, amount, now)
	switch {
	case errors.Is(err, repositories.ErrInsufficientAmount):
		return 0, ErrInsufficientAmount
	case repositories.IsNotFound(err):
		return 0, ErrOfferNotFound
	case err != nil:
		return 0, fmt.Errorf("failed to fulfil offer %d: %w", offerID, err)
	}

	if err := s.AppendHistory(ctx, accepterID, offer.Sale.Opposite(), offer.ItemType, amount, offer.Price, now, OfferStateAcceptedEx); err != nil {
		logger.LogError("Failed to queue accepter history entry", err, slog.Int64("offer_id", offerID))
	}

	logger.LogMarket("Offer accepted",
		slog.Int64("offer_id", offerID),
		slog.Int64("player_id", accepterID),
		slog.Int64("amount", amount),
		slog.Int64("remaining", offer.Amount))
	return offer.Amount, nil
}

// CancelOffer archives a player's own offer and returns its goods or funds.
func (s *Service) CancelOffer(ctx context.Context, playerID, offerID int64) error {
	offer, err := s.offers.GetByID(ctx, offerID)
	if repositories.IsNotFound(err) {
		return ErrOfferNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load offer %d: %w", offerID, err)
	}
	if offer.PlayerID != playerID {
		return ErrNotOfferOwner
	}

	moved, err := s.moveOfferToHistory(ctx, offerID, OfferStateCancelled)
	if err != nil {
		return err
	}
	if moved == nil {
		return ErrOfferNotFound
	}

	s.settle(ctx, moved)
	return nil
}

// CanPostOffer reports whether the player is below the per-player offer cap.
func (s *Service) CanPostOffer(ctx context.Context, playerID int64) (bool, error) {
	if s.maxOffersPerPlayer <= 0 {
		return true, nil
	}
	count, err := s.GetPlayerOfferCount(ctx, playerID)
	if err != nil {
		return false, err
	}
	return count < s.maxOffersPerPlayer, nil
}

func (s *Service) offerEx(offer *models.MarketOffer, name string) OfferEx {
	return OfferEx{
		ID:         offer.ID,
		Action:     offer.Sale,
		ItemID:     offer.ItemType,
		Amount:     offer.Amount,
		Price:      offer.Price,
		CreatedAt:  offer.Created,
		Counter:    offer.Counter(),
		PlayerID:   offer.PlayerID,
		PlayerName: name,
		Anonymous:  offer.Anonymous,
	}
}
