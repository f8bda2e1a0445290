package market

import (
	"context"
	"log/slog"

	"github.com/mmomarket/marketd/internal/domain/game"
	"github.com/mmomarket/marketd/ledger/config"
	"github.com/mmomarket/marketd/ledger/database/models"
	"github.com/mmomarket/marketd/ledger/logger"
)

// settlement is what went back to the owner of a removed offer.
type settlement struct {
	delivered int64
	refunded  int64
}

// settle gives the owner of an archived offer back what the offer held:
// items for sell offers, price*amount for buy offers. Failures are logged,
// never returned; the offer is already gone.
func (s *Service) settle(ctx context.Context, offer *models.MarketOffer) settlement {
	if s.players == nil {
		s.logSkippedSettlement(offer, "no player storage")
		return settlement{}
	}
	if offer.Sale == ActionSell {
		return s.returnItems(ctx, offer)
	}
	return s.refund(ctx, offer)
}

func (s *Service) returnItems(ctx context.Context, offer *models.MarketOffer) settlement {
	var result settlement
	if s.inventory == nil || s.itemTypes == nil {
		s.logSkippedSettlement(offer, "no inventory")
		return result
	}

	itemType, ok := s.itemTypes.ItemType(offer.ItemType)
	if !ok {
		s.logSkippedSettlement(offer, "unknown item type")
		return result
	}

	player, release, err := s.acquirePlayer(ctx, offer.PlayerID)
	if err != nil {
		logger.LogError("Failed to load offer owner", err,
			slog.Int64("offer_id", offer.ID),
			slog.Int64("player_id", offer.PlayerID))
		return result
	}
	defer release()

	deposit := func(subType int) bool {
		err := s.inventory.DepositToInbox(ctx, player, game.Item{TypeID: itemType.ID, SubType: subType})
		if err != nil {
			logger.LogMarket("Inbox rejected returned items",
				slog.Int64("offer_id", offer.ID),
				slog.Int64("player_id", offer.PlayerID),
				slog.Any("item_id", offer.ItemType),
				slog.Int64("undelivered", offer.Amount-result.delivered),
				slog.Any("error", err))
			return false
		}
		return true
	}

	if itemType.Stackable {
		for remaining := offer.Amount; remaining > 0; {
			chunk := min(remaining, config.MaxStackChunk)
			if !deposit(int(chunk)) {
				break
			}
			remaining -= chunk
			result.delivered += chunk
		}
	} else {
		subType := game.DefaultSubType
		if itemType.Charges != 0 {
			subType = itemType.Charges
		}
		for i := int64(0); i < offer.Amount; i++ {
			if !deposit(subType) {
				break
			}
			result.delivered++
		}
	}
	return result
}

func (s *Service) refund(ctx context.Context, offer *models.MarketOffer) settlement {
	total := offer.Price * offer.Amount

	if player, ok := s.players.GetOnline(offer.PlayerID); ok {
		player.SetBankBalance(player.BankBalance() + total)
	} else if err := s.players.IncreaseBankBalance(ctx, offer.PlayerID, total); err != nil {
		logger.LogError("Failed to refund offer owner", err,
			slog.Int64("offer_id", offer.ID),
			slog.Int64("player_id", offer.PlayerID),
			slog.Int64("amount", total))
		return settlement{}
	}
	return settlement{refunded: total}
}

// acquirePlayer returns the online player or loads the stored one. The
// returned release saves and frees a loaded player and must always be called.
func (s *Service) acquirePlayer(ctx context.Context, playerID int64) (game.Player, func(), error) {
	if player, ok := s.players.GetOnline(playerID); ok {
		return player, func() {}, nil
	}

	player, err := s.players.Load(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}
	return player, func() {
		if err := s.players.Save(ctx, player); err != nil {
			logger.LogError("Failed to save offer owner", err, slog.Int64("player_id", playerID))
		}
		s.players.Release(player)
	}, nil
}
