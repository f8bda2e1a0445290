package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmomarket/marketd/internal/domain/game"
	"github.com/mmomarket/marketd/ledger/database/repositories"
)

// InboxStorage delivers returned items to the player_inbox_items table.
type InboxStorage struct {
	repo repositories.InboxRepository
}

func NewInboxStorage(repo repositories.InboxRepository) *InboxStorage {
	return &InboxStorage{repo: repo}
}

func (s *InboxStorage) DepositToInbox(ctx context.Context, player game.Player, item game.Item) error {
	err := s.repo.Deposit(ctx, player.ID(), item.TypeID, item.SubType)
	if errors.Is(err, repositories.ErrInboxFull) {
		return game.ErrNotEnoughRoom
	}
	if err != nil {
		return fmt.Errorf("failed to deposit item %d for player %d: %w", item.TypeID, player.ID(), err)
	}
	return nil
}
