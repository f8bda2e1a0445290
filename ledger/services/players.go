package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/mmomarket/marketd/internal/domain/game"
	"github.com/mmomarket/marketd/ledger/database/repositories"
)

// StoredPlayer is a player record loaded from the players table. saved is
// the balance last read from or written to the table.
type StoredPlayer struct {
	id      int64
	balance int64
	saved   int64
}

func (p *StoredPlayer) ID() int64                    { return p.id }
func (p *StoredPlayer) BankBalance() int64           { return p.balance }
func (p *StoredPlayer) SetBankBalance(balance int64) { p.balance = balance }

// PlayerStorage serves game.Players from the database when the ledger runs
// without a game server attached. Players registered with Track count as
// online.
type PlayerStorage struct {
	repo   repositories.PlayerRepository
	online sync.Map
}

func NewPlayerStorage(repo repositories.PlayerRepository) *PlayerStorage {
	return &PlayerStorage{repo: repo}
}

func (s *PlayerStorage) Track(player game.Player) {
	s.online.Store(player.ID(), player)
}

func (s *PlayerStorage) Untrack(playerID int64) {
	s.online.Delete(playerID)
}

func (s *PlayerStorage) GetOnline(id int64) (game.Player, bool) {
	v, ok := s.online.Load(id)
	if !ok {
		return nil, false
	}
	return v.(game.Player), true
}

func (s *PlayerStorage) Load(ctx context.Context, id int64) (game.Player, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load player %d: %w", id, err)
	}
	return &StoredPlayer{id: record.ID, balance: record.Balance, saved: record.Balance}, nil
}

// Save writes back only what changed since Load, so credits made through
// IncreaseBankBalance in the meantime survive.
func (s *PlayerStorage) Save(ctx context.Context, player game.Player) error {
	stored, ok := player.(*StoredPlayer)
	if !ok {
		if err := s.repo.UpdateBalance(ctx, player.ID(), player.BankBalance()); err != nil {
			return fmt.Errorf("failed to save player %d: %w", player.ID(), err)
		}
		return nil
	}

	delta := stored.balance - stored.saved
	if delta == 0 {
		return nil
	}
	if err := s.repo.IncreaseBankBalance(ctx, stored.id, delta); err != nil {
		return fmt.Errorf("failed to save player %d: %w", stored.id, err)
	}
	stored.saved = stored.balance
	return nil
}

func (s *PlayerStorage) Release(game.Player) {}

func (s *PlayerStorage) IncreaseBankBalance(ctx context.Context, id int64, amount int64) error {
	return s.repo.IncreaseBankBalance(ctx, id, amount)
}
