// Package game declares the capabilities the market borrows from the game
// server: item definitions, player records and inbox storage.
package game

//go:generate mockgen -source=game.go -destination=mock/game.go -package=mock

import (
	"context"
	"errors"
)

// DefaultSubType asks the item factory for the type's default sub type.
const DefaultSubType = -1

// ErrNotEnoughRoom is returned by an Inventory that cannot take the item.
var ErrNotEnoughRoom = errors.New("not enough room")

type ItemType struct {
	ID        uint16
	Name      string
	Stackable bool
	// Charges is the default charge count, 0 when the type has none.
	Charges int
}

type Item struct {
	TypeID uint16
	// SubType is the stack count for stackables, the charge count for
	// charged items, DefaultSubType otherwise.
	SubType int
}

type ItemTypes interface {
	ItemType(id uint16) (ItemType, bool)
}

type Player interface {
	ID() int64
	BankBalance() int64
	SetBankBalance(balance int64)
}

type Players interface {
	// GetOnline returns the resident player object, if any.
	GetOnline(id int64) (Player, bool)
	// Load builds a transient player from storage; it must be released.
	Load(ctx context.Context, id int64) (Player, error)
	Save(ctx context.Context, player Player) error
	Release(player Player)
	// IncreaseBankBalance credits a player that is not resident.
	IncreaseBankBalance(ctx context.Context, id int64, amount int64) error
}

type Inventory interface {
	DepositToInbox(ctx context.Context, player Player, item Item) error
}
