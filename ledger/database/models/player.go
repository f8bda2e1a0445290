package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Player is the slice of the game's player record the market touches.
type Player struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull,unique"`
	Balance   int64     `bun:"balance,notnull,default:0"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// InboxItem is an item delivered to a player's inbox.
type InboxItem struct {
	bun.BaseModel `bun:"table:player_inbox_items,alias:pii"`

	ID       int64  `bun:"id,pk,autoincrement"`
	PlayerID int64  `bun:"player_id,notnull"`
	ItemType uint16 `bun:"itemtype,notnull"`
	// SubType is the stack count, the charge count or -1.
	SubType   int       `bun:"subtype,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
