package models

import (
	"github.com/mmomarket/marketd/ledger/config"
	"github.com/uptrace/bun"
)

type MarketAction uint8

const (
	MarketActionBuy  MarketAction = 0
	MarketActionSell MarketAction = 1
)

func (a MarketAction) String() string {
	switch a {
	case MarketActionBuy:
		return "buy"
	case MarketActionSell:
		return "sell"
	default:
		return "unknown"
	}
}

// Opposite is the side taken by whoever accepts an offer of this action.
func (a MarketAction) Opposite() MarketAction {
	if a == MarketActionBuy {
		return MarketActionSell
	}
	return MarketActionBuy
}

func (a MarketAction) Valid() bool {
	return a == MarketActionBuy || a == MarketActionSell
}

// MarketOffer is a standing buy or sell order. Created is a unix timestamp
// in seconds.
type MarketOffer struct {
	bun.BaseModel `bun:"table:market_offers,alias:mo"`

	ID        int64        `bun:"id,pk,autoincrement"`
	PlayerID  int64        `bun:"player_id,notnull"`
	Sale      MarketAction `bun:"sale,notnull,default:0"`
	ItemType  uint16       `bun:"itemtype,notnull"`
	Amount    int64        `bun:"amount,notnull"`
	Price     int64        `bun:"price,notnull"`
	Created   int64        `bun:"created,notnull"`
	Anonymous bool         `bun:"anonymous,notnull,default:false"`
}

// Counter is the low 16 bits of the id.
func (o *MarketOffer) Counter() uint16 {
	return uint16(o.ID & config.CounterMask)
}
