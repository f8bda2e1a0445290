package models

import (
	"github.com/uptrace/bun"
)

type OfferState uint8

const (
	OfferStateActive     OfferState = 0
	OfferStateCancelled  OfferState = 1
	OfferStateExpired    OfferState = 2
	OfferStateAccepted   OfferState = 3
	OfferStateAcceptedEx OfferState = 255
)

func (s OfferState) String() string {
	switch s {
	case OfferStateActive:
		return "active"
	case OfferStateCancelled:
		return "cancelled"
	case OfferStateExpired:
		return "expired"
	case OfferStateAccepted:
		return "accepted"
	case OfferStateAcceptedEx:
		return "accepted_ex"
	default:
		return "unknown"
	}
}

// Terminal reports whether an offer can be archived with this state.
func (s OfferState) Terminal() bool {
	switch s {
	case OfferStateCancelled, OfferStateExpired, OfferStateAccepted, OfferStateAcceptedEx:
		return true
	}
	return false
}

type MarketHistory struct {
	bun.BaseModel `bun:"table:market_history,alias:mh"`

	ID        int64        `bun:"id,pk,autoincrement"`
	PlayerID  int64        `bun:"player_id,notnull"`
	Sale      MarketAction `bun:"sale,notnull,default:0"`
	ItemType  uint16       `bun:"itemtype,notnull"`
	Amount    int64        `bun:"amount,notnull"`
	Price     int64        `bun:"price,notnull"`
	ExpiresAt int64        `bun:"expires_at,notnull"`
	Inserted  int64        `bun:"inserted,notnull"`
	State     OfferState   `bun:"state,notnull"`
}

// MarketStatisticsRow is one (item, action) group of accepted trades.
type MarketStatisticsRow struct {
	Sale     MarketAction `bun:"sale"`
	ItemType uint16       `bun:"itemtype"`
	Num      int64        `bun:"num_transactions"`
	Lowest   int64        `bun:"lowest_price"`
	Highest  int64        `bun:"highest_price"`
	Total    int64        `bun:"total_price"`
}
