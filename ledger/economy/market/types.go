package market

import (
	"context"
	"errors"
	"time"

	"github.com/mmomarket/marketd/ledger/database/models"
)

type Action = models.MarketAction

const (
	ActionBuy  = models.MarketActionBuy
	ActionSell = models.MarketActionSell
)

type OfferState = models.OfferState

const (
	OfferStateActive     = models.OfferStateActive
	OfferStateCancelled  = models.OfferStateCancelled
	OfferStateExpired    = models.OfferStateExpired
	OfferStateAccepted   = models.OfferStateAccepted
	OfferStateAcceptedEx = models.OfferStateAcceptedEx
)

var (
	ErrOfferNotFound      = errors.New("market offer not found")
	ErrInsufficientAmount = errors.New("market offer has less amount than requested")
	ErrInvalidOffer       = errors.New("invalid market offer")
	ErrNotOfferOwner      = errors.New("market offer belongs to another player")
	ErrSweeperRunning     = errors.New("expiry sweeper already running")
)

// Offer is a listing as shown to players. Timestamp is the expiry time and,
// with Counter, forms the offer's external handle.
type Offer struct {
	ItemID     uint16
	Amount     int64
	Price      int64
	Timestamp  int64
	Counter    uint16
	PlayerName string
}

// OfferEx is a fully resolved offer. The zero value (ID 0) means not found.
type OfferEx struct {
	ID         int64
	Action     Action
	ItemID     uint16
	Amount     int64
	Price      int64
	CreatedAt  int64
	Counter    uint16
	PlayerID   int64
	PlayerName string
	Anonymous  bool
}

func (o OfferEx) Found() bool {
	return o.ID != 0
}

type HistoryOffer struct {
	ItemID    uint16
	Amount    int64
	Price     int64
	Timestamp int64
	State     OfferState
}

// ItemBrowse is everything the market window shows for one item.
type ItemBrowse struct {
	ItemID     uint16
	BuyOffers  []Offer
	SellOffers []Offer
	Purchase   *Statistics
	Sale       *Statistics
}

// TaskSubmitter runs work off the caller's path, e.g. database.TaskQueue.
type TaskSubmitter interface {
	SubmitWithCallback(ctx context.Context, name string, fn func(ctx context.Context) error, onComplete func(error), timeout time.Duration) error
}

// NameSource resolves player ids to names, e.g. the player repository.
type NameSource interface {
	GetNames(ctx context.Context, ids []int64) (map[int64]string, error)
}
