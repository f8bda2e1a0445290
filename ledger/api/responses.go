package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mmomarket/marketd/ledger/economy/market"
)

// APIResponse is the envelope of every response.
type APIResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func sendSuccess(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func sendError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(APIResponse{
		Success:   false,
		Error:     &APIError{Code: code, Message: message},
		Timestamp: time.Now(),
	})
}

func sendBadRequest(c *fiber.Ctx, message string) error {
	return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", message)
}

func sendNotFound(c *fiber.Ctx, message string) error {
	return sendError(c, fiber.StatusNotFound, "NOT_FOUND", message)
}

type offerResponse struct {
	ItemID     uint16 `json:"item_id"`
	Amount     int64  `json:"amount"`
	Price      int64  `json:"price"`
	Timestamp  int64  `json:"timestamp"`
	Counter    uint16 `json:"counter"`
	PlayerName string `json:"player_name,omitempty"`
}

type offerExResponse struct {
	ID         int64  `json:"id"`
	Action     string `json:"action"`
	ItemID     uint16 `json:"item_id"`
	Amount     int64  `json:"amount"`
	Price      int64  `json:"price"`
	CreatedAt  int64  `json:"created_at"`
	Counter    uint16 `json:"counter"`
	PlayerID   int64  `json:"player_id"`
	PlayerName string `json:"player_name"`
	Anonymous  bool   `json:"anonymous"`
}

type historyResponse struct {
	ItemID    uint16 `json:"item_id"`
	Amount    int64  `json:"amount"`
	Price     int64  `json:"price"`
	Timestamp int64  `json:"timestamp"`
	State     string `json:"state"`
}

type statisticsResponse struct {
	NumTransactions int64 `json:"num_transactions"`
	LowestPrice     int64 `json:"lowest_price"`
	HighestPrice    int64 `json:"highest_price"`
	TotalPrice      int64 `json:"total_price"`
	AveragePrice    int64 `json:"average_price"`
}

type browseResponse struct {
	ItemID     uint16              `json:"item_id"`
	BuyOffers  []offerResponse     `json:"buy_offers"`
	SellOffers []offerResponse     `json:"sell_offers"`
	Purchase   *statisticsResponse `json:"purchase_statistics,omitempty"`
	Sale       *statisticsResponse `json:"sale_statistics,omitempty"`
}

func toOffers(offers []market.Offer) []offerResponse {
	out := make([]offerResponse, 0, len(offers))
	for _, o := range offers {
		out = append(out, offerResponse{
			ItemID:     o.ItemID,
			Amount:     o.Amount,
			Price:      o.Price,
			Timestamp:  o.Timestamp,
			Counter:    o.Counter,
			PlayerName: o.PlayerName,
		})
	}
	return out
}

func toOfferEx(o market.OfferEx) offerExResponse {
	return offerExResponse{
		ID:         o.ID,
		Action:     o.Action.String(),
		ItemID:     o.ItemID,
		Amount:     o.Amount,
		Price:      o.Price,
		CreatedAt:  o.CreatedAt,
		Counter:    o.Counter,
		PlayerID:   o.PlayerID,
		PlayerName: o.PlayerName,
		Anonymous:  o.Anonymous,
	}
}

func toStatistics(st *market.Statistics) *statisticsResponse {
	if st == nil {
		return nil
	}
	return &statisticsResponse{
		NumTransactions: st.NumTransactions,
		LowestPrice:     st.LowestPrice,
		HighestPrice:    st.HighestPrice,
		TotalPrice:      st.TotalPrice,
		AveragePrice:    st.AveragePrice(),
	}
}
