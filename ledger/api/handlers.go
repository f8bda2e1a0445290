package api

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mmomarket/marketd/internal/domain/game"
	"github.com/mmomarket/marketd/ledger/economy/market"
)

// ItemSearcher finds item types by name, e.g. the item catalog.
type ItemSearcher interface {
	Search(query string, limit int) []game.ItemType
}

type createOfferRequest struct {
	PlayerID  int64  `json:"player_id"`
	Action    string `json:"action"`
	ItemID    uint16 `json:"item_id"`
	Amount    int64  `json:"amount"`
	Price     int64  `json:"price"`
	Anonymous bool   `json:"anonymous"`
}

type acceptOfferRequest struct {
	PlayerID int64 `json:"player_id"`
	Amount   int64 `json:"amount"`
}

func parseAction(s string) (market.Action, bool) {
	switch strings.ToLower(s) {
	case "buy":
		return market.ActionBuy, true
	case "sell":
		return market.ActionSell, true
	}
	return 0, false
}

func parseItemID(s string) (uint16, bool) {
	id, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(id), true
}

func parseInt64(s string) (int64, bool) {
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err == nil
}

func (s *Server) health(c *fiber.Ctx) error {
	return sendSuccess(c, fiber.StatusOK, fiber.Map{
		"status":  "healthy",
		"version": s.version,
	}, "")
}

func (s *Server) browseItem(c *fiber.Ctx) error {
	itemID, ok := parseItemID(c.Params("item"))
	if !ok {
		return sendBadRequest(c, "invalid item id")
	}

	browse, err := s.market.BrowseItem(c.UserContext(), itemID)
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, browseResponse{
		ItemID:     browse.ItemID,
		BuyOffers:  toOffers(browse.BuyOffers),
		SellOffers: toOffers(browse.SellOffers),
		Purchase:   toStatistics(browse.Purchase),
		Sale:       toStatistics(browse.Sale),
	}, "")
}

func (s *Server) activeOffers(c *fiber.Ctx) error {
	action, ok := parseAction(c.Query("action"))
	if !ok {
		return sendBadRequest(c, "action must be buy or sell")
	}
	itemID, ok := parseItemID(c.Query("item"))
	if !ok {
		return sendBadRequest(c, "invalid item id")
	}

	offers, err := s.market.GetActiveOffers(c.UserContext(), action, itemID)
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, toOffers(offers), "")
}

func (s *Server) offerByCounter(c *fiber.Ctx) error {
	timestamp, ok := parseInt64(c.Params("timestamp"))
	if !ok {
		return sendBadRequest(c, "invalid timestamp")
	}
	counter, ok := parseItemID(c.Params("counter"))
	if !ok {
		return sendBadRequest(c, "invalid counter")
	}

	offer, err := s.market.GetOfferByCounter(c.UserContext(), timestamp, counter)
	if err != nil {
		return err
	}
	if !offer.Found() {
		return sendNotFound(c, "offer not found")
	}
	return sendSuccess(c, fiber.StatusOK, toOfferEx(offer), "")
}

func (s *Server) createOffer(c *fiber.Ctx) error {
	var req createOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return sendBadRequest(c, "invalid request body")
	}
	action, ok := parseAction(req.Action)
	if !ok {
		return sendBadRequest(c, "action must be buy or sell")
	}

	allowed, err := s.market.CanPostOffer(c.UserContext(), req.PlayerID)
	if err != nil {
		return err
	}
	if !allowed {
		return sendError(c, fiber.StatusConflict, "OFFER_LIMIT", "player has reached the offer limit")
	}

	offer, err := s.market.CreateOffer(c.UserContext(), req.PlayerID, action, req.ItemID, req.Amount, req.Price, req.Anonymous)
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusCreated, toOfferEx(offer), "Offer created")
}

func (s *Server) acceptOffer(c *fiber.Ctx) error {
	offerID, err := c.ParamsInt("id")
	if err != nil {
		return sendBadRequest(c, "invalid offer id")
	}
	var req acceptOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return sendBadRequest(c, "invalid request body")
	}

	remaining, err := s.market.FulfillOffer(c.UserContext(), int64(offerID), req.PlayerID, req.Amount)
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, fiber.Map{"remaining": remaining}, "Offer accepted")
}

func (s *Server) cancelOffer(c *fiber.Ctx) error {
	offerID, err := c.ParamsInt("id")
	if err != nil {
		return sendBadRequest(c, "invalid offer id")
	}
	playerID, ok := parseInt64(c.Query("player_id"))
	if !ok {
		return sendBadRequest(c, "invalid player id")
	}

	if err := s.market.CancelOffer(c.UserContext(), playerID, int64(offerID)); err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, nil, "Offer cancelled")
}

func (s *Server) ownOffers(c *fiber.Ctx) error {
	playerID, ok := parseInt64(c.Params("id"))
	if !ok {
		return sendBadRequest(c, "invalid player id")
	}
	action, ok := parseAction(c.Query("action"))
	if !ok {
		return sendBadRequest(c, "action must be buy or sell")
	}

	offers, err := s.market.GetOwnOffers(c.UserContext(), action, playerID)
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, toOffers(offers), "")
}

func (s *Server) ownHistory(c *fiber.Ctx) error {
	playerID, ok := parseInt64(c.Params("id"))
	if !ok {
		return sendBadRequest(c, "invalid player id")
	}
	action, ok := parseAction(c.Query("action"))
	if !ok {
		return sendBadRequest(c, "action must be buy or sell")
	}

	entries, err := s.market.GetOwnHistory(c.UserContext(), action, playerID)
	if err != nil {
		return err
	}
	out := make([]historyResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyResponse{
			ItemID:    e.ItemID,
			Amount:    e.Amount,
			Price:     e.Price,
			Timestamp: e.Timestamp,
			State:     e.State.String(),
		})
	}
	return sendSuccess(c, fiber.StatusOK, out, "")
}

func (s *Server) offerCount(c *fiber.Ctx) error {
	playerID, ok := parseInt64(c.Params("id"))
	if !ok {
		return sendBadRequest(c, "invalid player id")
	}
	count, err := s.market.GetPlayerOfferCount(c.UserContext(), playerID)
	if err != nil {
		return err
	}
	return sendSuccess(c, fiber.StatusOK, fiber.Map{"count": count}, "")
}

func (s *Server) itemStatistics(c *fiber.Ctx) error {
	itemID, ok := parseItemID(c.Params("item"))
	if !ok {
		return sendBadRequest(c, "invalid item id")
	}

	snap := s.statistics.Snapshot()
	resp := fiber.Map{"item_id": itemID, "version": snap.Version}
	if st, ok := snap.Purchase(itemID); ok {
		resp["purchase_statistics"] = toStatistics(&st)
	}
	if st, ok := snap.Sale(itemID); ok {
		resp["sale_statistics"] = toStatistics(&st)
	}
	return sendSuccess(c, fiber.StatusOK, resp, "")
}

func (s *Server) searchItems(c *fiber.Ctx) error {
	if s.items == nil {
		return sendNotFound(c, "no item catalog loaded")
	}
	query := c.Query("q")
	if query == "" {
		return sendBadRequest(c, "missing query")
	}

	items := s.items.Search(query, c.QueryInt("limit", 10))
	out := make([]fiber.Map, 0, len(items))
	for _, it := range items {
		out = append(out, fiber.Map{
			"id":        it.ID,
			"name":      it.Name,
			"stackable": it.Stackable,
			"charges":   it.Charges,
		})
	}
	return sendSuccess(c, fiber.StatusOK, out, "")
}
