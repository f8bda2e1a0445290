package api

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mmomarket/marketd/ledger/economy/market"
)

// ErrorHandler turns handler errors into the JSON envelope. Market sentinel
// errors map to client errors, everything else is a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return sendError(c, fe.Code, "HTTP_ERROR", fe.Message)
	case errors.Is(err, market.ErrOfferNotFound):
		return sendNotFound(c, err.Error())
	case errors.Is(err, market.ErrInvalidOffer):
		return sendBadRequest(c, err.Error())
	case errors.Is(err, market.ErrNotOfferOwner):
		return sendError(c, fiber.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, market.ErrInsufficientAmount):
		return sendError(c, fiber.StatusConflict, "CONFLICT", err.Error())
	}

	slog.Error("Request failed",
		slog.String("type", "error"),
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Any("error", err))
	return sendError(c, fiber.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal Server Error")
}

// LoggingMiddleware logs one line per request, at warn for 4xx and error
// for 5xx.
func LoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		level := slog.LevelDebug
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		slog.Log(c.UserContext(), level, "HTTP request processed",
			slog.String("type", "sys"),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("took", time.Since(start)),
			slog.String("ip", c.IP()),
			slog.Int("size", len(c.Response().Body())))
		return nil
	}
}

func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "no-referrer")
		return c.Next()
	}
}
