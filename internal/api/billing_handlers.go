package api

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/trackhub/backend/internal/db"
)

type createCheckoutInput struct {
	Credits int `json:"credits"`
}

// CreateCheckout opens a Stripe checkout session for buying credits and
// returns the URL the browser should navigate to.
func (h *Handler) CreateCheckout(c fiber.Ctx) error {
	if !h.billingSvc.Enabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "billing is not configured"})
	}

	var input createCheckoutInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if input.Credits <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "credits must be positive"})
	}

	url, err := h.billingSvc.CreateCheckout(userID(c), input.Credits)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID(c)).Msg("checkout creation failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to create checkout session"})
	}
	return c.JSON(fiber.Map{"url": url})
}

// GetTransactions returns the caller's credit purchase history.
func (h *Handler) GetTransactions(c fiber.Ctx) error {
	txs, err := db.ListTransactions(c.Context(), h.dbClient, userID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(txs)
}

// StripeWebhook applies completed checkouts to credit balances. Stripe
// retries deliveries, so the credit write is keyed by session id and lands
// at most once; replays return 200 without moving the balance.
func (h *Handler) StripeWebhook(c fiber.Ctx) error {
	done, err := h.billingSvc.ParseWebhook(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		log.Warn().Err(err).Msg("rejected stripe webhook")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid webhook"})
	}
	if done == nil {
		return c.SendStatus(fiber.StatusOK)
	}

	if err := db.AddCredits(c.Context(), h.dbClient, done.UserID, done.Credits, done.SessionID); err != nil {
		log.Error().Err(err).Str("session_id", done.SessionID).Msg("credit apply failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to apply credits"})
	}

	log.Info().
		Str("user_id", done.UserID).
		Int("credits", done.Credits).
		Str("session_id", done.SessionID).
		Msg("credits purchased")
	return c.SendStatus(fiber.StatusOK)
}
