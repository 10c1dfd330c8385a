package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/meelike-pricing/internal/model"
	"github.com/fairyhunter13/meelike-pricing/internal/pricing"
)

// LoyaltyServiceInterface defines the interface for tier and loyalty lookups.
type LoyaltyServiceInterface interface {
	Tiers() model.TiersResponse
	ProgressForCustomer(ctx context.Context, customerID string) (*pricing.LoyaltyProgress, error)
	ProgressForSpend(spend decimal.Decimal) (*pricing.LoyaltyProgress, error)
}

// LoyaltyHandler handles HTTP requests for tiers and loyalty progress.
type LoyaltyHandler struct {
	service LoyaltyServiceInterface
}

// NewLoyaltyHandler creates a new LoyaltyHandler.
func NewLoyaltyHandler(svc LoyaltyServiceInterface) *LoyaltyHandler {
	return &LoyaltyHandler{service: svc}
}

// ListTiers handles GET /api/tiers.
func (h *LoyaltyHandler) ListTiers(c *fiber.Ctx) error {
	return c.JSON(h.service.Tiers())
}

// CustomerProgress handles GET /api/customers/:customerId/loyalty.
func (h *LoyaltyHandler) CustomerProgress(c *fiber.Ctx) error {
	customerID := c.Params("customerId")

	progress, err := h.service.ProgressForCustomer(c.Context(), customerID)
	if err != nil {
		log.Error().Err(err).
			Str("request_id", requestID(c)).
			Str("customer_id", customerID).
			Msg("failed to compute loyalty progress")
		return errorJSON(c, fiber.StatusInternalServerError, "internal server error")
	}

	return c.JSON(progress)
}

// SpendProgress handles GET /api/loyalty/progress?spend=N.
func (h *LoyaltyHandler) SpendProgress(c *fiber.Ctx) error {
	raw := c.Query("spend")
	if raw == "" {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request: spend is required")
	}
	spend, err := decimal.NewFromString(raw)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request: spend must be a number")
	}

	progress, err := h.service.ProgressForSpend(spend)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request: spend must be at least 0")
	}

	return c.JSON(progress)
}
