package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/meelike-pricing/internal/model"
	"github.com/fairyhunter13/meelike-pricing/internal/pricing"
	"github.com/fairyhunter13/meelike-pricing/internal/service"
)

// PricingServiceInterface defines the interface for quoting and ordering.
type PricingServiceInterface interface {
	Quote(ctx context.Context, req *model.QuoteRequest) (*pricing.Quote, error)
	PlaceOrder(ctx context.Context, req *model.OrderRequest) (*model.Bill, error)
	ListBills(ctx context.Context, customerID string, limit int) ([]model.Bill, error)
}

// OrderHandler handles HTTP requests for quotes, orders and bills.
type OrderHandler struct {
	service   PricingServiceInterface
	validator *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc PricingServiceInterface, v *validator.Validate) *OrderHandler {
	return &OrderHandler{service: svc, validator: v}
}

// Quote handles POST /api/quotes. Nothing is persisted.
func (h *OrderHandler) Quote(c *fiber.Ctx) error {
	var req model.QuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, formatValidationError(err))
	}

	quote, err := h.service.Quote(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return errorJSON(c, fiber.StatusBadRequest, "invalid request")
		}
		log.Error().Err(err).
			Str("request_id", requestID(c)).
			Str("agent_id", req.AgentID).
			Str("service_id", req.ServiceID).
			Msg("failed to build quote")
		return errorJSON(c, fiber.StatusInternalServerError, "internal server error")
	}

	return c.JSON(quote)
}

// PlaceOrder handles POST /api/orders.
// Returns 201 with the bill, 422 when the supplied coupon cannot be applied,
// and 409 when a coupon or flash sale ran out while the order was placed.
func (h *OrderHandler) PlaceOrder(c *fiber.Ctx) error {
	var req model.OrderRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, formatValidationError(err))
	}

	bill, err := h.service.PlaceOrder(c.Context(), &req)
	if err != nil {
		var rejected *service.CouponRejectedError
		switch {
		case errors.As(err, &rejected):
			log.Info().
				Str("request_id", requestID(c)).
				Str("customer_id", req.CustomerID).
				Str("coupon_code", rejected.Code).
				Str("reason", string(rejected.Reason)).
				Msg("order coupon rejected")
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  "coupon rejected",
				"reason": rejected.Reason,
			})
		case errors.Is(err, service.ErrCouponExhausted):
			return errorJSON(c, fiber.StatusConflict, "coupon usage limit reached")
		case errors.Is(err, service.ErrFlashSaleSoldOut):
			return errorJSON(c, fiber.StatusConflict, "flash sale sold out")
		case errors.Is(err, service.ErrInvalidRequest):
			return errorJSON(c, fiber.StatusBadRequest, "invalid request")
		}
		log.Error().Err(err).
			Str("request_id", requestID(c)).
			Str("agent_id", req.AgentID).
			Str("customer_id", req.CustomerID).
			Str("service_id", req.ServiceID).
			Msg("failed to place order")
		return errorJSON(c, fiber.StatusInternalServerError, "internal server error")
	}

	log.Info().
		Str("bill_id", bill.ID).
		Str("customer_id", bill.CustomerID).
		Str("tier", bill.TierName).
		Str("sale_price", bill.SalePrice.StringFixed(2)).
		Msg("order placed")

	return c.Status(fiber.StatusCreated).JSON(bill)
}

// ListBills handles GET /api/customers/:customerId/bills?limit=N.
func (h *OrderHandler) ListBills(c *fiber.Ctx) error {
	customerID := c.Params("customerId")

	bills, err := h.service.ListBills(c.Context(), customerID, c.QueryInt("limit", 0))
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return errorJSON(c, fiber.StatusBadRequest, "invalid request: customer_id is required")
		}
		log.Error().Err(err).
			Str("request_id", requestID(c)).
			Str("customer_id", customerID).
			Msg("failed to list bills")
		return errorJSON(c, fiber.StatusInternalServerError, "internal server error")
	}

	return c.JSON(bills)
}
