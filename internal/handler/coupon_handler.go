package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/meelike-pricing/internal/model"
	"github.com/fairyhunter13/meelike-pricing/internal/pricing"
	"github.com/fairyhunter13/meelike-pricing/internal/service"
)

// CouponServiceInterface defines the interface for coupon business logic.
type CouponServiceInterface interface {
	Create(ctx context.Context, agentID string, req *model.CreateCouponRequest) (*model.Coupon, error)
	Get(ctx context.Context, agentID, code string) (*model.Coupon, error)
	Validate(ctx context.Context, agentID, code string, subtotal decimal.Decimal) (pricing.CouponResult, error)
}

// CouponHandler handles HTTP requests for coupon operations.
type CouponHandler struct {
	service   CouponServiceInterface
	validator *validator.Validate
}

// NewCouponHandler creates a new CouponHandler with the given service and validator.
func NewCouponHandler(svc CouponServiceInterface, v *validator.Validate) *CouponHandler {
	return &CouponHandler{service: svc, validator: v}
}

// CreateCoupon handles POST /api/agents/:agentId/coupons requests to create a new coupon.
func (h *CouponHandler) CreateCoupon(c *fiber.Ctx) error {
	agentID := c.Params("agentId")

	var req model.CreateCouponRequest

	// Parse JSON body
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}

	// Validate request
	if err := h.validator.Struct(req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, formatValidationError(err))
	}

	coupon, err := h.service.Create(c.Context(), agentID, &req)
	if err != nil {
		if errors.Is(err, service.ErrCouponExists) {
			return errorJSON(c, fiber.StatusConflict, "coupon already exists")
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		}
		log.Error().Err(err).
			Str("request_id", requestID(c)).
			Str("agent_id", agentID).
			Str("coupon_code", req.Code).
			Msg("failed to create coupon")
		return errorJSON(c, fiber.StatusInternalServerError, "internal server error")
	}

	log.Info().
		Str("agent_id", agentID).
		Str("coupon_code", coupon.Code).
		Str("type", string(coupon.Type)).
		Msg("coupon created")

	return c.Status(fiber.StatusCreated).JSON(coupon)
}

// GetCoupon handles GET /api/agents/:agentId/coupons/:code requests to retrieve coupon details.
func (h *CouponHandler) GetCoupon(c *fiber.Ctx) error {
	agentID, code := c.Params("agentId"), c.Params("code")
	if code == "" {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request: code is required")
	}

	coupon, err := h.service.Get(c.Context(), agentID, code)
	if err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "coupon not found")
		}
		log.Error().Err(err).
			Str("request_id", requestID(c)).
			Str("agent_id", agentID).
			Str("coupon_code", code).
			Msg("failed to get coupon")
		return errorJSON(c, fiber.StatusInternalServerError, "internal server error")
	}

	return c.JSON(coupon)
}

// ValidateCoupon handles POST /api/agents/:agentId/coupons/:code/validate.
// The verdict is always 200; rejection reasons are part of the body.
func (h *CouponHandler) ValidateCoupon(c *fiber.Ctx) error {
	agentID, code := c.Params("agentId"), c.Params("code")

	var req model.ValidateCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, formatValidationError(err))
	}

	result, err := h.service.Validate(c.Context(), agentID, code, req.Subtotal)
	if err != nil {
		log.Error().Err(err).
			Str("request_id", requestID(c)).
			Str("agent_id", agentID).
			Str("coupon_code", code).
			Msg("failed to validate coupon")
		return errorJSON(c, fiber.StatusInternalServerError, "internal server error")
	}

	return c.JSON(fiber.Map{
		"code":            model.NormalizeCode(code),
		"valid":           result.Valid,
		"discount_amount": result.DiscountAmount,
		"status":          result.Status(),
	})
}
