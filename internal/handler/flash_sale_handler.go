package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/meelike-pricing/internal/model"
	"github.com/fairyhunter13/meelike-pricing/internal/service"
)

// FlashSaleServiceInterface defines the interface for flash sale business logic.
type FlashSaleServiceInterface interface {
	Create(ctx context.Context, agentID string, req *model.CreateFlashSaleRequest) (*model.FlashSale, error)
	Get(ctx context.Context, agentID, id string) (*model.FlashSaleResponse, error)
}

// FlashSaleHandler handles HTTP requests for flash sale operations.
type FlashSaleHandler struct {
	service   FlashSaleServiceInterface
	validator *validator.Validate
}

// NewFlashSaleHandler creates a new FlashSaleHandler.
func NewFlashSaleHandler(svc FlashSaleServiceInterface, v *validator.Validate) *FlashSaleHandler {
	return &FlashSaleHandler{service: svc, validator: v}
}

// CreateFlashSale handles POST /api/agents/:agentId/flash-sales.
func (h *FlashSaleHandler) CreateFlashSale(c *fiber.Ctx) error {
	agentID := c.Params("agentId")

	var req model.CreateFlashSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, formatValidationError(err))
	}

	sale, err := h.service.Create(c.Context(), agentID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		}
		log.Error().Err(err).
			Str("request_id", requestID(c)).
			Str("agent_id", agentID).
			Str("service_id", req.ServiceID).
			Msg("failed to create flash sale")
		return errorJSON(c, fiber.StatusInternalServerError, "internal server error")
	}

	log.Info().
		Str("agent_id", agentID).
		Str("flash_sale_id", sale.ID).
		Str("service_id", sale.ServiceID).
		Int("quantity", sale.Quantity).
		Msg("flash sale created")

	return c.Status(fiber.StatusCreated).JSON(sale)
}

// GetFlashSale handles GET /api/agents/:agentId/flash-sales/:id.
func (h *FlashSaleHandler) GetFlashSale(c *fiber.Ctx) error {
	agentID, id := c.Params("agentId"), c.Params("id")

	sale, err := h.service.Get(c.Context(), agentID, id)
	if err != nil {
		if errors.Is(err, service.ErrFlashSaleNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "flash sale not found")
		}
		log.Error().Err(err).
			Str("request_id", requestID(c)).
			Str("agent_id", agentID).
			Str("flash_sale_id", id).
			Msg("failed to get flash sale")
		return errorJSON(c, fiber.StatusInternalServerError, "internal server error")
	}

	return c.JSON(sale)
}
