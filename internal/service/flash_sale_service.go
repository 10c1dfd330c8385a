package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fairyhunter13/meelike-pricing/internal/model"
	"github.com/fairyhunter13/meelike-pricing/internal/pricing"
	"github.com/fairyhunter13/meelike-pricing/pkg/clock"
)

// FlashSaleService provides business logic for flash sale operations.
type FlashSaleService struct {
	flashSaleRepo FlashSaleRepositoryInterface
	clock         clock.Clock
}

// NewFlashSaleService creates a new FlashSaleService.
func NewFlashSaleService(flashSaleRepo FlashSaleRepositoryInterface, clk clock.Clock) *FlashSaleService {
	return &FlashSaleService{
		flashSaleRepo: flashSaleRepo,
		clock:         clk,
	}
}

// Create creates a new flash sale for agentID.
// Returns ErrInvalidRequest if the sale price is above the original price.
func (s *FlashSaleService) Create(ctx context.Context, agentID string, req *model.CreateFlashSaleRequest) (*model.FlashSale, error) {
	if req == nil || req.Quantity == nil || agentID == "" {
		return nil, ErrInvalidRequest
	}
	if req.SalePrice.GreaterThan(req.OriginalPrice) {
		return nil, fmt.Errorf("%w: sale price must not exceed original price", ErrInvalidRequest)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	sale := &model.FlashSale{
		ID:            uuid.NewString(),
		AgentID:       agentID,
		ServiceID:     req.ServiceID,
		OriginalPrice: req.OriginalPrice,
		SalePrice:     req.SalePrice,
		Quantity:      *req.Quantity,
		StartAt:       req.StartAt.UTC(),
		EndAt:         req.EndAt.UTC(),
		IsActive:      isActive,
		CreatedAt:     s.clock.Now(),
	}
	if err := s.flashSaleRepo.Insert(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

// Get retrieves an agent's flash sale with its live status at the current time.
// Returns ErrFlashSaleNotFound if the sale doesn't exist.
func (s *FlashSaleService) Get(ctx context.Context, agentID, id string) (*model.FlashSaleResponse, error) {
	sale, err := s.flashSaleRepo.GetByID(ctx, agentID, id)
	if err != nil {
		return nil, fmt.Errorf("get flash sale: %w", err)
	}
	if sale == nil {
		return nil, ErrFlashSaleNotFound
	}

	return &model.FlashSaleResponse{
		FlashSale: *sale,
		Remaining: sale.Remaining(),
		Active:    pricing.ResolveFlashSale(sale, s.clock.Now()).Active,
	}, nil
}
