package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/meelike-pricing/internal/model"
	"github.com/fairyhunter13/meelike-pricing/internal/pricing"
	"github.com/fairyhunter13/meelike-pricing/pkg/clock"
)

var maxPercentage = decimal.NewFromInt(100)

// CouponService provides business logic for coupon operations.
type CouponService struct {
	couponRepo CouponRepositoryInterface
	clock      clock.Clock
}

// NewCouponService creates a new CouponService with the given repository and clock.
func NewCouponService(couponRepo CouponRepositoryInterface, clk clock.Clock) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		clock:      clk,
	}
}

// Create creates a new coupon for agentID from the request.
// Returns ErrCouponExists if the agent already has a coupon with the same code.
// Returns ErrInvalidRequest if request data is nil or inconsistent.
func (s *CouponService) Create(ctx context.Context, agentID string, req *model.CreateCouponRequest) (*model.Coupon, error) {
	// Defense-in-depth: check for nil pointer even though handler validates
	if req == nil || agentID == "" {
		return nil, ErrInvalidRequest
	}
	if req.Type == model.DiscountPercentage && req.Value.GreaterThan(maxPercentage) {
		return nil, fmt.Errorf("%w: percentage value must not exceed 100", ErrInvalidRequest)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	coupon := &model.Coupon{
		ID:          uuid.NewString(),
		AgentID:     agentID,
		Code:        model.NormalizeCode(req.Code),
		Type:        req.Type,
		Value:       req.Value,
		MaxDiscount: req.MaxDiscount,
		MinPurchase: req.MinPurchase,
		UsageLimit:  req.UsageLimit,
		ValidFrom:   req.ValidFrom.UTC(),
		ValidUntil:  req.ValidUntil.UTC(),
		IsActive:    isActive,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.couponRepo.Insert(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// Get retrieves an agent's coupon by code.
// Returns ErrCouponNotFound if the coupon doesn't exist.
func (s *CouponService) Get(ctx context.Context, agentID, code string) (*model.Coupon, error) {
	coupon, err := s.couponRepo.GetByCode(ctx, agentID, code)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return coupon, nil
}

// Validate checks an agent's coupon against a subtotal without redeeming it.
// An unknown code is a NOT_FOUND verdict, not an error.
func (s *CouponService) Validate(ctx context.Context, agentID, code string, subtotal decimal.Decimal) (pricing.CouponResult, error) {
	coupon, err := s.couponRepo.GetByCode(ctx, agentID, code)
	if err != nil {
		return pricing.CouponResult{}, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return pricing.CouponResult{DiscountAmount: decimal.Zero, Reason: pricing.CouponNotFound}, nil
	}
	return pricing.ValidateCoupon(coupon, subtotal, s.clock.Now()), nil
}
