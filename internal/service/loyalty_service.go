package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/meelike-pricing/internal/model"
	"github.com/fairyhunter13/meelike-pricing/internal/pricing"
)

// LoyaltyService reports tier ladders and a customer's progress along them.
type LoyaltyService struct {
	catalogs *pricing.Catalogs
	spend    *SpendTracker
}

// NewLoyaltyService creates a new LoyaltyService.
func NewLoyaltyService(catalogs *pricing.Catalogs, spend *SpendTracker) *LoyaltyService {
	return &LoyaltyService{catalogs: catalogs, spend: spend}
}

// Tiers returns both tier ladders in ascending order.
func (s *LoyaltyService) Tiers() model.TiersResponse {
	return model.TiersResponse{
		Membership: s.catalogs.Membership.Tiers(),
		Agent:      s.catalogs.Agent.Tiers(),
	}
}

// ProgressForCustomer computes membership progress from the customer's billed spend.
func (s *LoyaltyService) ProgressForCustomer(ctx context.Context, customerID string) (*pricing.LoyaltyProgress, error) {
	if customerID == "" {
		return nil, ErrInvalidRequest
	}
	spend, err := s.spend.CumulativeSpend(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("loyalty progress: %w", err)
	}
	p := s.catalogs.Membership.Progress(spend)
	return &p, nil
}

// ProgressForSpend computes membership progress for an explicit spend.
// Returns ErrInvalidRequest for a negative spend.
func (s *LoyaltyService) ProgressForSpend(spend decimal.Decimal) (*pricing.LoyaltyProgress, error) {
	if spend.IsNegative() {
		return nil, ErrInvalidRequest
	}
	p := s.catalogs.Membership.Progress(spend)
	return &p, nil
}
