package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/meelike-pricing/internal/model"
	"github.com/fairyhunter13/meelike-pricing/internal/pricing"
	"github.com/fairyhunter13/meelike-pricing/pkg/clock"
)

const (
	defaultBillLimit = 20
	maxBillLimit     = 100
)

// PricingService quotes prices and turns quotes into bills.
type PricingService struct {
	pool          TxBeginner
	catalogs      *pricing.Catalogs
	couponRepo    CouponRepositoryInterface
	flashSaleRepo FlashSaleRepositoryInterface
	billRepo      BillRepositoryInterface
	spend         *SpendTracker
	publisher     BillPublisher
	clock         clock.Clock
}

// NewPricingService creates a PricingService. publisher may be nil, in which
// case no bill.created events are sent.
func NewPricingService(
	pool TxBeginner,
	catalogs *pricing.Catalogs,
	couponRepo CouponRepositoryInterface,
	flashSaleRepo FlashSaleRepositoryInterface,
	billRepo BillRepositoryInterface,
	spend *SpendTracker,
	publisher BillPublisher,
	clk clock.Clock,
) *PricingService {
	return &PricingService{
		pool:          pool,
		catalogs:      catalogs,
		couponRepo:    couponRepo,
		flashSaleRepo: flashSaleRepo,
		billRepo:      billRepo,
		spend:         spend,
		publisher:     publisher,
		clock:         clk,
	}
}

// Quote prices a request without changing any state. A coupon that cannot be
// applied does not fail the quote; its status is reported on the quote.
func (s *PricingService) Quote(ctx context.Context, req *model.QuoteRequest) (*pricing.Quote, error) {
	if req == nil || req.Quantity == nil {
		return nil, ErrInvalidRequest
	}
	now := s.clock.Now()

	tier, err := s.resolveTier(ctx, req.Role, req.CustomerID)
	if err != nil {
		return nil, err
	}

	sale, err := s.flashSaleRepo.GetLiveForService(ctx, req.AgentID, req.ServiceID, now)
	if err != nil {
		return nil, fmt.Errorf("get flash sale: %w", err)
	}

	var coupon *model.Coupon
	if req.CouponCode != "" {
		coupon, err = s.couponRepo.GetByCode(ctx, req.AgentID, req.CouponCode)
		if err != nil {
			return nil, fmt.Errorf("get coupon: %w", err)
		}
	}

	quote := pricing.BuildQuote(pricing.QuoteInput{
		BasePrice: req.BasePrice,
		Tier:      tier,
		Coupon:    coupon,
		FlashSale: sale,
		Quantity:  *req.Quantity,
		Now:       now,
	})
	if req.CouponCode != "" && coupon == nil {
		quote.CouponStatus = pricing.CouponNotFound
	}
	return &quote, nil
}

// PlaceOrder prices the order against locked coupon and flash sale rows,
// stores the bill and redeems the coupon and sale slot in one transaction.
// Returns:
//   - *CouponRejectedError (matching ErrCouponRejected) if a supplied coupon cannot be applied
//   - ErrCouponExhausted if the coupon hit its usage limit
//   - ErrFlashSaleSoldOut if the flash sale has no slots left
func (s *PricingService) PlaceOrder(ctx context.Context, req *model.OrderRequest) (*model.Bill, error) {
	if req == nil || req.Quantity == nil {
		return nil, ErrInvalidRequest
	}
	now := s.clock.Now()

	tier, err := s.resolveTier(ctx, req.Role, req.CustomerID)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// 1. Lock the coupon row (SELECT FOR UPDATE)
	var coupon *model.Coupon
	if req.CouponCode != "" {
		coupon, err = s.couponRepo.GetByCodeForUpdate(ctx, tx, req.AgentID, req.CouponCode)
		if err != nil {
			if errors.Is(err, ErrCouponNotFound) {
				return nil, &CouponRejectedError{Code: model.NormalizeCode(req.CouponCode), Reason: pricing.CouponNotFound}
			}
			return nil, fmt.Errorf("get coupon for update: %w", err)
		}
	}

	// 2. Lock the live flash sale row, if any
	sale, err := s.flashSaleRepo.GetLiveForServiceForUpdate(ctx, tx, req.AgentID, req.ServiceID, now)
	if err != nil {
		return nil, fmt.Errorf("get flash sale for update: %w", err)
	}

	// 3. Price against the locked rows
	quote := pricing.BuildQuote(pricing.QuoteInput{
		BasePrice: req.BasePrice,
		Tier:      tier,
		Coupon:    coupon,
		FlashSale: sale,
		Quantity:  *req.Quantity,
		Now:       now,
	})
	if coupon != nil && quote.CouponStatus != pricing.CouponApplied {
		return nil, &CouponRejectedError{Code: coupon.Code, Reason: quote.CouponStatus}
	}

	// 4. Insert the bill
	bill := newBill(req, quote, now)
	if err := s.billRepo.Insert(ctx, tx, bill); err != nil {
		return nil, fmt.Errorf("insert bill: %w", err)
	}

	// 5. Redeem coupon and flash sale slot (guarded UPDATEs)
	if quote.CouponID != nil {
		if err := s.couponRepo.IncrementUsage(ctx, tx, *quote.CouponID); err != nil {
			return nil, fmt.Errorf("redeem coupon: %w", err)
		}
	}
	if quote.FlashSaleID != nil {
		if err := s.flashSaleRepo.IncrementSold(ctx, tx, *quote.FlashSaleID); err != nil {
			return nil, fmt.Errorf("take flash sale slot: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit order: %w", err)
	}

	s.spend.Invalidate(ctx, bill.CustomerID)
	if s.publisher != nil {
		if err := s.publisher.PublishBillCreated(ctx, bill); err != nil {
			log.Warn().Err(err).Str("bill_id", bill.ID).Msg("failed to publish bill.created")
		}
	}
	return bill, nil
}

// ListBills returns the customer's most recent bills.
// limit <= 0 selects the default page size; larger limits are capped.
func (s *PricingService) ListBills(ctx context.Context, customerID string, limit int) ([]model.Bill, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, ErrInvalidRequest
	}
	switch {
	case limit <= 0:
		limit = defaultBillLimit
	case limit > maxBillLimit:
		limit = maxBillLimit
	}

	bills, err := s.billRepo.ListByCustomer(ctx, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	return bills, nil
}

// resolveTier picks the agent tier when a role is given, the membership tier
// for the customer's cumulative spend when a customer is given, and the
// entry membership tier otherwise.
func (s *PricingService) resolveTier(ctx context.Context, role, customerID string) (model.Tier, error) {
	switch {
	case role != "":
		return s.catalogs.Agent.ResolveRole(role), nil
	case customerID != "":
		spend, err := s.spend.CumulativeSpend(ctx, customerID)
		if err != nil {
			return model.Tier{}, fmt.Errorf("resolve tier: %w", err)
		}
		return s.catalogs.Membership.Resolve(spend), nil
	default:
		return s.catalogs.Membership.Default(), nil
	}
}

func newBill(req *model.OrderRequest, quote pricing.Quote, now time.Time) *model.Bill {
	qty := decimal.NewFromInt(int64(quote.Quantity))
	actualCost := req.CostPrice.Mul(qty).Round(2)

	return &model.Bill{
		ID:                uuid.NewString(),
		AgentID:           req.AgentID,
		CustomerID:        req.CustomerID,
		ServiceID:         req.ServiceID,
		Quantity:          quote.Quantity,
		BasePrice:         quote.BasePrice,
		UnitPrice:         quote.UnitPrice,
		SalePrice:         quote.FinalPrice,
		CostPrice:         req.CostPrice,
		ActualCost:        actualCost,
		Profit:            quote.FinalPrice.Sub(actualCost),
		AgentDiscount:     quote.TierDiscount,
		FlashSaleDiscount: quote.FlashSaleDiscount,
		CouponDiscount:    quote.CouponDiscount,
		CouponCode:        quote.AppliedCouponCode,
		CouponID:          quote.CouponID,
		FlashSaleID:       quote.FlashSaleID,
		TierName:          quote.AppliedTierName,
		CreatedAt:         now,
	}
}
