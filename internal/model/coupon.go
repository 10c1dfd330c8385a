package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType is the coupon discount strategy.
type DiscountType string

const (
	// DiscountPercentage takes Value percent off the order subtotal.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed takes a flat Value off the order subtotal.
	DiscountFixed DiscountType = "fixed"
)

// Coupon represents an agent-issued coupon.
// Optional limits are nil when unset.
type Coupon struct {
	ID          string           `json:"id"`
	AgentID     string           `json:"agent_id"`
	Code        string           `json:"code"`
	Type        DiscountType     `json:"type"`
	Value       decimal.Decimal  `json:"value"`
	MaxDiscount *decimal.Decimal `json:"max_discount,omitempty"`
	MinPurchase *decimal.Decimal `json:"min_purchase,omitempty"`
	UsageLimit  *int             `json:"usage_limit,omitempty"`
	UsageCount  int              `json:"usage_count"`
	ValidFrom   time.Time        `json:"valid_from"`
	ValidUntil  time.Time        `json:"valid_until"`
	IsActive    bool             `json:"is_active"`
	CreatedAt   time.Time        `json:"-"` // Not exposed in API
}

// NormalizeCode returns the canonical (case-insensitive) form of a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreateCouponRequest is the DTO for creating a coupon
type CreateCouponRequest struct {
	Code        string           `json:"code" validate:"required,notblank,couponcode,max=64"`
	Type        DiscountType     `json:"type" validate:"required,oneof=percentage fixed"`
	Value       decimal.Decimal  `json:"value" validate:"money,gt=0"`
	MaxDiscount *decimal.Decimal `json:"max_discount" validate:"omitempty,money,gt=0"`
	MinPurchase *decimal.Decimal `json:"min_purchase" validate:"omitempty,money,gte=0"`
	UsageLimit  *int             `json:"usage_limit" validate:"omitempty,gte=1"`
	ValidFrom   time.Time        `json:"valid_from" validate:"required"`
	ValidUntil  time.Time        `json:"valid_until" validate:"required,gtfield=ValidFrom"`
	IsActive    *bool            `json:"is_active"`
}

// ValidateCouponRequest is the DTO for checking a coupon against an order subtotal.
type ValidateCouponRequest struct {
	Subtotal decimal.Decimal `json:"subtotal" validate:"money,gte=0"`
}
