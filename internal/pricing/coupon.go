package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/meelike-pricing/internal/model"
)

// CouponStatus is the outcome of checking a coupon against an order.
type CouponStatus string

const (
	CouponApplied      CouponStatus = "APPLIED"
	CouponNoneProvided CouponStatus = "NONE_PROVIDED"
	CouponExpired      CouponStatus = "EXPIRED"
	CouponExhausted    CouponStatus = "EXHAUSTED"
	CouponBelowMinimum CouponStatus = "BELOW_MINIMUM"
	CouponInactive     CouponStatus = "INACTIVE"
	CouponNotFound     CouponStatus = "NOT_FOUND"
)

// CouponResult is the read-only verdict of ValidateCoupon.
// Reason is empty when Valid is true.
type CouponResult struct {
	Valid          bool            `json:"valid"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Reason         CouponStatus    `json:"reason,omitempty"`
}

// Status returns CouponApplied for a valid result and the rejection reason otherwise.
func (r CouponResult) Status() CouponStatus {
	if r.Valid {
		return CouponApplied
	}
	return r.Reason
}

func rejectCoupon(reason CouponStatus) CouponResult {
	return CouponResult{DiscountAmount: decimal.Zero, Reason: reason}
}

// ValidateCoupon checks coupon against an order subtotal at time now and
// computes the discount it grants. Checks run in a fixed order and the first
// failure wins. It never mutates the coupon; redeeming it is the caller's job.
func ValidateCoupon(coupon *model.Coupon, subtotal decimal.Decimal, now time.Time) CouponResult {
	if coupon == nil {
		return rejectCoupon(CouponNoneProvided)
	}
	if now.Before(coupon.ValidFrom) || now.After(coupon.ValidUntil) {
		return rejectCoupon(CouponExpired)
	}
	if coupon.UsageLimit != nil && coupon.UsageCount >= *coupon.UsageLimit {
		return rejectCoupon(CouponExhausted)
	}
	if coupon.MinPurchase != nil && subtotal.LessThan(*coupon.MinPurchase) {
		return rejectCoupon(CouponBelowMinimum)
	}
	if !coupon.IsActive {
		return rejectCoupon(CouponInactive)
	}

	var discount decimal.Decimal
	switch coupon.Type {
	case model.DiscountPercentage:
		discount = percentOf(subtotal, coupon.Value)
	default:
		discount = coupon.Value
	}

	if coupon.MaxDiscount != nil && discount.GreaterThan(*coupon.MaxDiscount) {
		discount = *coupon.MaxDiscount
	}
	discount = roundMoney(discount)
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	return CouponResult{Valid: true, DiscountAmount: discount}
}
