package service

import (
	"errors"
	"fmt"

	"github.com/fairyhunter13/meelike-pricing/internal/pricing"
)

var (
	// ErrCouponExists is returned when an agent already has a coupon with the same code
	ErrCouponExists = errors.New("coupon already exists")

	// ErrCouponNotFound is returned when a coupon cannot be found
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrFlashSaleNotFound is returned when a flash sale cannot be found
	ErrFlashSaleNotFound = errors.New("flash sale not found")

	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrCouponRejected is returned when an order names a coupon that cannot be applied
	ErrCouponRejected = errors.New("coupon rejected")

	// ErrCouponExhausted is returned when a coupon redemption hits its usage limit
	ErrCouponExhausted = errors.New("coupon usage limit reached")

	// ErrFlashSaleSoldOut is returned when a flash sale has no remaining slots
	ErrFlashSaleSoldOut = errors.New("flash sale sold out")
)

// CouponRejectedError carries the reason an order's coupon was refused.
// It matches ErrCouponRejected with errors.Is.
type CouponRejectedError struct {
	Code   string
	Reason pricing.CouponStatus
}

func (e *CouponRejectedError) Error() string {
	return fmt.Sprintf("coupon %s rejected: %s", e.Code, e.Reason)
}

func (e *CouponRejectedError) Unwrap() error {
	return ErrCouponRejected
}
