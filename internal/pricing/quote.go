package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/meelike-pricing/internal/model"
)

// QuoteInput is everything BuildQuote needs. Coupon and FlashSale may be nil.
type QuoteInput struct {
	BasePrice decimal.Decimal
	Tier      model.Tier
	Coupon    *model.Coupon
	FlashSale *model.FlashSale
	Quantity  int
	Now       time.Time
}

// Quote is an immutable price breakdown. Discount lines are totals over the
// whole quantity and are always present, zero when nothing applied.
type Quote struct {
	BasePrice         decimal.Decimal `json:"base_price"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	FlashSaleDiscount decimal.Decimal `json:"flash_sale_discount"`
	TierDiscount      decimal.Decimal `json:"tier_discount"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	CouponDiscount    decimal.Decimal `json:"coupon_discount"`
	FinalPrice        decimal.Decimal `json:"final_price"`
	AppliedTierName   string          `json:"applied_tier_name"`
	AppliedCouponCode *string         `json:"applied_coupon_code,omitempty"`
	CouponID          *string         `json:"coupon_id,omitempty"`
	FlashSaleID       *string         `json:"flash_sale_id,omitempty"`
	CouponStatus      CouponStatus    `json:"coupon_status"`
}

// BuildQuote composes the final price with a fixed precedence:
//  1. an active flash sale replaces the base unit price;
//  2. the tier discount comes off that unit price;
//  3. unit price times quantity gives the subtotal;
//  4. the coupon discount comes off the subtotal;
//  5. the final price is floored at zero.
func BuildQuote(in QuoteInput) Quote {
	qty := decimal.NewFromInt(int64(in.Quantity))

	unit := in.BasePrice
	var flashSaleID *string
	if fs := ResolveFlashSale(in.FlashSale, in.Now); fs.Active {
		unit = fs.Price
		id := in.FlashSale.ID
		flashSaleID = &id
	}
	// A sale priced above the requested base still overrides it; the line never goes negative.
	flashSaleDiscount := decimal.Max(decimal.Zero, in.BasePrice.Sub(unit).Mul(qty))

	tierCut := percentOf(unit, in.Tier.DiscountPercent)
	unit = unit.Sub(tierCut)

	subtotal := roundMoney(unit.Mul(qty))

	coupon := ValidateCoupon(in.Coupon, subtotal, in.Now)

	final := subtotal.Sub(coupon.DiscountAmount)
	if final.IsNegative() {
		final = decimal.Zero
	}

	q := Quote{
		BasePrice:         in.BasePrice,
		Quantity:          in.Quantity,
		UnitPrice:         unit,
		FlashSaleDiscount: roundMoney(flashSaleDiscount),
		TierDiscount:      roundMoney(tierCut.Mul(qty)),
		Subtotal:          subtotal,
		CouponDiscount:    coupon.DiscountAmount,
		FinalPrice:        final,
		AppliedTierName:   in.Tier.Name,
		FlashSaleID:       flashSaleID,
		CouponStatus:      coupon.Status(),
	}
	if coupon.Valid {
		code, id := in.Coupon.Code, in.Coupon.ID
		q.AppliedCouponCode = &code
		q.CouponID = &id
	}
	return q
}
