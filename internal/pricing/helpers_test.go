package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/meelike-pricing/internal/model"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(i int) *int {
	return &i
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

func spendTier(name string, threshold, discount int64) model.Tier {
	return model.Tier{
		Name:            name,
		ThresholdType:   model.ThresholdSpend,
		Threshold:       decimal.NewFromInt(threshold),
		DiscountPercent: decimal.NewFromInt(discount),
	}
}

func validCoupon() *model.Coupon {
	return &model.Coupon{
		ID:         "c-1",
		AgentID:    "agent-001",
		Code:       "SAVE10",
		Type:       model.DiscountPercentage,
		Value:      dec("10"),
		ValidFrom:  testNow.Add(-24 * time.Hour),
		ValidUntil: testNow.Add(24 * time.Hour),
		IsActive:   true,
	}
}

func liveFlashSale() *model.FlashSale {
	return &model.FlashSale{
		ID:            "fs-1",
		AgentID:       "agent-001",
		ServiceID:     "svc-like",
		OriginalPrice: dec("150"),
		SalePrice:     dec("80"),
		Quantity:      10,
		SoldCount:     0,
		StartAt:       testNow.Add(-time.Hour),
		EndAt:         testNow.Add(time.Hour),
		IsActive:      true,
	}
}
