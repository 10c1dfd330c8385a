package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bill is the persisted record of a placed order. The pricing fields are a
// snapshot of the quote at creation time and are never updated.
type Bill struct {
	ID                string          `json:"id"`
	AgentID           string          `json:"agent_id"`
	CustomerID        string          `json:"customer_id"`
	ServiceID         string          `json:"service_id"`
	Quantity          int             `json:"quantity"`
	BasePrice         decimal.Decimal `json:"base_price"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	SalePrice         decimal.Decimal `json:"sale_price"`
	CostPrice         decimal.Decimal `json:"cost_price"`
	ActualCost        decimal.Decimal `json:"actual_cost"`
	Profit            decimal.Decimal `json:"profit"`
	AgentDiscount     decimal.Decimal `json:"agent_discount"`
	FlashSaleDiscount decimal.Decimal `json:"flash_sale_discount"`
	CouponDiscount    decimal.Decimal `json:"coupon_discount"`
	CouponCode        *string         `json:"coupon_code,omitempty"`
	CouponID          *string         `json:"coupon_id,omitempty"`
	FlashSaleID       *string         `json:"flash_sale_id,omitempty"`
	TierName          string          `json:"tier_name"`
	CreatedAt         time.Time       `json:"created_at"`
}
