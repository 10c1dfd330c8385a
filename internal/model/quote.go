package model

import "github.com/shopspring/decimal"

// QuoteRequest is the DTO for POST /api/quotes
type QuoteRequest struct {
	AgentID    string          `json:"agent_id" validate:"required,notblank,max=255"`
	CustomerID string          `json:"customer_id" validate:"omitempty,notblank,max=255"`
	ServiceID  string          `json:"service_id" validate:"required,notblank,max=255"`
	BasePrice  decimal.Decimal `json:"base_price" validate:"money,gte=0"`
	Quantity   *int            `json:"quantity" validate:"required,gte=1"`
	CouponCode string          `json:"coupon_code" validate:"omitempty,couponcode,max=64"`
	Role       string          `json:"role" validate:"omitempty,notblank,max=64"`
}

// OrderRequest is the DTO for POST /api/orders
type OrderRequest struct {
	AgentID    string          `json:"agent_id" validate:"required,notblank,max=255"`
	CustomerID string          `json:"customer_id" validate:"required,notblank,max=255"`
	ServiceID  string          `json:"service_id" validate:"required,notblank,max=255"`
	BasePrice  decimal.Decimal `json:"base_price" validate:"money,gte=0"`
	CostPrice  decimal.Decimal `json:"cost_price" validate:"money,gte=0"`
	Quantity   *int            `json:"quantity" validate:"required,gte=1"`
	CouponCode string          `json:"coupon_code" validate:"omitempty,couponcode,max=64"`
	Role       string          `json:"role" validate:"omitempty,notblank,max=64"`
}

// QuoteRequest returns the pricing part of the order.
func (r *OrderRequest) QuoteRequest() *QuoteRequest {
	return &QuoteRequest{
		AgentID:    r.AgentID,
		CustomerID: r.CustomerID,
		ServiceID:  r.ServiceID,
		BasePrice:  r.BasePrice,
		Quantity:   r.Quantity,
		CouponCode: r.CouponCode,
		Role:       r.Role,
	}
}
