package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FlashSale is a time-boxed sale price for one service, capped at Quantity orders.
type FlashSale struct {
	ID            string          `json:"id"`
	AgentID       string          `json:"agent_id"`
	ServiceID     string          `json:"service_id"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Quantity      int             `json:"quantity"`
	SoldCount     int             `json:"sold_count"`
	StartAt       time.Time       `json:"start_at"`
	EndAt         time.Time       `json:"end_at"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"-"`
}

// Remaining returns how many sale slots are left, never below zero.
func (f *FlashSale) Remaining() int {
	if f.SoldCount >= f.Quantity {
		return 0
	}
	return f.Quantity - f.SoldCount
}

// FlashSaleResponse is the API response DTO for GET /api/agents/:agentId/flash-sales/:id
type FlashSaleResponse struct {
	FlashSale
	Remaining int  `json:"remaining"`
	Active    bool `json:"active"`
}

// CreateFlashSaleRequest is the DTO for creating a flash sale
type CreateFlashSaleRequest struct {
	ServiceID     string          `json:"service_id" validate:"required,notblank,max=255"`
	OriginalPrice decimal.Decimal `json:"original_price" validate:"money,gt=0"`
	SalePrice     decimal.Decimal `json:"sale_price" validate:"money,gt=0"`
	Quantity      *int            `json:"quantity" validate:"required,gte=1"`
	StartAt       time.Time       `json:"start_at" validate:"required"`
	EndAt         time.Time       `json:"end_at" validate:"required,gtfield=StartAt"`
	IsActive      *bool           `json:"is_active"`
}
