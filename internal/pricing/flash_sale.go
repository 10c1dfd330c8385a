package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/meelike-pricing/internal/model"
)

// FlashSaleResult says whether a flash sale overrides the price right now.
type FlashSaleResult struct {
	Active bool            `json:"active"`
	Price  decimal.Decimal `json:"price"`
}

// ResolveFlashSale reports the sale price when sale is enabled, now lies within
// [StartAt, EndAt] and slots remain. SoldCount == Quantity counts as sold out.
func ResolveFlashSale(sale *model.FlashSale, now time.Time) FlashSaleResult {
	if sale == nil || !sale.IsActive {
		return FlashSaleResult{}
	}
	if now.Before(sale.StartAt) || now.After(sale.EndAt) {
		return FlashSaleResult{}
	}
	if sale.SoldCount >= sale.Quantity {
		return FlashSaleResult{}
	}
	return FlashSaleResult{Active: true, Price: sale.SalePrice}
}
