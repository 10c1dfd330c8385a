package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/meelike-pricing/internal/model"
)

// LoyaltyProgress describes where a cumulative spend sits on the ladder.
type LoyaltyProgress struct {
	Spend           decimal.Decimal `json:"spend"`
	CurrentTier     model.Tier      `json:"current_tier"`
	NextTier        *model.Tier     `json:"next_tier"`
	RemainingToNext decimal.Decimal `json:"remaining_to_next"`
	PercentToNext   decimal.Decimal `json:"percent_to_next"`
}

// Progress resolves the current tier for spend and how far it is from the next one.
// At the top tier NextTier is nil, RemainingToNext is 0 and PercentToNext is 100.
func (c *Catalog) Progress(spend decimal.Decimal) LoyaltyProgress {
	current := c.Resolve(spend)
	p := LoyaltyProgress{
		Spend:           spend,
		CurrentTier:     current,
		RemainingToNext: decimal.Zero,
		PercentToNext:   hundred,
	}

	next, ok := c.Next(current)
	if !ok {
		return p
	}
	p.NextTier = &next

	if remaining := next.Threshold.Sub(spend); remaining.IsPositive() {
		p.RemainingToNext = remaining
	}
	if next.Threshold.IsPositive() {
		p.PercentToNext = decimal.Min(hundred, spend.Div(next.Threshold).Mul(hundred)).Round(2)
	}
	return p
}
