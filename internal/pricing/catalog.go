// Package pricing resolves tiers, coupons and flash sales into a price quote.
// Everything here is pure: no I/O, no clocks, no shared mutable state.
package pricing

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/meelike-pricing/internal/model"
)

var (
	// ErrEmptyCatalog is returned when a catalog is built from no tiers.
	ErrEmptyCatalog = errors.New("tier catalog is empty")

	// ErrThresholdOrder is returned when two tiers share a threshold.
	ErrThresholdOrder = errors.New("tier thresholds must be strictly increasing")

	// ErrDiscountOrder is returned when a higher tier has a smaller discount than a lower one.
	ErrDiscountOrder = errors.New("tier discounts must not decrease")

	// ErrDiscountRange is returned when a tier discount is outside 0-100.
	ErrDiscountRange = errors.New("tier discount must be between 0 and 100")
)

var hundred = decimal.NewFromInt(100)

// Catalog is an immutable tier ladder ordered ascending by threshold.
type Catalog struct {
	tiers []model.Tier
}

// NewCatalog sorts the tiers by threshold and checks the ladder invariants.
func NewCatalog(tiers []model.Tier) (*Catalog, error) {
	if len(tiers) == 0 {
		return nil, ErrEmptyCatalog
	}

	sorted := make([]model.Tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Threshold.LessThan(sorted[j].Threshold)
	})

	for i, t := range sorted {
		if t.DiscountPercent.IsNegative() || t.DiscountPercent.GreaterThan(hundred) {
			return nil, fmt.Errorf("%w: tier %q has %s", ErrDiscountRange, t.Name, t.DiscountPercent)
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if !t.Threshold.GreaterThan(prev.Threshold) {
			return nil, fmt.Errorf("%w: %q and %q", ErrThresholdOrder, prev.Name, t.Name)
		}
		if t.DiscountPercent.LessThan(prev.DiscountPercent) {
			return nil, fmt.Errorf("%w: %q and %q", ErrDiscountOrder, prev.Name, t.Name)
		}
	}

	return &Catalog{tiers: sorted}, nil
}

// MustCatalog is NewCatalog for built-in ladders; it panics on an invalid ladder.
func MustCatalog(tiers []model.Tier) *Catalog {
	c, err := NewCatalog(tiers)
	if err != nil {
		panic(err)
	}
	return c
}

// Tiers returns a copy of the ladder, lowest tier first.
func (c *Catalog) Tiers() []model.Tier {
	out := make([]model.Tier, len(c.tiers))
	copy(out, c.tiers)
	return out
}

// Default returns the lowest tier.
func (c *Catalog) Default() model.Tier {
	return c.tiers[0]
}

// Resolve returns the highest tier whose threshold is at or below spend.
// Spend below every threshold resolves to the lowest tier.
func (c *Catalog) Resolve(spend decimal.Decimal) model.Tier {
	for i := len(c.tiers) - 1; i >= 0; i-- {
		if c.tiers[i].Threshold.LessThanOrEqual(spend) {
			return c.tiers[i]
		}
	}
	return c.tiers[0]
}

// ResolveRole returns the tier assigned to role, matched case-insensitively.
// Unknown roles resolve to the lowest tier.
func (c *Catalog) ResolveRole(role string) model.Tier {
	role = strings.TrimSpace(role)
	for i := len(c.tiers) - 1; i >= 0; i-- {
		if c.tiers[i].Role != "" && strings.EqualFold(c.tiers[i].Role, role) {
			return c.tiers[i]
		}
	}
	return c.tiers[0]
}

// Next returns the tier immediately above t, or false if t is the top tier.
func (c *Catalog) Next(t model.Tier) (model.Tier, bool) {
	for _, candidate := range c.tiers {
		if candidate.Threshold.GreaterThan(t.Threshold) {
			return candidate, true
		}
	}
	return model.Tier{}, false
}

// DefaultMembershipTiers is the spend ladder used when no catalog file is configured.
func DefaultMembershipTiers() []model.Tier {
	return []model.Tier{
		{Name: "Member", ThresholdType: model.ThresholdSpend, Threshold: decimal.Zero, DiscountPercent: decimal.Zero},
		{Name: "Silver", ThresholdType: model.ThresholdSpend, Threshold: decimal.NewFromInt(10000), DiscountPercent: decimal.NewFromInt(3)},
		{Name: "Gold", ThresholdType: model.ThresholdSpend, Threshold: decimal.NewFromInt(50000), DiscountPercent: decimal.NewFromInt(5)},
		{Name: "Platinum", ThresholdType: model.ThresholdSpend, Threshold: decimal.NewFromInt(100000), DiscountPercent: decimal.NewFromInt(10)},
	}
}

// DefaultAgentTiers is the role ladder used when no catalog file is configured.
func DefaultAgentTiers() []model.Tier {
	return []model.Tier{
		{Name: "Reseller", ThresholdType: model.ThresholdRole, Threshold: decimal.Zero, DiscountPercent: decimal.Zero, Role: "reseller"},
		{Name: "Agent", ThresholdType: model.ThresholdRole, Threshold: decimal.NewFromInt(1), DiscountPercent: decimal.NewFromInt(5), Role: "agent"},
		{Name: "Dealer", ThresholdType: model.ThresholdRole, Threshold: decimal.NewFromInt(2), DiscountPercent: decimal.NewFromInt(10), Role: "dealer"},
	}
}

// percentOf returns pct percent of amount.
func percentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// roundMoney rounds to satang.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
