package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// SpendTracker reads a customer's cumulative spend, serving from the cache
// when one is configured. Cache failures are logged and never fail a read.
type SpendTracker struct {
	bills SpendRepository
	cache SpendCache
}

// NewSpendTracker creates a SpendTracker. cache may be nil.
func NewSpendTracker(bills SpendRepository, cache SpendCache) *SpendTracker {
	return &SpendTracker{bills: bills, cache: cache}
}

// CumulativeSpend returns the sum of the customer's billed sale prices.
// A miss is filled only if no bill was recorded while the database was read.
func (t *SpendTracker) CumulativeSpend(ctx context.Context, customerID string) (decimal.Decimal, error) {
	var (
		generation int64
		fill       bool
	)
	if t.cache != nil {
		spend, gen, ok, err := t.cache.GetSpend(ctx, customerID)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("customer_id", customerID).Msg("spend cache read failed")
		case ok:
			return spend, nil
		default:
			generation, fill = gen, true
		}
	}

	spend, err := t.bills.SumSpendByCustomer(ctx, customerID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum customer spend: %w", err)
	}

	if fill {
		stored, err := t.cache.SetSpend(ctx, customerID, generation, spend)
		if err != nil {
			log.Warn().Err(err).Str("customer_id", customerID).Msg("spend cache write failed")
		} else if !stored {
			log.Debug().Str("customer_id", customerID).Msg("spend changed during read, not cached")
		}
	}
	return spend, nil
}

// Invalidate drops the cached spend after a new bill lands.
func (t *SpendTracker) Invalidate(ctx context.Context, customerID string) {
	if t.cache == nil {
		return
	}
	if err := t.cache.InvalidateSpend(ctx, customerID); err != nil {
		log.Warn().Err(err).Str("customer_id", customerID).Msg("spend cache invalidation failed")
	}
}
