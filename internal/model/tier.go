package model

import "github.com/shopspring/decimal"

// ThresholdType says what a tier threshold is measured against.
type ThresholdType string

const (
	// ThresholdSpend tiers are reached by cumulative spend.
	ThresholdSpend ThresholdType = "spend"
	// ThresholdRole tiers are assigned by account role; Threshold is the role rank.
	ThresholdRole ThresholdType = "role"
)

// Tier is one step of a membership or agent discount ladder.
type Tier struct {
	Name            string          `json:"name"`
	ThresholdType   ThresholdType   `json:"threshold_type"`
	Threshold       decimal.Decimal `json:"threshold"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Role            string          `json:"role,omitempty"`
}

// TiersResponse is the API response DTO for GET /api/tiers
type TiersResponse struct {
	Membership []Tier `json:"membership"`
	Agent      []Tier `json:"agent"`
}
