// Package domain contains the fare calculation result types and the trip
// pricing snapshot model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// LineItem is one human-readable entry of a price breakdown. Items keep
// the order in which adjustments were applied.
type LineItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Result is the engine's output for one calculation.
type Result struct {
	BasePrice            float64      `json:"base_price"`
	DistanceCharge       float64      `json:"distance_charge"`
	DynamicAdjustment    float64      `json:"dynamic_adjustment"`
	SubscriptionDiscount float64      `json:"subscription_discount"`
	PromoDiscount        float64      `json:"promo_discount"`
	TaxAmount            float64      `json:"tax_amount"`
	FinalPrice           float64      `json:"final_price"`
	Currency             string       `json:"currency"`
	AppliedRuleID        snowflake.ID `json:"applied_rule_id"`
	Breakdown            []LineItem   `json:"breakdown"`
}

// TripPricing snapshots the price actually applied to a trip. Written once
// per calculation and only replaced by an explicit re-application.
type TripPricing struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	TenantID      snowflake.ID `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	TripID        snowflake.ID `json:"trip_id" gorm:"not null;uniqueIndex:ux_trip_pricings_trip"`
	PricingRuleID snowflake.ID `json:"pricing_rule_id" gorm:"not null;index"`
	BasePrice     float64      `json:"base_price" gorm:"type:numeric;not null"`
	FinalPrice    float64      `json:"final_price" gorm:"type:numeric;not null"`
	Currency      string       `json:"currency" gorm:"type:text;not null"`
	AppliedAt     time.Time    `json:"applied_at" gorm:"not null"`
}

func (TripPricing) TableName() string { return "trip_pricings" }
