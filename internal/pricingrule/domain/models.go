// Package domain contains persistence models for pricing rules and their
// route/station price overrides.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// RuleType selects the base-price strategy for a rule.
type RuleType string

const (
	FlatRate      RuleType = "FLAT_RATE"
	DistanceBased RuleType = "DISTANCE_BASED"
	StationBased  RuleType = "STATION_BASED"
	TimeBased     RuleType = "TIME_BASED"
	Dynamic       RuleType = "DYNAMIC"
)

// RuleStatus represents lifecycle states for a pricing rule.
type RuleStatus string

const (
	RuleStatusActive    RuleStatus = "ACTIVE"
	RuleStatusInactive  RuleStatus = "INACTIVE"
	RuleStatusScheduled RuleStatus = "SCHEDULED"
)

// PricingRule is a named fare policy. Exactly the configuration fields
// required by Type must be populated; Create enforces this.
type PricingRule struct {
	ID             snowflake.ID       `json:"id" gorm:"primaryKey"`
	TenantID       snowflake.ID       `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	Name           string             `json:"name" gorm:"type:text;not null"`
	Description    string             `json:"description,omitempty" gorm:"type:text"`
	Type           RuleType           `json:"type" gorm:"type:text;not null"`
	Status         RuleStatus         `json:"status" gorm:"type:text;not null"`
	Priority       int                `json:"priority" gorm:"not null;default:0"`
	IsDefault      bool               `json:"is_default" gorm:"not null;default:false"`
	Currency       string             `json:"currency" gorm:"type:text;not null;default:'USD'"`
	BasePrice      *float64           `json:"base_price,omitempty" gorm:"type:numeric"`
	PricePerKm     *float64           `json:"price_per_km,omitempty" gorm:"type:numeric"`
	MinPrice       *float64           `json:"min_price,omitempty" gorm:"type:numeric"`
	MaxPrice       *float64           `json:"max_price,omitempty" gorm:"type:numeric"`
	PeakMultiplier *float64           `json:"peak_multiplier,omitempty" gorm:"type:numeric"`
	PeakStartTime  *string            `json:"peak_start_time,omitempty" gorm:"type:text"`
	PeakEndTime    *string            `json:"peak_end_time,omitempty" gorm:"type:text"`
	ValidFrom      *time.Time         `json:"valid_from,omitempty" gorm:""`
	ValidUntil     *time.Time         `json:"valid_until,omitempty" gorm:""`
	ApplicableDays datatypes.JSON     `json:"applicable_days,omitempty" gorm:"type:jsonb"`
	Metadata       datatypes.JSONMap  `json:"metadata,omitempty" gorm:"type:jsonb"`
	RoutePricings  []RoutePricing     `json:"route_pricings,omitempty" gorm:"foreignKey:PricingRuleID"`
	StationPricings []StationPricing  `json:"station_pricings,omitempty" gorm:"foreignKey:PricingRuleID"`
	CreatedAt      time.Time          `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time          `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PricingRule) TableName() string { return "pricing_rules" }

// RoutePricing overrides a rule's base price for one route.
type RoutePricing struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	TenantID      snowflake.ID `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	PricingRuleID snowflake.ID `json:"pricing_rule_id" gorm:"not null;index"`
	RouteID       snowflake.ID `json:"route_id" gorm:"not null;index"`
	BasePrice     float64      `json:"base_price" gorm:"type:numeric;not null"`
	Currency      string       `json:"currency" gorm:"type:text;not null;default:'USD'"`
	CreatedAt     time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (RoutePricing) TableName() string { return "route_pricings" }

// StationPricing fixes a fare for a (from, to) station pair. StationCount
// is the number of stops spanned and doubles as a fallback key when no
// exact pair matches.
type StationPricing struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	TenantID      snowflake.ID `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	PricingRuleID snowflake.ID `json:"pricing_rule_id" gorm:"not null;index"`
	RouteID       snowflake.ID `json:"route_id" gorm:"not null;index"`
	FromStationID snowflake.ID `json:"from_station_id" gorm:"not null;index"`
	ToStationID   snowflake.ID `json:"to_station_id" gorm:"not null;index"`
	Price         float64      `json:"price" gorm:"type:numeric;not null"`
	StationCount  int          `json:"station_count" gorm:"not null;default:0"`
	Currency      string       `json:"currency" gorm:"type:text;not null;default:'USD'"`
	CreatedAt     time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (StationPricing) TableName() string { return "station_pricings" }
