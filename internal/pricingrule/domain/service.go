package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*PricingRule, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*PricingRule, error)
	List(ctx context.Context) ([]PricingRule, error)
	Get(ctx context.Context, id string) (*PricingRule, error)
	Deactivate(ctx context.Context, id string) error

	AddRoutePricing(ctx context.Context, ruleID string, req RoutePricingRequest) (*RoutePricing, error)
	AddStationPricing(ctx context.Context, ruleID string, req StationPricingRequest) (*StationPricing, error)

	// ResolveApplicable returns candidate rules for the tenant at the given
	// instant, best first. An empty result is ErrNoApplicablePricing.
	ResolveApplicable(ctx context.Context, routeID string, at time.Time) ([]PricingRule, error)
}

type CreateRequest struct {
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Type           RuleType       `json:"type"`
	Status         *RuleStatus    `json:"status"`
	Priority       int            `json:"priority"`
	IsDefault      *bool          `json:"is_default"`
	Currency       string         `json:"currency"`
	BasePrice      *float64       `json:"base_price"`
	PricePerKm     *float64       `json:"price_per_km"`
	MinPrice       *float64       `json:"min_price"`
	MaxPrice       *float64       `json:"max_price"`
	PeakMultiplier *float64       `json:"peak_multiplier"`
	PeakStartTime  *string        `json:"peak_start_time"`
	PeakEndTime    *string        `json:"peak_end_time"`
	ValidFrom      *time.Time     `json:"valid_from"`
	ValidUntil     *time.Time     `json:"valid_until"`
	ApplicableDays []string       `json:"applicable_days"`
	Metadata       map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	Name        *string     `json:"name"`
	Description *string     `json:"description"`
	Status      *RuleStatus `json:"status"`
	Priority    *int        `json:"priority"`
	IsDefault   *bool       `json:"is_default"`
	BasePrice   *float64    `json:"base_price"`
	PricePerKm  *float64    `json:"price_per_km"`
	MinPrice    *float64    `json:"min_price"`
	MaxPrice    *float64    `json:"max_price"`
	ValidFrom   *time.Time  `json:"valid_from"`
	ValidUntil  *time.Time  `json:"valid_until"`
}

type RoutePricingRequest struct {
	RouteID   string  `json:"route_id"`
	BasePrice float64 `json:"base_price"`
	Currency  string  `json:"currency"`
}

type StationPricingRequest struct {
	RouteID       string  `json:"route_id"`
	FromStationID string  `json:"from_station_id"`
	ToStationID   string  `json:"to_station_id"`
	Price         float64 `json:"price"`
	StationCount  int     `json:"station_count"`
	Currency      string  `json:"currency"`
}

var (
	ErrInvalidTenant        = errors.New("invalid_tenant")
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidName          = errors.New("invalid_name")
	ErrInvalidRuleType      = errors.New("invalid_rule_type")
	ErrInvalidRuleStatus    = errors.New("invalid_rule_status")
	ErrInvalidPeakWindow    = errors.New("invalid_peak_window")
	ErrInvalidValidityRange = errors.New("invalid_validity_range")
	ErrInvalidDays          = errors.New("invalid_applicable_days")
	ErrInvalidPrice         = errors.New("invalid_price")
	ErrMissingBasePrice     = errors.New("missing_base_price")
	ErrMissingPricePerKm    = errors.New("missing_price_per_km")
	ErrMissingPeakConfig    = errors.New("missing_peak_config")
	ErrRuleNotFound         = errors.New("pricing_rule_not_found")
	ErrNoApplicablePricing  = errors.New("no_applicable_pricing")
)
