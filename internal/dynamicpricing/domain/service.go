package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*DynamicPricingRule, error)
	List(ctx context.Context) ([]DynamicPricingRule, error)
	Get(ctx context.Context, id string) (*DynamicPricingRule, error)
	Deactivate(ctx context.Context, id string) error

	// Matching returns the rules whose window covers now for the route.
	Matching(ctx context.Context, routeID string, now time.Time) ([]DynamicPricingRule, error)
}

type CreateRequest struct {
	Name            string     `json:"name"`
	RouteID         *string    `json:"route_id"`
	DaysOfWeek      []string   `json:"days_of_week"`
	StartTime       string     `json:"start_time"`
	EndTime         string     `json:"end_time"`
	Multiplier      *float64   `json:"multiplier"`
	FixedAdjustment float64    `json:"fixed_adjustment"`
	ActiveFrom      *time.Time `json:"active_from"`
	ActiveTo        *time.Time `json:"active_to"`
}

var (
	ErrInvalidTenant     = errors.New("invalid_tenant")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidWindow     = errors.New("invalid_time_window")
	ErrInvalidMultiplier = errors.New("invalid_multiplier")
	ErrRuleNotFound      = errors.New("dynamic_rule_not_found")
)
