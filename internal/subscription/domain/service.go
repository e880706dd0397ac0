package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	CreatePlan(ctx context.Context, req CreatePlanRequest) (*SubscriptionPlan, error)
	ListPlans(ctx context.Context) ([]SubscriptionPlan, error)
	Subscribe(ctx context.Context, req SubscribeRequest) (*Subscription, error)
	Get(ctx context.Context, id string) (*Subscription, error)

	// ActiveDiscountPercent returns the plan discount for the passenger's
	// active subscription at the given instant, or false when none applies.
	ActiveDiscountPercent(ctx context.Context, passengerID string, at time.Time) (float64, bool, error)
}

type CreatePlanRequest struct {
	Name               string  `json:"name"`
	DiscountPercentage float64 `json:"discount_percentage"`
	DurationDays       int     `json:"duration_days"`
	Price              float64 `json:"price"`
}

type SubscribeRequest struct {
	PassengerID string     `json:"passenger_id"`
	PlanID      string     `json:"plan_id"`
	StartAt     *time.Time `json:"start_at"`
}

var (
	ErrInvalidTenant       = errors.New("invalid_tenant")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidDiscount     = errors.New("invalid_discount_percentage")
	ErrInvalidDuration     = errors.New("invalid_duration")
	ErrPlanNotFound        = errors.New("plan_not_found")
	ErrSubscriptionNotFound = errors.New("subscription_not_found")
)
