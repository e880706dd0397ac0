package domain

import (
	"context"
	"errors"
)

type Service interface {
	// CalculateTripPrice runs rule resolution and the base-price strategy
	// only, for preview and quoting. No adjustments, no side effects.
	CalculateTripPrice(ctx context.Context, req TripPriceRequest) (*Result, error)

	// CalculateBookingPrice runs the full pipeline: base price, dynamic
	// adjustments, subscription discount, promo code, tax. On success it
	// writes the trip pricing snapshot and, when a promo code was applied,
	// redeems it in the same transaction.
	CalculateBookingPrice(ctx context.Context, req BookingPriceRequest) (*Result, error)

	// ReapplyTripPricing recalculates and overwrites an existing snapshot.
	ReapplyTripPricing(ctx context.Context, tripID string) (*Result, error)
}

type TripPriceRequest struct {
	TripID        string `json:"trip_id"`
	FromStationID string `json:"from_station_id,omitempty"`
	ToStationID   string `json:"to_station_id,omitempty"`
}

type BookingPriceRequest struct {
	TripID        string `json:"trip_id"`
	PassengerID   string `json:"passenger_id"`
	FromStationID string `json:"from_station_id,omitempty"`
	ToStationID   string `json:"to_station_id,omitempty"`
	PromoCode     string `json:"promo_code,omitempty"`
}

var (
	ErrInvalidTenant       = errors.New("invalid_tenant")
	ErrInvalidID           = errors.New("invalid_id")
	ErrTripNotFound        = errors.New("trip_not_found")
	ErrNoApplicablePricing = errors.New("no_applicable_pricing")
	ErrInvalidRuleConfig   = errors.New("invalid_rule_configuration")
	ErrUnableToCalculate   = errors.New("unable_to_calculate_price")
	ErrMissingStations     = errors.New("missing_station_pair")
	ErrStationNotOnRoute   = errors.New("station_not_on_route")
	ErrNoStationPricing    = errors.New("no_station_pricing")
	ErrMissingDistance     = errors.New("missing_route_distance")
	ErrDiscountNotApplied  = errors.New("discount_not_applied")
	ErrReapplyInProgress   = errors.New("reapply_in_progress")
)
