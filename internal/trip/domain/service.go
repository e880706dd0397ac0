package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// TripContext is the assembled view of a trip that the pricing engine
// consumes: route, ordered stations and seat availability.
type TripContext struct {
	Trip     Trip
	Route    Route
	Stations []RouteStation
}

type Service interface {
	GetTripContext(ctx context.Context, tripID string) (*TripContext, error)
	RecomputeRouteDistance(ctx context.Context, routeID string) (float64, error)
}

var (
	ErrInvalidTenant = errors.New("invalid_tenant")
	ErrInvalidID     = errors.New("invalid_id")
	ErrTripNotFound  = errors.New("trip_not_found")
	ErrRouteNotFound = errors.New("route_not_found")
)

// StationIndex returns the position of a station along the ordered list,
// or -1 when the station is not on the route.
func StationIndex(stations []RouteStation, stationID snowflake.ID) int {
	for i, rs := range stations {
		if rs.StationID == stationID {
			return i
		}
	}
	return -1
}
