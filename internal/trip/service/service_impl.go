package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/farelane/farelane/internal/geo"
	"github.com/farelane/farelane/internal/tenantctx"
	tripdomain "github.com/farelane/farelane/internal/trip/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo tripdomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo tripdomain.Repository
}

func New(p Params) tripdomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("trip.service"),
		repo: p.Repo,
	}
}

func (s *Service) GetTripContext(ctx context.Context, tripID string) (*tripdomain.TripContext, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, tripdomain.ErrInvalidTenant
	}

	id, err := parseID(tripID)
	if err != nil {
		return nil, tripdomain.ErrInvalidID
	}

	trip, err := s.repo.FindTripByID(ctx, s.db, tenantID, id)
	if err != nil {
		return nil, err
	}
	if trip == nil || trip.Route == nil {
		return nil, tripdomain.ErrTripNotFound
	}

	stations, err := s.repo.FindRouteStations(ctx, s.db, trip.RouteID)
	if err != nil {
		return nil, err
	}

	return &tripdomain.TripContext{
		Trip:     *trip,
		Route:    *trip.Route,
		Stations: stations,
	}, nil
}

// RecomputeRouteDistance refreshes Route.DistanceKm from station
// coordinates. Admins call this after reordering or editing stops.
func (s *Service) RecomputeRouteDistance(ctx context.Context, routeID string) (float64, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return 0, tripdomain.ErrInvalidTenant
	}

	id, err := parseID(routeID)
	if err != nil {
		return 0, tripdomain.ErrInvalidID
	}

	route, err := s.repo.FindRouteByID(ctx, s.db, tenantID, id)
	if err != nil {
		return 0, err
	}
	if route == nil {
		return 0, tripdomain.ErrRouteNotFound
	}

	stations, err := s.repo.FindRouteStations(ctx, s.db, id)
	if err != nil {
		return 0, err
	}

	points := make([]geo.StationPoint, 0, len(stations))
	for _, rs := range stations {
		if rs.Station == nil {
			points = append(points, geo.StationPoint{})
			continue
		}
		points = append(points, geo.StationPoint{
			Latitude:  rs.Station.Latitude,
			Longitude: rs.Station.Longitude,
		})
	}

	distanceKm := geo.RouteDistance(points)
	if err := s.repo.UpdateRouteDistance(ctx, s.db, tenantID, id, distanceKm); err != nil {
		return 0, err
	}

	s.log.Info("route distance recomputed",
		zap.String("route_id", id.String()),
		zap.Float64("distance_km", distanceKm),
	)
	return distanceKm, nil
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
