package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindTripByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Trip, error)
	FindRouteByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Route, error)
	FindRouteStations(ctx context.Context, db *gorm.DB, routeID snowflake.ID) ([]RouteStation, error)
	UpdateRouteDistance(ctx context.Context, db *gorm.DB, tenantID, routeID snowflake.ID, distanceKm float64) error
}
