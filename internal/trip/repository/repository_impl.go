package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	tripdomain "github.com/farelane/farelane/internal/trip/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() tripdomain.Repository {
	return &repo{}
}

func (r *repo) FindTripByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*tripdomain.Trip, error) {
	var trip tripdomain.Trip
	err := db.WithContext(ctx).
		Preload("Route").
		Preload("Bus").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&trip).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trip, nil
}

func (r *repo) FindRouteByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*tripdomain.Route, error) {
	var route tripdomain.Route
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&route).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &route, nil
}

func (r *repo) FindRouteStations(ctx context.Context, db *gorm.DB, routeID snowflake.ID) ([]tripdomain.RouteStation, error) {
	var stations []tripdomain.RouteStation
	err := db.WithContext(ctx).
		Preload("Station").
		Where("route_id = ?", routeID).
		Order("sequence ASC").
		Find(&stations).Error
	if err != nil {
		return nil, err
	}
	return stations, nil
}

func (r *repo) UpdateRouteDistance(ctx context.Context, db *gorm.DB, tenantID, routeID snowflake.ID, distanceKm float64) error {
	return db.WithContext(ctx).
		Model(&tripdomain.Route{}).
		Where("tenant_id = ? AND id = ?", tenantID, routeID).
		Update("distance_km", distanceKm).Error
}
