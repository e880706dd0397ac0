package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// Upsert replaces the snapshot for the trip, keyed by trip ID.
	Upsert(ctx context.Context, db *gorm.DB, snapshot *TripPricing) error
	FindByTripID(ctx context.Context, db *gorm.DB, tenantID, tripID snowflake.ID) (*TripPricing, error)
}
