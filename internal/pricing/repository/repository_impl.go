package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	pricingdomain "github.com/farelane/farelane/internal/pricing/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() pricingdomain.Repository {
	return &repo{}
}

// Upsert keys on trip_id so re-applying pricing replaces the previous
// snapshot instead of stacking rows.
func (r *repo) Upsert(ctx context.Context, db *gorm.DB, snapshot *pricingdomain.TripPricing) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "trip_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"pricing_rule_id",
				"base_price",
				"final_price",
				"currency",
				"applied_at",
			}),
		}).
		Create(snapshot).Error
}

func (r *repo) FindByTripID(ctx context.Context, db *gorm.DB, tenantID, tripID snowflake.ID) (*pricingdomain.TripPricing, error) {
	var snapshot pricingdomain.TripPricing
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND trip_id = ?", tenantID, tripID).
		First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}
