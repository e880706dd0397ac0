package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rule *PricingRule) error
	Update(ctx context.Context, db *gorm.DB, rule *PricingRule) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*PricingRule, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]PricingRule, error)

	// FindApplicable returns active rules whose validity window covers at,
	// ordered by priority desc, is_default desc, created_at desc. A nonzero
	// routeID scopes the eagerly loaded route/station pricing rows to that
	// route; it does not affect which rules are returned.
	FindApplicable(ctx context.Context, db *gorm.DB, tenantID, routeID snowflake.ID, at time.Time) ([]PricingRule, error)

	InsertRoutePricing(ctx context.Context, db *gorm.DB, rp *RoutePricing) error
	InsertStationPricing(ctx context.Context, db *gorm.DB, sp *StationPricing) error
	ListRoutePricings(ctx context.Context, db *gorm.DB, tenantID, ruleID snowflake.ID) ([]RoutePricing, error)
	ListStationPricings(ctx context.Context, db *gorm.DB, tenantID, ruleID snowflake.ID) ([]StationPricing, error)
}
