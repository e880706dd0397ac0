package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rule *DynamicPricingRule) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*DynamicPricingRule, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]DynamicPricingRule, error)
	Deactivate(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error

	// ListActive returns active rules for the tenant whose active window
	// covers at and which are either unscoped or scoped to routeID.
	// Day-of-week and time-of-day matching happens in the service.
	ListActive(ctx context.Context, db *gorm.DB, tenantID, routeID snowflake.ID, at time.Time) ([]DynamicPricingRule, error)
}
