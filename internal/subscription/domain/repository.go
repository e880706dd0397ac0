package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertPlan(ctx context.Context, db *gorm.DB, plan *SubscriptionPlan) error
	ListPlans(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]SubscriptionPlan, error)
	FindPlanByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*SubscriptionPlan, error)

	Insert(ctx context.Context, db *gorm.DB, subscription *Subscription) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Subscription, error)
	FindActiveByPassengerAt(ctx context.Context, db *gorm.DB, tenantID, passengerID snowflake.ID, at time.Time) (*Subscription, error)
}
