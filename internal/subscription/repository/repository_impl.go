package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	subscriptiondomain "github.com/farelane/farelane/internal/subscription/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() subscriptiondomain.Repository {
	return &repo{}
}

func (r *repo) InsertPlan(ctx context.Context, db *gorm.DB, plan *subscriptiondomain.SubscriptionPlan) error {
	return db.WithContext(ctx).Create(plan).Error
}

func (r *repo) ListPlans(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]subscriptiondomain.SubscriptionPlan, error) {
	var plans []subscriptiondomain.SubscriptionPlan
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repo) FindPlanByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*subscriptiondomain.SubscriptionPlan, error) {
	var plan subscriptiondomain.SubscriptionPlan
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, subscription *subscriptiondomain.Subscription) error {
	return db.WithContext(ctx).Create(subscription).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*subscriptiondomain.Subscription, error) {
	var subscription subscriptiondomain.Subscription
	err := db.WithContext(ctx).
		Preload("Plan").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscription, nil
}

func (r *repo) FindActiveByPassengerAt(ctx context.Context, db *gorm.DB, tenantID, passengerID snowflake.ID, at time.Time) (*subscriptiondomain.Subscription, error) {
	var subscription subscriptiondomain.Subscription
	err := db.WithContext(ctx).
		Preload("Plan").
		Where("tenant_id = ? AND passenger_id = ?", tenantID, passengerID).
		Where("status = ?", subscriptiondomain.SubscriptionStatusActive).
		Where("start_at <= ? AND end_at >= ?", at, at).
		Order("end_at DESC").
		First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscription, nil
}
