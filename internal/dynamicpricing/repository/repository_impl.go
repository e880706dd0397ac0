package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	dynamicdomain "github.com/farelane/farelane/internal/dynamicpricing/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() dynamicdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rule *dynamicdomain.DynamicPricingRule) error {
	return db.WithContext(ctx).Create(rule).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*dynamicdomain.DynamicPricingRule, error) {
	var rule dynamicdomain.DynamicPricingRule
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]dynamicdomain.DynamicPricingRule, error) {
	var rules []dynamicdomain.DynamicPricingRule
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repo) Deactivate(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Model(&dynamicdomain.DynamicPricingRule{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("is_active", false).Error
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB, tenantID, routeID snowflake.ID, at time.Time) ([]dynamicdomain.DynamicPricingRule, error) {
	query := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("is_active = ?", true).
		Where("active_from IS NULL OR active_from <= ?", at).
		Where("active_to IS NULL OR active_to >= ?", at)

	if routeID != 0 {
		query = query.Where("route_id IS NULL OR route_id = ?", routeID)
	} else {
		query = query.Where("route_id IS NULL")
	}

	var rules []dynamicdomain.DynamicPricingRule
	if err := query.Order("created_at ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}
