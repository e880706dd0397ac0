package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	ruledomain "github.com/farelane/farelane/internal/pricingrule/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() ruledomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rule *ruledomain.PricingRule) error {
	return db.WithContext(ctx).Create(rule).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, rule *ruledomain.PricingRule) error {
	return db.WithContext(ctx).Save(rule).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*ruledomain.PricingRule, error) {
	var rule ruledomain.PricingRule
	err := db.WithContext(ctx).
		Preload("RoutePricings").
		Preload("StationPricings").
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

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]ruledomain.PricingRule, error) {
	var rules []ruledomain.PricingRule
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("priority DESC, created_at DESC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repo) FindApplicable(ctx context.Context, db *gorm.DB, tenantID, routeID snowflake.ID, at time.Time) ([]ruledomain.PricingRule, error) {
	query := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("status = ?", ruledomain.RuleStatusActive).
		Where("valid_from IS NULL OR valid_from <= ?", at).
		Where("valid_until IS NULL OR valid_until >= ?", at).
		Order("priority DESC, is_default DESC, created_at DESC")

	if routeID != 0 {
		query = query.
			Preload("RoutePricings", "route_id = ?", routeID).
			Preload("StationPricings", "route_id = ?", routeID)
	} else {
		query = query.
			Preload("RoutePricings").
			Preload("StationPricings")
	}

	var rules []ruledomain.PricingRule
	if err := query.Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repo) InsertRoutePricing(ctx context.Context, db *gorm.DB, rp *ruledomain.RoutePricing) error {
	return db.WithContext(ctx).Create(rp).Error
}

func (r *repo) InsertStationPricing(ctx context.Context, db *gorm.DB, sp *ruledomain.StationPricing) error {
	return db.WithContext(ctx).Create(sp).Error
}

func (r *repo) ListRoutePricings(ctx context.Context, db *gorm.DB, tenantID, ruleID snowflake.ID) ([]ruledomain.RoutePricing, error) {
	var items []ruledomain.RoutePricing
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND pricing_rule_id = ?", tenantID, ruleID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListStationPricings(ctx context.Context, db *gorm.DB, tenantID, ruleID snowflake.ID) ([]ruledomain.StationPricing, error) {
	var items []ruledomain.StationPricing
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND pricing_rule_id = ?", tenantID, ruleID).
		Order("station_count ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
