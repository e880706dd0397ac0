// Package seed bootstraps the minimum data a fresh deployment needs:
// every tenant must have a default pricing rule so fares never fail to
// resolve.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	ruledomain "github.com/farelane/farelane/internal/pricingrule/domain"
	"gorm.io/gorm"
)

const (
	defaultRuleName  = "Standard fare"
	defaultBasePrice = 2.5
	defaultCurrency  = "USD"
)

// EnsureDefaultPricingRule creates an active flat-rate default rule for
// the tenant when none exists.
func EnsureDefaultPricingRule(db *gorm.DB, tenantID int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing ruledomain.PricingRule
		err := tx.WithContext(ctx).
			Where("tenant_id = ? AND is_default = ?", tenantID, true).
			First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		basePrice := defaultBasePrice
		rule := ruledomain.PricingRule{
			ID:        node.Generate(),
			TenantID:  snowflake.ID(tenantID),
			Name:      defaultRuleName,
			Type:      ruledomain.FlatRate,
			Status:    ruledomain.RuleStatusActive,
			Priority:  0,
			IsDefault: true,
			Currency:  defaultCurrency,
			BasePrice: &basePrice,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return tx.WithContext(ctx).Create(&rule).Error
	})
}
