package migration

import (
	"github.com/farelane/farelane/internal/config"
	discountdomain "github.com/farelane/farelane/internal/discount/domain"
	dynamicdomain "github.com/farelane/farelane/internal/dynamicpricing/domain"
	pricingdomain "github.com/farelane/farelane/internal/pricing/domain"
	ruledomain "github.com/farelane/farelane/internal/pricingrule/domain"
	"github.com/farelane/farelane/internal/seed"
	subscriptiondomain "github.com/farelane/farelane/internal/subscription/domain"
	tripdomain "github.com/farelane/farelane/internal/trip/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Non-postgres dialects (sqlite for local development, mysql)
			// are schema-managed by gorm directly.
			if err := autoMigrate(conn); err != nil {
				return err
			}
		}

		if cfg.DefaultTenantID != 0 {
			return seed.EnsureDefaultPricingRule(conn, cfg.DefaultTenantID)
		}
		return nil
	}),
)

func autoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&tripdomain.Station{},
		&tripdomain.Route{},
		&tripdomain.RouteStation{},
		&tripdomain.Bus{},
		&tripdomain.Trip{},
		&ruledomain.PricingRule{},
		&ruledomain.RoutePricing{},
		&ruledomain.StationPricing{},
		&dynamicdomain.DynamicPricingRule{},
		&subscriptiondomain.SubscriptionPlan{},
		&subscriptiondomain.Subscription{},
		&discountdomain.Discount{},
		&discountdomain.DiscountUsage{},
		&pricingdomain.TripPricing{},
	)
}
