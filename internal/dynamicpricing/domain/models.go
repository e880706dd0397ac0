// Package domain contains persistence models for time-windowed dynamic
// pricing adjustments.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// DynamicPricingRule adds a surcharge or discount on top of the base
// price while its day-of-week and time-of-day window matches the clock.
// All matching rules apply additively.
type DynamicPricingRule struct {
	ID              snowflake.ID   `json:"id" gorm:"primaryKey"`
	TenantID        snowflake.ID   `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	RouteID         *snowflake.ID  `json:"route_id,omitempty" gorm:"index"`
	Name            string         `json:"name" gorm:"type:text;not null"`
	DaysOfWeek      datatypes.JSON `json:"days_of_week,omitempty" gorm:"type:jsonb"`
	StartTime       string         `json:"start_time" gorm:"type:text;not null"`
	EndTime         string         `json:"end_time" gorm:"type:text;not null"`
	Multiplier      float64        `json:"multiplier" gorm:"type:numeric;not null;default:1"`
	FixedAdjustment float64        `json:"fixed_adjustment" gorm:"type:numeric;not null;default:0"`
	ActiveFrom      *time.Time     `json:"active_from,omitempty" gorm:""`
	ActiveTo        *time.Time     `json:"active_to,omitempty" gorm:""`
	IsActive        bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt       time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (DynamicPricingRule) TableName() string { return "dynamic_pricing_rules" }
