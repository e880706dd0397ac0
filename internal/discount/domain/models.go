// Package domain contains persistence models for discount codes and
// their usage records.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// DiscountType selects how Value is interpreted.
type DiscountType string

const (
	Percentage  DiscountType = "PERCENTAGE"
	FixedAmount DiscountType = "FIXED_AMOUNT"
)

// Discount is a promo code. Codes are upper-cased and unique per tenant.
type Discount struct {
	ID             snowflake.ID      `json:"id" gorm:"primaryKey"`
	TenantID       snowflake.ID      `json:"tenant_id" gorm:"column:tenant_id;not null;uniqueIndex:ux_discounts_tenant_code"`
	Code           string            `json:"code" gorm:"type:text;not null;uniqueIndex:ux_discounts_tenant_code"`
	Description    string            `json:"description,omitempty" gorm:"type:text"`
	Type           DiscountType      `json:"type" gorm:"type:text;not null"`
	Value          float64           `json:"value" gorm:"type:numeric;not null"`
	MinAmount      *float64          `json:"min_amount,omitempty" gorm:"type:numeric"`
	MaxDiscount    *float64          `json:"max_discount,omitempty" gorm:"type:numeric"`
	UsageLimit     *int              `json:"usage_limit,omitempty" gorm:""`
	MaxUsesPerUser *int              `json:"max_uses_per_user,omitempty" gorm:""`
	UsedCount      int               `json:"used_count" gorm:"not null;default:0"`
	ValidFrom      time.Time         `json:"valid_from" gorm:"not null"`
	ValidUntil     time.Time         `json:"valid_until" gorm:"not null"`
	IsActive       bool              `json:"is_active" gorm:"not null;default:true"`
	Metadata       datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt      time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Discount) TableName() string { return "discounts" }

// DiscountUsage records one successful redemption.
type DiscountUsage struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	TenantID    snowflake.ID `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	DiscountID  snowflake.ID `json:"discount_id" gorm:"not null;index"`
	PassengerID snowflake.ID `json:"passenger_id" gorm:"not null;index"`
	BookingID   *snowflake.ID `json:"booking_id,omitempty" gorm:"index"`
	Amount      float64      `json:"amount" gorm:"type:numeric;not null"`
	UsedAt      time.Time    `json:"used_at" gorm:"not null"`
}

func (DiscountUsage) TableName() string { return "discount_usages" }
