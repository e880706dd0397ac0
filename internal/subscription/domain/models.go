// Package domain contains persistence models for passenger subscriptions.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// SubscriptionStatus represents lifecycle states for a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusPaused    SubscriptionStatus = "PAUSED"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionStatusExpired   SubscriptionStatus = "EXPIRED"
)

// SubscriptionPlan defines a recurring pass and the fare discount it grants.
type SubscriptionPlan struct {
	ID                 snowflake.ID `json:"id" gorm:"primaryKey"`
	TenantID           snowflake.ID `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	Name               string       `json:"name" gorm:"type:text;not null"`
	DiscountPercentage float64      `json:"discount_percentage" gorm:"type:numeric;not null;default:0"`
	DurationDays       int          `json:"duration_days" gorm:"not null;default:30"`
	Price              float64      `json:"price" gorm:"type:numeric;not null;default:0"`
	Active             bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt          time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (SubscriptionPlan) TableName() string { return "subscription_plans" }

// Subscription is a passenger's hold on a plan for a date range.
type Subscription struct {
	ID          snowflake.ID       `json:"id" gorm:"primaryKey"`
	TenantID    snowflake.ID       `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	PassengerID snowflake.ID       `json:"passenger_id" gorm:"not null;index"`
	PlanID      snowflake.ID       `json:"plan_id" gorm:"not null;index"`
	Status      SubscriptionStatus `json:"status" gorm:"type:text;not null"`
	StartAt     time.Time          `json:"start_at" gorm:"not null"`
	EndAt       time.Time          `json:"end_at" gorm:"not null"`
	Plan        *SubscriptionPlan  `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
	CreatedAt   time.Time          `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time          `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Subscription) TableName() string { return "subscriptions" }
