package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Discount, error)
	List(ctx context.Context) ([]Discount, error)
	GetByCode(ctx context.Context, code string) (*Discount, error)

	// Check validates a code for a passenger without redeeming it.
	Check(ctx context.Context, code, passengerID string, now time.Time) (*Discount, ValidationResult, error)

	// Redeem atomically consumes one use of the code and records the usage
	// row inside tx. Callers wrap it in the same transaction that persists
	// the priced booking.
	Redeem(ctx context.Context, tx *gorm.DB, req RedeemRequest) error
}

type CreateRequest struct {
	Code           string         `json:"code"`
	Description    string         `json:"description"`
	Type           DiscountType   `json:"type"`
	Value          float64        `json:"value"`
	MinAmount      *float64       `json:"min_amount"`
	MaxDiscount    *float64       `json:"max_discount"`
	UsageLimit     *int           `json:"usage_limit"`
	MaxUsesPerUser *int           `json:"max_uses_per_user"`
	ValidFrom      time.Time      `json:"valid_from"`
	ValidUntil     time.Time      `json:"valid_until"`
	Metadata       map[string]any `json:"metadata"`
}

type RedeemRequest struct {
	TenantID    snowflake.ID
	DiscountID  snowflake.ID
	PassengerID snowflake.ID
	BookingID   *snowflake.ID
	Amount      float64
	Now         time.Time
}

var (
	ErrInvalidTenant       = errors.New("invalid_tenant")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidCode         = errors.New("invalid_code")
	ErrInvalidDiscountType = errors.New("invalid_discount_type")
	ErrInvalidValue        = errors.New("invalid_value")
	ErrInvalidValidity     = errors.New("invalid_validity_range")
	ErrDuplicateCode       = errors.New("duplicate_code")
	ErrNotFound            = errors.New("discount_not_found")
	ErrExhausted           = errors.New("discount_exhausted")
)
