package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, discount *Discount) error
	FindByCode(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, code string) (*Discount, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]Discount, error)
	CountUsesByPassenger(ctx context.Context, db *gorm.DB, discountID, passengerID snowflake.ID) (int, error)

	// IncrementUsage bumps used_count only while the usage limit still has
	// headroom. Returns false when the conditional update matched no rows,
	// meaning the code is exhausted.
	IncrementUsage(ctx context.Context, db *gorm.DB, discountID snowflake.ID) (bool, error)
	InsertUsage(ctx context.Context, db *gorm.DB, usage *DiscountUsage) error
}
