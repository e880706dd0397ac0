package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	discountdomain "github.com/farelane/farelane/internal/discount/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() discountdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, discount *discountdomain.Discount) error {
	return db.WithContext(ctx).Create(discount).Error
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, code string) (*discountdomain.Discount, error) {
	var discount discountdomain.Discount
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&discount).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &discount, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]discountdomain.Discount, error) {
	var discounts []discountdomain.Discount
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&discounts).Error
	if err != nil {
		return nil, err
	}
	return discounts, nil
}

func (r *repo) CountUsesByPassenger(ctx context.Context, db *gorm.DB, discountID, passengerID snowflake.ID) (int, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&discountdomain.DiscountUsage{}).
		Where("discount_id = ? AND passenger_id = ?", discountID, passengerID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// IncrementUsage guards the usage limit inside the update predicate so two
// concurrent redemptions of a near-limit code cannot both succeed.
func (r *repo) IncrementUsage(ctx context.Context, db *gorm.DB, discountID snowflake.ID) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE discounts
		 SET used_count = used_count + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND (usage_limit IS NULL OR used_count < usage_limit)`,
		discountID,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) InsertUsage(ctx context.Context, db *gorm.DB, usage *discountdomain.DiscountUsage) error {
	return db.WithContext(ctx).Create(usage).Error
}
