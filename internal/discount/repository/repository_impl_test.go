package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	discountdomain "github.com/farelane/farelane/internal/discount/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&discountdomain.Discount{},
		&discountdomain.DiscountUsage{},
	))
	return conn
}

func TestIncrementUsageStopsAtLimit(t *testing.T) {
	conn := openTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	limit := 2
	now := time.Now().UTC()
	discount := &discountdomain.Discount{
		ID:         node.Generate(),
		TenantID:   node.Generate(),
		Code:       "LASTONE",
		Type:       discountdomain.FixedAmount,
		Value:      5,
		UsageLimit: &limit,
		ValidFrom:  now.Add(-time.Hour),
		ValidUntil: now.Add(time.Hour),
		IsActive:   true,
	}
	require.NoError(t, conn.Create(discount).Error)

	r := Provide()
	ctx := context.Background()

	ok, err := r.IncrementUsage(ctx, conn, discount.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.IncrementUsage(ctx, conn, discount.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Third redemption must fail at the update predicate, not on a stale read.
	ok, err = r.IncrementUsage(ctx, conn, discount.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	var stored discountdomain.Discount
	require.NoError(t, conn.First(&stored, "id = ?", discount.ID).Error)
	assert.Equal(t, 2, stored.UsedCount)
}

func TestIncrementUsageUnlimited(t *testing.T) {
	conn := openTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	now := time.Now().UTC()
	discount := &discountdomain.Discount{
		ID:         node.Generate(),
		TenantID:   node.Generate(),
		Code:       "OPENBAR",
		Type:       discountdomain.Percentage,
		Value:      10,
		ValidFrom:  now.Add(-time.Hour),
		ValidUntil: now.Add(time.Hour),
		IsActive:   true,
	}
	require.NoError(t, conn.Create(discount).Error)

	r := Provide()
	for i := 0; i < 5; i++ {
		ok, err := r.IncrementUsage(context.Background(), conn, discount.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestCountUsesByPassenger(t *testing.T) {
	conn := openTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	discountID := node.Generate()
	passengerID := node.Generate()
	tenantID := node.Generate()

	for i := 0; i < 3; i++ {
		require.NoError(t, conn.Create(&discountdomain.DiscountUsage{
			ID:          node.Generate(),
			TenantID:    tenantID,
			DiscountID:  discountID,
			PassengerID: passengerID,
			Amount:      5,
			UsedAt:      time.Now().UTC(),
		}).Error)
	}
	require.NoError(t, conn.Create(&discountdomain.DiscountUsage{
		ID:          node.Generate(),
		TenantID:    tenantID,
		DiscountID:  discountID,
		PassengerID: node.Generate(),
		Amount:      5,
		UsedAt:      time.Now().UTC(),
	}).Error)

	r := Provide()
	count, err := r.CountUsesByPassenger(context.Background(), conn, discountID, passengerID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
