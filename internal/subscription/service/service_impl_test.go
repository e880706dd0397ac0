package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	subscriptiondomain "github.com/farelane/farelane/internal/subscription/domain"
	"github.com/farelane/farelane/internal/subscription/repository"
	"github.com/farelane/farelane/internal/tenantctx"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (subscriptiondomain.Service, *snowflake.Node, context.Context) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&subscriptiondomain.SubscriptionPlan{},
		&subscriptiondomain.Subscription{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, node, tenantctx.WithTenantID(context.Background(), 42)
}

func TestCreatePlanValidatesDiscount(t *testing.T) {
	svc, _, ctx := newTestService(t)

	_, err := svc.CreatePlan(ctx, subscriptiondomain.CreatePlanRequest{
		Name:               "Gold",
		DiscountPercentage: 120,
		DurationDays:       30,
	})
	assert.ErrorIs(t, err, subscriptiondomain.ErrInvalidDiscount)

	_, err = svc.CreatePlan(ctx, subscriptiondomain.CreatePlanRequest{
		Name:               "Gold",
		DiscountPercentage: 10,
		DurationDays:       0,
	})
	assert.ErrorIs(t, err, subscriptiondomain.ErrInvalidDuration)
}

func TestSubscribeComputesEndDate(t *testing.T) {
	svc, node, ctx := newTestService(t)

	plan, err := svc.CreatePlan(ctx, subscriptiondomain.CreatePlanRequest{
		Name:               "Monthly",
		DiscountPercentage: 15,
		DurationDays:       30,
		Price:              49,
	})
	require.NoError(t, err)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sub, err := svc.Subscribe(ctx, subscriptiondomain.SubscribeRequest{
		PassengerID: node.Generate().String(),
		PlanID:      plan.ID.String(),
		StartAt:     &start,
	})
	require.NoError(t, err)

	assert.Equal(t, subscriptiondomain.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, start, sub.StartAt)
	assert.Equal(t, start.AddDate(0, 0, 30), sub.EndAt)
}

func TestSubscribeRejectsUnknownPlan(t *testing.T) {
	svc, node, ctx := newTestService(t)

	_, err := svc.Subscribe(ctx, subscriptiondomain.SubscribeRequest{
		PassengerID: node.Generate().String(),
		PlanID:      node.Generate().String(),
	})
	assert.ErrorIs(t, err, subscriptiondomain.ErrPlanNotFound)
}

func TestActiveDiscountPercent(t *testing.T) {
	svc, node, ctx := newTestService(t)

	plan, err := svc.CreatePlan(ctx, subscriptiondomain.CreatePlanRequest{
		Name:               "Commuter",
		DiscountPercentage: 12,
		DurationDays:       30,
	})
	require.NoError(t, err)

	passengerID := node.Generate().String()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.Subscribe(ctx, subscriptiondomain.SubscribeRequest{
		PassengerID: passengerID,
		PlanID:      plan.ID.String(),
		StartAt:     &start,
	})
	require.NoError(t, err)

	percent, active, err := svc.ActiveDiscountPercent(ctx, passengerID, start.Add(10*24*time.Hour))
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, 12.0, percent)

	// After the plan lapses the discount no longer applies.
	percent, active, err = svc.ActiveDiscountPercent(ctx, passengerID, start.Add(45*24*time.Hour))
	require.NoError(t, err)
	assert.False(t, active)
	assert.Zero(t, percent)
}

func TestActiveDiscountPercentUnknownPassenger(t *testing.T) {
	svc, node, ctx := newTestService(t)

	_, active, err := svc.ActiveDiscountPercent(ctx, node.Generate().String(), time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, active)
}
