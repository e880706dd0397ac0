package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	discountdomain "github.com/farelane/farelane/internal/discount/domain"
	"github.com/farelane/farelane/internal/discount/repository"
	"github.com/farelane/farelane/internal/tenantctx"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (discountdomain.Service, *snowflake.Node, context.Context) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&discountdomain.Discount{},
		&discountdomain.DiscountUsage{},
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

func validWindow() (time.Time, time.Time) {
	now := time.Now().UTC()
	return now.Add(-time.Hour), now.Add(24 * time.Hour)
}

func TestCreateNormalizesCode(t *testing.T) {
	svc, _, ctx := newTestService(t)

	from, until := validWindow()
	d, err := svc.Create(ctx, discountdomain.CreateRequest{
		Code:       "  summer10 ",
		Type:       discountdomain.Percentage,
		Value:      10,
		ValidFrom:  from,
		ValidUntil: until,
	})
	require.NoError(t, err)
	assert.Equal(t, "SUMMER10", d.Code)

	got, err := svc.GetByCode(ctx, "summer10")
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	svc, _, ctx := newTestService(t)

	from, until := validWindow()
	req := discountdomain.CreateRequest{
		Code:       "ONCE",
		Type:       discountdomain.FixedAmount,
		Value:      5,
		ValidFrom:  from,
		ValidUntil: until,
	}
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, discountdomain.ErrDuplicateCode)
}

func TestCreateValidatesValue(t *testing.T) {
	svc, _, ctx := newTestService(t)

	from, until := validWindow()
	_, err := svc.Create(ctx, discountdomain.CreateRequest{
		Code:       "TOOMUCH",
		Type:       discountdomain.Percentage,
		Value:      150,
		ValidFrom:  from,
		ValidUntil: until,
	})
	assert.ErrorIs(t, err, discountdomain.ErrInvalidValue)

	_, err = svc.Create(ctx, discountdomain.CreateRequest{
		Code:       "FREE",
		Type:       discountdomain.FixedAmount,
		Value:      0,
		ValidFrom:  from,
		ValidUntil: until,
	})
	assert.ErrorIs(t, err, discountdomain.ErrInvalidValue)
}

func TestCheckReportsExpiredCode(t *testing.T) {
	svc, _, ctx := newTestService(t)

	from, until := validWindow()
	d, err := svc.Create(ctx, discountdomain.CreateRequest{
		Code:       "LATE",
		Type:       discountdomain.FixedAmount,
		Value:      5,
		ValidFrom:  from,
		ValidUntil: until,
	})
	require.NoError(t, err)

	_, validation, err := svc.Check(ctx, d.Code, "", until.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, validation.Valid)
	assert.Equal(t, discountdomain.ReasonExpired, validation.Reason)
}

func TestCheckEnforcesPerUserCap(t *testing.T) {
	svc, node, ctx := newTestService(t)

	from, until := validWindow()
	perUser := 1
	d, err := svc.Create(ctx, discountdomain.CreateRequest{
		Code:           "ONEEACH",
		Type:           discountdomain.FixedAmount,
		Value:          5,
		MaxUsesPerUser: &perUser,
		ValidFrom:      from,
		ValidUntil:     until,
	})
	require.NoError(t, err)

	passengerID := node.Generate()
	now := time.Now().UTC()

	_, validation, err := svc.Check(ctx, d.Code, passengerID.String(), now)
	require.NoError(t, err)
	assert.True(t, validation.Valid)

	require.NoError(t, svc.Redeem(ctx, nil, discountdomain.RedeemRequest{
		TenantID:    d.TenantID,
		DiscountID:  d.ID,
		PassengerID: passengerID,
		Amount:      5,
		Now:         now,
	}))

	_, validation, err = svc.Check(ctx, d.Code, passengerID.String(), now)
	require.NoError(t, err)
	assert.False(t, validation.Valid)
	assert.Equal(t, discountdomain.ReasonUserCapReached, validation.Reason)

	// A different passenger is unaffected by the first one's cap.
	_, validation, err = svc.Check(ctx, d.Code, node.Generate().String(), now)
	require.NoError(t, err)
	assert.True(t, validation.Valid)
}

func TestRedeemFailsWhenExhausted(t *testing.T) {
	svc, node, ctx := newTestService(t)

	from, until := validWindow()
	limit := 1
	d, err := svc.Create(ctx, discountdomain.CreateRequest{
		Code:       "LASTONE",
		Type:       discountdomain.FixedAmount,
		Value:      5,
		UsageLimit: &limit,
		ValidFrom:  from,
		ValidUntil: until,
	})
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, svc.Redeem(ctx, nil, discountdomain.RedeemRequest{
		TenantID:    d.TenantID,
		DiscountID:  d.ID,
		PassengerID: node.Generate(),
		Amount:      5,
		Now:         now,
	}))

	err = svc.Redeem(ctx, nil, discountdomain.RedeemRequest{
		TenantID:    d.TenantID,
		DiscountID:  d.ID,
		PassengerID: node.Generate(),
		Amount:      5,
		Now:         now,
	})
	assert.ErrorIs(t, err, discountdomain.ErrExhausted)
}

func TestCheckUnknownCode(t *testing.T) {
	svc, _, ctx := newTestService(t)

	_, _, err := svc.Check(ctx, "NOPE", "", time.Now().UTC())
	assert.ErrorIs(t, err, discountdomain.ErrNotFound)
}
