package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	dynamicdomain "github.com/farelane/farelane/internal/dynamicpricing/domain"
	"github.com/farelane/farelane/internal/dynamicpricing/repository"
	"github.com/farelane/farelane/internal/tenantctx"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (dynamicdomain.Service, context.Context) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&dynamicdomain.DynamicPricingRule{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, tenantctx.WithTenantID(context.Background(), 42)
}

func multiplierOf(v float64) *float64 { return &v }

func TestCreateRejectsMalformedWindow(t *testing.T) {
	svc, ctx := newTestService(t)

	_, err := svc.Create(ctx, dynamicdomain.CreateRequest{
		Name:      "Rush hour",
		StartTime: "7am",
		EndTime:   "09:00",
	})
	assert.ErrorIs(t, err, dynamicdomain.ErrInvalidWindow)
}

func TestCreateRejectsNonPositiveMultiplier(t *testing.T) {
	svc, ctx := newTestService(t)

	_, err := svc.Create(ctx, dynamicdomain.CreateRequest{
		Name:       "Rush hour",
		StartTime:  "07:00",
		EndTime:    "09:00",
		Multiplier: multiplierOf(0),
	})
	assert.ErrorIs(t, err, dynamicdomain.ErrInvalidMultiplier)
}

func TestMatchingFiltersByWindow(t *testing.T) {
	svc, ctx := newTestService(t)

	morning, err := svc.Create(ctx, dynamicdomain.CreateRequest{
		Name:       "Morning rush",
		StartTime:  "07:00",
		EndTime:    "09:00",
		Multiplier: multiplierOf(1.2),
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, dynamicdomain.CreateRequest{
		Name:       "Evening rush",
		StartTime:  "17:00",
		EndTime:    "19:00",
		Multiplier: multiplierOf(1.3),
	})
	require.NoError(t, err)

	at := time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC)
	matched, err := svc.Matching(ctx, "", at)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, morning.ID, matched[0].ID)
}

func TestMatchingWrapsMidnight(t *testing.T) {
	svc, ctx := newTestService(t)

	_, err := svc.Create(ctx, dynamicdomain.CreateRequest{
		Name:            "Night owl",
		StartTime:       "22:00",
		EndTime:         "02:00",
		FixedAdjustment: 1.5,
	})
	require.NoError(t, err)

	matched, err := svc.Matching(ctx, "", time.Date(2026, 3, 3, 23, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, matched, 1)

	matched, err = svc.Matching(ctx, "", time.Date(2026, 3, 3, 1, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, matched, 1)

	matched, err = svc.Matching(ctx, "", time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestMatchingFiltersByDay(t *testing.T) {
	svc, ctx := newTestService(t)

	_, err := svc.Create(ctx, dynamicdomain.CreateRequest{
		Name:       "Weekend only",
		DaysOfWeek: []string{"saturday", "SUNDAY"},
		StartTime:  "00:00",
		EndTime:    "23:59",
		Multiplier: multiplierOf(1.1),
	})
	require.NoError(t, err)

	// 2026-03-03 is a Tuesday, 2026-03-07 a Saturday.
	matched, err := svc.Matching(ctx, "", time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, matched)

	matched, err = svc.Matching(ctx, "", time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, matched, 1)
}

func TestMatchingScopesToRoute(t *testing.T) {
	svc, ctx := newTestService(t)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	routeA := node.Generate().String()
	routeB := node.Generate().String()

	global, err := svc.Create(ctx, dynamicdomain.CreateRequest{
		Name:            "Everywhere",
		StartTime:       "00:00",
		EndTime:         "23:59",
		FixedAdjustment: 0.5,
	})
	require.NoError(t, err)

	scoped, err := svc.Create(ctx, dynamicdomain.CreateRequest{
		Name:            "Route A surge",
		RouteID:         &routeA,
		StartTime:       "00:00",
		EndTime:         "23:59",
		FixedAdjustment: 2,
	})
	require.NoError(t, err)

	at := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)

	matched, err := svc.Matching(ctx, routeA, at)
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.ElementsMatch(t,
		[]snowflake.ID{global.ID, scoped.ID},
		[]snowflake.ID{matched[0].ID, matched[1].ID},
	)

	matched, err = svc.Matching(ctx, routeB, at)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, global.ID, matched[0].ID)
}

func TestDeactivateExcludesFromMatching(t *testing.T) {
	svc, ctx := newTestService(t)

	rule, err := svc.Create(ctx, dynamicdomain.CreateRequest{
		Name:            "Surge",
		StartTime:       "00:00",
		EndTime:         "23:59",
		FixedAdjustment: 1,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, rule.ID.String()))

	matched, err := svc.Matching(ctx, "", time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, matched)
}
