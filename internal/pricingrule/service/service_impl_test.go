package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	ruledomain "github.com/farelane/farelane/internal/pricingrule/domain"
	"github.com/farelane/farelane/internal/pricingrule/repository"
	"github.com/farelane/farelane/internal/tenantctx"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (ruledomain.Service, *gorm.DB, context.Context) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&ruledomain.PricingRule{},
		&ruledomain.RoutePricing{},
		&ruledomain.StationPricing{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})

	ctx := tenantctx.WithTenantID(context.Background(), 42)
	return svc, conn, ctx
}

func priceOf(v float64) *float64 { return &v }

func TestCreateFlatRateRequiresBasePrice(t *testing.T) {
	svc, _, ctx := newTestService(t)

	_, err := svc.Create(ctx, ruledomain.CreateRequest{
		Name: "Flat",
		Type: ruledomain.FlatRate,
	})
	assert.ErrorIs(t, err, ruledomain.ErrMissingBasePrice)
}

func TestCreateDistanceBasedRequiresPricePerKm(t *testing.T) {
	svc, _, ctx := newTestService(t)

	_, err := svc.Create(ctx, ruledomain.CreateRequest{
		Name:      "Per km",
		Type:      ruledomain.DistanceBased,
		BasePrice: priceOf(1),
	})
	assert.ErrorIs(t, err, ruledomain.ErrMissingPricePerKm)
}

func TestCreateTimeBasedValidatesPeakWindow(t *testing.T) {
	svc, _, ctx := newTestService(t)

	mult := 1.5
	start := "25:99"
	end := "09:00"
	_, err := svc.Create(ctx, ruledomain.CreateRequest{
		Name:           "Peak",
		Type:           ruledomain.TimeBased,
		BasePrice:      priceOf(10),
		PeakMultiplier: &mult,
		PeakStartTime:  &start,
		PeakEndTime:    &end,
	})
	assert.ErrorIs(t, err, ruledomain.ErrInvalidPeakWindow)

	_, err = svc.Create(ctx, ruledomain.CreateRequest{
		Name:      "Peak",
		Type:      ruledomain.TimeBased,
		BasePrice: priceOf(10),
	})
	assert.ErrorIs(t, err, ruledomain.ErrMissingPeakConfig)
}

func TestCreateRejectsUnknownDay(t *testing.T) {
	svc, _, ctx := newTestService(t)

	_, err := svc.Create(ctx, ruledomain.CreateRequest{
		Name:           "Weekday",
		Type:           ruledomain.FlatRate,
		BasePrice:      priceOf(5),
		ApplicableDays: []string{"monday", "someday"},
	})
	assert.ErrorIs(t, err, ruledomain.ErrInvalidDays)
}

func TestCreateRequiresTenant(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), ruledomain.CreateRequest{
		Name:      "Flat",
		Type:      ruledomain.FlatRate,
		BasePrice: priceOf(5),
	})
	assert.ErrorIs(t, err, ruledomain.ErrInvalidTenant)
}

func TestResolveApplicableOrdering(t *testing.T) {
	svc, _, ctx := newTestService(t)

	isDefault := true
	low, err := svc.Create(ctx, ruledomain.CreateRequest{
		Name:      "Fallback",
		Type:      ruledomain.FlatRate,
		BasePrice: priceOf(2),
		Priority:  1,
	})
	require.NoError(t, err)

	tied, err := svc.Create(ctx, ruledomain.CreateRequest{
		Name:      "Promo tier",
		Type:      ruledomain.FlatRate,
		BasePrice: priceOf(3),
		Priority:  5,
	})
	require.NoError(t, err)

	preferred, err := svc.Create(ctx, ruledomain.CreateRequest{
		Name:      "Promo tier default",
		Type:      ruledomain.FlatRate,
		BasePrice: priceOf(4),
		Priority:  5,
		IsDefault: &isDefault,
	})
	require.NoError(t, err)

	rules, err := svc.ResolveApplicable(ctx, "", time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, rules, 3)

	assert.Equal(t, preferred.ID, rules[0].ID)
	assert.Equal(t, tied.ID, rules[1].ID)
	assert.Equal(t, low.ID, rules[2].ID)
}

func TestResolveApplicableFiltersValidityWindow(t *testing.T) {
	svc, _, ctx := newTestService(t)

	now := time.Now().UTC()
	past := now.Add(-48 * time.Hour)
	recent := now.Add(-24 * time.Hour)
	_, err := svc.Create(ctx, ruledomain.CreateRequest{
		Name:       "Expired",
		Type:       ruledomain.FlatRate,
		BasePrice:  priceOf(2),
		ValidFrom:  &past,
		ValidUntil: &recent,
	})
	require.NoError(t, err)

	_, err = svc.ResolveApplicable(ctx, "", now)
	assert.ErrorIs(t, err, ruledomain.ErrNoApplicablePricing)
}

func TestDeactivateStopsResolution(t *testing.T) {
	svc, _, ctx := newTestService(t)

	rule, err := svc.Create(ctx, ruledomain.CreateRequest{
		Name:      "Flat",
		Type:      ruledomain.FlatRate,
		BasePrice: priceOf(2),
	})
	require.NoError(t, err)

	rules, err := svc.ResolveApplicable(ctx, "", time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, rules, 1)

	require.NoError(t, svc.Deactivate(ctx, rule.ID.String()))

	_, err = svc.ResolveApplicable(ctx, "", time.Now().UTC())
	assert.ErrorIs(t, err, ruledomain.ErrNoApplicablePricing)
}

func TestResolveApplicableScopesOverridesToRoute(t *testing.T) {
	svc, _, ctx := newTestService(t)

	rule, err := svc.Create(ctx, ruledomain.CreateRequest{
		Name:      "Flat",
		Type:      ruledomain.FlatRate,
		BasePrice: priceOf(2),
	})
	require.NoError(t, err)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	routeA := node.Generate()
	routeB := node.Generate()

	_, err = svc.AddRoutePricing(ctx, rule.ID.String(), ruledomain.RoutePricingRequest{
		RouteID:   routeA.String(),
		BasePrice: 7,
	})
	require.NoError(t, err)
	_, err = svc.AddRoutePricing(ctx, rule.ID.String(), ruledomain.RoutePricingRequest{
		RouteID:   routeB.String(),
		BasePrice: 9,
	})
	require.NoError(t, err)

	rules, err := svc.ResolveApplicable(ctx, routeA.String(), time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	require.Len(t, rules[0].RoutePricings, 1)
	assert.Equal(t, routeA, rules[0].RoutePricings[0].RouteID)
	assert.Equal(t, 7.0, rules[0].RoutePricings[0].BasePrice)
}
