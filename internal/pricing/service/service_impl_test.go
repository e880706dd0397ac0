package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/farelane/farelane/internal/clock"
	"github.com/farelane/farelane/internal/config"
	discountdomain "github.com/farelane/farelane/internal/discount/domain"
	discountrepo "github.com/farelane/farelane/internal/discount/repository"
	discountservice "github.com/farelane/farelane/internal/discount/service"
	dynamicdomain "github.com/farelane/farelane/internal/dynamicpricing/domain"
	pricingdomain "github.com/farelane/farelane/internal/pricing/domain"
	pricingrepo "github.com/farelane/farelane/internal/pricing/repository"
	ruledomain "github.com/farelane/farelane/internal/pricingrule/domain"
	"github.com/farelane/farelane/internal/quotecache"
	subscriptiondomain "github.com/farelane/farelane/internal/subscription/domain"
	"github.com/farelane/farelane/internal/tenantctx"
	tripdomain "github.com/farelane/farelane/internal/trip/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type stubTrips struct {
	trip *tripdomain.TripContext
}

func (s stubTrips) GetTripContext(ctx context.Context, tripID string) (*tripdomain.TripContext, error) {
	if s.trip == nil {
		return nil, tripdomain.ErrTripNotFound
	}
	return s.trip, nil
}

func (s stubTrips) RecomputeRouteDistance(ctx context.Context, routeID string) (float64, error) {
	return 0, nil
}

type stubRules struct {
	rules []ruledomain.PricingRule
}

func (s *stubRules) Create(ctx context.Context, req ruledomain.CreateRequest) (*ruledomain.PricingRule, error) {
	return nil, nil
}

func (s *stubRules) Update(ctx context.Context, id string, req ruledomain.UpdateRequest) (*ruledomain.PricingRule, error) {
	return nil, nil
}

func (s *stubRules) List(ctx context.Context) ([]ruledomain.PricingRule, error) { return nil, nil }

func (s *stubRules) Get(ctx context.Context, id string) (*ruledomain.PricingRule, error) {
	return nil, nil
}

func (s *stubRules) Deactivate(ctx context.Context, id string) error { return nil }

func (s *stubRules) AddRoutePricing(ctx context.Context, ruleID string, req ruledomain.RoutePricingRequest) (*ruledomain.RoutePricing, error) {
	return nil, nil
}

func (s *stubRules) AddStationPricing(ctx context.Context, ruleID string, req ruledomain.StationPricingRequest) (*ruledomain.StationPricing, error) {
	return nil, nil
}

func (s *stubRules) ResolveApplicable(ctx context.Context, routeID string, at time.Time) ([]ruledomain.PricingRule, error) {
	if len(s.rules) == 0 {
		return nil, ruledomain.ErrNoApplicablePricing
	}
	return s.rules, nil
}

type stubDynamic struct {
	rules []dynamicdomain.DynamicPricingRule
}

func (s stubDynamic) Create(ctx context.Context, req dynamicdomain.CreateRequest) (*dynamicdomain.DynamicPricingRule, error) {
	return nil, nil
}

func (s stubDynamic) List(ctx context.Context) ([]dynamicdomain.DynamicPricingRule, error) {
	return nil, nil
}

func (s stubDynamic) Get(ctx context.Context, id string) (*dynamicdomain.DynamicPricingRule, error) {
	return nil, nil
}

func (s stubDynamic) Deactivate(ctx context.Context, id string) error { return nil }

func (s stubDynamic) Matching(ctx context.Context, routeID string, now time.Time) ([]dynamicdomain.DynamicPricingRule, error) {
	return s.rules, nil
}

type stubSubscriptions struct {
	percent float64
	active  bool
}

func (s stubSubscriptions) CreatePlan(ctx context.Context, req subscriptiondomain.CreatePlanRequest) (*subscriptiondomain.SubscriptionPlan, error) {
	return nil, nil
}

func (s stubSubscriptions) ListPlans(ctx context.Context) ([]subscriptiondomain.SubscriptionPlan, error) {
	return nil, nil
}

func (s stubSubscriptions) Subscribe(ctx context.Context, req subscriptiondomain.SubscribeRequest) (*subscriptiondomain.Subscription, error) {
	return nil, nil
}

func (s stubSubscriptions) Get(ctx context.Context, id string) (*subscriptiondomain.Subscription, error) {
	return nil, nil
}

func (s stubSubscriptions) ActiveDiscountPercent(ctx context.Context, passengerID string, at time.Time) (float64, bool, error) {
	return s.percent, s.active, nil
}

type fixture struct {
	svc         pricingdomain.Service
	db          *gorm.DB
	node        *snowflake.Node
	clk         *clock.FakeClock
	rules       *stubRules
	tenantID    snowflake.ID
	passengerID snowflake.ID
	ctx         context.Context
	trip        *tripdomain.TripContext
}

type fixtureConfig struct {
	rules        []ruledomain.PricingRule
	dynamicRules []dynamicdomain.DynamicPricingRule
	subPercent   float64
	subActive    bool
	fare         *config.FareConfig
}

var testDeparture = time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC) // a Tuesday

func newFixture(t *testing.T, fc fixtureConfig) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&pricingdomain.TripPricing{},
		&discountdomain.Discount{},
		&discountdomain.DiscountUsage{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	tenantID := node.Generate()
	clk := clock.NewFakeClock(testDeparture)

	trip := &tripdomain.TripContext{
		Trip: tripdomain.Trip{
			ID:             1001,
			TenantID:       tenantID,
			RouteID:        2001,
			DepartureTime:  testDeparture,
			TotalSeats:     50,
			AvailableSeats: 50,
		},
		Route: tripdomain.Route{ID: 2001, TenantID: tenantID, Name: "North Line", DistanceKm: 12},
	}

	fare := config.DefaultFareConfig()
	if fc.fare != nil {
		fare = *fc.fare
	}

	discounts := discountservice.New(discountservice.Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  discountrepo.Provide(),
	})

	rules := &stubRules{rules: fc.rules}
	svc := New(Params{
		DB:            conn,
		Log:           zap.NewNop(),
		GenID:         node,
		Clock:         clk,
		Fares:         config.StaticFareConfig(fare),
		Cache:         quotecache.NewQuoteCache(config.Config{}),
		Repo:          pricingrepo.Provide(),
		Trips:         stubTrips{trip: trip},
		Rules:         rules,
		Dynamic:       stubDynamic{rules: fc.dynamicRules},
		Subscriptions: stubSubscriptions{percent: fc.subPercent, active: fc.subActive},
		Discounts:     discounts,
	})

	return &fixture{
		svc:         svc,
		db:          conn,
		node:        node,
		clk:         clk,
		rules:       rules,
		tenantID:    tenantID,
		passengerID: node.Generate(),
		ctx:         tenantctx.WithTenantID(context.Background(), int64(tenantID)),
		trip:        trip,
	}
}

func (f *fixture) createDiscount(t *testing.T, d discountdomain.Discount) discountdomain.Discount {
	t.Helper()
	d.ID = f.node.Generate()
	d.TenantID = f.tenantID
	if d.ValidFrom.IsZero() {
		d.ValidFrom = testDeparture.Add(-24 * time.Hour)
	}
	if d.ValidUntil.IsZero() {
		d.ValidUntil = testDeparture.Add(24 * time.Hour)
	}
	d.IsActive = true
	require.NoError(t, f.db.Create(&d).Error)
	return d
}

func flatRule(id snowflake.ID, price float64) ruledomain.PricingRule {
	return ruledomain.PricingRule{
		ID:        id,
		Type:      ruledomain.FlatRate,
		Status:    ruledomain.RuleStatusActive,
		Currency:  "USD",
		BasePrice: fptr(price),
	}
}

func TestBookingPriceStackingOrder(t *testing.T) {
	f := newFixture(t, fixtureConfig{
		rules: []ruledomain.PricingRule{flatRule(1, 100)},
		dynamicRules: []dynamicdomain.DynamicPricingRule{
			{ID: 10, Name: "Rush hour", Multiplier: 1.2},
		},
		subPercent: 10,
		subActive:  true,
	})
	f.createDiscount(t, discountdomain.Discount{
		Code:  "TAKE5",
		Type:  discountdomain.FixedAmount,
		Value: 5,
	})

	result, err := f.svc.CalculateBookingPrice(f.ctx, pricingdomain.BookingPriceRequest{
		TripID:      "1001",
		PassengerID: f.passengerID.String(),
		PromoCode:   "TAKE5",
	})
	require.NoError(t, err)

	// 100 base, +20 dynamic, -12 subscription (10% of 120), -5 promo.
	assert.InDelta(t, 100.0, result.BasePrice, 1e-9)
	assert.InDelta(t, 20.0, result.DynamicAdjustment, 1e-9)
	assert.InDelta(t, 12.0, result.SubscriptionDiscount, 1e-9)
	assert.InDelta(t, 5.0, result.PromoDiscount, 1e-9)
	assert.InDelta(t, 0.0, result.TaxAmount, 1e-9)
	assert.InDelta(t, 103.0, result.FinalPrice, 1e-9)
	assert.Equal(t, snowflake.ID(1), result.AppliedRuleID)

	var snapshot pricingdomain.TripPricing
	require.NoError(t, f.db.First(&snapshot, "trip_id = ?", 1001).Error)
	assert.InDelta(t, 103.0, snapshot.FinalPrice, 1e-9)

	var stored discountdomain.Discount
	require.NoError(t, f.db.First(&stored, "code = ?", "TAKE5").Error)
	assert.Equal(t, 1, stored.UsedCount)

	var usages int64
	require.NoError(t, f.db.Model(&discountdomain.DiscountUsage{}).Count(&usages).Error)
	assert.EqualValues(t, 1, usages)
}

func TestBookingPriceNeverNegative(t *testing.T) {
	f := newFixture(t, fixtureConfig{
		rules: []ruledomain.PricingRule{flatRule(1, 10)},
	})
	f.createDiscount(t, discountdomain.Discount{
		Code:  "HUGE",
		Type:  discountdomain.FixedAmount,
		Value: 1000,
	})

	result, err := f.svc.CalculateBookingPrice(f.ctx, pricingdomain.BookingPriceRequest{
		TripID:      "1001",
		PassengerID: f.passengerID.String(),
		PromoCode:   "HUGE",
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, result.FinalPrice, 1e-9)
}

func TestBookingPricePercentagePromoCapped(t *testing.T) {
	f := newFixture(t, fixtureConfig{
		rules: []ruledomain.PricingRule{flatRule(1, 100)},
	})
	f.createDiscount(t, discountdomain.Discount{
		Code:        "HALF",
		Type:        discountdomain.Percentage,
		Value:       50,
		MaxDiscount: fptr(10),
	})

	result, err := f.svc.CalculateBookingPrice(f.ctx, pricingdomain.BookingPriceRequest{
		TripID:      "1001",
		PassengerID: f.passengerID.String(),
		PromoCode:   "HALF",
	})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, result.PromoDiscount, 1e-9)
	assert.InDelta(t, 90.0, result.FinalPrice, 1e-9)
}

func TestBookingPriceMinAmountBlocksPromo(t *testing.T) {
	f := newFixture(t, fixtureConfig{
		rules: []ruledomain.PricingRule{flatRule(1, 100)},
	})
	f.createDiscount(t, discountdomain.Discount{
		Code:      "BIGSPEND",
		Type:      discountdomain.FixedAmount,
		Value:     20,
		MinAmount: fptr(500),
	})

	_, err := f.svc.CalculateBookingPrice(f.ctx, pricingdomain.BookingPriceRequest{
		TripID:      "1001",
		PassengerID: f.passengerID.String(),
		PromoCode:   "BIGSPEND",
	})
	assert.ErrorIs(t, err, pricingdomain.ErrDiscountNotApplied)

	// Nothing was persisted: no snapshot, no redemption.
	var snapshots int64
	require.NoError(t, f.db.Model(&pricingdomain.TripPricing{}).Count(&snapshots).Error)
	assert.EqualValues(t, 0, snapshots)

	var stored discountdomain.Discount
	require.NoError(t, f.db.First(&stored, "code = ?", "BIGSPEND").Error)
	assert.Equal(t, 0, stored.UsedCount)
}

func TestBookingPriceExhaustedCodeRejected(t *testing.T) {
	f := newFixture(t, fixtureConfig{
		rules: []ruledomain.PricingRule{flatRule(1, 100)},
	})
	limit := 1
	f.createDiscount(t, discountdomain.Discount{
		Code:       "LASTONE",
		Type:       discountdomain.FixedAmount,
		Value:      5,
		UsageLimit: &limit,
	})

	_, err := f.svc.CalculateBookingPrice(f.ctx, pricingdomain.BookingPriceRequest{
		TripID:      "1001",
		PassengerID: f.passengerID.String(),
		PromoCode:   "LASTONE",
	})
	require.NoError(t, err)

	_, err = f.svc.CalculateBookingPrice(f.ctx, pricingdomain.BookingPriceRequest{
		TripID:      "1001",
		PassengerID: f.node.Generate().String(),
		PromoCode:   "LASTONE",
	})
	assert.ErrorIs(t, err, pricingdomain.ErrDiscountNotApplied)

	var stored discountdomain.Discount
	require.NoError(t, f.db.First(&stored, "code = ?", "LASTONE").Error)
	assert.Equal(t, 1, stored.UsedCount)
}

func TestBookingPriceTaxApplied(t *testing.T) {
	fare := config.DefaultFareConfig()
	fare.TaxRate = 0.1
	f := newFixture(t, fixtureConfig{
		rules: []ruledomain.PricingRule{flatRule(1, 100)},
		fare:  &fare,
	})

	result, err := f.svc.CalculateBookingPrice(f.ctx, pricingdomain.BookingPriceRequest{
		TripID:      "1001",
		PassengerID: f.passengerID.String(),
	})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, result.TaxAmount, 1e-9)
	assert.InDelta(t, 110.0, result.FinalPrice, 1e-9)
}

func TestTripPriceFallsBackAcrossRules(t *testing.T) {
	// Highest priority rule is station-based with no pricing entries; the
	// resolver should log it and move on to the flat rule.
	broken := ruledomain.PricingRule{
		ID:     7,
		Type:   ruledomain.StationBased,
		Status: ruledomain.RuleStatusActive,
	}
	f := newFixture(t, fixtureConfig{
		rules: []ruledomain.PricingRule{broken, flatRule(8, 50)},
	})

	result, err := f.svc.CalculateTripPrice(f.ctx, pricingdomain.TripPriceRequest{TripID: "1001"})
	require.NoError(t, err)
	assert.InDelta(t, 50.0, result.FinalPrice, 1e-9)
	assert.Equal(t, snowflake.ID(8), result.AppliedRuleID)
}

func TestTripPriceNoApplicableRules(t *testing.T) {
	f := newFixture(t, fixtureConfig{})

	_, err := f.svc.CalculateTripPrice(f.ctx, pricingdomain.TripPriceRequest{TripID: "1001"})
	assert.ErrorIs(t, err, pricingdomain.ErrNoApplicablePricing)
}

func TestTripPriceSkipsDayMismatch(t *testing.T) {
	monday := flatRule(1, 99)
	monday.ApplicableDays = datatypes.JSON(`["MONDAY"]`)
	f := newFixture(t, fixtureConfig{
		rules: []ruledomain.PricingRule{monday, flatRule(2, 60)},
	})

	// Departure is a Tuesday.
	result, err := f.svc.CalculateTripPrice(f.ctx, pricingdomain.TripPriceRequest{TripID: "1001"})
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(2), result.AppliedRuleID)
	assert.InDelta(t, 60.0, result.FinalPrice, 1e-9)
}

func TestTripPriceRequiresTenant(t *testing.T) {
	f := newFixture(t, fixtureConfig{
		rules: []ruledomain.PricingRule{flatRule(1, 10)},
	})

	_, err := f.svc.CalculateTripPrice(context.Background(), pricingdomain.TripPriceRequest{TripID: "1001"})
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidTenant)
}

func TestReapplyOverwritesSnapshot(t *testing.T) {
	f := newFixture(t, fixtureConfig{
		rules: []ruledomain.PricingRule{flatRule(1, 100)},
	})

	_, err := f.svc.CalculateBookingPrice(f.ctx, pricingdomain.BookingPriceRequest{
		TripID:      "1001",
		PassengerID: f.passengerID.String(),
	})
	require.NoError(t, err)

	f.rules.rules = []ruledomain.PricingRule{flatRule(1, 120)}

	result, err := f.svc.ReapplyTripPricing(f.ctx, "1001")
	require.NoError(t, err)
	assert.InDelta(t, 120.0, result.FinalPrice, 1e-9)

	var snapshots []pricingdomain.TripPricing
	require.NoError(t, f.db.Find(&snapshots).Error)
	require.Len(t, snapshots, 1)
	assert.InDelta(t, 120.0, snapshots[0].FinalPrice, 1e-9)
}
