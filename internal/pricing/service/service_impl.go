package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/farelane/farelane/internal/clock"
	"github.com/farelane/farelane/internal/config"
	discountdomain "github.com/farelane/farelane/internal/discount/domain"
	dynamicdomain "github.com/farelane/farelane/internal/dynamicpricing/domain"
	pricingdomain "github.com/farelane/farelane/internal/pricing/domain"
	ruledomain "github.com/farelane/farelane/internal/pricingrule/domain"
	"github.com/farelane/farelane/internal/quotecache"
	subscriptiondomain "github.com/farelane/farelane/internal/subscription/domain"
	"github.com/farelane/farelane/internal/tenantctx"
	tripdomain "github.com/farelane/farelane/internal/trip/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const reapplyLockTTL = 10 * time.Second

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Fares         *config.FareConfigHolder
	Cache         *quotecache.QuoteCache
	Repo          pricingdomain.Repository
	Trips         tripdomain.Service
	Rules         ruledomain.Service
	Dynamic       dynamicdomain.Service
	Subscriptions subscriptiondomain.Service
	Discounts     discountdomain.Service
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	fares         *config.FareConfigHolder
	cache         *quotecache.QuoteCache
	repo          pricingdomain.Repository
	trips         tripdomain.Service
	rules         ruledomain.Service
	dynamic       dynamicdomain.Service
	subscriptions subscriptiondomain.Service
	discounts     discountdomain.Service
}

func New(p Params) pricingdomain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("pricing.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		fares:         p.Fares,
		cache:         p.Cache,
		repo:          p.Repo,
		trips:         p.Trips,
		rules:         p.Rules,
		dynamic:       p.Dynamic,
		subscriptions: p.Subscriptions,
		discounts:     p.Discounts,
	}
}

// CalculateTripPrice is the read-only preview: rule resolution plus the
// base strategy, cached per (trip, station pair).
func (s *Service) CalculateTripPrice(ctx context.Context, req pricingdomain.TripPriceRequest) (*pricingdomain.Result, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, pricingdomain.ErrInvalidTenant
	}

	if cached, hit, err := s.cache.Get(ctx, tenantID.String(), req.TripID, req.FromStationID, req.ToStationID); err != nil {
		s.log.Warn("quote cache read failed", zap.Error(err))
	} else if hit {
		return cached, nil
	}

	trip, err := s.tripContext(ctx, req.TripID)
	if err != nil {
		return nil, err
	}
	fromStation, toStation, err := parseStationPair(req.FromStationID, req.ToStationID)
	if err != nil {
		return nil, err
	}

	cfg := s.fares.Get()
	quote, err := s.resolveBase(ctx, trip, fromStation, toStation, cfg)
	if err != nil {
		return nil, err
	}

	result := &pricingdomain.Result{
		BasePrice:      quote.BasePrice,
		DistanceCharge: quote.DistanceCharge,
		FinalPrice:     clampNonNegative(quote.total()),
		Currency:       currencyOrDefault(quote.Currency, cfg.DefaultCurrency),
		AppliedRuleID:  quote.RuleID,
		Breakdown:      quote.Breakdown,
	}

	if err := s.cache.Set(ctx, tenantID.String(), req.TripID, req.FromStationID, req.ToStationID, result); err != nil {
		s.log.Warn("quote cache write failed", zap.Error(err))
	}
	return result, nil
}

// CalculateBookingPrice runs the full adjustment pipeline in stacking
// order: base, dynamic adjustments, subscription discount, promo code,
// tax, then a floor at zero. The snapshot write and the promo redemption
// commit or roll back together.
func (s *Service) CalculateBookingPrice(ctx context.Context, req pricingdomain.BookingPriceRequest) (*pricingdomain.Result, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, pricingdomain.ErrInvalidTenant
	}

	passengerID, err := snowflake.ParseString(strings.TrimSpace(req.PassengerID))
	if err != nil {
		return nil, pricingdomain.ErrInvalidID
	}

	trip, err := s.tripContext(ctx, req.TripID)
	if err != nil {
		return nil, err
	}
	fromStation, toStation, err := parseStationPair(req.FromStationID, req.ToStationID)
	if err != nil {
		return nil, err
	}

	cfg := s.fares.Get()
	quote, err := s.resolveBase(ctx, trip, fromStation, toStation, cfg)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	base := quote.total()
	subtotal := base
	breakdown := quote.Breakdown

	// Dynamic adjustments stack additively against the unadjusted base.
	matches, err := s.dynamic.Matching(ctx, trip.Route.ID.String(), now)
	if err != nil {
		return nil, err
	}
	var dynamicAdjustment float64
	for _, rule := range matches {
		adjustment := base*(rule.Multiplier-1) + rule.FixedAdjustment
		if adjustment == 0 {
			continue
		}
		dynamicAdjustment += adjustment
		breakdown = append(breakdown, pricingdomain.LineItem{
			Description: fmt.Sprintf("Dynamic adjustment (%s)", rule.Name),
			Amount:      adjustment,
		})
	}
	subtotal += dynamicAdjustment

	percent, active, err := s.subscriptions.ActiveDiscountPercent(ctx, req.PassengerID, now)
	if err != nil {
		return nil, err
	}
	var subscriptionDiscount float64
	if active && percent > 0 {
		subscriptionDiscount = subtotal * percent / 100
		breakdown = append(breakdown, pricingdomain.LineItem{
			Description: fmt.Sprintf("Subscriber discount (%.0f%%)", percent),
			Amount:      -subscriptionDiscount,
		})
		subtotal -= subscriptionDiscount
	}

	var promoDiscount float64
	var applied *discountdomain.Discount
	if code := strings.TrimSpace(req.PromoCode); code != "" {
		discount, validation, err := s.discounts.Check(ctx, code, req.PassengerID, now)
		if err != nil {
			return nil, err
		}
		if !validation.Valid {
			return nil, fmt.Errorf("%w: %s", pricingdomain.ErrDiscountNotApplied, validation.Reason)
		}
		if discount.MinAmount != nil && subtotal < *discount.MinAmount {
			return nil, fmt.Errorf("%w: fare is below the minimum amount", pricingdomain.ErrDiscountNotApplied)
		}

		promoDiscount = promoAmount(*discount, subtotal)
		if promoDiscount > 0 {
			applied = discount
			breakdown = append(breakdown, pricingdomain.LineItem{
				Description: fmt.Sprintf("Promo code %s", discount.Code),
				Amount:      -promoDiscount,
			})
			subtotal -= promoDiscount
		}
	}

	var taxAmount float64
	if cfg.TaxRate > 0 {
		taxAmount = subtotal * cfg.TaxRate
		breakdown = append(breakdown, pricingdomain.LineItem{
			Description: fmt.Sprintf("Tax (%.1f%%)", cfg.TaxRate*100),
			Amount:      taxAmount,
		})
		subtotal += taxAmount
	}

	finalPrice := clampNonNegative(subtotal)
	currency := currencyOrDefault(quote.Currency, cfg.DefaultCurrency)

	snapshot := &pricingdomain.TripPricing{
		ID:            s.genID.Generate(),
		TenantID:      tenantID,
		TripID:        trip.Trip.ID,
		PricingRuleID: quote.RuleID,
		BasePrice:     quote.BasePrice,
		FinalPrice:    finalPrice,
		Currency:      currency,
		AppliedAt:     now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Upsert(ctx, tx, snapshot); err != nil {
			return err
		}
		if applied == nil {
			return nil
		}
		err := s.discounts.Redeem(ctx, tx, discountdomain.RedeemRequest{
			TenantID:    tenantID,
			DiscountID:  applied.ID,
			PassengerID: passengerID,
			Amount:      promoDiscount,
			Now:         now,
		})
		if errors.Is(err, discountdomain.ErrExhausted) {
			return fmt.Errorf("%w: %s", pricingdomain.ErrDiscountNotApplied, discountdomain.ReasonUsageExhausted)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateTrip(ctx, tenantID.String(), trip.Trip.ID.String()); err != nil {
		s.log.Warn("quote cache invalidation failed", zap.Error(err))
	}

	s.log.Info("booking priced",
		zap.String("trip_id", trip.Trip.ID.String()),
		zap.String("rule_id", quote.RuleID.String()),
		zap.Float64("final_price", finalPrice),
		zap.String("currency", currency),
	)

	return &pricingdomain.Result{
		BasePrice:            quote.BasePrice,
		DistanceCharge:       quote.DistanceCharge,
		DynamicAdjustment:    dynamicAdjustment,
		SubscriptionDiscount: subscriptionDiscount,
		PromoDiscount:        promoDiscount,
		TaxAmount:            taxAmount,
		FinalPrice:           finalPrice,
		Currency:             currency,
		AppliedRuleID:        quote.RuleID,
		Breakdown:            breakdown,
	}, nil
}

// ReapplyTripPricing recalculates the base fare and rewrites the trip's
// snapshot. A redis lock keeps concurrent reapplies from interleaving.
func (s *Service) ReapplyTripPricing(ctx context.Context, tripID string) (*pricingdomain.Result, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, pricingdomain.ErrInvalidTenant
	}

	token, acquired, err := s.cache.TryLock(ctx, tripID, reapplyLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, pricingdomain.ErrReapplyInProgress
	}
	defer func() {
		if err := s.cache.Release(ctx, tripID, token); err != nil {
			s.log.Warn("reapply lock release failed", zap.Error(err))
		}
	}()

	trip, err := s.tripContext(ctx, tripID)
	if err != nil {
		return nil, err
	}

	cfg := s.fares.Get()
	quote, err := s.resolveBase(ctx, trip, 0, 0, cfg)
	if err != nil {
		return nil, err
	}

	finalPrice := clampNonNegative(quote.total())
	currency := currencyOrDefault(quote.Currency, cfg.DefaultCurrency)

	snapshot := &pricingdomain.TripPricing{
		ID:            s.genID.Generate(),
		TenantID:      tenantID,
		TripID:        trip.Trip.ID,
		PricingRuleID: quote.RuleID,
		BasePrice:     quote.BasePrice,
		FinalPrice:    finalPrice,
		Currency:      currency,
		AppliedAt:     s.clock.Now(),
	}
	if err := s.repo.Upsert(ctx, s.db, snapshot); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateTrip(ctx, tenantID.String(), trip.Trip.ID.String()); err != nil {
		s.log.Warn("quote cache invalidation failed", zap.Error(err))
	}

	s.log.Info("trip pricing reapplied",
		zap.String("trip_id", trip.Trip.ID.String()),
		zap.String("rule_id", quote.RuleID.String()),
		zap.Float64("final_price", finalPrice),
	)

	return &pricingdomain.Result{
		BasePrice:      quote.BasePrice,
		DistanceCharge: quote.DistanceCharge,
		FinalPrice:     finalPrice,
		Currency:       currency,
		AppliedRuleID:  quote.RuleID,
		Breakdown:      quote.Breakdown,
	}, nil
}

// resolveBase walks candidate rules best first. A rule that does not apply
// on the departure weekday is skipped silently; a rule whose strategy
// fails is logged and skipped so a lower-priority rule can still price the
// trip.
func (s *Service) resolveBase(ctx context.Context, trip *tripdomain.TripContext, fromStation, toStation snowflake.ID, cfg config.FareConfig) (*baseQuote, error) {
	departure := trip.Trip.DepartureTime

	candidates, err := s.rules.ResolveApplicable(ctx, trip.Route.ID.String(), departure)
	if err != nil {
		if errors.Is(err, ruledomain.ErrNoApplicablePricing) {
			return nil, pricingdomain.ErrNoApplicablePricing
		}
		return nil, err
	}

	tried := 0
	for _, rule := range candidates {
		if !matchesApplicableDay(rule, departure) {
			continue
		}
		tried++

		quote, err := computeBase(rule, trip, fromStation, toStation, cfg)
		if err != nil {
			s.log.Warn("pricing rule skipped",
				zap.String("rule_id", rule.ID.String()),
				zap.String("rule_type", string(rule.Type)),
				zap.Error(err),
			)
			continue
		}
		return quote, nil
	}

	if tried == 0 {
		return nil, pricingdomain.ErrNoApplicablePricing
	}
	return nil, fmt.Errorf("%w: no candidate rule produced a price", pricingdomain.ErrUnableToCalculate)
}

func (s *Service) tripContext(ctx context.Context, tripID string) (*tripdomain.TripContext, error) {
	trip, err := s.trips.GetTripContext(ctx, tripID)
	switch {
	case errors.Is(err, tripdomain.ErrInvalidID):
		return nil, pricingdomain.ErrInvalidID
	case errors.Is(err, tripdomain.ErrTripNotFound):
		return nil, pricingdomain.ErrTripNotFound
	case err != nil:
		return nil, err
	}
	return trip, nil
}

// matchesApplicableDay treats an empty list as every day.
func matchesApplicableDay(rule ruledomain.PricingRule, at time.Time) bool {
	if len(rule.ApplicableDays) == 0 {
		return true
	}
	var days []string
	if err := json.Unmarshal(rule.ApplicableDays, &days); err != nil {
		return false
	}
	if len(days) == 0 {
		return true
	}
	day := strings.ToUpper(at.Weekday().String())
	for _, candidate := range days {
		if strings.ToUpper(strings.TrimSpace(candidate)) == day {
			return true
		}
	}
	return false
}

// promoAmount computes the discount against the running subtotal. The
// final price floor, not this helper, keeps oversized fixed discounts from
// going below zero.
func promoAmount(discount discountdomain.Discount, subtotal float64) float64 {
	var amount float64
	switch discount.Type {
	case discountdomain.Percentage:
		amount = subtotal * discount.Value / 100
		if discount.MaxDiscount != nil && amount > *discount.MaxDiscount {
			amount = *discount.MaxDiscount
		}
	case discountdomain.FixedAmount:
		amount = discount.Value
	}
	if amount < 0 {
		return 0
	}
	return amount
}

func parseStationPair(fromStation, toStation string) (snowflake.ID, snowflake.ID, error) {
	var fromID, toID snowflake.ID
	if value := strings.TrimSpace(fromStation); value != "" {
		parsed, err := snowflake.ParseString(value)
		if err != nil {
			return 0, 0, pricingdomain.ErrInvalidID
		}
		fromID = parsed
	}
	if value := strings.TrimSpace(toStation); value != "" {
		parsed, err := snowflake.ParseString(value)
		if err != nil {
			return 0, 0, pricingdomain.ErrInvalidID
		}
		toID = parsed
	}
	return fromID, toID, nil
}

func clampNonNegative(value float64) float64 {
	if value < 0 {
		return 0
	}
	return value
}

func currencyOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
