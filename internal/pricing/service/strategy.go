package service

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/farelane/farelane/internal/config"
	pricingdomain "github.com/farelane/farelane/internal/pricing/domain"
	ruledomain "github.com/farelane/farelane/internal/pricingrule/domain"
	"github.com/farelane/farelane/internal/timewindow"
	tripdomain "github.com/farelane/farelane/internal/trip/domain"
)

// baseQuote is the outcome of one strategy evaluation: the charged base
// fare, a separate distance component for distance-based rules, and the
// breakdown lines produced so far.
type baseQuote struct {
	BasePrice      float64
	DistanceCharge float64
	Currency       string
	RuleID         snowflake.ID
	Breakdown      []pricingdomain.LineItem
}

func (q baseQuote) total() float64 {
	return q.BasePrice + q.DistanceCharge
}

// computeBase dispatches on the rule type. The set of types is closed: an
// unrecognized value fails as a configuration error instead of silently
// falling through.
func computeBase(rule ruledomain.PricingRule, trip *tripdomain.TripContext, fromStation, toStation snowflake.ID, cfg config.FareConfig) (*baseQuote, error) {
	switch rule.Type {
	case ruledomain.FlatRate:
		return flatRateQuote(rule, trip)
	case ruledomain.DistanceBased:
		return distanceQuote(rule, trip)
	case ruledomain.StationBased:
		return stationQuote(rule, trip, fromStation, toStation)
	case ruledomain.TimeBased:
		return timeBasedQuote(rule, trip)
	case ruledomain.Dynamic:
		return dynamicQuote(rule, trip, cfg)
	default:
		return nil, fmt.Errorf("%w: unknown rule type %q", pricingdomain.ErrInvalidRuleConfig, rule.Type)
	}
}

// flatRateQuote prefers a per-route override over the rule's own base price.
func flatRateQuote(rule ruledomain.PricingRule, trip *tripdomain.TripContext) (*baseQuote, error) {
	quote := newQuote(rule)

	for _, rp := range rule.RoutePricings {
		if rp.RouteID == trip.Route.ID {
			quote.BasePrice = rp.BasePrice
			if rp.Currency != "" {
				quote.Currency = rp.Currency
			}
			quote.addLine(fmt.Sprintf("Route fare (%s)", trip.Route.Name), rp.BasePrice)
			return quote, nil
		}
	}

	if rule.BasePrice == nil {
		return nil, fmt.Errorf("%w: flat rate rule %s has no base price", pricingdomain.ErrInvalidRuleConfig, rule.ID)
	}
	quote.BasePrice = *rule.BasePrice
	quote.addLine("Base fare", *rule.BasePrice)
	return quote, nil
}

// distanceQuote charges per kilometer over the route's precomputed
// distance, then clamps min first and max last. When min exceeds max the
// max bound wins because it is applied last; this mirrors the original
// rule semantics and must not be reordered.
func distanceQuote(rule ruledomain.PricingRule, trip *tripdomain.TripContext) (*baseQuote, error) {
	if rule.PricePerKm == nil {
		return nil, fmt.Errorf("%w: distance rule %s has no price per km", pricingdomain.ErrInvalidRuleConfig, rule.ID)
	}
	if trip.Route.DistanceKm <= 0 {
		return nil, fmt.Errorf("%w: route %s", pricingdomain.ErrMissingDistance, trip.Route.ID)
	}

	quote := newQuote(rule)
	if rule.BasePrice != nil {
		quote.BasePrice = *rule.BasePrice
		quote.addLine("Base fare", *rule.BasePrice)
	}

	charge := trip.Route.DistanceKm * *rule.PricePerKm
	quote.addLine(fmt.Sprintf("Distance fare (%.1f km x %.2f)", trip.Route.DistanceKm, *rule.PricePerKm), charge)

	total := quote.BasePrice + charge
	if rule.MinPrice != nil && total < *rule.MinPrice {
		quote.addLine("Minimum fare applied", *rule.MinPrice-total)
		total = *rule.MinPrice
	}
	if rule.MaxPrice != nil && total > *rule.MaxPrice {
		quote.addLine("Maximum fare applied", *rule.MaxPrice-total)
		total = *rule.MaxPrice
	}

	quote.DistanceCharge = total - quote.BasePrice
	return quote, nil
}

// stationQuote looks up the fare for a station pair: exact match first,
// then the entry with the smallest stationCount covering the spanned stop
// count, then the largest entry as a final fallback.
func stationQuote(rule ruledomain.PricingRule, trip *tripdomain.TripContext, fromStation, toStation snowflake.ID) (*baseQuote, error) {
	if fromStation == 0 || toStation == 0 {
		return nil, pricingdomain.ErrMissingStations
	}
	if len(rule.StationPricings) == 0 {
		return nil, fmt.Errorf("%w: rule %s route %s", pricingdomain.ErrNoStationPricing, rule.ID, trip.Route.ID)
	}

	quote := newQuote(rule)

	for _, sp := range rule.StationPricings {
		if sp.FromStationID == fromStation && sp.ToStationID == toStation {
			quote.BasePrice = sp.Price
			if sp.Currency != "" {
				quote.Currency = sp.Currency
			}
			quote.addLine("Station pair fare", sp.Price)
			return quote, nil
		}
	}

	fromIdx := tripdomain.StationIndex(trip.Stations, fromStation)
	toIdx := tripdomain.StationIndex(trip.Stations, toStation)
	if fromIdx < 0 || toIdx < 0 {
		return nil, pricingdomain.ErrStationNotOnRoute
	}
	spanned := toIdx - fromIdx
	if spanned < 0 {
		spanned = -spanned
	}

	// Nearest ceiling on stationCount; largest entry when nothing covers
	// the span.
	var ceiling *ruledomain.StationPricing
	var largest *ruledomain.StationPricing
	for i := range rule.StationPricings {
		sp := &rule.StationPricings[i]
		if largest == nil || sp.StationCount > largest.StationCount {
			largest = sp
		}
		if sp.StationCount >= spanned {
			if ceiling == nil || sp.StationCount < ceiling.StationCount {
				ceiling = sp
			}
		}
	}

	selected := ceiling
	if selected == nil {
		selected = largest
	}

	quote.BasePrice = selected.Price
	if selected.Currency != "" {
		quote.Currency = selected.Currency
	}
	quote.addLine(fmt.Sprintf("Station fare (%d stops)", spanned), selected.Price)
	return quote, nil
}

// timeBasedQuote applies the peak multiplier when the trip departs inside
// the peak window. The window may wrap past midnight.
func timeBasedQuote(rule ruledomain.PricingRule, trip *tripdomain.TripContext) (*baseQuote, error) {
	if rule.BasePrice == nil || rule.PeakMultiplier == nil || rule.PeakStartTime == nil || rule.PeakEndTime == nil {
		return nil, fmt.Errorf("%w: time based rule %s is missing peak configuration", pricingdomain.ErrInvalidRuleConfig, rule.ID)
	}

	quote := newQuote(rule)
	quote.BasePrice = *rule.BasePrice
	quote.addLine("Base fare", *rule.BasePrice)

	inPeak, err := timewindow.Contains(*rule.PeakStartTime, *rule.PeakEndTime, trip.Trip.DepartureTime)
	if err != nil {
		return nil, fmt.Errorf("%w: time based rule %s peak window: %v", pricingdomain.ErrInvalidRuleConfig, rule.ID, err)
	}
	if inPeak {
		surcharge := *rule.BasePrice * (*rule.PeakMultiplier - 1)
		quote.BasePrice += surcharge
		quote.addLine(fmt.Sprintf("Peak multiplier x%.2f", *rule.PeakMultiplier), surcharge)
	}
	return quote, nil
}

// dynamicQuote scales the base price by a demand multiplier stepped on the
// trip's occupancy rate.
func dynamicQuote(rule ruledomain.PricingRule, trip *tripdomain.TripContext, cfg config.FareConfig) (*baseQuote, error) {
	if rule.BasePrice == nil {
		return nil, fmt.Errorf("%w: dynamic rule %s has no base price", pricingdomain.ErrInvalidRuleConfig, rule.ID)
	}

	totalSeats := trip.Trip.TotalSeats
	if totalSeats <= 0 && trip.Trip.Bus != nil {
		totalSeats = trip.Trip.Bus.Capacity
	}
	if totalSeats <= 0 {
		totalSeats = cfg.DefaultCapacity
	}

	occupancy := float64(totalSeats-trip.Trip.AvailableSeats) / float64(totalSeats)
	multiplier := demandMultiplier(occupancy, cfg.OccupancySteps)

	quote := newQuote(rule)
	quote.BasePrice = *rule.BasePrice
	quote.addLine("Base fare", *rule.BasePrice)

	if multiplier != 1.0 {
		surcharge := *rule.BasePrice * (multiplier - 1)
		quote.BasePrice += surcharge
		quote.addLine(fmt.Sprintf("Demand multiplier x%.2f (%.0f%% occupancy)", multiplier, occupancy*100), surcharge)
	}
	return quote, nil
}

// demandMultiplier walks the steps highest threshold first and returns the
// multiplier of the first step strictly exceeded.
func demandMultiplier(occupancy float64, steps []config.OccupancyStep) float64 {
	for _, step := range steps {
		if occupancy > step.MinOccupancy {
			return step.Multiplier
		}
	}
	return 1.0
}

func newQuote(rule ruledomain.PricingRule) *baseQuote {
	return &baseQuote{
		Currency: rule.Currency,
		RuleID:   rule.ID,
	}
}

func (q *baseQuote) addLine(description string, amount float64) {
	q.Breakdown = append(q.Breakdown, pricingdomain.LineItem{Description: description, Amount: amount})
}
