package server

import (
	"errors"
	"net/http"
	"strings"

	pricingdomain "github.com/farelane/farelane/internal/pricing/domain"
	"github.com/gin-gonic/gin"
)

// QuoteTripPrice returns the base fare for a trip without side effects.
// The station pair is optional and only consulted by station-based rules.
func (s *Server) QuoteTripPrice(c *gin.Context) {
	req := pricingdomain.TripPriceRequest{
		TripID:        strings.TrimSpace(c.Param("id")),
		FromStationID: strings.TrimSpace(c.Query("from_station_id")),
		ToStationID:   strings.TrimSpace(c.Query("to_station_id")),
	}

	resp, err := s.pricingSvc.CalculateTripPrice(c.Request.Context(), req)
	if err != nil {
		s.obsMetrics.RecordQuote("error")
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordQuote("ok")
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// PriceBooking runs the full pipeline and persists the trip pricing
// snapshot; a promo code is redeemed in the same transaction.
func (s *Server) PriceBooking(c *gin.Context) {
	var req pricingdomain.BookingPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.pricingSvc.CalculateBookingPrice(c.Request.Context(), req)
	if err != nil {
		if req.PromoCode != "" && errors.Is(err, pricingdomain.ErrDiscountNotApplied) {
			s.obsMetrics.RecordDiscountRedemption("rejected")
		}
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordBookingPriced()
	if req.PromoCode != "" {
		s.obsMetrics.RecordDiscountRedemption("applied")
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReapplyTripPricing(c *gin.Context) {
	tripID := strings.TrimSpace(c.Param("id"))
	resp, err := s.pricingSvc.ReapplyTripPricing(c.Request.Context(), tripID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// GetFareConfig returns the live fare configuration, including any values
// picked up from a config file reload.
func (s *Server) GetFareConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.fares.Get()})
}

func (s *Server) RecomputeRouteDistance(c *gin.Context) {
	routeID := strings.TrimSpace(c.Param("id"))
	distanceKm, err := s.tripSvc.RecomputeRouteDistance(c.Request.Context(), routeID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"route_id": routeID, "distance_km": distanceKm}})
}
