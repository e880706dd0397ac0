package server

import (
	"net/http"
	"strings"
	"time"

	ruledomain "github.com/farelane/farelane/internal/pricingrule/domain"
	"github.com/gin-gonic/gin"
)

type createPricingRuleRequest struct {
	Name           string                `json:"name"`
	Description    string                `json:"description"`
	Type           ruledomain.RuleType   `json:"type"`
	Status         *ruledomain.RuleStatus `json:"status"`
	Priority       int                   `json:"priority"`
	IsDefault      *bool                 `json:"is_default"`
	Currency       string                `json:"currency"`
	BasePrice      *float64              `json:"base_price"`
	PricePerKm     *float64              `json:"price_per_km"`
	MinPrice       *float64              `json:"min_price"`
	MaxPrice       *float64              `json:"max_price"`
	PeakMultiplier *float64              `json:"peak_multiplier"`
	PeakStartTime  *string               `json:"peak_start_time"`
	PeakEndTime    *string               `json:"peak_end_time"`
	ValidFrom      *time.Time            `json:"valid_from"`
	ValidUntil     *time.Time            `json:"valid_until"`
	ApplicableDays []string              `json:"applicable_days"`
	Metadata       map[string]any        `json:"metadata"`
}

func (s *Server) CreatePricingRule(c *gin.Context) {
	var req createPricingRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ruleSvc.Create(c.Request.Context(), ruledomain.CreateRequest{
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Type:           req.Type,
		Status:         req.Status,
		Priority:       req.Priority,
		IsDefault:      req.IsDefault,
		Currency:       req.Currency,
		BasePrice:      req.BasePrice,
		PricePerKm:     req.PricePerKm,
		MinPrice:       req.MinPrice,
		MaxPrice:       req.MaxPrice,
		PeakMultiplier: req.PeakMultiplier,
		PeakStartTime:  req.PeakStartTime,
		PeakEndTime:    req.PeakEndTime,
		ValidFrom:      req.ValidFrom,
		ValidUntil:     req.ValidUntil,
		ApplicableDays: req.ApplicableDays,
		Metadata:       req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPricingRules(c *gin.Context) {
	resp, err := s.ruleSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPricingRuleByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.ruleSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdatePricingRule(c *gin.Context) {
	var req ruledomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.ruleSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeactivatePricingRule(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.ruleSvc.Deactivate(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id, "status": ruledomain.RuleStatusInactive}})
}

func (s *Server) AddRoutePricing(c *gin.Context) {
	var req ruledomain.RoutePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ruleID := strings.TrimSpace(c.Param("id"))
	resp, err := s.ruleSvc.AddRoutePricing(c.Request.Context(), ruleID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AddStationPricing(c *gin.Context) {
	var req ruledomain.StationPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ruleID := strings.TrimSpace(c.Param("id"))
	resp, err := s.ruleSvc.AddStationPricing(c.Request.Context(), ruleID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
