package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	ruledomain "github.com/farelane/farelane/internal/pricingrule/domain"
	"github.com/farelane/farelane/internal/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  ruledomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  ruledomain.Repository
}

func New(p Params) ruledomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("pricingrule.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req ruledomain.CreateRequest) (*ruledomain.PricingRule, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, ruledomain.ErrInvalidTenant
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ruledomain.ErrInvalidName
	}

	ruleType, err := parseRuleType(req.Type)
	if err != nil {
		return nil, err
	}

	status := ruledomain.RuleStatusActive
	if req.Status != nil {
		status, err = parseRuleStatus(*req.Status)
		if err != nil {
			return nil, err
		}
	}

	if err := validateRuleConfig(ruleType, req); err != nil {
		return nil, err
	}

	if req.ValidFrom != nil && req.ValidUntil != nil && !req.ValidFrom.Before(*req.ValidUntil) {
		return nil, ruledomain.ErrInvalidValidityRange
	}

	isDefault := false
	if req.IsDefault != nil {
		isDefault = *req.IsDefault
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}

	var applicableDays datatypes.JSON
	if len(req.ApplicableDays) > 0 {
		days, err := normalizeDays(req.ApplicableDays)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(days)
		if err != nil {
			return nil, err
		}
		applicableDays = datatypes.JSON(raw)
	}

	now := time.Now().UTC()
	entity := &ruledomain.PricingRule{
		ID:             s.genID.Generate(),
		TenantID:       tenantID,
		Name:           name,
		Description:    req.Description,
		Type:           ruleType,
		Status:         status,
		Priority:       req.Priority,
		IsDefault:      isDefault,
		Currency:       currency,
		BasePrice:      req.BasePrice,
		PricePerKm:     req.PricePerKm,
		MinPrice:       req.MinPrice,
		MaxPrice:       req.MaxPrice,
		PeakMultiplier: req.PeakMultiplier,
		PeakStartTime:  req.PeakStartTime,
		PeakEndTime:    req.PeakEndTime,
		ValidFrom:      req.ValidFrom,
		ValidUntil:     req.ValidUntil,
		ApplicableDays: applicableDays,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.Metadata != nil {
		entity.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		return nil, err
	}

	return entity, nil
}

func (s *Service) Update(ctx context.Context, id string, req ruledomain.UpdateRequest) (*ruledomain.PricingRule, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, ruledomain.ErrInvalidTenant
	}

	ruleID, err := parseID(id)
	if err != nil {
		return nil, ruledomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, tenantID, ruleID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, ruledomain.ErrRuleNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ruledomain.ErrInvalidName
		}
		entity.Name = name
	}
	if req.Description != nil {
		entity.Description = *req.Description
	}
	if req.Status != nil {
		status, err := parseRuleStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		entity.Status = status
	}
	if req.Priority != nil {
		entity.Priority = *req.Priority
	}
	if req.IsDefault != nil {
		entity.IsDefault = *req.IsDefault
	}
	if req.BasePrice != nil {
		entity.BasePrice = req.BasePrice
	}
	if req.PricePerKm != nil {
		entity.PricePerKm = req.PricePerKm
	}
	if req.MinPrice != nil {
		entity.MinPrice = req.MinPrice
	}
	if req.MaxPrice != nil {
		entity.MaxPrice = req.MaxPrice
	}
	if req.ValidFrom != nil {
		entity.ValidFrom = req.ValidFrom
	}
	if req.ValidUntil != nil {
		entity.ValidUntil = req.ValidUntil
	}
	if entity.ValidFrom != nil && entity.ValidUntil != nil && !entity.ValidFrom.Before(*entity.ValidUntil) {
		return nil, ruledomain.ErrInvalidValidityRange
	}

	entity.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, entity); err != nil {
		return nil, err
	}

	return entity, nil
}

func (s *Service) List(ctx context.Context) ([]ruledomain.PricingRule, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, ruledomain.ErrInvalidTenant
	}
	return s.repo.List(ctx, s.db, tenantID)
}

func (s *Service) Get(ctx context.Context, id string) (*ruledomain.PricingRule, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, ruledomain.ErrInvalidTenant
	}

	ruleID, err := parseID(id)
	if err != nil {
		return nil, ruledomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, tenantID, ruleID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, ruledomain.ErrRuleNotFound
	}
	return entity, nil
}

// Deactivate is a soft delete: the rule stops matching the resolver but
// historical trip pricing snapshots keep referencing it.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	status := ruledomain.RuleStatusInactive
	_, err := s.Update(ctx, id, ruledomain.UpdateRequest{Status: &status})
	return err
}

func (s *Service) AddRoutePricing(ctx context.Context, ruleID string, req ruledomain.RoutePricingRequest) (*ruledomain.RoutePricing, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, ruledomain.ErrInvalidTenant
	}

	parsedRuleID, err := parseID(ruleID)
	if err != nil {
		return nil, ruledomain.ErrInvalidID
	}
	routeID, err := parseID(req.RouteID)
	if err != nil {
		return nil, ruledomain.ErrInvalidID
	}
	if req.BasePrice < 0 {
		return nil, ruledomain.ErrInvalidPrice
	}

	rule, err := s.repo.FindByID(ctx, s.db, tenantID, parsedRuleID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ruledomain.ErrRuleNotFound
	}

	now := time.Now().UTC()
	entity := &ruledomain.RoutePricing{
		ID:            s.genID.Generate(),
		TenantID:      tenantID,
		PricingRuleID: parsedRuleID,
		RouteID:       routeID,
		BasePrice:     req.BasePrice,
		Currency:      currencyOrDefault(req.Currency, rule.Currency),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.InsertRoutePricing(ctx, s.db, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Service) AddStationPricing(ctx context.Context, ruleID string, req ruledomain.StationPricingRequest) (*ruledomain.StationPricing, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, ruledomain.ErrInvalidTenant
	}

	parsedRuleID, err := parseID(ruleID)
	if err != nil {
		return nil, ruledomain.ErrInvalidID
	}
	routeID, err := parseID(req.RouteID)
	if err != nil {
		return nil, ruledomain.ErrInvalidID
	}
	fromID, err := parseID(req.FromStationID)
	if err != nil {
		return nil, ruledomain.ErrInvalidID
	}
	toID, err := parseID(req.ToStationID)
	if err != nil {
		return nil, ruledomain.ErrInvalidID
	}
	if req.Price < 0 || req.StationCount < 0 {
		return nil, ruledomain.ErrInvalidPrice
	}

	rule, err := s.repo.FindByID(ctx, s.db, tenantID, parsedRuleID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ruledomain.ErrRuleNotFound
	}

	now := time.Now().UTC()
	entity := &ruledomain.StationPricing{
		ID:            s.genID.Generate(),
		TenantID:      tenantID,
		PricingRuleID: parsedRuleID,
		RouteID:       routeID,
		FromStationID: fromID,
		ToStationID:   toID,
		Price:         req.Price,
		StationCount:  req.StationCount,
		Currency:      currencyOrDefault(req.Currency, rule.Currency),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.InsertStationPricing(ctx, s.db, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Service) ResolveApplicable(ctx context.Context, routeID string, at time.Time) ([]ruledomain.PricingRule, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, ruledomain.ErrInvalidTenant
	}

	var parsedRouteID snowflake.ID
	if strings.TrimSpace(routeID) != "" {
		parsed, err := parseID(routeID)
		if err != nil {
			return nil, ruledomain.ErrInvalidID
		}
		parsedRouteID = parsed
	}

	rules, err := s.repo.FindApplicable(ctx, s.db, tenantID, parsedRouteID, at)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, ruledomain.ErrNoApplicablePricing
	}
	return rules, nil
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}

func currencyOrDefault(value, fallback string) string {
	currency := strings.ToUpper(strings.TrimSpace(value))
	if currency == "" {
		return fallback
	}
	return currency
}
