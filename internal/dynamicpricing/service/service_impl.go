package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	dynamicdomain "github.com/farelane/farelane/internal/dynamicpricing/domain"
	"github.com/farelane/farelane/internal/tenantctx"
	"github.com/farelane/farelane/internal/timewindow"
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
	Repo  dynamicdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  dynamicdomain.Repository
}

func New(p Params) dynamicdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("dynamicpricing.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req dynamicdomain.CreateRequest) (*dynamicdomain.DynamicPricingRule, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, dynamicdomain.ErrInvalidTenant
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, dynamicdomain.ErrInvalidName
	}

	if _, err := timewindow.Minutes(req.StartTime); err != nil {
		return nil, dynamicdomain.ErrInvalidWindow
	}
	if _, err := timewindow.Minutes(req.EndTime); err != nil {
		return nil, dynamicdomain.ErrInvalidWindow
	}

	multiplier := 1.0
	if req.Multiplier != nil {
		if *req.Multiplier <= 0 {
			return nil, dynamicdomain.ErrInvalidMultiplier
		}
		multiplier = *req.Multiplier
	}

	var routeID *snowflake.ID
	if req.RouteID != nil && strings.TrimSpace(*req.RouteID) != "" {
		parsed, err := snowflake.ParseString(strings.TrimSpace(*req.RouteID))
		if err != nil {
			return nil, dynamicdomain.ErrInvalidID
		}
		routeID = &parsed
	}

	var daysOfWeek datatypes.JSON
	if len(req.DaysOfWeek) > 0 {
		days := make([]string, 0, len(req.DaysOfWeek))
		for _, day := range req.DaysOfWeek {
			days = append(days, strings.ToUpper(strings.TrimSpace(day)))
		}
		raw, err := json.Marshal(days)
		if err != nil {
			return nil, err
		}
		daysOfWeek = datatypes.JSON(raw)
	}

	now := time.Now().UTC()
	entity := &dynamicdomain.DynamicPricingRule{
		ID:              s.genID.Generate(),
		TenantID:        tenantID,
		RouteID:         routeID,
		Name:            name,
		DaysOfWeek:      daysOfWeek,
		StartTime:       strings.TrimSpace(req.StartTime),
		EndTime:         strings.TrimSpace(req.EndTime),
		Multiplier:      multiplier,
		FixedAdjustment: req.FixedAdjustment,
		ActiveFrom:      req.ActiveFrom,
		ActiveTo:        req.ActiveTo,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Service) List(ctx context.Context) ([]dynamicdomain.DynamicPricingRule, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, dynamicdomain.ErrInvalidTenant
	}
	return s.repo.List(ctx, s.db, tenantID)
}

func (s *Service) Get(ctx context.Context, id string) (*dynamicdomain.DynamicPricingRule, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, dynamicdomain.ErrInvalidTenant
	}

	ruleID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, dynamicdomain.ErrInvalidID
	}

	rule, err := s.repo.FindByID(ctx, s.db, tenantID, ruleID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, dynamicdomain.ErrRuleNotFound
	}
	return rule, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) error {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return dynamicdomain.ErrInvalidTenant
	}

	ruleID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return dynamicdomain.ErrInvalidID
	}
	return s.repo.Deactivate(ctx, s.db, tenantID, ruleID)
}

// Matching filters active rules down to those whose day-of-week and
// time-of-day window cover now. Adjustments stack: every match applies.
func (s *Service) Matching(ctx context.Context, routeID string, now time.Time) ([]dynamicdomain.DynamicPricingRule, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, dynamicdomain.ErrInvalidTenant
	}

	var parsedRouteID snowflake.ID
	if strings.TrimSpace(routeID) != "" {
		parsed, err := snowflake.ParseString(strings.TrimSpace(routeID))
		if err != nil {
			return nil, dynamicdomain.ErrInvalidID
		}
		parsedRouteID = parsed
	}

	candidates, err := s.repo.ListActive(ctx, s.db, tenantID, parsedRouteID, now)
	if err != nil {
		return nil, err
	}

	matched := make([]dynamicdomain.DynamicPricingRule, 0, len(candidates))
	for _, rule := range candidates {
		if !matchesDay(rule.DaysOfWeek, now) {
			continue
		}
		inWindow, err := timewindow.Contains(rule.StartTime, rule.EndTime, now)
		if err != nil {
			s.log.Warn("skipping dynamic rule with malformed window",
				zap.String("rule_id", rule.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if inWindow {
			matched = append(matched, rule)
		}
	}
	return matched, nil
}

// matchesDay treats an empty day list as every day.
func matchesDay(daysOfWeek datatypes.JSON, now time.Time) bool {
	if len(daysOfWeek) == 0 {
		return true
	}
	var days []string
	if err := json.Unmarshal(daysOfWeek, &days); err != nil {
		return false
	}
	if len(days) == 0 {
		return true
	}
	today := strings.ToUpper(now.Weekday().String())
	for _, day := range days {
		if strings.ToUpper(strings.TrimSpace(day)) == today {
			return true
		}
	}
	return false
}
