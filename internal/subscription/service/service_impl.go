package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	subscriptiondomain "github.com/farelane/farelane/internal/subscription/domain"
	"github.com/farelane/farelane/internal/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  subscriptiondomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  subscriptiondomain.Repository
}

func New(p Params) subscriptiondomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("subscription.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) CreatePlan(ctx context.Context, req subscriptiondomain.CreatePlanRequest) (*subscriptiondomain.SubscriptionPlan, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, subscriptiondomain.ErrInvalidTenant
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, subscriptiondomain.ErrInvalidName
	}
	if req.DiscountPercentage < 0 || req.DiscountPercentage > 100 {
		return nil, subscriptiondomain.ErrInvalidDiscount
	}
	if req.DurationDays <= 0 {
		return nil, subscriptiondomain.ErrInvalidDuration
	}

	now := time.Now().UTC()
	entity := &subscriptiondomain.SubscriptionPlan{
		ID:                 s.genID.Generate(),
		TenantID:           tenantID,
		Name:               name,
		DiscountPercentage: req.DiscountPercentage,
		DurationDays:       req.DurationDays,
		Price:              req.Price,
		Active:             true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.InsertPlan(ctx, s.db, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Service) ListPlans(ctx context.Context) ([]subscriptiondomain.SubscriptionPlan, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, subscriptiondomain.ErrInvalidTenant
	}
	return s.repo.ListPlans(ctx, s.db, tenantID)
}

func (s *Service) Subscribe(ctx context.Context, req subscriptiondomain.SubscribeRequest) (*subscriptiondomain.Subscription, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, subscriptiondomain.ErrInvalidTenant
	}

	passengerID, err := parseID(req.PassengerID)
	if err != nil {
		return nil, subscriptiondomain.ErrInvalidID
	}
	planID, err := parseID(req.PlanID)
	if err != nil {
		return nil, subscriptiondomain.ErrInvalidID
	}

	plan, err := s.repo.FindPlanByID(ctx, s.db, tenantID, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil || !plan.Active {
		return nil, subscriptiondomain.ErrPlanNotFound
	}

	now := time.Now().UTC()
	startAt := now
	if req.StartAt != nil {
		startAt = req.StartAt.UTC()
	}

	entity := &subscriptiondomain.Subscription{
		ID:          s.genID.Generate(),
		TenantID:    tenantID,
		PassengerID: passengerID,
		PlanID:      planID,
		Status:      subscriptiondomain.SubscriptionStatusActive,
		StartAt:     startAt,
		EndAt:       startAt.AddDate(0, 0, plan.DurationDays),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Service) Get(ctx context.Context, id string) (*subscriptiondomain.Subscription, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, subscriptiondomain.ErrInvalidTenant
	}

	subscriptionID, err := parseID(id)
	if err != nil {
		return nil, subscriptiondomain.ErrInvalidID
	}

	subscription, err := s.repo.FindByID(ctx, s.db, tenantID, subscriptionID)
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		return nil, subscriptiondomain.ErrSubscriptionNotFound
	}
	return subscription, nil
}

func (s *Service) ActiveDiscountPercent(ctx context.Context, passengerID string, at time.Time) (float64, bool, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return 0, false, subscriptiondomain.ErrInvalidTenant
	}

	parsed, err := parseID(passengerID)
	if err != nil {
		return 0, false, subscriptiondomain.ErrInvalidID
	}

	subscription, err := s.repo.FindActiveByPassengerAt(ctx, s.db, tenantID, parsed, at)
	if err != nil {
		return 0, false, err
	}
	if subscription == nil || subscription.Plan == nil || subscription.Plan.DiscountPercentage <= 0 {
		return 0, false, nil
	}
	return subscription.Plan.DiscountPercentage, true, nil
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
