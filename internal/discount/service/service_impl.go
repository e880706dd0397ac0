package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	discountdomain "github.com/farelane/farelane/internal/discount/domain"
	"github.com/farelane/farelane/internal/tenantctx"
	"github.com/farelane/farelane/pkg/db"
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
	Repo  discountdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  discountdomain.Repository
}

func New(p Params) discountdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("discount.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req discountdomain.CreateRequest) (*discountdomain.Discount, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, discountdomain.ErrInvalidTenant
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, discountdomain.ErrInvalidCode
	}

	discountType, err := parseDiscountType(req.Type)
	if err != nil {
		return nil, err
	}
	if req.Value <= 0 {
		return nil, discountdomain.ErrInvalidValue
	}
	if discountType == discountdomain.Percentage && req.Value > 100 {
		return nil, discountdomain.ErrInvalidValue
	}
	if req.ValidFrom.IsZero() || req.ValidUntil.IsZero() || !req.ValidFrom.Before(req.ValidUntil) {
		return nil, discountdomain.ErrInvalidValidity
	}

	now := time.Now().UTC()
	entity := &discountdomain.Discount{
		ID:             s.genID.Generate(),
		TenantID:       tenantID,
		Code:           code,
		Description:    req.Description,
		Type:           discountType,
		Value:          req.Value,
		MinAmount:      req.MinAmount,
		MaxDiscount:    req.MaxDiscount,
		UsageLimit:     req.UsageLimit,
		MaxUsesPerUser: req.MaxUsesPerUser,
		ValidFrom:      req.ValidFrom.UTC(),
		ValidUntil:     req.ValidUntil.UTC(),
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.Metadata != nil {
		entity.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, discountdomain.ErrDuplicateCode
		}
		return nil, err
	}
	return entity, nil
}

func (s *Service) List(ctx context.Context) ([]discountdomain.Discount, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, discountdomain.ErrInvalidTenant
	}
	return s.repo.List(ctx, s.db, tenantID)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*discountdomain.Discount, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, discountdomain.ErrInvalidTenant
	}

	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, discountdomain.ErrInvalidCode
	}

	discount, err := s.repo.FindByCode(ctx, s.db, tenantID, normalized)
	if err != nil {
		return nil, err
	}
	if discount == nil {
		return nil, discountdomain.ErrNotFound
	}
	return discount, nil
}

func (s *Service) Check(ctx context.Context, code, passengerID string, now time.Time) (*discountdomain.Discount, discountdomain.ValidationResult, error) {
	discount, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, discountdomain.ValidationResult{}, err
	}

	priorUses := 0
	if discount.MaxUsesPerUser != nil && strings.TrimSpace(passengerID) != "" {
		parsed, err := snowflake.ParseString(strings.TrimSpace(passengerID))
		if err != nil {
			return nil, discountdomain.ValidationResult{}, discountdomain.ErrInvalidID
		}
		priorUses, err = s.repo.CountUsesByPassenger(ctx, s.db, discount.ID, parsed)
		if err != nil {
			return nil, discountdomain.ValidationResult{}, err
		}
	}

	return discount, discountdomain.Validate(*discount, now, priorUses), nil
}

// Redeem consumes one use inside the caller's transaction. The conditional
// increment carries the usage-limit predicate, so validation passing earlier
// does not matter if another booking drained the last use in between.
func (s *Service) Redeem(ctx context.Context, tx *gorm.DB, req discountdomain.RedeemRequest) error {
	if tx == nil {
		tx = s.db
	}

	ok, err := s.repo.IncrementUsage(ctx, tx, req.DiscountID)
	if err != nil {
		return err
	}
	if !ok {
		return discountdomain.ErrExhausted
	}

	usage := &discountdomain.DiscountUsage{
		ID:          s.genID.Generate(),
		TenantID:    req.TenantID,
		DiscountID:  req.DiscountID,
		PassengerID: req.PassengerID,
		BookingID:   req.BookingID,
		Amount:      req.Amount,
		UsedAt:      req.Now.UTC(),
	}
	return s.repo.InsertUsage(ctx, tx, usage)
}

func parseDiscountType(value discountdomain.DiscountType) (discountdomain.DiscountType, error) {
	switch strings.ToUpper(strings.TrimSpace(string(value))) {
	case string(discountdomain.Percentage):
		return discountdomain.Percentage, nil
	case string(discountdomain.FixedAmount):
		return discountdomain.FixedAmount, nil
	default:
		return "", discountdomain.ErrInvalidDiscountType
	}
}
