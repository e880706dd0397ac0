package server

import (
	"context"
	"net/http"
	"time"

	"github.com/farelane/farelane/internal/clock"
	"github.com/farelane/farelane/internal/config"
	"github.com/farelane/farelane/internal/discount"
	discountdomain "github.com/farelane/farelane/internal/discount/domain"
	"github.com/farelane/farelane/internal/dynamicpricing"
	dynamicdomain "github.com/farelane/farelane/internal/dynamicpricing/domain"
	"github.com/farelane/farelane/internal/observability"
	obslogger "github.com/farelane/farelane/internal/observability/logger"
	obsmetrics "github.com/farelane/farelane/internal/observability/metrics"
	obstracing "github.com/farelane/farelane/internal/observability/tracing"
	"github.com/farelane/farelane/internal/pricing"
	pricingdomain "github.com/farelane/farelane/internal/pricing/domain"
	"github.com/farelane/farelane/internal/pricingrule"
	ruledomain "github.com/farelane/farelane/internal/pricingrule/domain"
	"github.com/farelane/farelane/internal/quotecache"
	"github.com/farelane/farelane/internal/subscription"
	subscriptiondomain "github.com/farelane/farelane/internal/subscription/domain"
	"github.com/farelane/farelane/internal/trip"
	tripdomain "github.com/farelane/farelane/internal/trip/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	quotecache.Module,
	trip.Module,
	pricingrule.Module,
	dynamicpricing.Module,
	subscription.Module,
	discount.Module,
	pricing.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, m *obsmetrics.Metrics, registry *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", obsmetrics.Handler(registry))

	return r
}

func registerGin(obsCfg observability.Config, m *obsmetrics.Metrics, registry *prometheus.Registry) *gin.Engine {
	return NewEngine(obsCfg, m, registry)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	clock  clock.Clock
	fares  *config.FareConfigHolder

	obsMetrics *obsmetrics.Metrics

	tripSvc         tripdomain.Service
	ruleSvc         ruledomain.Service
	dynamicSvc      dynamicdomain.Service
	subscriptionSvc subscriptiondomain.Service
	discountSvc     discountdomain.Service
	pricingSvc      pricingdomain.Service
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	Clock clock.Clock
	Fares *config.FareConfigHolder

	ObsMetrics *obsmetrics.Metrics `optional:"true"`

	TripSvc         tripdomain.Service
	RuleSvc         ruledomain.Service
	DynamicSvc      dynamicdomain.Service
	SubscriptionSvc subscriptiondomain.Service
	DiscountSvc     discountdomain.Service
	PricingSvc      pricingdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		clock:           p.Clock,
		fares:           p.Fares,
		obsMetrics:      p.ObsMetrics,
		tripSvc:         p.TripSvc,
		ruleSvc:         p.RuleSvc,
		dynamicSvc:      p.DynamicSvc,
		subscriptionSvc: p.SubscriptionSvc,
		discountSvc:     p.DiscountSvc,
		pricingSvc:      p.PricingSvc,
	}

	svc.RegisterAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterAPIRoutes() {
	v1 := s.engine.Group("/v1", s.TenantContext())

	// -------- Pricing rules --------
	v1.POST("/pricing-rules", s.CreatePricingRule)
	v1.GET("/pricing-rules", s.ListPricingRules)
	v1.GET("/pricing-rules/:id", s.GetPricingRuleByID)
	v1.PATCH("/pricing-rules/:id", s.UpdatePricingRule)
	v1.DELETE("/pricing-rules/:id", s.DeactivatePricingRule)
	v1.POST("/pricing-rules/:id/route-pricings", s.AddRoutePricing)
	v1.POST("/pricing-rules/:id/station-pricings", s.AddStationPricing)

	// -------- Dynamic pricing --------
	v1.POST("/dynamic-rules", s.CreateDynamicRule)
	v1.GET("/dynamic-rules", s.ListDynamicRules)
	v1.GET("/dynamic-rules/:id", s.GetDynamicRuleByID)
	v1.DELETE("/dynamic-rules/:id", s.DeactivateDynamicRule)

	// -------- Discounts --------
	v1.POST("/discounts", s.CreateDiscount)
	v1.GET("/discounts", s.ListDiscounts)
	v1.GET("/discounts/:code", s.GetDiscountByCode)
	v1.POST("/discounts/check", s.CheckDiscount)

	// -------- Subscriptions --------
	v1.POST("/subscription-plans", s.CreateSubscriptionPlan)
	v1.GET("/subscription-plans", s.ListSubscriptionPlans)
	v1.POST("/subscriptions", s.Subscribe)
	v1.GET("/subscriptions/:id", s.GetSubscriptionByID)

	// -------- Trips and fares --------
	v1.GET("/fare-config", s.GetFareConfig)
	v1.GET("/trips/:id/quote", s.QuoteTripPrice)
	v1.POST("/trips/:id/reapply-pricing", s.ReapplyTripPricing)
	v1.POST("/routes/:id/recompute-distance", s.RecomputeRouteDistance)
	v1.POST("/bookings/price", s.PriceBooking)
}
