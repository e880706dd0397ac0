package pricing

import (
	"github.com/farelane/farelane/internal/pricing/repository"
	"github.com/farelane/farelane/internal/pricing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
