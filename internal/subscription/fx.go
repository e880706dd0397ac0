package subscription

import (
	"github.com/farelane/farelane/internal/subscription/repository"
	"github.com/farelane/farelane/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
