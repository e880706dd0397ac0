package trip

import (
	"github.com/farelane/farelane/internal/trip/repository"
	"github.com/farelane/farelane/internal/trip/service"
	"go.uber.org/fx"
)

var Module = fx.Module("trip.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
