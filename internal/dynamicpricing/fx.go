package dynamicpricing

import (
	"github.com/farelane/farelane/internal/dynamicpricing/repository"
	"github.com/farelane/farelane/internal/dynamicpricing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dynamicpricing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
