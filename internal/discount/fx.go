package discount

import (
	"github.com/farelane/farelane/internal/discount/repository"
	"github.com/farelane/farelane/internal/discount/service"
	"go.uber.org/fx"
)

var Module = fx.Module("discount.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
