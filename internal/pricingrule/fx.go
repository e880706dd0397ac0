package pricingrule

import (
	"github.com/farelane/farelane/internal/pricingrule/repository"
	"github.com/farelane/farelane/internal/pricingrule/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricingrule.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
