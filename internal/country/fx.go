package country

import (
	"github.com/geopulse/geopulse/internal/country/repository"
	"github.com/geopulse/geopulse/internal/country/service"
	"go.uber.org/fx"
)

var Module = fx.Module("country.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
