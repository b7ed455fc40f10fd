package source

import (
	"net/http"

	"github.com/geopulse/geopulse/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("source",
	fx.Provide(NewHTTPClient),
	fx.Provide(func(client *http.Client, cfg config.Config, log *zap.Logger) CountrySource {
		return NewCountriesClient(client, cfg.CountriesURL, cfg.SourceTimeout, log)
	}),
	fx.Provide(func(client *http.Client, cfg config.Config, log *zap.Logger) RateSource {
		return NewRatesClient(client, cfg.RatesURL, cfg.SourceTimeout, log)
	}),
)
