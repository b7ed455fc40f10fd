package observability

import (
	"github.com/geopulse/geopulse/internal/config"
	"github.com/geopulse/geopulse/internal/observability/logger"
	"github.com/geopulse/geopulse/internal/observability/metrics"
	"github.com/geopulse/geopulse/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(func(cfg config.Config) logger.Config {
		return logger.Config{
			Level:       cfg.Log.Level,
			Environment: cfg.Environment,
			File:        cfg.Log.File,
		}
	}),
	fx.Provide(logger.New),
	fx.Provide(func(cfg config.Config) tracing.Config {
		return tracing.Config{
			Enabled:          cfg.Tracing.Enabled,
			ServiceName:      cfg.AppName,
			ServiceVersion:   cfg.Version,
			Environment:      cfg.Environment,
			ExporterEndpoint: cfg.Tracing.ExporterEndpoint,
			ExporterProtocol: cfg.Tracing.ExporterProtocol,
			SamplingRatio:    cfg.Tracing.SamplingRatio,
		}
	}),
	fx.Provide(tracing.NewProvider),
	fx.Provide(func(cfg config.Config) metrics.Config {
		return metrics.Config{
			ServiceName: cfg.AppName,
			Environment: cfg.Environment,
		}
	}),
	fx.Provide(metrics.NewMeterProvider),
	fx.Provide(metrics.NewHTTPMetrics),
	fx.Provide(metrics.RefreshWithConfig),
	// Force provider construction so tracing starts with the app.
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)
