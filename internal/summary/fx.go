package summary

import (
	"github.com/geopulse/geopulse/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("summary",
	fx.Provide(func(cfg config.Config, log *zap.Logger) *ImageRenderer {
		return NewImageRenderer(cfg.SummaryPath, log)
	}),
	fx.Provide(func(r *ImageRenderer) Renderer { return r }),
)
