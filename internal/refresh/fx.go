package refresh

import (
	"context"
	"math/rand"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/geopulse/geopulse/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("refresh",
	fx.Provide(func(cfg config.Config) Config {
		c := DefaultConfig()
		c.Interval = cfg.RefreshInterval
		return c
	}),
	fx.Provide(func() (*snowflake.Node, error) {
		return snowflake.NewNode(1)
	}),
	fx.Provide(func() *rand.Rand {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}),
	fx.Provide(NewService),
	fx.Provide(NewWorker),
	fx.Invoke(runWorker),
)

func runWorker(lc fx.Lifecycle, worker *Worker, cfg Config) {
	if cfg.Interval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go worker.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
