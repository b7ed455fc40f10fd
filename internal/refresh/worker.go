package refresh

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type WorkerParam struct {
	fx.In

	Log     *zap.Logger
	Service *Service
	Config  Config `optional:"true"`
}

// Worker triggers refresh cycles on a fixed interval. It shares the
// service's single-flight guard with the HTTP trigger, so an externally
// requested refresh and a scheduled one never run twice.
type Worker struct {
	log     *zap.Logger
	service *Service
	cfg     Config
}

func NewWorker(p WorkerParam) *Worker {
	return &Worker{
		log:     p.Log.Named("refresh.worker"),
		service: p.Service,
		cfg:     p.Config.withDefaults(),
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			w.log.Warn("scheduled refresh failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) RunOnce(ctx context.Context) error {
	_, err := w.service.Run(ctx)
	return err
}
