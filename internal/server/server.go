// Package server exposes the HTTP API: refresh triggering, country reads
// and deletes, status, and the summary image.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/geopulse/geopulse/internal/cache"
	"github.com/geopulse/geopulse/internal/config"
	"github.com/geopulse/geopulse/internal/country/domain"
	"github.com/geopulse/geopulse/internal/observability/logger"
	"github.com/geopulse/geopulse/internal/observability/metrics"
	"github.com/geopulse/geopulse/internal/refresh"
	"github.com/geopulse/geopulse/internal/summary"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	statusCacheKey = "status"
	statusCacheTTL = 5 * time.Second

	refreshRateLimit  = 10
	refreshRateWindow = time.Minute
)

// Refresher triggers one ingestion cycle.
type Refresher interface {
	Run(ctx context.Context) (refresh.Result, error)
}

type ServerParam struct {
	fx.In

	Log        *zap.Logger
	CountrySvc domain.Service
	RefreshSvc Refresher
	Renderer   *summary.ImageRenderer
}

type Server struct {
	log        *zap.Logger
	countrySvc domain.Service
	refreshSvc Refresher
	renderer   *summary.ImageRenderer

	statusCache *cache.TTLCache[string, domain.Status]
	limiter     *RateLimiter
}

func NewServer(p ServerParam) *Server {
	return &Server{
		log:         p.Log.Named("server"),
		countrySvc:  p.CountrySvc,
		refreshSvc:  p.RefreshSvc,
		renderer:    p.Renderer,
		statusCache: cache.NewTTLCache[string, domain.Status](),
		limiter:     NewRateLimiter(refreshRateLimit, refreshRateWindow),
	}
}

// NewEngine builds the gin engine with the shared middleware chain.
func NewEngine(cfg config.Config, log *zap.Logger, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		Logger:    log,
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	engine.Use(metrics.GinMiddleware(httpMetrics))
	return engine
}

func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.handleHealthz)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	refreshHandlers := engine.Group("/countries/refresh", s.limiter.Middleware())
	refreshHandlers.GET("", s.handleRefresh)
	refreshHandlers.POST("", s.handleRefresh)

	engine.GET("/countries", s.handleListCountries)
	engine.GET("/countries/image", s.handleSummaryImage)
	engine.GET("/countries/:name", s.handleGetCountry)
	engine.DELETE("/countries/:name", s.handleDeleteCountry)

	engine.GET("/status", s.handleStatus)

	s.log.Debug("routes registered")
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

var Module = fx.Module("server",
	fx.Provide(func(svc *refresh.Service) Refresher { return svc }),
	fx.Provide(NewServer),
	fx.Provide(NewEngine),
	fx.Invoke(runHTTP),
)

func runHTTP(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, engine *gin.Engine, server *Server) {
	server.RegisterRoutes(engine)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return httpServer.Shutdown(ctx)
		},
	})
}
