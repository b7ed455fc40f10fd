// Package refresh coordinates the full ingestion cycle: fetch both sources,
// merge and derive per record, upsert the batch in one transaction, then
// generate the summary artifact best-effort.
package refresh

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/geopulse/geopulse/internal/clock"
	"github.com/geopulse/geopulse/internal/country/domain"
	"github.com/geopulse/geopulse/internal/metadata"
	"github.com/geopulse/geopulse/internal/observability/metrics"
	"github.com/geopulse/geopulse/internal/source"
	"github.com/geopulse/geopulse/internal/summary"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Result reports one completed refresh cycle.
type Result struct {
	TotalCountries int
	CompletedAt    time.Time
}

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Rand        *rand.Rand
	Clock       clock.Clock
	Countries   source.CountrySource
	Rates       source.RateSource
	CountryRepo domain.Repository
	MetaRepo    metadata.Repository
	Renderer    summary.Renderer
	Metrics     *metrics.RefreshMetrics `optional:"true"`
	Config      Config                  `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID       *snowflake.Node
	rand        *rand.Rand
	clock       clock.Clock
	countries   source.CountrySource
	rates       source.RateSource
	countryRepo domain.Repository
	metaRepo    metadata.Repository
	renderer    summary.Renderer
	metrics     *metrics.RefreshMetrics
	cfg         Config

	flight singleflight.Group
}

func NewService(p ServiceParam) *Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("refresh.service"),
		genID:       p.GenID,
		rand:        p.Rand,
		clock:       p.Clock,
		countries:   p.Countries,
		rates:       p.Rates,
		countryRepo: p.CountryRepo,
		metaRepo:    p.MetaRepo,
		renderer:    p.Renderer,
		metrics:     p.Metrics,
		cfg:         p.Config.withDefaults(),
	}
}

// Run executes one refresh cycle. Overlapping callers share a single
// in-flight cycle instead of racing each other into the upsert path.
func (s *Service) Run(ctx context.Context) (Result, error) {
	value, err, shared := s.flight.Do("refresh-cycle", func() (any, error) {
		return s.runCycle(ctx)
	})
	if err != nil {
		return Result{}, err
	}
	if shared {
		s.log.Debug("refresh piggybacked on in-flight cycle")
	}
	return value.(Result), nil
}

func (s *Service) runCycle(ctx context.Context) (Result, error) {
	start := time.Now()

	countries, rates, err := s.fetchSources(ctx)
	if err != nil {
		s.metrics.IncCycle("source_failure")
		s.log.Warn("refresh aborted, source fetch failed", zap.Error(err))
		return Result{}, fmt.Errorf("refresh cycle: %w", err)
	}

	// Once both fetches succeed the commit phase runs to completion even
	// if the triggering caller disconnects; with the single-flight guard a
	// canceled caller would otherwise fail every piggybacked waiter too.
	dbctx := context.WithoutCancel(ctx)

	var completedAt time.Time
	err = s.db.WithContext(dbctx).Transaction(func(tx *gorm.DB) error {
		for _, raw := range countries {
			candidate := s.merge(raw, rates, s.clock.Now())
			if err := s.countryRepo.Upsert(dbctx, tx, candidate); err != nil {
				return fmt.Errorf("upsert %q: %w", raw.Name, err)
			}
		}
		completedAt = s.clock.Now()
		return s.metaRepo.Touch(dbctx, tx, completedAt)
	})
	if err != nil {
		s.metrics.IncCycle("persist_failure")
		return Result{}, fmt.Errorf("refresh cycle: %w", err)
	}

	s.metrics.IncCycle("success")
	s.metrics.SetCountryCount(len(countries))
	s.metrics.ObserveCycleDuration(time.Since(start))
	s.log.Info("refresh cycle completed",
		zap.Int("total_countries", len(countries)),
		zap.Time("completed_at", completedAt),
	)

	// Artifact generation reads committed data and must never fail the cycle.
	s.generateSummary(dbctx, len(countries), completedAt)

	return Result{TotalCountries: len(countries), CompletedAt: completedAt}, nil
}

// fetchSources loads both upstreams concurrently; either failure aborts the
// cycle before any write happens.
func (s *Service) fetchSources(ctx context.Context) ([]source.RawCountry, source.RateTable, error) {
	var (
		countries []source.RawCountry
		rates     source.RateTable
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		fetched, err := s.countries.FetchCountries(gctx)
		if err != nil {
			return err
		}
		s.metrics.ObserveSourceFetch(source.NameCountries, time.Since(start))
		countries = fetched
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		fetched, err := s.rates.FetchRates(gctx)
		if err != nil {
			return err
		}
		s.metrics.ObserveSourceFetch(source.NameRates, time.Since(start))
		rates = fetched
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return countries, rates, nil
}

// merge joins one raw record with its exchange rate and derives the GDP
// estimate. Records with no currency or no rate still produce a candidate
// with estimated_gdp 0; nothing is skipped.
func (s *Service) merge(raw source.RawCountry, rates source.RateTable, now time.Time) *domain.Country {
	code := domain.FirstCurrencyCode(raw.Currencies)

	var rate *float64
	if code != nil {
		if value, ok := rates[*code]; ok {
			rate = &value
		}
	}

	estimatedGDP := 0.0
	if gdp := domain.EstimateGDP(raw.Population, rate, s.rand); gdp != nil {
		estimatedGDP = *gdp
	}

	return &domain.Country{
		ID:              s.genID.Generate(),
		Name:            raw.Name,
		NameNormalized:  domain.NormalizeName(raw.Name),
		Capital:         optional(raw.Capital),
		Region:          optional(raw.Region),
		Population:      raw.Population,
		CurrencyCode:    code,
		ExchangeRate:    rate,
		EstimatedGDP:    estimatedGDP,
		FlagURL:         optional(raw.Flag),
		LastRefreshedAt: now,
	}
}

func (s *Service) generateSummary(ctx context.Context, total int, completedAt time.Time) {
	top, err := s.countryRepo.TopByGDP(ctx, s.cfg.TopN)
	if err != nil {
		s.log.Warn("summary skipped, top-N query failed", zap.Error(err))
		return
	}

	entries := make([]summary.Entry, 0, len(top))
	for i, country := range top {
		entries = append(entries, summary.Entry{
			Rank: i + 1,
			Name: country.Name,
			GDP:  country.EstimatedGDP,
		})
	}

	if err := s.renderer.Render(summary.Input{
		TotalCountries: total,
		Top:            entries,
		CompletedAt:    completedAt,
	}); err != nil {
		s.log.Warn("summary image generation failed", zap.Error(err))
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
