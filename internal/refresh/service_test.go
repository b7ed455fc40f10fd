package refresh

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/geopulse/geopulse/internal/clock"
	"github.com/geopulse/geopulse/internal/country/domain"
	"github.com/geopulse/geopulse/internal/country/repository"
	"github.com/geopulse/geopulse/internal/metadata"
	"github.com/geopulse/geopulse/internal/source"
	"github.com/geopulse/geopulse/internal/summary"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubCountrySource struct {
	countries []source.RawCountry
	err       error
	delay     time.Duration
	calls     atomic.Int32
}

func (s *stubCountrySource) FetchCountries(ctx context.Context) ([]source.RawCountry, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.countries, nil
}

type stubRateSource struct {
	rates   source.RateTable
	err     error
	onFetch func()
}

func (s *stubRateSource) FetchRates(ctx context.Context) (source.RateTable, error) {
	if s.onFetch != nil {
		s.onFetch()
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.rates, nil
}

type recordingRenderer struct {
	mu     sync.Mutex
	inputs []summary.Input
	err    error
}

func (r *recordingRenderer) Render(in summary.Input) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, in)
	return r.err
}

func (r *recordingRenderer) last(t *testing.T) summary.Input {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.inputs) == 0 {
		t.Fatal("expected at least one render call")
	}
	return r.inputs[len(r.inputs)-1]
}

func TestRunPersistsMergedCountries(t *testing.T) {
	db := setupRefreshTestDB(t)
	fixedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	countries := &stubCountrySource{countries: []source.RawCountry{
		{
			Name:       "Nigeria",
			Capital:    "Abuja",
			Region:     "Africa",
			Population: 200000000,
			Flag:       "https://flags.example/ng.svg",
			Currencies: []source.Currency{{Code: "NGN", Name: "Naira"}},
		},
		{
			Name:       "Atlantis",
			Population: 5000,
			Currencies: []source.Currency{{Code: "ATL"}},
		},
		{
			Name:       "Antarctica",
			Population: 1000,
		},
	}}
	rates := &stubRateSource{rates: source.RateTable{"NGN": 1600, "GHS": 15.3}}
	renderer := &recordingRenderer{}

	svc := newTestService(t, db, countries, rates, renderer, clock.Fixed{At: fixedAt})

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.TotalCountries != 3 {
		t.Fatalf("expected 3 countries, got %d", result.TotalCountries)
	}
	if !result.CompletedAt.Equal(fixedAt) {
		t.Fatalf("expected completion at %v, got %v", fixedAt, result.CompletedAt)
	}

	repo := repository.Provide(db)
	nigeria, err := repo.FindByName(context.Background(), "nigeria")
	if err != nil || nigeria == nil {
		t.Fatalf("expected Nigeria persisted, got %v, %v", nigeria, err)
	}
	if nigeria.CurrencyCode == nil || *nigeria.CurrencyCode != "NGN" {
		t.Fatalf("expected NGN currency, got %v", nigeria.CurrencyCode)
	}
	if nigeria.ExchangeRate == nil || *nigeria.ExchangeRate != 1600 {
		t.Fatalf("expected rate 1600, got %v", nigeria.ExchangeRate)
	}
	low := float64(200000000) * 1000 / 1600
	high := float64(200000000) * 2000 / 1600
	if nigeria.EstimatedGDP < low || nigeria.EstimatedGDP >= high {
		t.Fatalf("estimated GDP %v outside [%v, %v)", nigeria.EstimatedGDP, low, high)
	}
	if !nigeria.LastRefreshedAt.Equal(fixedAt) {
		t.Fatalf("expected last_refreshed_at %v, got %v", fixedAt, nigeria.LastRefreshedAt)
	}

	// Currency with no published rate: rate stays empty, GDP defaults to zero.
	atlantis, err := repo.FindByName(context.Background(), "Atlantis")
	if err != nil || atlantis == nil {
		t.Fatalf("expected Atlantis persisted, got %v, %v", atlantis, err)
	}
	if atlantis.ExchangeRate != nil || atlantis.EstimatedGDP != 0 {
		t.Fatalf("expected no rate and zero GDP, got %v, %v", atlantis.ExchangeRate, atlantis.EstimatedGDP)
	}

	// No currencies at all: same zero-GDP handling, record still stored.
	antarctica, err := repo.FindByName(context.Background(), "Antarctica")
	if err != nil || antarctica == nil {
		t.Fatalf("expected Antarctica persisted, got %v, %v", antarctica, err)
	}
	if antarctica.CurrencyCode != nil || antarctica.EstimatedGDP != 0 {
		t.Fatalf("expected nil currency and zero GDP, got %v, %v", antarctica.CurrencyCode, antarctica.EstimatedGDP)
	}

	meta, err := metadata.Provide(db).Get(context.Background())
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta == nil || meta.LastRefreshedAt == nil || !meta.LastRefreshedAt.Equal(fixedAt) {
		t.Fatalf("expected metadata touched at %v, got %+v", fixedAt, meta)
	}

	rendered := renderer.last(t)
	if rendered.TotalCountries != 3 {
		t.Fatalf("expected 3 in summary, got %d", rendered.TotalCountries)
	}
	if len(rendered.Top) == 0 || rendered.Top[0].Name != "Nigeria" {
		t.Fatalf("expected Nigeria on top of summary, got %+v", rendered.Top)
	}
}

func TestRunAbortsWithoutWritesOnSourceFailure(t *testing.T) {
	db := setupRefreshTestDB(t)

	countries := &stubCountrySource{countries: []source.RawCountry{
		{Name: "Kenya", Population: 55000000},
	}}
	rates := &stubRateSource{err: &source.Error{Source: source.NameRates, Err: source.ErrTimeout}}
	renderer := &recordingRenderer{}

	svc := newTestService(t, db, countries, rates, renderer, clock.SystemClock{})

	_, err := svc.Run(context.Background())
	if err == nil {
		t.Fatal("expected a failure")
	}
	var srcErr *source.Error
	if !errors.As(err, &srcErr) || srcErr.Source != source.NameRates {
		t.Fatalf("expected rate source error to surface, got %v", err)
	}

	var count int64
	if err := db.Model(&domain.Country{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no rows after aborted cycle, got %d", count)
	}
	meta, err := metadata.Provide(db).Get(context.Background())
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta != nil {
		t.Fatalf("expected untouched metadata, got %+v", meta)
	}
	renderer.mu.Lock()
	defer renderer.mu.Unlock()
	if len(renderer.inputs) != 0 {
		t.Fatal("expected no render call after aborted cycle")
	}
}

// steppingClock advances by one step on every reading.
type steppingClock struct {
	mu   sync.Mutex
	at   time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = c.at.Add(c.step)
	return c.at
}

func TestRunStampsCompletionAfterProcessing(t *testing.T) {
	db := setupRefreshTestDB(t)

	countries := &stubCountrySource{countries: []source.RawCountry{
		{Name: "Nigeria", Population: 200000000, Currencies: []source.Currency{{Code: "NGN"}}},
		{Name: "Ghana", Population: 30000000, Currencies: []source.Currency{{Code: "GHS"}}},
	}}
	rates := &stubRateSource{rates: source.RateTable{"NGN": 1600, "GHS": 15.3}}
	renderer := &recordingRenderer{}
	clk := &steppingClock{at: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), step: time.Second}

	svc := newTestService(t, db, countries, rates, renderer, clk)

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	meta, err := metadata.Provide(db).Get(context.Background())
	if err != nil || meta == nil || meta.LastRefreshedAt == nil {
		t.Fatalf("metadata: %+v, %v", meta, err)
	}
	if !result.CompletedAt.Equal(*meta.LastRefreshedAt) {
		t.Fatalf("expected result timestamp to match metadata, got %v vs %v", result.CompletedAt, meta.LastRefreshedAt)
	}

	// The cycle's completion time is read after every record was processed.
	all, err := repository.Provide(db).List(context.Background(), domain.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, country := range all {
		if !country.LastRefreshedAt.Before(result.CompletedAt) {
			t.Fatalf("expected %s stamped before completion %v, got %v", country.Name, result.CompletedAt, country.LastRefreshedAt)
		}
	}
}

func TestRunCommitsAfterCallerDisconnects(t *testing.T) {
	db := setupRefreshTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	countries := &stubCountrySource{countries: []source.RawCountry{
		{Name: "Kenya", Population: 55000000, Currencies: []source.Currency{{Code: "KES"}}},
	}}
	// The caller goes away the moment both fetches have succeeded.
	rates := &stubRateSource{rates: source.RateTable{"KES": 129}, onFetch: cancel}
	renderer := &recordingRenderer{}

	svc := newTestService(t, db, countries, rates, renderer, clock.SystemClock{})

	result, err := svc.Run(ctx)
	if err != nil {
		t.Fatalf("expected the commit phase to outlive the caller, got %v", err)
	}
	if result.TotalCountries != 1 {
		t.Fatalf("expected 1 country, got %d", result.TotalCountries)
	}

	var count int64
	if err := db.Model(&domain.Country{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected the row to be committed, got %d rows", count)
	}
	meta, err := metadata.Provide(db).Get(context.Background())
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta == nil || meta.LastRefreshedAt == nil {
		t.Fatal("expected metadata touched despite the disconnect")
	}
	renderer.last(t)
}

func TestRunSurvivesRendererFailure(t *testing.T) {
	db := setupRefreshTestDB(t)

	countries := &stubCountrySource{countries: []source.RawCountry{
		{Name: "Ghana", Population: 30000000, Currencies: []source.Currency{{Code: "GHS"}}},
	}}
	rates := &stubRateSource{rates: source.RateTable{"GHS": 15.3}}
	renderer := &recordingRenderer{err: errors.New("disk full")}

	svc := newTestService(t, db, countries, rates, renderer, clock.SystemClock{})

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("expected success despite renderer failure, got %v", err)
	}
	if result.TotalCountries != 1 {
		t.Fatalf("expected 1 country, got %d", result.TotalCountries)
	}
}

func TestRepeatedRunsUpdateInPlace(t *testing.T) {
	db := setupRefreshTestDB(t)

	countries := &stubCountrySource{countries: []source.RawCountry{
		{Name: "Nigeria", Population: 200000000, Currencies: []source.Currency{{Code: "NGN"}}},
	}}
	rates := &stubRateSource{rates: source.RateTable{"NGN": 1600}}
	renderer := &recordingRenderer{}

	svc := newTestService(t, db, countries, rates, renderer, clock.SystemClock{})

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	countries.countries[0].Name = "NIGERIA"
	countries.countries[0].Population = 210000000
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	var count int64
	if err := db.Model(&domain.Country{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one row after repeated refresh, got %d", count)
	}
	got, err := repository.Provide(db).FindByName(context.Background(), "nigeria")
	if err != nil || got == nil {
		t.Fatalf("find: %v, %v", got, err)
	}
	if got.Name != "NIGERIA" || got.Population != 210000000 {
		t.Fatalf("expected second cycle's values, got %+v", got)
	}
}

func TestConcurrentRunsShareOneCycle(t *testing.T) {
	db := setupRefreshTestDB(t)

	countries := &stubCountrySource{
		countries: []source.RawCountry{{Name: "Kenya", Population: 55000000}},
		delay:     50 * time.Millisecond,
	}
	rates := &stubRateSource{rates: source.RateTable{}}
	renderer := &recordingRenderer{}

	svc := newTestService(t, db, countries, rates, renderer, clock.SystemClock{})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Run(context.Background()); err != nil {
				t.Errorf("run: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := countries.calls.Load(); got != 1 {
		t.Fatalf("expected a single shared fetch, got %d", got)
	}
}

func newTestService(t *testing.T, db *gorm.DB, countries source.CountrySource, rates source.RateSource, renderer summary.Renderer, clk clock.Clock) *Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return NewService(ServiceParam{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Rand:        rand.New(rand.NewSource(42)),
		Clock:       clk,
		Countries:   countries,
		Rates:       rates,
		CountryRepo: repository.Provide(db),
		MetaRepo:    metadata.Provide(db),
		Renderer:    renderer,
	})
}

func setupRefreshTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Exec(
		`CREATE TABLE IF NOT EXISTS countries (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			name_normalized TEXT NOT NULL,
			capital TEXT,
			region TEXT,
			population BIGINT NOT NULL DEFAULT 0,
			currency_code TEXT,
			exchange_rate REAL,
			estimated_gdp REAL NOT NULL DEFAULT 0,
			flag_url TEXT,
			last_refreshed_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	).Error; err != nil {
		t.Fatalf("create countries: %v", err)
	}
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_countries_name_normalized ON countries (name_normalized)`,
	).Error; err != nil {
		t.Fatalf("create unique index: %v", err)
	}
	if err := db.Exec(
		`CREATE TABLE IF NOT EXISTS app_metadata (
			id INTEGER PRIMARY KEY,
			last_refreshed_at TIMESTAMP
		)`,
	).Error; err != nil {
		t.Fatalf("create app_metadata: %v", err)
	}
	return db
}
