// Package pricing selects and opens the catalog page source named by
// configuration. CLI and HTTP server load catalogs through it.
package pricing

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pratham7049/azure-pricing-calculator/adapters/awspricing"
	"github.com/pratham7049/azure-pricing-calculator/adapters/azure"
	"github.com/pratham7049/azure-pricing-calculator/core/catalog"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/config"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
	"github.com/pratham7049/azure-pricing-calculator/internal/logging"
)

// Source names
const (
	SourceCalculator = "calculator"
	SourceRetail     = "retail"
	SourceFile       = "file"
	SourceAWS        = "aws"
)

// Options carry session values a source may need
type Options struct {
	Currency types.Currency
	Region   string
	HTTP     *http.Client
	Logger   *zap.Logger
}

// Factory opens a page source from catalog configuration
type Factory func(ctx context.Context, cfg config.CatalogConfig, opts Options) (catalog.PageSource, error)

// Registry manages source factories
type Registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry with every built-in source
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(SourceCalculator, openCalculator)
	r.Register(SourceRetail, openRetail)
	r.Register(SourceFile, openFile)
	r.Register(SourceAWS, openAWS)
	return r
}

// Register registers a factory
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToLower(name)] = f
}

// Get returns the factory for name
func (r *Registry) Get(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[strings.ToLower(name)]
	return f, ok
}

// Names returns all registered source names
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open opens the source named by cfg.Source
func (r *Registry) Open(ctx context.Context, cfg config.CatalogConfig, opts Options) (catalog.PageSource, error) {
	name := cfg.Source
	if name == "" {
		name = SourceCalculator
	}
	f, ok := r.Get(name)
	if !ok {
		return nil, errors.Config("unknown catalog source " + name + " (available: " + strings.Join(r.Names(), ", ") + ")")
	}
	return f(ctx, cfg, opts)
}

// Load opens the configured source and pages it into a catalog. Only
// failures to open the source are errors; fetch failures yield a partial
// catalog with its warning.
func (r *Registry) Load(ctx context.Context, cfg config.CatalogConfig, opts Options) (*catalog.Catalog, *catalog.PartialCatalogWarning, *Metrics, error) {
	src, err := r.Open(ctx, cfg, opts)
	if err != nil {
		return nil, nil, nil, err
	}
	ms := NewMetricsSource(src)

	loader := catalog.NewLoader(cfg.MaxPages)
	loader.PageTimeout = cfg.PageTimeout()
	loader.PageDelay = cfg.PageDelay()
	loader.Logger = opts.Logger

	cat, warn := loader.Load(ctx, ms)
	m := ms.Metrics()
	logging.OrGlobal(opts.Logger).Info("catalog loaded",
		zap.String("source", cfg.Source),
		zap.Int("pages", cat.Pages()),
		zap.Int("offers", cat.Len()),
		zap.Int64("fetch_errors", m.FetchErrors),
		zap.Int64("avg_latency_ms", m.AvgLatencyMs))
	return cat, warn, &m, nil
}

func client(opts Options) *azure.Client {
	return &azure.Client{HTTP: opts.HTTP, Logger: opts.Logger}
}

func openCalculator(_ context.Context, cfg config.CatalogConfig, opts Options) (catalog.PageSource, error) {
	src := azure.NewCalculatorSource(cfg.CalculatorURL, client(opts))
	if cfg.Culture != "" {
		src.Culture = cfg.Culture
	}
	return src, nil
}

func openRetail(_ context.Context, cfg config.CatalogConfig, opts Options) (catalog.PageSource, error) {
	currency := opts.Currency
	if currency == "" {
		currency = types.CurrencyUSD
	}
	return azure.NewRetailSource(cfg.RetailURL, cfg.RetailFilter, currency, client(opts)), nil
}

func openFile(_ context.Context, cfg config.CatalogConfig, _ Options) (catalog.PageSource, error) {
	if cfg.File == "" {
		return nil, errors.Config("catalog source file requires catalog.file")
	}
	return azure.NewFileSource(strings.Split(cfg.File, ",")...), nil
}

func openAWS(ctx context.Context, cfg config.CatalogConfig, opts Options) (catalog.PageSource, error) {
	src, err := awspricing.NewDefaultSource(ctx, cfg.AWSServiceCode)
	if err != nil {
		return nil, err
	}
	src.Logger = opts.Logger
	if opts.Currency != "" {
		src.Currency = opts.Currency
	}
	return src.WithRegion(opts.Region), nil
}

// Metrics summarizes page fetches
type Metrics struct {
	FetchCount   int64 `json:"fetch_count"`
	FetchErrors  int64 `json:"fetch_errors"`
	AvgLatencyMs int64 `json:"avg_latency_ms"`
}

// MetricsSource wraps a source with fetch metrics
type MetricsSource struct {
	inner        catalog.PageSource
	fetchCount   int64
	fetchErrors  int64
	totalLatency int64
	mu           sync.RWMutex
}

// NewMetricsSource creates a metrics wrapper
func NewMetricsSource(inner catalog.PageSource) *MetricsSource {
	return &MetricsSource{inner: inner}
}

// Next implements catalog.PageSource
func (s *MetricsSource) Next(ctx context.Context, token string) (*catalog.RawPage, error) {
	start := time.Now()
	page, err := s.inner.Next(ctx, token)

	s.mu.Lock()
	s.fetchCount++
	s.totalLatency += time.Since(start).Milliseconds()
	if err != nil {
		s.fetchErrors++
	}
	s.mu.Unlock()

	return page, err
}

// Metrics returns the counters so far
func (s *MetricsSource) Metrics() Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := Metrics{FetchCount: s.fetchCount, FetchErrors: s.fetchErrors}
	if s.fetchCount > 0 {
		m.AvgLatencyMs = s.totalLatency / s.fetchCount
	}
	return m
}
