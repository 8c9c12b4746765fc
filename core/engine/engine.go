// Package engine provides the API-primary estimation engine.
// CLI and HTTP are thin wrappers around it.
//
// An estimate is produced in three phases against one immutable catalog:
// validation (fatal on bad input), per-component pricing (concurrent,
// non-fatal failures become warnings) and totalling (fatal on currency
// mismatch).
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pratham7049/azure-pricing-calculator/core/catalog"
	"github.com/pratham7049/azure-pricing-calculator/core/cost"
	"github.com/pratham7049/azure-pricing-calculator/core/facets"
	"github.com/pratham7049/azure-pricing-calculator/core/resolver"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
	"github.com/pratham7049/azure-pricing-calculator/internal/logging"
)

// Warning kinds that are not error types
const (
	WarningPartialMatch   = "PARTIAL_MATCH"
	WarningAmbiguous      = "AMBIGUOUS_LINE_ITEM"
	WarningPartialCatalog = "PARTIAL_CATALOG"
)

// Config configures the estimation engine
type Config struct {
	// DefaultRegion is used when a request names none
	DefaultRegion string

	// Currency is the default session currency
	Currency types.Currency

	// HoursPerMonth converts hourly VM rates to monthly
	HoursPerMonth int

	// Concurrency bounds parallel component pricing
	Concurrency int

	// Provider labels quotations
	Provider types.Provider
}

// DefaultConfig returns production defaults
func DefaultConfig() Config {
	return Config{
		DefaultRegion: "eastus",
		Currency:      types.CurrencyUSD,
		HoursPerMonth: 730,
		Concurrency:   4,
		Provider:      types.ProviderAzure,
	}
}

// Request is one estimate
type Request struct {
	Region   string
	Currency types.Currency

	// Schema orders the dimensions of composite keys. Empty means inferred
	// from the catalog.
	Schema types.FacetSchema

	// LoadBearing lists the dimensions kept by the partial pass
	LoadBearing []string

	Components []Component

	// CatalogWarning is the loader's partial-catalog signal, if any
	CatalogWarning *catalog.PartialCatalogWarning
}

// Engine is the primary API for cost estimation
type Engine struct {
	config Config
	logger *zap.Logger
	now    func() time.Time
}

// New creates an engine
func New(cfg Config, logger *zap.Logger) *Engine {
	def := DefaultConfig()
	if cfg.HoursPerMonth <= 0 {
		cfg.HoursPerMonth = def.HoursPerMonth
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.DefaultRegion == "" {
		cfg.DefaultRegion = def.DefaultRegion
	}
	if cfg.Provider == "" {
		cfg.Provider = def.Provider
	}
	return &Engine{
		config: cfg,
		logger: logging.OrGlobal(logger),
		now:    time.Now,
	}
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.config
}

// session holds the per-estimate derived state shared by component pricers
type session struct {
	cat         *catalog.Catalog
	res         *resolver.Resolver
	region      string
	schema      types.FacetSchema
	loadBearing []string
}

// pricedLine is the outcome of pricing one component
type pricedLine struct {
	quote types.ResolvedQuote
	input cost.LineInput
	warns []types.Warning
}

// Estimate prices every component of req against cat.
//
// Invalid selections, unknown component kinds, negative quantities and
// currency mismatches abort with an error. Missing offers and unpriced
// regions yield an unpriced line plus a warning.
func (e *Engine) Estimate(ctx context.Context, cat *catalog.Catalog, req Request) (*types.Quotation, error) {
	if cat == nil {
		return nil, errors.Input("catalog is required")
	}

	region := strings.ToLower(strings.TrimSpace(req.Region))
	if region == "" {
		region = e.config.DefaultRegion
	}
	currency := req.Currency
	if currency == "" {
		currency = e.config.Currency
	}
	schema := req.Schema
	if len(schema) == 0 {
		schema = facets.InferSchema(cat)
		e.logger.Debug("inferred key schema", zap.String("schema", schema.String()))
	}

	index := facets.Build(cat, schema)
	s := &session{
		cat:         cat,
		res:         resolver.New(cat, index, e.logger),
		region:      region,
		schema:      schema,
		loadBearing: req.LoadBearing,
	}

	components := make([]Component, len(req.Components))
	copy(components, req.Components)
	if err := e.validate(s, index, components); err != nil {
		return nil, err
	}

	lines, err := e.priceAll(ctx, s, components)
	if err != nil {
		return nil, err
	}

	inputs := make([]cost.LineInput, len(lines))
	for i, l := range lines {
		inputs[i] = l.input
	}
	totals, err := cost.ComputeTotal(currency, inputs)
	if err != nil {
		return nil, err
	}

	q := &types.Quotation{
		ID:          uuid.New().String(),
		Provider:    e.config.Provider,
		Region:      region,
		Currency:    totals.Currency,
		Lines:       make([]types.ResolvedQuote, len(lines)),
		Total:       totals.Total,
		GeneratedAt: e.now().UTC(),
	}

	if w := req.CatalogWarning; w != nil {
		kind := WarningPartialCatalog
		if w.Cause != nil {
			kind = string(errors.TypeOf(w.Cause))
		}
		q.AddWarning(types.Warning{Type: kind, Message: w.Error()})
	}
	for _, msg := range cat.Warnings() {
		q.AddWarning(types.Warning{Type: string(errors.TypeMalformedPage), Message: msg})
	}

	for i, l := range lines {
		quote := l.quote
		quote.LineCost = totals.Lines[i].Cost
		q.Lines[i] = quote
		for _, w := range l.warns {
			q.AddWarning(w)
		}
	}

	e.logger.Info("estimate complete",
		zap.String("id", q.ID),
		zap.Int("lines", len(q.Lines)),
		zap.Int("warnings", len(q.Warnings)),
		zap.String("total", q.Total.StringFixed(2)))

	return q, nil
}

// validate runs every fatal check before any pricing happens
func (e *Engine) validate(s *session, index *facets.Index, components []Component) error {
	if index.HasExplicit(types.DimRegion) && !index.Contains(types.DimRegion, s.region) {
		err := errors.InvalidSelection(types.DimRegion, s.region)
		if sg, ok := resolver.Suggest(index, types.DimRegion, s.region); ok {
			err.WithContext("did_you_mean", sg.Candidate)
		}
		return err
	}

	for i := range components {
		c := &components[i]
		if c.Name == "" {
			c.Name = fmt.Sprintf("%s-%d", c.Kind, i+1)
		}
		if !c.Kind.Valid() {
			return errors.Input(fmt.Sprintf("component %q: unknown kind %q", c.Name, c.Kind))
		}
		if c.Quantity.IsNegative() {
			return errors.Input(fmt.Sprintf("component %q: quantity must not be negative", c.Name))
		}
		if c.usesSelection() {
			if len(c.Selection) == 0 {
				return errors.Input(fmt.Sprintf("component %q: selection, offer or contains is required", c.Name))
			}
			sel := c.Selection
			if c.Confirmed != nil {
				sel = c.Confirmed.Apply(sel)
			}
			if err := s.res.Validate(sel.Normalize()); err != nil {
				if de, ok := errors.As(err); ok {
					de.WithContext("component", c.Name)
				}
				return err
			}
		}
	}
	return nil
}

// priceAll prices components concurrently, keeping request order
func (e *Engine) priceAll(ctx context.Context, s *session, components []Component) ([]pricedLine, error) {
	lines := make([]pricedLine, len(components))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Concurrency)
	for i := range components {
		i, c := i, components[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			line, err := e.price(s, c)
			if err != nil {
				return err
			}
			lines[i] = line
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lines, nil
}

// price prices one component. Only fatal errors are returned.
func (e *Engine) price(s *session, c Component) (pricedLine, error) {
	line := pricedLine{
		quote: types.ResolvedQuote{
			Component:   c.Name,
			Kind:        string(c.Kind),
			Selection:   c.Selection,
			UnitDivisor: decimal.NewFromInt(1),
		},
		input: cost.LineInput{Component: c.Name},
	}

	res, err := e.pricers(c.Kind)(s, c)
	if res.match != nil {
		line.quote.MatchedKey = res.match.Key
		line.quote.MatchQuality = res.match.Quality
		line.input.Key = res.match.Key
	}
	line.warns = append(line.warns, res.warns...)

	if err != nil {
		if errors.Fatal(err) {
			return line, err
		}
		e.logger.Warn("component not priced", zap.String("component", c.Name), zap.Error(err))
		line.warns = append(line.warns, types.Warning{
			Type:      string(errors.TypeOf(err)),
			Component: c.Name,
			Message:   err.Error(),
		})
		line.quote.UsageQuantity = res.quantity
		return line, nil
	}

	divisor := res.rate.Divisor
	if divisor.IsZero() {
		divisor = decimal.NewFromInt(1)
	}
	currency := res.match.Record.Currency
	if currency == "" {
		currency = s.cat.Currency()
	}

	line.quote.Unit = res.rate.Unit
	line.quote.Rate = res.rate.Value
	line.quote.UnitDivisor = divisor
	line.quote.NormalizedRatePerUnit = res.rate.PerUnit()
	line.quote.UsageQuantity = res.quantity
	line.quote.Currency = currency
	line.quote.Priced = true

	line.input.Unit = res.rate.Unit
	line.input.Rate = res.rate.Value
	line.input.Divisor = divisor
	line.input.Quantity = res.quantity
	line.input.Currency = currency

	if res.match.Quality == types.MatchPartial && c.Offer == "" && c.Contains == "" && c.Kind.usesResolver() {
		line.warns = append(line.warns, types.Warning{
			Type:      WarningPartialMatch,
			Component: c.Name,
			Message:   fmt.Sprintf("no exact match, using closest match %s", res.match.Key),
		})
	}
	return line, nil
}
