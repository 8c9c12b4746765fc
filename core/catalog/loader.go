package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
	"github.com/pratham7049/azure-pricing-calculator/internal/logging"
)

// DefaultMaxPages is the page ceiling used when none is configured
const DefaultMaxPages = 100

// PartialCatalogWarning signals that loading stopped before the source was
// exhausted. The catalog returned alongside it is usable but incomplete.
type PartialCatalogWarning struct {
	// PagesRetrieved is the number of pages successfully fetched
	PagesRetrieved int

	// CeilingReached is set when the page ceiling stopped pagination
	CeilingReached bool

	// Cause is the fetch error, nil when the ceiling was reached
	Cause error
}

// Error implements error so the warning can travel through error channels
func (w *PartialCatalogWarning) Error() string {
	if w.CeilingReached {
		return fmt.Sprintf("partial catalog: page ceiling reached after %d pages", w.PagesRetrieved)
	}
	return fmt.Sprintf("partial catalog: stopped after %d pages: %v", w.PagesRetrieved, w.Cause)
}

// Unwrap returns the fetch error
func (w *PartialCatalogWarning) Unwrap() error {
	return w.Cause
}

// Loader walks a PageSource and aggregates its pages into one Catalog.
// Pages are fetched sequentially since continuation tokens are opaque.
type Loader struct {
	// MaxPages bounds pagination
	MaxPages int

	// PageTimeout bounds each page fetch; zero means no per-page bound
	PageTimeout time.Duration

	// PageDelay is the pause between consecutive fetches
	PageDelay time.Duration

	Logger *zap.Logger
}

// NewLoader creates a loader with the given page ceiling
func NewLoader(maxPages int) *Loader {
	return &Loader{MaxPages: maxPages}
}

func (l *Loader) maxPages() int {
	if l.MaxPages <= 0 {
		return DefaultMaxPages
	}
	return l.MaxPages
}

// Load fetches pages until the continuation token is absent, the ceiling is
// reached, or a fetch fails. It never returns an error: failures yield the
// catalog accumulated so far together with a PartialCatalogWarning.
func (l *Loader) Load(ctx context.Context, src PageSource) (*Catalog, *PartialCatalogWarning) {
	log := logging.OrGlobal(l.Logger)
	b := NewBuilder()
	token := ""
	retrieved := 0

	finish := func(w *PartialCatalogWarning) (*Catalog, *PartialCatalogWarning) {
		cat := b.Build()
		cat.pages = retrieved
		if w != nil {
			log.Warn("catalog is partial",
				zap.Int("pages", w.PagesRetrieved),
				zap.Bool("ceiling", w.CeilingReached),
				zap.Error(w.Cause))
		} else {
			log.Debug("catalog loaded", zap.Int("pages", retrieved), zap.Int("offers", cat.Len()))
		}
		return cat, w
	}

	for page := 1; ; page++ {
		if page > l.maxPages() {
			return finish(&PartialCatalogWarning{PagesRetrieved: retrieved, CeilingReached: true})
		}

		if page > 1 && l.PageDelay > 0 {
			if err := sleep(ctx, l.PageDelay); err != nil {
				return finish(&PartialCatalogWarning{
					PagesRetrieved: retrieved,
					Cause:          errors.Transport("cancelled between pages", err),
				})
			}
		}

		raw, err := l.fetch(ctx, src, token)
		if err != nil {
			if _, ok := errors.As(err); !ok {
				err = errors.Transport(fmt.Sprintf("fetching page %d", page), err)
			}
			return finish(&PartialCatalogWarning{PagesRetrieved: retrieved, Cause: err})
		}
		retrieved++

		if raw.Malformed() {
			merr := errors.MalformedPage(page, "page carries neither offers nor items")
			b.AddWarning(merr.Error())
			log.Warn("skipping malformed page", zap.Int("page", page))
		} else {
			skipped := merge(b, raw)
			if skipped > 0 {
				b.AddWarning(fmt.Sprintf("page %d: %d records without a key were skipped", page, skipped))
			}
			log.Debug("page fetched",
				zap.Int("page", page),
				zap.Int("records", raw.Len()),
				zap.Bool("more", raw.NextPageToken != ""))
		}

		if raw == nil || raw.NextPageToken == "" {
			return finish(nil)
		}
		token = raw.NextPageToken
	}
}

func (l *Loader) fetch(ctx context.Context, src PageSource, token string) (*RawPage, error) {
	if l.PageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.PageTimeout)
		defer cancel()
	}
	return src.Next(ctx, token)
}

// merge adds a page's records and vocabulary to b. Pre-keyed offers are
// inserted in key order so the resulting catalog order is reproducible.
func merge(b *Builder, raw *RawPage) (skipped int) {
	if raw.Currency != "" && b.cat.currency == "" {
		b.SetCurrency(raw.Currency)
	}

	keys := make([]types.OfferKey, 0, len(raw.Offers))
	for k := range raw.Offers {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		rec := raw.Offers[k]
		if rec == nil {
			continue
		}
		if rec.Key == "" {
			rec.Key = k
		}
		add(b, rec, raw.Currency)
	}

	for _, rec := range raw.Items {
		if rec == nil || rec.Key == "" {
			skipped++
			continue
		}
		add(b, rec, raw.Currency)
	}

	dims := make([]string, 0, len(raw.Vocabulary))
	for d := range raw.Vocabulary {
		dims = append(dims, d)
	}
	sort.Strings(dims)
	for _, d := range dims {
		b.AddVocabulary(d, raw.Vocabulary[d])
	}
	return skipped
}

func add(b *Builder, rec *OfferRecord, pageCurrency types.Currency) {
	if rec.Currency == "" {
		rec.Currency = pageCurrency
	}
	b.Add(rec)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
