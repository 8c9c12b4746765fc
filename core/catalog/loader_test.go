package catalog

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
	"github.com/pratham7049/azure-pricing-calculator/internal/logging"
)

// pagedSource serves a fixed list of pages; token "pN" requests page N.
type pagedSource struct {
	pages []*RawPage
	fail  map[int]error
	calls int
}

func (s *pagedSource) Next(ctx context.Context, token string) (*RawPage, error) {
	s.calls++
	idx := 0
	if token != "" {
		if _, err := fmt.Sscanf(token, "p%d", &idx); err != nil {
			return nil, err
		}
	}
	if err, ok := s.fail[idx]; ok {
		return nil, err
	}
	if idx >= len(s.pages) {
		return nil, fmt.Errorf("no page %d", idx)
	}
	return s.pages[idx], nil
}

func item(key string, price string) *OfferRecord {
	return NewOffer(types.OfferKey(key)).SetUnitPrice(decimal.RequireFromString(price), "1 Hour")
}

func newTestLoader(maxPages int) *Loader {
	l := NewLoader(maxPages)
	l.Logger = logging.Nop()
	return l
}

func TestLoad_AggregatesPages(t *testing.T) {
	src := &pagedSource{pages: []*RawPage{
		{Items: []*OfferRecord{item("a", "1"), item("b", "2")}, NextPageToken: "p1"},
		{Items: []*OfferRecord{item("c", "3")}},
	}}

	cat, warn := newTestLoader(10).Load(context.Background(), src)

	assert.Nil(t, warn)
	assert.Equal(t, 3, cat.Len())
	assert.Equal(t, 2, cat.Pages())
	assert.Equal(t, 2, src.calls)
	assert.Equal(t, []types.OfferKey{"a", "b", "c"}, cat.Keys())
}

func TestLoad_DuplicateKeysLaterWins(t *testing.T) {
	src := &pagedSource{pages: []*RawPage{
		{Items: []*OfferRecord{item("a", "1"), item("b", "2")}, NextPageToken: "p1"},
		{Items: []*OfferRecord{item("a", "9"), item("c", "3")}},
	}}

	cat, warn := newTestLoader(10).Load(context.Background(), src)
	require.Nil(t, warn)

	// 2 + 2 items minus one duplicate
	assert.Equal(t, 3, cat.Len())
	rec, ok := cat.Get("a")
	require.True(t, ok)
	assert.True(t, rec.UnitPrice.Equal(decimal.NewFromInt(9)))
	assert.Equal(t, []types.OfferKey{"a", "b", "c"}, cat.Keys(), "overwritten key keeps its position")
}

func TestLoad_FailureMidStreamReturnsPartial(t *testing.T) {
	src := &pagedSource{
		pages: []*RawPage{
			{Items: []*OfferRecord{item("a", "1")}, NextPageToken: "p1"},
			{Items: []*OfferRecord{item("b", "2")}, NextPageToken: "p2"},
		},
		fail: map[int]error{2: stderrors.New("connection reset")},
	}

	cat, warn := newTestLoader(10).Load(context.Background(), src)

	require.NotNil(t, warn)
	assert.Equal(t, 2, warn.PagesRetrieved)
	assert.False(t, warn.CeilingReached)
	assert.True(t, errors.IsType(warn.Cause, errors.TypeTransport))
	assert.Equal(t, 2, cat.Len())
}

func TestLoad_FirstPageFailure(t *testing.T) {
	src := &pagedSource{fail: map[int]error{0: stderrors.New("dns")}}

	cat, warn := newTestLoader(10).Load(context.Background(), src)

	require.NotNil(t, warn)
	assert.Equal(t, 0, warn.PagesRetrieved)
	assert.Equal(t, 0, cat.Len())
}

func TestLoad_TypedErrorKeptAsIs(t *testing.T) {
	cause := errors.Transport("status 503", nil)
	src := &pagedSource{fail: map[int]error{0: cause}}

	_, warn := newTestLoader(10).Load(context.Background(), src)

	require.NotNil(t, warn)
	assert.Same(t, cause, warn.Cause)
}

func TestLoad_CeilingStopsPagination(t *testing.T) {
	// a source that always hands out another token
	calls := 0
	src := PageSourceFunc(func(ctx context.Context, token string) (*RawPage, error) {
		calls++
		return &RawPage{
			Items:         []*OfferRecord{item(fmt.Sprintf("k%d", calls), "1")},
			NextPageToken: fmt.Sprintf("t%d", calls),
		}, nil
	})

	cat, warn := newTestLoader(3).Load(context.Background(), src)

	require.NotNil(t, warn)
	assert.True(t, warn.CeilingReached)
	assert.Equal(t, 3, warn.PagesRetrieved)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, cat.Len())
}

func TestLoad_MalformedPageSkipped(t *testing.T) {
	tests := []struct {
		name      string
		pages     []*RawPage
		wantLen   int
		wantCalls int
	}{
		{
			name: "token present continues",
			pages: []*RawPage{
				{NextPageToken: "p1"},
				{Items: []*OfferRecord{item("a", "1")}},
			},
			wantLen:   1,
			wantCalls: 2,
		},
		{
			name: "no token stops",
			pages: []*RawPage{
				{Items: []*OfferRecord{item("a", "1")}, NextPageToken: "p1"},
				{},
				{Items: []*OfferRecord{item("b", "1")}},
			},
			wantLen:   1,
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &pagedSource{pages: tt.pages}
			cat, warn := newTestLoader(10).Load(context.Background(), src)

			assert.Nil(t, warn)
			assert.Equal(t, tt.wantLen, cat.Len())
			assert.Equal(t, tt.wantCalls, src.calls)
			require.Len(t, cat.Warnings(), 1)
			assert.Contains(t, cat.Warnings()[0], string(errors.TypeMalformedPage))
		})
	}
}

func TestLoad_EmptyPageIsNotMalformed(t *testing.T) {
	src := &pagedSource{pages: []*RawPage{{Items: []*OfferRecord{}}}}

	cat, warn := newTestLoader(10).Load(context.Background(), src)

	assert.Nil(t, warn)
	assert.Equal(t, 0, cat.Len())
	assert.Empty(t, cat.Warnings())
}

func TestLoad_PreKeyedOffersAndVocabulary(t *testing.T) {
	src := &pagedSource{pages: []*RawPage{{
		Offers: map[types.OfferKey]*OfferRecord{
			"zeta":  NewOffer("").SetPrice(types.UnitPerGB, "eastus", decimal.NewFromFloat(0.1)),
			"alpha": NewOffer("").SetPrice(types.UnitPerGB, "eastus", decimal.NewFromFloat(0.2)),
		},
		Vocabulary: map[string][]VocabEntry{
			types.DimRegion: {{Slug: "eastus", DisplayName: "East US"}},
		},
		Currency: types.CurrencyUSD,
	}}}

	cat, warn := newTestLoader(10).Load(context.Background(), src)
	require.Nil(t, warn)

	assert.Equal(t, []types.OfferKey{"alpha", "zeta"}, cat.Keys())
	assert.Equal(t, types.CurrencyUSD, cat.Currency())
	assert.Equal(t, "East US", cat.DisplayName(types.DimRegion, "eastus"))

	rec, _ := cat.Get("zeta")
	assert.Equal(t, types.OfferKey("zeta"), rec.Key)
	assert.Equal(t, types.CurrencyUSD, rec.Currency)
}

func TestLoad_ItemsWithoutKeySkipped(t *testing.T) {
	src := &pagedSource{pages: []*RawPage{{Items: []*OfferRecord{item("a", "1"), item("", "2")}}}}

	cat, warn := newTestLoader(10).Load(context.Background(), src)

	assert.Nil(t, warn)
	assert.Equal(t, 1, cat.Len())
	assert.Len(t, cat.Warnings(), 1)
}

func TestLoad_PageTimeout(t *testing.T) {
	src := PageSourceFunc(func(ctx context.Context, token string) (*RawPage, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	l := newTestLoader(10)
	l.PageTimeout = 10 * time.Millisecond

	cat, warn := l.Load(context.Background(), src)

	require.NotNil(t, warn)
	assert.ErrorIs(t, warn, context.DeadlineExceeded)
	assert.Equal(t, 0, cat.Len())
}

func TestLoad_CancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := PageSourceFunc(func(_ context.Context, token string) (*RawPage, error) {
		cancel()
		return &RawPage{Items: []*OfferRecord{item("a", "1")}, NextPageToken: "next"}, nil
	})

	l := newTestLoader(10)
	l.PageDelay = time.Hour

	cat, warn := l.Load(ctx, src)

	require.NotNil(t, warn)
	assert.Equal(t, 1, warn.PagesRetrieved)
	assert.Equal(t, 1, cat.Len())
}
