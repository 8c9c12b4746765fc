package engine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratham7049/azure-pricing-calculator/core/catalog"
	"github.com/pratham7049/azure-pricing-calculator/core/resolver"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
	"github.com/pratham7049/azure-pricing-calculator/internal/logging"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var blobSchema = types.FacetSchema{types.DimAccountType, types.DimStorageType, types.DimAccessTier, types.DimRedundancy}

func blobSelection(tier string) types.FacetSelection {
	return types.FacetSelection{
		types.DimAccountType: "general-purpose-v2",
		types.DimStorageType: "block-blob",
		types.DimAccessTier:  tier,
		types.DimRedundancy:  "lrs",
	}
}

func singleOfferCatalog() *catalog.Catalog {
	return catalog.New(
		catalog.NewOffer("general-purpose-v2-block-blob-hot-lrs").SetPrice(types.UnitPerGB, "eastus", d("0.0184")),
	)
}

func newEngine() *Engine {
	return New(DefaultConfig(), logging.Nop())
}

func TestEstimate_ScenarioExactStorage(t *testing.T) {
	q, err := newEngine().Estimate(context.Background(), singleOfferCatalog(), Request{
		Region: "eastus",
		Schema: blobSchema,
		Components: []Component{
			{Kind: KindStorage, Name: "capacity", Selection: blobSelection("hot"), Quantity: d("500")},
		},
	})

	require.NoError(t, err)
	require.Len(t, q.Lines, 1)
	line := q.Lines[0]
	assert.True(t, line.Priced)
	assert.Equal(t, types.MatchExact, line.MatchQuality)
	assert.Equal(t, types.OfferKey("general-purpose-v2-block-blob-hot-lrs"), line.MatchedKey)
	assert.Equal(t, types.UnitPerGB, line.Unit)
	assert.Equal(t, "9.20", line.LineCost.StringFixed(2))
	assert.Equal(t, "9.20", q.Total.StringFixed(2))
	assert.Equal(t, types.CurrencyUSD, q.Currency)
	assert.NotEmpty(t, q.ID)
	assert.Empty(t, q.Warnings)
}

func TestEstimate_ScenarioExactStorageInferredSchema(t *testing.T) {
	q, err := newEngine().Estimate(context.Background(), singleOfferCatalog(), Request{
		Region: "eastus",
		Components: []Component{
			{Kind: KindStorage, Name: "capacity", Selection: blobSelection("hot"), Quantity: d("500")},
		},
	})

	require.NoError(t, err)
	line := q.Lines[0]
	assert.True(t, line.Priced)
	assert.Equal(t, types.MatchExact, line.MatchQuality)
	assert.Equal(t, types.OfferKey("general-purpose-v2-block-blob-hot-lrs"), line.MatchedKey)
	assert.Equal(t, "9.20", q.Total.StringFixed(2))
	assert.Empty(t, q.Warnings)
}

func TestEstimate_ScenarioUnpricedRegion(t *testing.T) {
	q, err := newEngine().Estimate(context.Background(), singleOfferCatalog(), Request{
		Region: "westus",
		Schema: blobSchema,
		Components: []Component{
			{Kind: KindStorage, Name: "capacity", Selection: blobSelection("hot"), Quantity: d("500")},
		},
	})

	require.NoError(t, err)
	line := q.Lines[0]
	assert.False(t, line.Priced, "unavailable pricing is not a free line")
	assert.Equal(t, types.OfferKey("general-purpose-v2-block-blob-hot-lrs"), line.MatchedKey)
	assert.True(t, q.Total.IsZero())
	require.Len(t, q.Warnings, 1)
	assert.Equal(t, string(errors.TypeUnpricedRegion), q.Warnings[0].Type)
	assert.NotEqual(t, string(errors.TypeNoMatch), q.Warnings[0].Type)
	assert.False(t, q.Complete())
}

func TestEstimate_ScenarioInvalidSelectionIsFatal(t *testing.T) {
	_, err := newEngine().Estimate(context.Background(), singleOfferCatalog(), Request{
		Region: "eastus",
		Schema: blobSchema,
		Components: []Component{
			{Kind: KindStorage, Name: "capacity", Selection: blobSelection("archive"), Quantity: d("500")},
		},
	})

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInvalidSelection))
}

func storageCatalog() *catalog.Catalog {
	b := catalog.NewBuilder()
	b.Add(catalog.NewOffer("hot-lrs").SetPrice(types.UnitPerGB, "eastus", d("0.02")))
	b.Add(catalog.NewOffer("cool-lrs").SetPrice(types.UnitPerTB, "eastus", d("10")))
	b.Add(catalog.NewOffer("hot-lrs-write-operations").SetPrice(types.UnitPer10K, "eastus", d("0.05")))
	b.Add(catalog.NewOffer("hot-lrs-read-operations").SetPrice(types.UnitPer10K, "eastus", d("0.004")))
	b.Add(catalog.NewOffer("block-blob-reserved-capacity-100tb-oneyear").SetPrice(types.UnitPerOneYear, "eastus", d("1200")))
	b.Add(catalog.NewOffer("data-transfer-outbound").SetPrice(types.UnitPerUnit, "eastus", d("0.087")))
	b.Add(catalog.NewOffer("d2-v3").SetPrice(types.UnitPerHour, "eastus", d("0.1")))
	b.SetCurrency(types.CurrencyUSD)
	return b.Build()
}

func TestEstimate_AllKeyedKinds(t *testing.T) {
	schema := types.FacetSchema{types.DimAccessTier, types.DimRedundancy}

	q, err := newEngine().Estimate(context.Background(), storageCatalog(), Request{
		Region: "EastUS",
		Schema: schema,
		Components: []Component{
			{Kind: KindStorage, Name: "hot", Selection: types.FacetSelection{types.DimAccessTier: "hot", types.DimRedundancy: "lrs"}, Quantity: d("100")},
			{Kind: KindStorage, Name: "cool", Selection: types.FacetSelection{types.DimAccessTier: "cool", types.DimRedundancy: "lrs"}, Quantity: d("2000")},
			{Kind: KindOperations, Name: "writes", Offer: "hot-lrs-write-operations", Quantity: d("100000")},
			{Kind: KindReservation, Name: "reserved"},
			{Kind: KindBandwidth, Name: "egress", Quantity: d("10")},
			{Kind: KindVM, Name: "vm", Offer: "d2-v3", Quantity: d("2")},
		},
	})
	require.NoError(t, err)
	require.Len(t, q.Lines, 6)

	want := map[string]string{
		"hot":      "2",    // 100 * 0.02
		"cool":     "20",   // 2000 / 1000 * 10
		"writes":   "0.5",  // 100000 / 10000 * 0.05
		"reserved": "100",  // 1200 / 12
		"egress":   "0.87", // 10 * 0.087
		"vm":       "146",  // 2 * 730 * 0.1
	}
	names := make([]string, 0, len(q.Lines))
	for _, l := range q.Lines {
		names = append(names, l.Component)
		assert.True(t, l.Priced, l.Component)
		assert.True(t, l.LineCost.Equal(d(want[l.Component])), "%s: %s", l.Component, l.LineCost)
	}
	assert.Equal(t, []string{"hot", "cool", "writes", "reserved", "egress", "vm"}, names, "request order is kept")
	assert.True(t, q.Total.Equal(d("269.37")), q.Total.String())
	assert.Equal(t, "eastus", q.Region)

	cool, ok := q.Line("cool")
	require.True(t, ok)
	assert.Equal(t, types.UnitPerTB, cool.Unit)
	assert.True(t, cool.NormalizedRatePerUnit.Equal(d("0.01")))
}

func TestEstimate_OperationsResolvedThroughSchema(t *testing.T) {
	q, err := newEngine().Estimate(context.Background(), storageCatalog(), Request{
		Region:      "eastus",
		Schema:      types.FacetSchema{types.DimAccessTier, types.DimRedundancy},
		LoadBearing: []string{types.DimAccessTier, types.DimRedundancy},
		Components: []Component{
			{Kind: KindOperations, Name: "ops", Selection: types.FacetSelection{types.DimAccessTier: "hot", types.DimRedundancy: "lrs"}, Quantity: d("10000")},
		},
	})

	require.NoError(t, err)
	line := q.Lines[0]
	assert.True(t, line.MatchedKey.IsOperation())
	assert.Equal(t, types.MatchPartial, line.MatchQuality)
	require.Len(t, q.Warnings, 1)
	assert.Equal(t, WarningPartialMatch, q.Warnings[0].Type)
}

func TestEstimate_ExplicitZeroQuantity(t *testing.T) {
	q, err := newEngine().Estimate(context.Background(), storageCatalog(), Request{
		Region: "eastus",
		Components: []Component{
			{Kind: KindReservation, Name: "reserved", Quantity: decimal.Zero, QuantitySet: true},
			{Kind: KindVM, Name: "vm", Offer: "d2-v3", Quantity: decimal.Zero, QuantitySet: true},
			{Kind: KindReservation, Name: "default"},
		},
	})

	require.NoError(t, err)
	require.Len(t, q.Lines, 3)
	assert.True(t, q.Lines[0].Priced)
	assert.True(t, q.Lines[0].LineCost.IsZero(), q.Lines[0].LineCost.String())
	assert.True(t, q.Lines[1].Priced)
	assert.True(t, q.Lines[1].LineCost.IsZero(), q.Lines[1].LineCost.String())
	assert.True(t, q.Lines[2].LineCost.Equal(d("100")), "unset quantity is one reserved unit")
	assert.True(t, q.Total.Equal(d("100")))
}

func TestEstimate_NoMatchIsWarning(t *testing.T) {
	q, err := newEngine().Estimate(context.Background(), storageCatalog(), Request{
		Region: "eastus",
		Schema: types.FacetSchema{types.DimAccessTier, types.DimRedundancy},
		Components: []Component{
			{Kind: KindStorage, Name: "ok", Selection: types.FacetSelection{types.DimAccessTier: "hot", types.DimRedundancy: "lrs"}, Quantity: d("1")},
			{Kind: KindOperations, Name: "missing", Offer: "cool-grs-write-operations", Quantity: d("1")},
		},
	})

	require.NoError(t, err)
	assert.True(t, q.Lines[0].Priced)
	assert.False(t, q.Lines[1].Priced)
	assert.Equal(t, types.MatchNone, q.Lines[1].MatchQuality)
	require.Len(t, q.Warnings, 1)
	assert.Equal(t, string(errors.TypeNoMatch), q.Warnings[0].Type)
	assert.Equal(t, "missing", q.Warnings[0].Component)
}

func TestEstimate_ConfirmedSuggestion(t *testing.T) {
	suggestion := &resolver.Suggestion{Dimension: types.DimAccessTier, Input: "hott", Candidate: "hot"}

	q, err := newEngine().Estimate(context.Background(), storageCatalog(), Request{
		Region: "eastus",
		Schema: types.FacetSchema{types.DimAccessTier, types.DimRedundancy},
		Components: []Component{
			{
				Kind:      KindStorage,
				Selection: types.FacetSelection{types.DimAccessTier: "hott", types.DimRedundancy: "lrs"},
				Confirmed: suggestion,
				Quantity:  d("1"),
			},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, types.MatchFuzzy, q.Lines[0].MatchQuality)
	assert.Equal(t, "storage-1", q.Lines[0].Component)
}

func TestEstimate_FatalInputs(t *testing.T) {
	tests := []struct {
		name      string
		component Component
		errType   errors.Type
	}{
		{"unknown kind", Component{Kind: "gpu", Offer: "x"}, errors.TypeInput},
		{"negative quantity", Component{Kind: KindBandwidth, Quantity: d("-1")}, errors.TypeInput},
		{"no target", Component{Kind: KindStorage, Quantity: d("1")}, errors.TypeInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newEngine().Estimate(context.Background(), storageCatalog(), Request{
				Schema:     types.FacetSchema{types.DimAccessTier, types.DimRedundancy},
				Components: []Component{tt.component},
			})
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.errType), err.Error())
		})
	}
}

func TestEstimate_CurrencyMismatchIsFatal(t *testing.T) {
	b := catalog.NewBuilder()
	rec := catalog.NewOffer("hot-lrs").SetPrice(types.UnitPerGB, "eastus", d("0.02"))
	rec.Currency = types.CurrencyEUR
	b.Add(rec)

	_, err := newEngine().Estimate(context.Background(), b.Build(), Request{
		Currency:   types.CurrencyUSD,
		Components: []Component{{Kind: KindStorage, Offer: "hot-lrs", Quantity: d("1")}},
	})

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeCurrencyMismatch))
}

func TestEstimate_RegionValidatedAgainstExplicitVocabulary(t *testing.T) {
	b := catalog.NewBuilder()
	b.Add(catalog.NewOffer("hot-lrs").SetPrice(types.UnitPerGB, "eastus", d("0.02")))
	b.AddVocabulary(types.DimRegion, []catalog.VocabEntry{{Slug: "eastus", DisplayName: "East US"}})

	_, err := newEngine().Estimate(context.Background(), b.Build(), Request{
		Region:     "eastuss",
		Components: []Component{{Kind: KindStorage, Offer: "hot-lrs", Quantity: d("1")}},
	})

	require.Error(t, err)
	e, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.TypeInvalidSelection, e.Type)
	assert.Equal(t, "eastus", e.Context["did_you_mean"])
}

func vmItem(key, region, product, meter, price string) *catalog.OfferRecord {
	return catalog.NewOffer(types.OfferKey(key)).
		SetField(catalog.FieldRegion, region).
		SetField(catalog.FieldService, "Virtual Machines").
		SetField(catalog.FieldProduct, product).
		SetField(catalog.FieldMeter, meter).
		SetUnitPrice(d(price), "1 Hour")
}

func TestEstimate_LineItems(t *testing.T) {
	cat := catalog.New(
		vmItem("m1", "eastus", "Virtual Machines Dv3 Series", "D2 v3", "0.096"),
		vmItem("m2", "eastus", "Virtual Machines Dv3 Series Windows", "D2 v3", "0.188"),
		vmItem("m3", "westus", "Virtual Machines Dv3 Series", "D2 v3", "0.1"),
		vmItem("m4", "eastus", "Virtual Machines Ev4 Series", "E2 v4", "0.126"),
	)

	q, err := newEngine().Estimate(context.Background(), cat, Request{
		Region: "eastus",
		Components: []Component{
			{Kind: KindVM, Name: "web", Filter: catalog.LineItemFilter{Meter: "E2 v4"}, Quantity: d("1")},
			{Kind: KindLineItem, Name: "d2", Filter: catalog.LineItemFilter{Meter: "D2 v3"}, Quantity: d("10")},
			{Kind: KindLineItem, Name: "none", Filter: catalog.LineItemFilter{Meter: "F2"}, Quantity: d("1")},
		},
	})
	require.NoError(t, err)

	web := q.Lines[0]
	assert.Equal(t, types.MatchExact, web.MatchQuality)
	assert.True(t, web.UsageQuantity.Equal(d("730")))
	assert.True(t, web.LineCost.Equal(d("91.98")), web.LineCost.String())

	d2 := q.Lines[1]
	assert.Equal(t, types.MatchPartial, d2.MatchQuality)
	assert.Equal(t, types.OfferKey("m1"), d2.MatchedKey)
	assert.True(t, d2.LineCost.Equal(d("0.96")))

	assert.False(t, q.Lines[2].Priced)

	var kinds []string
	for _, w := range q.Warnings {
		kinds = append(kinds, w.Type)
	}
	assert.ElementsMatch(t, []string{WarningAmbiguous, string(errors.TypeNoMatch)}, kinds)
}

func TestEstimate_CatalogWarningsCarried(t *testing.T) {
	b := catalog.NewBuilder()
	b.Add(catalog.NewOffer("hot-lrs").SetPrice(types.UnitPerGB, "eastus", d("0.02")))
	b.AddWarning("page 2: malformed")

	q, err := newEngine().Estimate(context.Background(), b.Build(), Request{
		Components:     []Component{{Kind: KindStorage, Offer: "hot-lrs", Quantity: d("1")}},
		CatalogWarning: &catalog.PartialCatalogWarning{PagesRetrieved: 3, CeilingReached: true},
	})

	require.NoError(t, err)
	require.Len(t, q.Warnings, 2)
	assert.Equal(t, WarningPartialCatalog, q.Warnings[0].Type)
	assert.Equal(t, string(errors.TypeMalformedPage), q.Warnings[1].Type)
}

func TestEstimate_RequestNotMutated(t *testing.T) {
	comps := []Component{{Kind: KindStorage, Offer: "hot-lrs", Quantity: d("1")}}

	_, err := newEngine().Estimate(context.Background(), storageCatalog(), Request{Components: comps})

	require.NoError(t, err)
	assert.Empty(t, comps[0].Name)
}

func TestEstimate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newEngine().Estimate(ctx, storageCatalog(), Request{
		Components: []Component{{Kind: KindStorage, Offer: "hot-lrs", Quantity: d("1")}},
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestEstimate_NilCatalog(t *testing.T) {
	_, err := newEngine().Estimate(context.Background(), nil, Request{})
	assert.True(t, errors.IsType(err, errors.TypeInput))
}
