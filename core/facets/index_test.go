package facets

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratham7049/azure-pricing-calculator/core/catalog"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
)

var storageSchema = types.FacetSchema{types.DimAccessTier, types.DimRedundancy}

func offer(key, region string) *catalog.OfferRecord {
	return catalog.NewOffer(types.OfferKey(key)).SetPrice(types.UnitPerGB, region, decimal.NewFromFloat(0.01))
}

func storageCatalog() *catalog.Catalog {
	return catalog.New(
		offer("hot-lrs", "eastus"),
		offer("cool-grs", "westus"),
		offer("hot-zrs", "eastus"),
		offer("hot-write-operations", "eastus"),
		offer("reserved-capacity-100tb-oneyear", "eastus"),
		offer("premium-hot-lrs", "eastus"),
	)
}

func TestBuild_TokenDerived(t *testing.T) {
	ix := Build(storageCatalog(), storageSchema)

	assert.Equal(t, []string{"cool", "hot"}, ix.Values(types.DimAccessTier))
	assert.Equal(t, []string{"grs", "lrs", "zrs"}, ix.Values(types.DimRedundancy))

	d, ok := ix.Dimension(types.DimAccessTier)
	require.True(t, ok)
	assert.Equal(t, SourceKeyTokens, d.Source)
}

func TestBuild_DerivedDimensions(t *testing.T) {
	ix := Build(storageCatalog(), storageSchema)

	assert.Equal(t, []string{"eastus", "westus"}, ix.Values(types.DimRegion))
	assert.Equal(t, []string{"hot-write-operations"}, ix.Values(types.DimOperationType))
	assert.Equal(t, []string{"reserved-capacity-100tb-oneyear"}, ix.Values(types.DimReservationPlan))
}

func TestBuild_ExplicitVocabularyWins(t *testing.T) {
	b := catalog.NewBuilder()
	b.Add(offer("hot-lrs", "eastus"))
	b.Add(offer("cool-lrs", "eastus"))
	b.AddVocabulary(types.DimAccessTier, []catalog.VocabEntry{
		{Slug: "hot", DisplayName: "Hot"},
		{Slug: "archive", DisplayName: "Archive"},
	})
	b.AddVocabulary(types.DimRegion, []catalog.VocabEntry{{Slug: "eastus", DisplayName: "East US"}})
	cat := b.Build()

	ix := Build(cat, storageSchema)

	assert.Equal(t, []string{"archive", "hot"}, ix.Values(types.DimAccessTier))
	assert.True(t, ix.HasExplicit(types.DimAccessTier))
	assert.Equal(t, []string{"eastus"}, ix.Values(types.DimRegion))
	assert.False(t, ix.Contains(types.DimAccessTier, "cool"))
}

func TestBuild_Idempotent(t *testing.T) {
	cat := storageCatalog()

	first := Build(cat, storageSchema)
	second := Build(cat, storageSchema)

	assert.Equal(t, first.Vocabulary(), second.Vocabulary())
	assert.Equal(t, first.Dimensions(), second.Dimensions())
}

func TestBuild_MismatchedKeysExcluded(t *testing.T) {
	// premium-hot-lrs has three tokens and cannot fill a two dimension schema
	ix := Build(storageCatalog(), storageSchema)

	assert.NotContains(t, ix.Values(types.DimAccessTier), "premium")
}

func TestContains_TokenFallback(t *testing.T) {
	cat := catalog.New(offer("general-purpose-v2-block-blob-hot-lrs", "eastus"))
	schema := types.FacetSchema{types.DimAccountType, types.DimStorageType, types.DimAccessTier, types.DimRedundancy}

	ix := Build(cat, schema)

	assert.Empty(t, ix.Values(types.DimAccountType))
	assert.True(t, ix.Contains(types.DimAccountType, "general-purpose-v2"))
	assert.True(t, ix.Contains(types.DimStorageType, "block-blob"))
	assert.False(t, ix.Contains(types.DimAccessTier, "archive"))
	assert.False(t, ix.Contains(types.DimStorageType, "block-bl"))
	assert.False(t, ix.Contains(types.DimAccessTier, ""))
}

func TestValidate(t *testing.T) {
	ix := Build(storageCatalog(), storageSchema)

	assert.NoError(t, ix.Validate(types.FacetSelection{types.DimAccessTier: "hot", types.DimRedundancy: "lrs"}))

	err := ix.Validate(types.FacetSelection{types.DimAccessTier: "archive", types.DimRedundancy: "lrs"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInvalidSelection))
	assert.True(t, errors.Fatal(err))
}

func TestSegment(t *testing.T) {
	explicit := map[string][]string{
		types.DimAccountType: {"general-purpose-v2", "general-purpose", "premium"},
		types.DimStorageType: {"block-blob", "page-blob"},
	}
	schema := types.FacetSchema{types.DimAccountType, types.DimStorageType, types.DimAccessTier, types.DimRedundancy}

	tests := []struct {
		key  types.OfferKey
		want []string
		ok   bool
	}{
		{"general-purpose-v2-block-blob-hot-lrs", []string{"general-purpose-v2", "block-blob", "hot", "lrs"}, true},
		{"premium-page-blob-hot-zrs", []string{"premium", "page-blob", "hot", "zrs"}, true},
		{"premium-page-blob-hot", nil, false},
		{"standard-block-blob-hot-lrs", nil, false},
		{"premium-page-blob-hot-lrs-extra", nil, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got, ok := Segment(tt.key, schema, explicit)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSegment_PlainTokens(t *testing.T) {
	got, ok := Segment("hot-lrs", storageSchema, nil)
	require.True(t, ok)
	assert.Equal(t, []string{"hot", "lrs"}, got)

	_, ok = Segment("hot-lrs-x", storageSchema, nil)
	assert.False(t, ok)
}

func TestInferSchema_FromVocabulary(t *testing.T) {
	b := catalog.NewBuilder()
	b.Add(offer("general-purpose-v2-block-blob-hot-lrs", "eastus"))
	b.Add(offer("general-purpose-v2-block-blob-cool-grs", "eastus"))
	b.Add(offer("block-blob-hot-lrs", "eastus"))
	b.Add(offer("general-purpose-v2-block-blob-write-operations", "eastus"))
	b.AddVocabulary(types.DimAccountType, []catalog.VocabEntry{{Slug: "general-purpose-v2"}})
	b.AddVocabulary(types.DimStorageType, []catalog.VocabEntry{{Slug: "block-blob"}})
	b.AddVocabulary(types.DimAccessTier, []catalog.VocabEntry{{Slug: "hot"}, {Slug: "cool"}})
	b.AddVocabulary(types.DimRedundancy, []catalog.VocabEntry{{Slug: "lrs"}, {Slug: "grs"}})
	b.AddVocabulary(types.DimRegion, []catalog.VocabEntry{{Slug: "eastus"}})

	schema := InferSchema(b.Build())

	assert.Equal(t, types.FacetSchema{
		types.DimAccountType, types.DimStorageType, types.DimAccessTier, types.DimRedundancy,
	}, schema)
}

func TestInferSchema_Positional(t *testing.T) {
	cat := catalog.New(
		offer("hot-lrs", "eastus"),
		offer("cool-grs", "eastus"),
		offer("premium-hot-lrs", "eastus"),
		offer("hot-write-operations", "eastus"),
	)

	assert.Equal(t, types.FacetSchema{"segment1", "segment2"}, InferSchema(cat))
}

func TestInferSchema_Empty(t *testing.T) {
	assert.Empty(t, InferSchema(catalog.New()))
}
