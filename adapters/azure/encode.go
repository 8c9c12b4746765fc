package azure

import (
	"os"

	json "github.com/goccy/go-json"

	"github.com/pratham7049/azure-pricing-calculator/core/catalog"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
)

// EncodeCatalog renders cat as a single dict-of-offers document that
// DecodePage (and so FileSource) reads back into an equivalent catalog.
// Line items keep their keys; their unit price travels as offer members.
func EncodeCatalog(cat *catalog.Catalog) ([]byte, error) {
	doc := make(map[string]interface{})

	offers := make(map[string]map[string]interface{}, cat.Len())
	cat.Range(func(key types.OfferKey, rec *catalog.OfferRecord) bool {
		offers[string(key)] = encodeOffer(rec)
		return true
	})
	doc[fieldOffers] = offers

	lists := make(map[string]string, len(VocabularyLists))
	for list, dim := range VocabularyLists {
		lists[dim] = list
	}
	for _, dim := range cat.VocabularyDimensions() {
		name, ok := lists[dim]
		if !ok {
			name = dim
		}
		doc[name] = cat.Vocabulary(dim)
	}

	if c := cat.Currency(); c != "" {
		doc["currency"] = c
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Internal("encode catalog", err)
	}
	return data, nil
}

func encodeOffer(rec *catalog.OfferRecord) map[string]interface{} {
	out := make(map[string]interface{}, len(rec.Fields)+4)
	for name, v := range rec.Fields {
		out[name] = v
	}

	if len(rec.Prices) > 0 {
		prices := make(map[string]map[string]wirePrice, len(rec.Prices))
		for unit, byRegion := range rec.Prices {
			regions := make(map[string]wirePrice, len(byRegion))
			for region, v := range byRegion {
				regions[region] = wirePrice{Value: v}
			}
			prices[string(unit)] = regions
		}
		out[fieldPrices] = prices
	}

	if rec.UnitPrice != nil {
		out[fieldUnitPrice] = *rec.UnitPrice
		if rec.UnitOfMeasure != "" {
			out[fieldUnitOfMeasure] = rec.UnitOfMeasure
		}
	}
	if rec.Currency != "" {
		out[fieldCurrencyCode] = rec.Currency
	}
	return out
}

// SaveCatalog writes cat to path for later offline use
func SaveCatalog(cat *catalog.Catalog, path string) error {
	data, err := EncodeCatalog(cat)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Internal("write catalog file", err).WithContext("path", path)
	}
	return nil
}
