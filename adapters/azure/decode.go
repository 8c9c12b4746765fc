// Package azure reads Azure pricing documents as catalog pages.
//
// Two document shapes are understood. The storage calculator publishes a
// single dict-of-offers document together with its facet vocabularies; the
// retail prices API publishes flat line items across pages linked by
// NextPageLink.
package azure

import (
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/pratham7049/azure-pricing-calculator/core/catalog"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
)

// Document fields
const (
	fieldOffers   = "offers"
	fieldItems    = "Items"
	fieldNextPage = "NextPageLink"
	fieldPrices   = "prices"

	// line item members of a saved offer
	fieldUnitPrice     = "unitPrice"
	fieldUnitOfMeasure = "unitOfMeasure"
	fieldCurrencyCode  = "currencyCode"
)

// VocabularyLists maps calculator vocabulary lists to facet dimensions
var VocabularyLists = map[string]string{
	"regions":            types.DimRegion,
	"accountTypes":       types.DimAccountType,
	"storageTypes":       types.DimStorageType,
	"accessTypes":        types.DimAccessTier,
	"redundancies":       types.DimRedundancy,
	"fileStructureTypes": types.DimFileStructure,
	"tiers":              types.DimTier,
}

var currencyFields = []string{"BillingCurrency", "currencyCode", "currency"}

type wirePrice struct {
	Value decimal.Decimal `json:"value"`
}

type wireItem struct {
	CurrencyCode     string          `json:"currencyCode"`
	TierMinimumUnits decimal.Decimal `json:"tierMinimumUnits"`
	RetailPrice      decimal.Decimal `json:"retailPrice"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	ArmRegionName    string          `json:"armRegionName"`
	Location         string          `json:"location"`
	MeterID          string          `json:"meterId"`
	MeterName        string          `json:"meterName"`
	ProductID        string          `json:"productId"`
	SkuID            string          `json:"skuId"`
	ProductName      string          `json:"productName"`
	SkuName          string          `json:"skuName"`
	ArmSkuName       string          `json:"armSkuName"`
	ServiceName      string          `json:"serviceName"`
	ServiceFamily    string          `json:"serviceFamily"`
	UnitOfMeasure    string          `json:"unitOfMeasure"`
	Type             string          `json:"type"`
	ReservationTerm  string          `json:"reservationTerm"`
}

// DecodePage decodes one calculator or retail document. A document that
// parses but carries neither offers nor items yields a malformed page, not
// an error.
func DecodePage(data []byte) (*catalog.RawPage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Parsing("decode pricing document", err)
	}

	page := &catalog.RawPage{}

	if raw, ok := field(doc, fieldOffers); ok {
		offers, err := decodeOffers(raw)
		if err != nil {
			return nil, err
		}
		page.Offers = offers
	}

	if raw, ok := field(doc, fieldItems); ok {
		var items []wireItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, errors.Parsing("decode line items", err)
		}
		page.Items = make([]*catalog.OfferRecord, 0, len(items))
		for _, it := range items {
			page.Items = append(page.Items, itemRecord(it))
		}
	}

	if raw, ok := field(doc, fieldNextPage); ok {
		var next string
		if err := json.Unmarshal(raw, &next); err != nil {
			return nil, errors.Parsing("decode next page link", err)
		}
		page.NextPageToken = next
	}

	for _, name := range currencyFields {
		if raw, ok := field(doc, name); ok {
			var c string
			if json.Unmarshal(raw, &c) == nil && c != "" {
				page.Currency = types.Currency(strings.ToUpper(c))
				break
			}
		}
	}

	for list, dim := range VocabularyLists {
		raw, ok := field(doc, list)
		if !ok {
			continue
		}
		var entries []catalog.VocabEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, errors.Parsing("decode vocabulary "+list, err)
		}
		if page.Vocabulary == nil {
			page.Vocabulary = make(map[string][]catalog.VocabEntry)
		}
		page.Vocabulary[dim] = entries
	}

	return page, nil
}

// field looks a top-level member up by exact name, then case-insensitively.
// JSON null counts as absent.
func field(doc map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	raw, ok := doc[name]
	if !ok {
		for k, v := range doc {
			if strings.EqualFold(k, name) {
				raw, ok = v, true
				break
			}
		}
	}
	if !ok || string(raw) == "null" {
		return nil, false
	}
	return raw, true
}

func decodeOffers(raw json.RawMessage) (map[types.OfferKey]*catalog.OfferRecord, error) {
	var offers map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw, &offers); err != nil {
		return nil, errors.Parsing("decode offers", err)
	}

	out := make(map[types.OfferKey]*catalog.OfferRecord, len(offers))
	for key, members := range offers {
		rec := catalog.NewOffer(types.OfferKey(key))

		if p, ok := members[fieldPrices]; ok && string(p) != "null" {
			var prices map[string]map[string]wirePrice
			if err := json.Unmarshal(p, &prices); err != nil {
				return nil, errors.Parsing("decode prices of "+key, err).WithContext("offer_key", key)
			}
			for unit, byRegion := range prices {
				for region, price := range byRegion {
					rec.SetPrice(types.UnitTag(unit), region, price.Value)
				}
			}
		}

		if p, ok := members[fieldUnitPrice]; ok && string(p) != "null" {
			var v decimal.Decimal
			if err := json.Unmarshal(p, &v); err != nil {
				return nil, errors.Parsing("decode unit price of "+key, err).WithContext("offer_key", key)
			}
			uom, _ := scalar(members[fieldUnitOfMeasure])
			rec.SetUnitPrice(v, uom)
		}
		if c, ok := scalar(members[fieldCurrencyCode]); ok {
			rec.Currency = types.Currency(strings.ToUpper(c))
		}

		names := make([]string, 0, len(members))
		for name := range members {
			switch name {
			case fieldPrices, fieldUnitPrice, fieldUnitOfMeasure, fieldCurrencyCode:
			default:
				names = append(names, name)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			if v, ok := scalar(members[name]); ok {
				rec.SetField(name, v)
			}
		}

		out[rec.Key] = rec
	}
	return out, nil
}

// scalar renders strings, numbers and booleans as field text
func scalar(raw json.RawMessage) (string, bool) {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s, true
	}
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" || text[0] == '{' || text[0] == '[' {
		return "", false
	}
	return text, true
}

func itemRecord(it wireItem) *catalog.OfferRecord {
	rec := catalog.NewOffer(itemKey(it))
	for name, v := range map[string]string{
		catalog.FieldRegion:      it.ArmRegionName,
		catalog.FieldLocation:    it.Location,
		catalog.FieldService:     it.ServiceName,
		catalog.FieldProduct:     it.ProductName,
		catalog.FieldSKU:         it.SkuName,
		catalog.FieldSKUID:       it.SkuID,
		catalog.FieldMeter:       it.MeterName,
		catalog.FieldMeterID:     it.MeterID,
		catalog.FieldType:        it.Type,
		catalog.FieldReservation: it.ReservationTerm,
		"productId":              it.ProductID,
		"armSkuName":             it.ArmSkuName,
		"serviceFamily":          it.ServiceFamily,
	} {
		if v != "" {
			rec.SetField(name, v)
		}
	}

	price := it.RetailPrice
	if price.IsZero() {
		price = it.UnitPrice
	}
	rec.SetUnitPrice(price, it.UnitOfMeasure)
	rec.Currency = types.Currency(strings.ToUpper(it.CurrencyCode))
	return rec
}

// itemKey identifies a retail line item. A meter is shared by its
// consumption, reservation and tier rows, so those qualifiers are appended.
func itemKey(it wireItem) types.OfferKey {
	parts := []string{it.MeterID}
	if it.MeterID == "" {
		parts = []string{it.SkuID, it.MeterName}
	}
	parts = append(parts, it.ArmRegionName)
	if it.Type != "" && !strings.EqualFold(it.Type, "Consumption") {
		parts = append(parts, it.Type, it.ReservationTerm)
	}
	if it.TierMinimumUnits.IsPositive() {
		parts = append(parts, "tier"+it.TierMinimumUnits.String())
	}

	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, strings.ToLower(strings.ReplaceAll(p, " ", "-")))
		}
	}
	return types.OfferKey(strings.Join(kept, types.KeyDelimiter))
}
