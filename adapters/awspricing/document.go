package awspricing

import (
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/pratham7049/azure-pricing-calculator/core/catalog"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
)

// Term types priced as line items
const (
	TermOnDemand = "OnDemand"
	TermReserved = "Reserved"
)

// priceListEntry is one element of GetProducts' PriceList
type priceListEntry struct {
	Product struct {
		SKU           string            `json:"sku"`
		ProductFamily string            `json:"productFamily"`
		Attributes    map[string]string `json:"attributes"`
	} `json:"product"`
	ServiceCode string                          `json:"serviceCode"`
	Terms       map[string]map[string]priceTerm `json:"terms"`
}

type priceTerm struct {
	OfferTermCode   string                    `json:"offerTermCode"`
	SKU             string                    `json:"sku"`
	PriceDimensions map[string]priceDimension `json:"priceDimensions"`
	TermAttributes  map[string]string         `json:"termAttributes"`
}

type priceDimension struct {
	RateCode     string            `json:"rateCode"`
	Description  string            `json:"description"`
	BeginRange   string            `json:"beginRange"`
	EndRange     string            `json:"endRange"`
	Unit         string            `json:"unit"`
	PricePerUnit map[string]string `json:"pricePerUnit"`
}

// DecodeProduct flattens one price list document into line items, one per
// price dimension priced in currency. Records are ordered by rate code.
func DecodeProduct(data []byte, currency types.Currency) ([]*catalog.OfferRecord, error) {
	var entry priceListEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, errors.Parsing("decode price list entry", err)
	}

	var out []*catalog.OfferRecord
	for _, termType := range []string{TermOnDemand, TermReserved} {
		for _, term := range entry.Terms[termType] {
			for _, dim := range term.PriceDimensions {
				amount, ok := dim.PricePerUnit[string(currency)]
				if !ok {
					continue
				}
				price, err := decimal.NewFromString(amount)
				if err != nil {
					return nil, errors.Parsing("price of "+dim.RateCode, err).WithContext("rate_code", dim.RateCode)
				}
				out = append(out, record(entry, termType, term, dim, price, currency))
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func record(entry priceListEntry, termType string, term priceTerm, dim priceDimension, price decimal.Decimal, currency types.Currency) *catalog.OfferRecord {
	key := dim.RateCode
	if key == "" {
		key = strings.Join([]string{entry.Product.SKU, term.OfferTermCode}, ".")
	}
	rec := catalog.NewOffer(types.OfferKey(strings.ToLower(key)))

	attrs := entry.Product.Attributes
	for name, v := range attrs {
		rec.SetField(name, v)
	}
	set := func(name, v string) {
		if v != "" {
			rec.SetField(name, v)
		}
	}
	set(catalog.FieldRegion, strings.ToLower(attrs["regionCode"]))
	set(catalog.FieldLocation, attrs["location"])
	set(catalog.FieldService, firstNonEmpty(attrs["servicename"], attrs["servicecode"], entry.ServiceCode))
	set(catalog.FieldProduct, entry.Product.ProductFamily)
	set(catalog.FieldSKU, firstNonEmpty(attrs["instanceType"], attrs["usagetype"]))
	set(catalog.FieldSKUID, entry.Product.SKU)
	set(catalog.FieldMeter, dim.Description)
	set(catalog.FieldType, termType)
	set(catalog.FieldReservation, term.TermAttributes["LeaseContractLength"])
	if dim.BeginRange != "" && dim.BeginRange != "0" {
		set("beginRange", dim.BeginRange)
	}
	if dim.EndRange != "" && dim.EndRange != "Inf" {
		set("endRange", dim.EndRange)
	}

	rec.SetUnitPrice(price, dim.Unit)
	rec.Currency = currency
	return rec
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
