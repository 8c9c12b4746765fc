// Package input reads estimate profiles: the region, currency, key schema
// and billable components of one quote, written in HCL or its JSON form.
//
//	region       = "eastus"
//	schema       = ["accountType", "storageType", "accessTier", "redundancy"]
//	load_bearing = ["accountType", "storageType", "accessTier", "redundancy"]
//
//	component "storage" "capacity" {
//	  selection = { accountType = "general-purpose-v2", storageType = "block-blob",
//	                accessTier = "hot", redundancy = "lrs" }
//	  quantity  = 500
//	}
package input

import (
	"fmt"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"

	"github.com/pratham7049/azure-pricing-calculator/core/catalog"
	"github.com/pratham7049/azure-pricing-calculator/core/engine"
	"github.com/pratham7049/azure-pricing-calculator/core/resolver"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
)

// Profile is the decoded form of a profile document
type Profile struct {
	Region      string           `hcl:"region,optional" json:"region,omitempty"`
	Currency    string           `hcl:"currency,optional" json:"currency,omitempty"`
	Schema      []string         `hcl:"schema,optional" json:"schema,omitempty"`
	LoadBearing []string         `hcl:"load_bearing,optional" json:"load_bearing,omitempty"`
	Components  []ComponentBlock `hcl:"component,block" json:"components"`
}

// ComponentBlock is one `component "<kind>" "<name>"` block
type ComponentBlock struct {
	Kind      string            `hcl:"kind,label" json:"kind"`
	Name      string            `hcl:"name,label" json:"name"`
	Selection map[string]string `hcl:"selection,optional" json:"selection,omitempty"`
	Offer     string            `hcl:"offer,optional" json:"offer,omitempty"`
	Contains  string            `hcl:"contains,optional" json:"contains,omitempty"`
	Units     []string          `hcl:"units,optional" json:"units,omitempty"`

	Quantity Quantity `hcl:"quantity,optional" json:"quantity,omitempty"`

	Filter  *FilterBlock  `hcl:"filter,block" json:"filter,omitempty"`
	Confirm *ConfirmBlock `hcl:"confirm,block" json:"confirm,omitempty"`
}

// Quantity is a usage amount kept as text so decimal values survive
// decoding exactly
type Quantity string

// UnmarshalJSON accepts JSON numbers as well as strings
func (q *Quantity) UnmarshalJSON(b []byte) error {
	text := strings.TrimSpace(string(b))
	if text == "null" {
		*q = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*q = Quantity(s)
		return nil
	}
	*q = Quantity(text)
	return nil
}

// FilterBlock selects line items
type FilterBlock struct {
	Region   string `hcl:"region,optional" json:"region,omitempty"`
	Service  string `hcl:"service,optional" json:"service,omitempty"`
	Product  string `hcl:"product,optional" json:"product,omitempty"`
	SKU      string `hcl:"sku,optional" json:"sku,omitempty"`
	Meter    string `hcl:"meter,optional" json:"meter,omitempty"`
	Type     string `hcl:"type,optional" json:"type,omitempty"`
	Contains string `hcl:"contains,optional" json:"contains,omitempty"`
}

// ConfirmBlock accepts a suggested correction for one selection value
type ConfirmBlock struct {
	Dimension string `hcl:"dimension" json:"dimension"`
	Value     string `hcl:"value" json:"value"`
}

// ParseProfile decodes src. The filename extension picks the syntax:
// ".json" is read as HCL's JSON form, anything else as native HCL.
func ParseProfile(filename string, src []byte) (*Profile, error) {
	parser := hclparse.NewParser()

	var file *hcl.File
	var diags hcl.Diagnostics
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		file, diags = parser.ParseJSON(src, filename)
	} else {
		file, diags = parser.ParseHCL(src, filename)
	}
	if diags.HasErrors() {
		return nil, errors.Parsing("parse profile "+filename, diags)
	}

	var p Profile
	if diags := gohcl.DecodeBody(file.Body, nil, &p); diags.HasErrors() {
		return nil, errors.Parsing("decode profile "+filename, diags)
	}
	return &p, nil
}

// Request converts the profile into an engine request. Component kinds are
// checked by the engine; only quantities are validated here.
func (p *Profile) Request() (engine.Request, error) {
	req := engine.Request{
		Region:      strings.ToLower(strings.TrimSpace(p.Region)),
		Currency:    types.Currency(strings.ToUpper(strings.TrimSpace(p.Currency))),
		Schema:      types.FacetSchema(p.Schema),
		LoadBearing: p.LoadBearing,
		Components:  make([]engine.Component, 0, len(p.Components)),
	}

	for _, b := range p.Components {
		c, err := b.component()
		if err != nil {
			return engine.Request{}, err
		}
		req.Components = append(req.Components, c)
	}
	return req, nil
}

func (b ComponentBlock) component() (engine.Component, error) {
	c := engine.Component{
		Kind:     engine.Kind(strings.ToLower(b.Kind)),
		Name:     b.Name,
		Offer:    types.OfferKey(b.Offer),
		Contains: b.Contains,
		Quantity: decimal.Zero,
	}

	if q := strings.TrimSpace(string(b.Quantity)); q != "" {
		v, err := decimal.NewFromString(q)
		if err != nil {
			return c, errors.Input(fmt.Sprintf("component %q: quantity %q is not a number", b.Name, b.Quantity))
		}
		c.Quantity = v
		c.QuantitySet = true
	}

	if len(b.Selection) > 0 {
		c.Selection = types.FacetSelection(b.Selection).Normalize()
	}
	for _, u := range b.Units {
		c.Units = append(c.Units, types.UnitTag(u).Normalize())
	}

	if f := b.Filter; f != nil {
		c.Filter = catalog.LineItemFilter{
			Region:   f.Region,
			Service:  f.Service,
			Product:  f.Product,
			SKU:      f.SKU,
			Meter:    f.Meter,
			Type:     f.Type,
			Contains: f.Contains,
		}
	}

	if cf := b.Confirm; cf != nil {
		c.Confirmed = &resolver.Suggestion{
			Dimension: cf.Dimension,
			Input:     c.Selection.Get(cf.Dimension),
			Candidate: strings.ToLower(strings.TrimSpace(cf.Value)),
		}
	}
	return c, nil
}
