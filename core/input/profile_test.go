package input

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratham7049/azure-pricing-calculator/core/engine"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
)

const quoteHCL = `
region       = "EastUS"
currency     = "usd"
schema       = ["accountType", "storageType", "accessTier", "redundancy"]
load_bearing = ["accountType", "storageType", "accessTier", "redundancy"]

component "storage" "capacity" {
  selection = {
    accountType = "General-Purpose-V2"
    storageType = "block-blob"
    accessTier  = "hott"
    redundancy  = "lrs"
  }
  quantity = 500.25

  confirm {
    dimension = "accessTier"
    value     = "hot"
  }
}

component "operations" "writes" {
  offer    = "block-blob-write-operations"
  units    = ["PER10K"]
  quantity = 100000
}

component "vm" "web" {
  quantity = 2
  filter {
    meter   = "D2 v3"
    service = "Virtual Machines"
  }
}
`

func TestParseProfile_HCL(t *testing.T) {
	p, err := ParseProfile("quote.hcl", []byte(quoteHCL))
	require.NoError(t, err)
	require.Len(t, p.Components, 3)

	req, err := p.Request()
	require.NoError(t, err)

	assert.Equal(t, "eastus", req.Region)
	assert.Equal(t, types.CurrencyUSD, req.Currency)
	assert.Equal(t, types.FacetSchema{"accountType", "storageType", "accessTier", "redundancy"}, req.Schema)

	storage := req.Components[0]
	assert.Equal(t, engine.KindStorage, storage.Kind)
	assert.Equal(t, "capacity", storage.Name)
	assert.Equal(t, "general-purpose-v2", storage.Selection.Get("accountType"))
	assert.True(t, storage.Quantity.Equal(decimal.RequireFromString("500.25")))
	require.NotNil(t, storage.Confirmed)
	assert.Equal(t, "hott", storage.Confirmed.Input)
	assert.Equal(t, "hot", storage.Confirmed.Candidate)

	ops := req.Components[1]
	assert.Equal(t, types.OfferKey("block-blob-write-operations"), ops.Offer)
	assert.Equal(t, []types.UnitTag{types.UnitPer10K}, ops.Units)

	vm := req.Components[2]
	assert.Equal(t, "D2 v3", vm.Filter.Meter)
	assert.Equal(t, "Virtual Machines", vm.Filter.Service)
}

func TestParseProfile_JSON(t *testing.T) {
	doc := `{
	  "region": "westeurope",
	  "component": {
	    "bandwidth": {"egress": {"quantity": 10}}
	  }
	}`

	p, err := ParseProfile("quote.json", []byte(doc))
	require.NoError(t, err)

	req, err := p.Request()
	require.NoError(t, err)
	require.Len(t, req.Components, 1)
	assert.Equal(t, engine.KindBandwidth, req.Components[0].Kind)
	assert.Equal(t, "egress", req.Components[0].Name)
	assert.True(t, req.Components[0].Quantity.Equal(decimal.NewFromInt(10)))
}

func TestParseProfile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		errType errors.Type
		decode  bool
	}{
		{name: "syntax", src: `component "storage" {`, errType: errors.TypeParsing},
		{name: "unknown attribute", src: `colour = "blue"`, errType: errors.TypeParsing},
		{name: "bad quantity", src: `component "storage" "a" { quantity = "lots" }`, errType: errors.TypeInput, decode: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseProfile("quote.hcl", []byte(tt.src))
			if tt.decode {
				require.NoError(t, err)
				_, err = p.Request()
			}
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.errType), err.Error())
		})
	}
}

func TestEnvelope_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quote.hcl")
	require.NoError(t, os.WriteFile(path, []byte(quoteHCL), 0o644))

	env, err := FromFile(path)
	require.NoError(t, err)

	assert.Equal(t, SourceCLI, env.Source.Type)
	assert.Len(t, env.ContentHash, 64)
	assert.Empty(t, env.Validate())

	req, err := env.Request()
	require.NoError(t, err)
	assert.Len(t, req.Components, 3)

	again, err := FromBytes(SourceInfo{Type: SourceAPI}, []byte(quoteHCL))
	require.NoError(t, err)
	assert.Equal(t, env.ContentHash, again.ContentHash)
}

func TestEnvelope_NoComponents(t *testing.T) {
	env, err := FromBytes(SourceInfo{Type: SourceAPI}, []byte(`region = "eastus"`))
	require.NoError(t, err)

	_, err = env.Request()
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestFromFile_Missing(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "nope.hcl"))
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestFromJSON(t *testing.T) {
	body := []byte(`{
  "region": "eastus",
  "components": [
    {"kind": "storage", "name": "capacity", "selection": {"accessTier": "Hot"}, "quantity": 500},
    {"kind": "operations", "name": "writes", "offer": "hot-write-operations", "quantity": "1e5"}
  ]
}`)

	env, err := FromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, SourceAPI, env.Source.Type)
	assert.Len(t, env.ContentHash, 64)

	req, err := env.Request()
	require.NoError(t, err)
	require.Len(t, req.Components, 2)
	assert.Equal(t, "500", req.Components[0].Quantity.String())
	assert.Equal(t, "hot", req.Components[0].Selection.Get("accessTier"))
	assert.Equal(t, "100000", req.Components[1].Quantity.String())
}

func TestFromJSON_Malformed(t *testing.T) {
	_, err := FromJSON([]byte(`{"components": [`))
	assert.True(t, errors.IsType(err, errors.TypeParsing))
}

func TestRequest_QuantitySet(t *testing.T) {
	p, err := ParseProfile("q.hcl", []byte(`
component "reservation" "zero" {
  contains = "reserved-capacity"
  quantity = 0
}
component "reservation" "omitted" {
  contains = "reserved-capacity"
}
`))
	require.NoError(t, err)

	req, err := p.Request()
	require.NoError(t, err)
	require.Len(t, req.Components, 2)
	assert.True(t, req.Components[0].QuantitySet)
	assert.True(t, req.Components[0].Quantity.IsZero())
	assert.False(t, req.Components[1].QuantitySet)
}
