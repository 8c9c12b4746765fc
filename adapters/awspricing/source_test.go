package awspricing

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratham7049/azure-pricing-calculator/core/catalog"
	corepricing "github.com/pratham7049/azure-pricing-calculator/core/pricing"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
	"github.com/pratham7049/azure-pricing-calculator/internal/logging"
)

func productDoc(sku, region, price string) string {
	return fmt.Sprintf(`{
	  "serviceCode": "AmazonS3",
	  "product": {"sku": %[1]q, "productFamily": "Storage",
	    "attributes": {"regionCode": %[2]q, "location": "US East (N. Virginia)", "servicecode": "AmazonS3", "usagetype": "TimedStorage-ByteHrs", "storageClass": "General Purpose"}},
	  "terms": {"OnDemand": {"%[1]s.JRTCKXETXF": {"offerTermCode": "JRTCKXETXF", "sku": %[1]q,
	    "priceDimensions": {"%[1]s.JRTCKXETXF.6YS6EN2CT7": {"rateCode": "%[1]s.JRTCKXETXF.6YS6EN2CT7",
	      "description": "$0.023 per GB - first 50 TB / month of storage used", "beginRange": "0", "endRange": "51200",
	      "unit": "GB-Mo", "pricePerUnit": {"USD": %[3]q}}}}}}
	}`, sku, region, price)
}

type fakeAPI struct {
	pages  [][]string
	inputs []*pricing.GetProductsInput
	err    error
}

func (f *fakeAPI) GetProducts(_ context.Context, in *pricing.GetProductsInput, _ ...func(*pricing.Options)) (*pricing.GetProductsOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	n := 0
	if in.NextToken != nil {
		fmt.Sscanf(aws.ToString(in.NextToken), "t%d", &n)
	}
	out := &pricing.GetProductsOutput{PriceList: f.pages[n]}
	if n+1 < len(f.pages) {
		out.NextToken = aws.String(fmt.Sprintf("t%d", n+1))
	}
	return out, nil
}

func TestDecodeProduct(t *testing.T) {
	recs, err := DecodeProduct([]byte(productDoc("ABC", "us-east-1", "0.0230000000")), types.CurrencyUSD)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, types.OfferKey("abc.jrtckxetxf.6ys6en2ct7"), rec.Key)
	assert.Equal(t, "us-east-1", rec.Region())
	assert.Equal(t, "AmazonS3", rec.Field(catalog.FieldService))
	assert.Equal(t, "TimedStorage-ByteHrs", rec.Field(catalog.FieldSKU))
	assert.Equal(t, "General Purpose", rec.Field("storageClass"))
	assert.Equal(t, "51200", rec.Field("endRange"))
	assert.Equal(t, types.CurrencyUSD, rec.Currency)

	rate, err := corepricing.LineItemRate(rec)
	require.NoError(t, err)
	assert.Equal(t, types.UnitPerGB, rate.Unit)
	assert.True(t, rate.Value.Equal(decimal.RequireFromString("0.023")))
}

func TestDecodeProduct_OtherCurrencySkipped(t *testing.T) {
	recs, err := DecodeProduct([]byte(productDoc("ABC", "us-east-1", "1")), types.CurrencyEUR)

	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSource_PagesNextToken(t *testing.T) {
	api := &fakeAPI{pages: [][]string{
		{productDoc("A", "us-east-1", "0.023"), productDoc("B", "us-east-1", "0.0125")},
		{productDoc("C", "us-east-1", "0.004"), "not json"},
	}}
	src := NewSource(api, "AmazonS3").WithRegion("us-east-1")
	src.Logger = logging.Nop()

	loader := catalog.NewLoader(10)
	loader.Logger = logging.Nop()
	cat, warn := loader.Load(context.Background(), src)

	assert.Nil(t, warn)
	assert.Equal(t, 2, cat.Pages())
	assert.Equal(t, 3, cat.Len(), "undecodable entries are skipped")
	assert.Equal(t, types.CurrencyUSD, cat.Currency())

	require.Len(t, api.inputs, 2)
	first := api.inputs[0]
	assert.Equal(t, "AmazonS3", aws.ToString(first.ServiceCode))
	assert.Nil(t, first.NextToken)
	require.Len(t, first.Filters, 1)
	assert.Equal(t, "regionCode", aws.ToString(first.Filters[0].Field))
	assert.Equal(t, "t1", aws.ToString(api.inputs[1].NextToken))

	hits := cat.Filter(catalog.LineItemFilter{Region: "us-east-1", Contains: "c."})
	require.Len(t, hits, 1)
}

func TestSource_APIErrorIsTransportFailure(t *testing.T) {
	src := NewSource(&fakeAPI{err: fmt.Errorf("throttled")}, "AmazonS3")
	src.Logger = logging.Nop()

	_, err := src.Next(context.Background(), "")

	assert.True(t, errors.IsType(err, errors.TypeTransport))
}

func TestSource_RequiresServiceCode(t *testing.T) {
	_, err := NewSource(&fakeAPI{}, "").Next(context.Background(), "")
	assert.True(t, errors.IsType(err, errors.TypeConfig))
}
