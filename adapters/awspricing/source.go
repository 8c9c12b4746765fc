// Package awspricing pages the AWS Price List GetProducts API as a catalog
// page source. Every price dimension becomes a structured line item.
package awspricing

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	pricingtypes "github.com/aws/aws-sdk-go-v2/service/pricing/types"
	"go.uber.org/zap"

	"github.com/pratham7049/azure-pricing-calculator/core/catalog"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
	"github.com/pratham7049/azure-pricing-calculator/internal/logging"
)

// APIRegion is where the Price List API is served for all regions
const APIRegion = "us-east-1"

// DefaultPageSize is the GetProducts MaxResults
const DefaultPageSize = 100

// ProductsAPI is the part of the pricing client used by Source
type ProductsAPI interface {
	GetProducts(ctx context.Context, params *pricing.GetProductsInput, optFns ...func(*pricing.Options)) (*pricing.GetProductsOutput, error)
}

// Source pages GetProducts results for one service
type Source struct {
	API ProductsAPI

	// ServiceCode is the Price List service, e.g. AmazonS3
	ServiceCode string

	// Filters are TERM_MATCH attribute filters, e.g. regionCode
	Filters map[string]string

	PageSize int32

	// Currency selects the pricePerUnit entry; USD when empty
	Currency types.Currency

	Logger *zap.Logger
}

// NewSource creates a source over api
func NewSource(api ProductsAPI, serviceCode string) *Source {
	return &Source{
		API:         api,
		ServiceCode: serviceCode,
		Filters:     map[string]string{},
		PageSize:    DefaultPageSize,
		Currency:    types.CurrencyUSD,
	}
}

// NewDefaultSource creates a source using the SDK's default credential chain
func NewDefaultSource(ctx context.Context, serviceCode string) (*Source, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(APIRegion))
	if err != nil {
		return nil, errors.Config(fmt.Sprintf("load AWS SDK config: %v", err))
	}
	return NewSource(pricing.NewFromConfig(cfg), serviceCode), nil
}

// WithRegion restricts results to one region code
func (s *Source) WithRegion(region string) *Source {
	if region != "" {
		if s.Filters == nil {
			s.Filters = map[string]string{}
		}
		s.Filters["regionCode"] = region
	}
	return s
}

// Next implements catalog.PageSource. The token is GetProducts' NextToken.
func (s *Source) Next(ctx context.Context, token string) (*catalog.RawPage, error) {
	if s.ServiceCode == "" {
		return nil, errors.Config("service code is required")
	}
	log := logging.OrGlobal(s.Logger)

	currency := s.Currency
	if currency == "" {
		currency = types.CurrencyUSD
	}
	size := s.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	input := &pricing.GetProductsInput{
		ServiceCode:   aws.String(s.ServiceCode),
		FormatVersion: aws.String("aws_v1"),
		MaxResults:    aws.Int32(size),
		Filters:       s.filters(),
	}
	if token != "" {
		input.NextToken = aws.String(token)
	}

	out, err := s.API.GetProducts(ctx, input)
	if err != nil {
		return nil, errors.Transport("aws price list GetProducts", err).WithContext("service", s.ServiceCode)
	}

	page := &catalog.RawPage{
		Items:         make([]*catalog.OfferRecord, 0, len(out.PriceList)),
		NextPageToken: aws.ToString(out.NextToken),
		Currency:      currency,
	}
	for i, doc := range out.PriceList {
		recs, err := DecodeProduct([]byte(doc), currency)
		if err != nil {
			log.Warn("skipping price list entry", zap.Int("index", i), zap.Error(err))
			continue
		}
		page.Items = append(page.Items, recs...)
	}

	log.Debug("fetched price list page",
		zap.String("service", s.ServiceCode),
		zap.Int("products", len(out.PriceList)),
		zap.Int("items", len(page.Items)))
	return page, nil
}

func (s *Source) filters() []pricingtypes.Filter {
	fields := make([]string, 0, len(s.Filters))
	for f := range s.Filters {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	out := make([]pricingtypes.Filter, 0, len(fields))
	for _, f := range fields {
		out = append(out, pricingtypes.Filter{
			Type:  pricingtypes.FilterTypeTermMatch,
			Field: aws.String(f),
			Value: aws.String(s.Filters[f]),
		})
	}
	return out
}
