package azure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/pratham7049/azure-pricing-calculator/core/catalog"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
	"github.com/pratham7049/azure-pricing-calculator/internal/logging"
)

// Default endpoints
const (
	DefaultCalculatorURL = "https://azure.microsoft.com/api/v3/pricing/storage/calculator/"
	DefaultRetailURL     = "https://prices.azure.com/api/retail/prices"
)

// maxDocumentSize bounds a single response body
const maxDocumentSize = 256 << 20

// Client fetches pricing documents over HTTP
type Client struct {
	HTTP   *http.Client
	Logger *zap.Logger
}

func (c *Client) httpClient() *http.Client {
	if c == nil || c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

func (c *Client) logger() *zap.Logger {
	if c == nil {
		return logging.OrGlobal(nil)
	}
	return logging.OrGlobal(c.Logger)
}

// fetch GETs one document and decodes it. Non-2xx statuses and network
// failures are transport failures.
func (c *Client) fetch(ctx context.Context, target string) (*catalog.RawPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Transport("build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, errors.Transport("fetch pricing document", err).WithContext("url", target)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Transport(fmt.Sprintf("pricing endpoint returned status %d", resp.StatusCode), nil).
			WithContext("url", target).
			WithContext("status", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, errors.Transport("read pricing document", err).WithContext("url", target)
	}

	c.logger().Debug("fetched pricing document",
		zap.String("url", target),
		zap.Int("bytes", len(body)))

	return DecodePage(body)
}

// CalculatorSource reads the storage calculator's dict-of-offers document
type CalculatorSource struct {
	Client *Client

	// URL is the calculator endpoint
	URL string

	// Culture selects localized display names
	Culture string

	// Discount selects the agreement type priced by the calculator
	Discount string
}

// NewCalculatorSource creates a calculator source with default query values
func NewCalculatorSource(endpoint string, client *Client) *CalculatorSource {
	if endpoint == "" {
		endpoint = DefaultCalculatorURL
	}
	return &CalculatorSource{Client: client, URL: endpoint, Culture: "en-in", Discount: "mca"}
}

// Next implements catalog.PageSource. A token, if any, is fetched as a URL.
func (s *CalculatorSource) Next(ctx context.Context, token string) (*catalog.RawPage, error) {
	if token != "" {
		return s.Client.fetch(ctx, token)
	}
	u, err := withQuery(s.URL, map[string]string{"culture": s.Culture, "discount": s.Discount})
	if err != nil {
		return nil, err
	}
	return s.Client.fetch(ctx, u)
}

// RetailSource pages through the retail prices API following NextPageLink
type RetailSource struct {
	Client *Client

	// URL is the retail prices endpoint
	URL string

	// Filter is an OData $filter expression
	Filter string

	// Currency selects the currencyCode of returned prices
	Currency types.Currency
}

// NewRetailSource creates a retail source
func NewRetailSource(endpoint, filter string, currency types.Currency, client *Client) *RetailSource {
	if endpoint == "" {
		endpoint = DefaultRetailURL
	}
	return &RetailSource{Client: client, URL: endpoint, Filter: filter, Currency: currency}
}

// Next implements catalog.PageSource
func (s *RetailSource) Next(ctx context.Context, token string) (*catalog.RawPage, error) {
	if token != "" {
		return s.Client.fetch(ctx, token)
	}
	u, err := withQuery(s.URL, map[string]string{"$filter": s.Filter, "currencyCode": string(s.Currency)})
	if err != nil {
		return nil, err
	}
	return s.Client.fetch(ctx, u)
}

// FileSource reads saved pricing documents, one page per file in order
type FileSource struct {
	Paths []string
}

// NewFileSource creates a file source
func NewFileSource(paths ...string) *FileSource {
	return &FileSource{Paths: paths}
}

// Next implements catalog.PageSource. Tokens are file positions; links
// inside saved documents are not followed.
func (s *FileSource) Next(_ context.Context, token string) (*catalog.RawPage, error) {
	i := 0
	if token != "" {
		n, err := strconv.Atoi(token)
		if err != nil || n < 0 || n >= len(s.Paths) {
			return nil, errors.Input("invalid page token " + strconv.Quote(token))
		}
		i = n
	}
	if len(s.Paths) == 0 {
		return nil, errors.Config("no catalog files configured")
	}

	data, err := os.ReadFile(s.Paths[i])
	if err != nil {
		return nil, errors.Transport("read catalog file", err).WithContext("path", s.Paths[i])
	}
	page, err := DecodePage(data)
	if err != nil {
		return nil, err
	}

	page.NextPageToken = ""
	if i+1 < len(s.Paths) {
		page.NextPageToken = strconv.Itoa(i + 1)
	}
	return page, nil
}

func withQuery(base string, params map[string]string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", errors.Config("invalid pricing endpoint " + strconv.Quote(base))
	}
	q := u.Query()
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
