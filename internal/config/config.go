// Package config provides configuration management.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
	"github.com/pratham7049/azure-pricing-calculator/internal/logging"
)

// Environment variables that override file settings
const (
	EnvCurrency    = "PRICECALC_CURRENCY"
	EnvRegion      = "PRICECALC_REGION"
	EnvMaxPages    = "PRICECALC_MAX_PAGES"
	EnvPageTimeout = "PRICECALC_PAGE_TIMEOUT"
	EnvLogLevel    = "PRICECALC_LOG_LEVEL"
	EnvCatalogURL  = "PRICECALC_CATALOG_URL"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" yaml:"version"`

	// Catalog contains catalog source settings
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`

	// Estimate contains estimation defaults
	Estimate EstimateConfig `json:"estimate" yaml:"estimate"`

	// Output contains output configuration
	Output OutputConfig `json:"output" yaml:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" yaml:"logging"`

	// Server contains HTTP API settings
	Server ServerConfig `json:"server" yaml:"server"`
}

// CatalogConfig contains catalog fetch settings
type CatalogConfig struct {
	// Source selects the page source (calculator, retail, file, aws)
	Source string `json:"source" yaml:"source"`

	// CalculatorURL is the dict-of-offers calculator endpoint
	CalculatorURL string `json:"calculator_url" yaml:"calculator_url"`

	// RetailURL is the paginated retail prices endpoint
	RetailURL string `json:"retail_url" yaml:"retail_url"`

	// RetailFilter is the OData filter sent to the retail endpoint
	RetailFilter string `json:"retail_filter" yaml:"retail_filter"`

	// File is a saved catalog document for offline use
	File string `json:"file,omitempty" yaml:"file,omitempty"`

	// MaxPages is the page-count ceiling
	MaxPages int `json:"max_pages" yaml:"max_pages"`

	// PageTimeoutSeconds bounds each page fetch
	PageTimeoutSeconds int `json:"page_timeout_seconds" yaml:"page_timeout_seconds"`

	// PageDelayMillis is the pause between page fetches
	PageDelayMillis int `json:"page_delay_millis" yaml:"page_delay_millis"`

	// Culture is passed to the calculator endpoint
	Culture string `json:"culture" yaml:"culture"`

	// AWSServiceCode is the Price List service queried by the aws source
	AWSServiceCode string `json:"aws_service_code,omitempty" yaml:"aws_service_code,omitempty"`
}

// PageTimeout returns the page timeout as a duration
func (c CatalogConfig) PageTimeout() time.Duration {
	return time.Duration(c.PageTimeoutSeconds) * time.Second
}

// PageDelay returns the inter-page pause as a duration
func (c CatalogConfig) PageDelay() time.Duration {
	return time.Duration(c.PageDelayMillis) * time.Millisecond
}

// EstimateConfig contains estimation defaults
type EstimateConfig struct {
	// Currency is the session currency
	Currency types.Currency `json:"currency" yaml:"currency"`

	// Region is the default region
	Region string `json:"region" yaml:"region"`

	// HoursPerMonth converts hourly VM rates to monthly
	HoursPerMonth int `json:"hours_per_month" yaml:"hours_per_month"`

	// Concurrency bounds parallel component pricing
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format" yaml:"default_format"`

	// ShowWarnings prints accumulated warnings under the table
	ShowWarnings bool `json:"show_warnings" yaml:"show_warnings"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr" yaml:"addr"`

	// StoreBackend keeps issued quotations (memory, file)
	StoreBackend string `json:"store_backend" yaml:"store_backend"`

	// StoreDir is the file backend's directory
	StoreDir string `json:"store_dir,omitempty" yaml:"store_dir,omitempty"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Catalog: CatalogConfig{
			Source:             "calculator",
			CalculatorURL:      "https://azure.microsoft.com/api/v3/pricing/storage/calculator/",
			RetailURL:          "https://prices.azure.com/api/retail/prices",
			RetailFilter:       "serviceFamily eq 'Storage'",
			MaxPages:           100,
			PageTimeoutSeconds: 10,
			PageDelayMillis:    1000,
			Culture:            "en-in",
			AWSServiceCode:     "AmazonS3",
		},
		Estimate: EstimateConfig{
			Currency:      types.CurrencyUSD,
			Region:        "eastus",
			HoursPerMonth: 730,
			Concurrency:   4,
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
			ShowWarnings:  true,
		},
		Logging: logging.DefaultConfig(),
		Server: ServerConfig{
			Addr:         ":8080",
			StoreBackend: "memory",
		},
	}
}

// Load loads configuration from a JSON or YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "failed to parse "+path, err)
	}

	return config, nil
}

// LoadEnvFiles loads .env style files into the process environment.
// Missing files are ignored.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.Wrap(errors.TypeConfig, "failed to load "+p, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from PRICECALC_* environment variables
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvCurrency); v != "" {
		c.Estimate.Currency = types.Currency(strings.ToUpper(v))
	}
	if v := os.Getenv(EnvRegion); v != "" {
		c.Estimate.Region = strings.ToLower(v)
	}
	if v := os.Getenv(EnvMaxPages); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.TypeConfig, EnvMaxPages+" must be an integer", err)
		}
		c.Catalog.MaxPages = n
	}
	if v := os.Getenv(EnvPageTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(errors.TypeConfig, EnvPageTimeout+" must be a duration", err)
		}
		c.Catalog.PageTimeoutSeconds = int(d.Seconds())
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvCatalogURL); v != "" {
		c.Catalog.CalculatorURL = v
	}
	return nil
}

// Validate checks settings the engine cannot run without
func (c *Config) Validate() error {
	if c.Catalog.MaxPages <= 0 {
		return errors.Config("catalog.max_pages must be positive")
	}
	if c.Catalog.PageTimeoutSeconds <= 0 {
		return errors.Config("catalog.page_timeout_seconds must be positive")
	}
	if c.Catalog.PageDelayMillis < 0 {
		return errors.Config("catalog.page_delay_millis must not be negative")
	}
	if c.Estimate.Currency == "" {
		return errors.Config("estimate.currency is required")
	}
	if c.Estimate.HoursPerMonth <= 0 {
		return errors.Config("estimate.hours_per_month must be positive")
	}
	return nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
