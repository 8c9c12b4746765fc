// Package cmd provides the CLI commands for azure-pricing.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pratham7049/azure-pricing-calculator/adapters/pricing"
	"github.com/pratham7049/azure-pricing-calculator/core/catalog"
	"github.com/pratham7049/azure-pricing-calculator/internal/config"
	"github.com/pratham7049/azure-pricing-calculator/internal/logging"
)

// Version is set at build time
var Version = "0.1.0"

var (
	cfgFile     string
	envFile     string
	verbose     bool
	sourceName  string
	catalogFile string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "azure-pricing",
	Short: "Price cloud storage and compute from live catalogs",
	Long: `azure-pricing loads a published pricing catalog, resolves facet
selections to catalog offers and computes itemized monthly costs.

Examples:
  azure-pricing estimate profile.hcl
  azure-pricing estimate --format json --source retail profile.hcl
  azure-pricing facets accessTier
  azure-pricing suggest redundancy lrz`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the CLI with a cancellable context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (JSON or YAML)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with PRICECALC_* overrides")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&sourceName, "source", "", "catalog source (calculator, retail, file, aws)")
	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "saved catalog file(s), comma separated; implies --source file")

	rootCmd.AddCommand(versionCmd)
}

func initConfig(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnvFiles(envFile); err != nil {
		return err
	}

	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}

	if catalogFile != "" {
		cfg.Catalog.Source = pricing.SourceFile
		cfg.Catalog.File = catalogFile
	} else if sourceName != "" {
		cfg.Catalog.Source = sourceName
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	config.Set(cfg)

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
	return nil
}

// loadCatalog pages the configured source. A partial catalog is reported
// on stderr and returned with its warning.
func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, *catalog.PartialCatalogWarning, error) {
	cat, warn, _, err := pricing.DefaultRegistry().Load(ctx, cfg.Catalog, pricing.Options{
		Currency: cfg.Estimate.Currency,
		Region:   cfg.Estimate.Region,
		Logger:   logging.With(zap.String("component", "catalog")),
	})
	if err != nil {
		return nil, nil, err
	}
	if warn != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", warn)
	}
	return cat, warn, nil
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "azure-pricing version %s\n", Version)
	},
}
