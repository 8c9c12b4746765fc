package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pratham7049/azure-pricing-calculator/adapters/pricing"
	"github.com/pratham7049/azure-pricing-calculator/adapters/storage"
	"github.com/pratham7049/azure-pricing-calculator/core/engine"
	"github.com/pratham7049/azure-pricing-calculator/core/input"
	"github.com/pratham7049/azure-pricing-calculator/core/output"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/config"
	"github.com/pratham7049/azure-pricing-calculator/internal/logging"
)

var (
	outputFormat string
	region       string
	currency     string
	schemaFlag   string
	noWarnings   bool
	saveDir      string
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate <profile>",
	Short: "Estimate monthly cost for a profile",
	Long: `Load the catalog, resolve every component in the profile and print
an itemized quotation.

The profile is HCL, or HCL's JSON form when the file ends in .json.

Examples:
  azure-pricing estimate storage.hcl
  azure-pricing estimate --region westeurope --currency EUR storage.hcl
  azure-pricing estimate --format markdown storage.hcl`,
	Args: cobra.ExactArgs(1),
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json, markdown)")
	estimateCmd.Flags().StringVarP(&region, "region", "r", "", "region override")
	estimateCmd.Flags().StringVar(&currency, "currency", "", "session currency override")
	estimateCmd.Flags().StringVar(&schemaFlag, "schema", "", "comma separated key schema override")
	estimateCmd.Flags().BoolVar(&noWarnings, "no-warnings", false, "omit warnings from table output")
	estimateCmd.Flags().StringVar(&saveDir, "save", "", "directory to store the quotation in")

	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Get()

	env, err := input.FromFile(args[0])
	if err != nil {
		return err
	}
	req, err := env.Request()
	if err != nil {
		return err
	}
	if region != "" {
		req.Region = strings.ToLower(region)
	}
	if currency != "" {
		req.Currency = types.Currency(strings.ToUpper(currency))
	}
	if schemaFlag != "" {
		req.Schema = types.ParseSchema(schemaFlag)
	}

	logging.Info("Starting cost estimation")

	cat, warn, err := loadCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	req.CatalogWarning = warn

	eng := engine.New(engineConfig(cfg), logging.With())
	quote, err := eng.Estimate(ctx, cat, req)
	if err != nil {
		return err
	}

	format := outputFormat
	if format == "" {
		format = cfg.Output.DefaultFormat
	}
	opts := output.Options{ShowWarnings: cfg.Output.ShowWarnings && !noWarnings}
	if err := output.Render(cmd.OutOrStdout(), output.Format(format), quote, opts); err != nil {
		return err
	}

	if saveDir != "" {
		store, err := storage.NewFileStore(saveDir)
		if err != nil {
			return err
		}
		if err := store.Save(ctx, storage.NewRecord(quote, env.ContentHash)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved quotation %s\n", quote.ID)
	}
	return nil
}

func engineConfig(cfg *config.Config) engine.Config {
	ec := engine.DefaultConfig()
	ec.DefaultRegion = cfg.Estimate.Region
	ec.Currency = cfg.Estimate.Currency
	ec.HoursPerMonth = cfg.Estimate.HoursPerMonth
	ec.Concurrency = cfg.Estimate.Concurrency
	if cfg.Catalog.Source == pricing.SourceAWS {
		ec.Provider = types.ProviderAWS
	}
	return ec
}
