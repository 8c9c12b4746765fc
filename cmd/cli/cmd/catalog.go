package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pratham7049/azure-pricing-calculator/adapters/azure"
	"github.com/pratham7049/azure-pricing-calculator/core/catalog"
	"github.com/pratham7049/azure-pricing-calculator/internal/config"
)

var (
	savePath       string
	keysContaining string
	itemFilter     catalog.LineItemFilter
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the loaded catalog",
}

var catalogInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Summarize pages, offers, regions and currency",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cat, warn, err := loadCatalog(cmd.Context(), config.Get())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Source:   %s\n", config.Get().Catalog.Source)
		fmt.Fprintf(out, "Pages:    %d\n", cat.Pages())
		fmt.Fprintf(out, "Offers:   %d\n", cat.Len())
		fmt.Fprintf(out, "Regions:  %d\n", len(cat.Regions()))
		fmt.Fprintf(out, "Currency: %s\n", cat.Currency())
		if series := cat.Series(); len(series) > 0 {
			fmt.Fprintf(out, "Series:   %d\n", len(series))
		}
		if warn != nil {
			fmt.Fprintf(out, "Partial:  %v\n", warn)
		}
		for _, w := range cat.Warnings() {
			fmt.Fprintf(out, "Warning:  %s\n", w)
		}
		return nil
	},
}

var catalogKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List offer keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cat, _, err := loadCatalog(cmd.Context(), config.Get())
		if err != nil {
			return err
		}
		keys := cat.Keys()
		if keysContaining != "" {
			keys = cat.KeysContaining(keysContaining)
		}
		for _, k := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	},
}

var catalogItemsCmd = &cobra.Command{
	Use:   "line-items",
	Short: "List structured line items matching a filter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cat, _, err := loadCatalog(cmd.Context(), config.Get())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tREGION\tPRODUCT\tMETER\tTYPE\tPRICE\tUNIT")
		for _, rec := range cat.Filter(itemFilter) {
			price := "n/a"
			if rec.UnitPrice != nil {
				price = rec.UnitPrice.String()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				rec.Key,
				rec.Region(),
				rec.Field(catalog.FieldProduct),
				rec.Field(catalog.FieldMeter),
				rec.Field(catalog.FieldType),
				price,
				rec.UnitOfMeasure)
		}
		return w.Flush()
	},
}

var catalogSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the loaded catalog for offline use with --catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cat, _, err := loadCatalog(cmd.Context(), config.Get())
		if err != nil {
			return err
		}
		if err := azure.SaveCatalog(cat, savePath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %d offers to %s\n", cat.Len(), savePath)
		return nil
	},
}

func init() {
	catalogSaveCmd.Flags().StringVarP(&savePath, "out", "o", "catalog.json", "output file")
	catalogKeysCmd.Flags().StringVar(&keysContaining, "contains", "", "only keys containing this substring")

	f := catalogItemsCmd.Flags()
	f.StringVar(&itemFilter.Region, "region", "", "region name")
	f.StringVar(&itemFilter.Service, "service", "", "service name")
	f.StringVar(&itemFilter.Product, "product", "", "product name substring")
	f.StringVar(&itemFilter.SKU, "sku", "", "sku name")
	f.StringVar(&itemFilter.Meter, "meter", "", "meter name substring")
	f.StringVar(&itemFilter.Type, "type", "", "price type (Consumption, Reservation)")
	f.StringVar(&itemFilter.Contains, "contains", "", "key substring")

	catalogCmd.AddCommand(catalogInfoCmd, catalogKeysCmd, catalogItemsCmd, catalogSaveCmd)
	rootCmd.AddCommand(catalogCmd)
}
