package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pratham7049/azure-pricing-calculator/adapters/storage"
	"github.com/pratham7049/azure-pricing-calculator/core/output"
)

var storeDir string

var compareCmd = &cobra.Command{
	Use:   "compare <old-id> <new-id>",
	Short: "Compare two saved quotations",
	Long: `Compare the totals of two quotations saved with "estimate --save".

Example:
  azure-pricing compare --store ./quotes 1f0c... 7ab2...`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.NewFileStore(storeDir)
		if err != nil {
			return err
		}
		cmp, err := storage.Compare(cmd.Context(), store, args[0], args[1])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Old:   %s  %s\n", cmp.OldID, output.Money(cmp.Currency, cmp.OldTotal, 2))
		fmt.Fprintf(out, "New:   %s  %s\n", cmp.NewID, output.Money(cmp.Currency, cmp.NewTotal, 2))
		fmt.Fprintf(out, "Delta: %s (%s%%)\n", output.Money(cmp.Currency, cmp.Delta, 2), cmp.DeltaPercent.StringFixed(2))
		return nil
	},
}

func init() {
	compareCmd.Flags().StringVar(&storeDir, "store", ".quotations", "directory quotations were saved in")
	rootCmd.AddCommand(compareCmd)
}
