package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pratham7049/azure-pricing-calculator/core/facets"
	"github.com/pratham7049/azure-pricing-calculator/core/resolver"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/config"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
)

var facetSchema string

var facetsCmd = &cobra.Command{
	Use:   "facets [dimension]",
	Short: "List the legal values of each facet dimension",
	Long: `List facet vocabularies derived from the catalog. Without --schema the
key schema is inferred from the catalog keys.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFacets,
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <dimension> <value>",
	Short: "Check a facet value and suggest the closest legal one",
	Args:  cobra.ExactArgs(2),
	RunE:  runSuggest,
}

func init() {
	for _, c := range []*cobra.Command{facetsCmd, suggestCmd} {
		c.Flags().StringVar(&facetSchema, "schema", "", "comma separated key schema")
		rootCmd.AddCommand(c)
	}
}

func buildIndex(cmd *cobra.Command) (*facets.Index, error) {
	cat, _, err := loadCatalog(cmd.Context(), config.Get())
	if err != nil {
		return nil, err
	}
	schema := types.ParseSchema(facetSchema)
	if len(schema) == 0 {
		schema = facets.InferSchema(cat)
	}
	return facets.Build(cat, schema), nil
}

func runFacets(cmd *cobra.Command, args []string) error {
	ix, err := buildIndex(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		d, ok := ix.Dimension(args[0])
		if !ok {
			return errors.Input("unknown dimension: " + args[0])
		}
		for _, v := range d.Values {
			fmt.Fprintln(out, v)
		}
		return nil
	}

	fmt.Fprintf(out, "Schema: %s\n\n", ix.Schema())
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DIMENSION\tSOURCE\tVALUES")
	for _, name := range ix.Dimensions() {
		d, _ := ix.Dimension(name)
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.Name, d.Source, strings.Join(d.Values, ", "))
	}
	return w.Flush()
}

func runSuggest(cmd *cobra.Command, args []string) error {
	ix, err := buildIndex(cmd)
	if err != nil {
		return err
	}
	dim, value := args[0], strings.ToLower(args[1])
	out := cmd.OutOrStdout()

	if ix.Contains(dim, value) {
		fmt.Fprintf(out, "%s=%s is valid\n", dim, value)
		return nil
	}
	s, ok := resolver.Suggest(ix, dim, value)
	if !ok {
		return errors.InvalidSelection(dim, value)
	}
	fmt.Fprintf(out, "%s=%s is not valid; did you mean %q? (similarity %.2f)\n", dim, value, s.Candidate, s.Score)
	return nil
}
