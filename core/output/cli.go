package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pratham7049/azure-pricing-calculator/core/types"
)

// CLIFormatter renders an aligned table with a monthly total
type CLIFormatter struct {
	Options Options
}

// Format implements Formatter
func (f *CLIFormatter) Format() Format {
	return FormatCLI
}

// Render implements Formatter
func (f *CLIFormatter) Render(w io.Writer, q *types.Quotation) error {
	fmt.Fprintf(w, "Quotation %s\nRegion: %s  Currency: %s\n\n", q.ID, q.Region, q.Currency)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPONENT\tKIND\tOFFER\tMATCH\tUNIT\tRATE\tQUANTITY\tMONTHLY COST")
	for _, l := range q.Lines {
		offer := string(l.MatchedKey)
		if offer == "" {
			offer = "-"
		}
		rate, cost := "n/a", "n/a"
		if l.Priced {
			rate = Money(l.Currency, l.Rate, 6)
			cost = Money(q.Currency, l.LineCost, 2)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.Component, l.Kind, offer, l.MatchQuality, unitLabel(l), rate, l.UsageQuantity.String(), cost)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nTotal Monthly Cost: %s\n", Money(q.Currency, q.Total, 2))
	if !q.Complete() {
		fmt.Fprintln(w, "Some components could not be priced; the total covers priced lines only.")
	}

	if f.Options.ShowWarnings && len(q.Warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, wn := range q.Warnings {
			if wn.Component != "" {
				fmt.Fprintf(w, "  [%s] %s: %s\n", wn.Type, wn.Component, wn.Message)
			} else {
				fmt.Fprintf(w, "  [%s] %s\n", wn.Type, wn.Message)
			}
		}
	}
	return nil
}

func unitLabel(l types.ResolvedQuote) string {
	if l.Unit == "" {
		return "-"
	}
	if l.UnitDivisor.GreaterThan(oneDecimal) {
		return fmt.Sprintf("%s (/%s)", l.Unit, l.UnitDivisor.String())
	}
	return string(l.Unit)
}
