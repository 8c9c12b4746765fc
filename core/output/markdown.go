package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/pratham7049/azure-pricing-calculator/core/types"
)

// MarkdownFormatter renders a GitHub-flavoured table
type MarkdownFormatter struct {
	Options Options
}

// Format implements Formatter
func (f *MarkdownFormatter) Format() Format {
	return FormatMarkdown
}

// Render implements Formatter
func (f *MarkdownFormatter) Render(w io.Writer, q *types.Quotation) error {
	var b strings.Builder
	fmt.Fprintf(&b, "### Cost estimate (%s, %s)\n\n", q.Region, q.Currency)
	b.WriteString("| Component | Offer | Unit | Rate | Quantity | Monthly cost |\n")
	b.WriteString("|---|---|---|---:|---:|---:|\n")
	for _, l := range q.Lines {
		rate, cost := "n/a", "n/a"
		if l.Priced {
			rate = Money(l.Currency, l.Rate, 6)
			cost = Money(q.Currency, l.LineCost, 2)
		}
		fmt.Fprintf(&b, "| %s | `%s` | %s | %s | %s | %s |\n",
			l.Component, l.MatchedKey, unitLabel(l), rate, l.UsageQuantity.String(), cost)
	}
	fmt.Fprintf(&b, "\n**Total Monthly Cost: %s**\n", Money(q.Currency, q.Total, 2))

	if f.Options.ShowWarnings && len(q.Warnings) > 0 {
		b.WriteString("\n<details><summary>Warnings</summary>\n\n")
		for _, wn := range q.Warnings {
			fmt.Fprintf(&b, "- `%s` %s\n", wn.Type, wn.Message)
		}
		b.WriteString("\n</details>\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
