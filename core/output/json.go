package output

import (
	"io"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/pratham7049/azure-pricing-calculator/core/types"
)

var oneDecimal = decimal.NewFromInt(1)

// JSONFormatter writes the quotation as JSON
type JSONFormatter struct {
	Indent bool
}

// Format implements Formatter
func (f *JSONFormatter) Format() Format {
	return FormatJSON
}

// Render implements Formatter
func (f *JSONFormatter) Render(w io.Writer, q *types.Quotation) error {
	enc := json.NewEncoder(w)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(q)
}
