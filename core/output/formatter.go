// Package output renders quotations for people and machines.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown table, e.g. for PR comments
	FormatMarkdown Format = "markdown"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render writes q to w
	Render(w io.Writer, q *types.Quotation) error
}

// Options tune rendering
type Options struct {
	// ShowWarnings prints accumulated warnings under the table
	ShowWarnings bool
}

// Registry maps formats to formatters
type Registry struct {
	formatters map[Format]Formatter
}

// NewRegistry returns a registry with every built-in formatter
func NewRegistry(opts Options) *Registry {
	r := &Registry{formatters: make(map[Format]Formatter)}
	r.Register(&CLIFormatter{Options: opts})
	r.Register(&JSONFormatter{Indent: true})
	r.Register(&MarkdownFormatter{Options: opts})
	return r
}

// Register adds or replaces a formatter
func (r *Registry) Register(f Formatter) {
	r.formatters[f.Format()] = f
}

// Get returns the formatter for format
func (r *Registry) Get(format Format) (Formatter, error) {
	f, ok := r.formatters[Format(strings.ToLower(string(format)))]
	if !ok {
		return nil, errors.Input(fmt.Sprintf("unknown output format %q (available: %s)", format, strings.Join(r.Formats(), ", ")))
	}
	return f, nil
}

// Formats lists the registered format names
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.formatters))
	for f := range r.formatters {
		out = append(out, string(f))
	}
	sort.Strings(out)
	return out
}

// Render renders q with the named format
func Render(w io.Writer, format Format, q *types.Quotation, opts Options) error {
	f, err := NewRegistry(opts).Get(format)
	if err != nil {
		return err
	}
	return f.Render(w, q)
}

// Money formats an amount with the currency's symbol
func Money(c types.Currency, v decimal.Decimal, places int32) string {
	return symbol(c) + v.StringFixed(places)
}

func symbol(c types.Currency) string {
	switch strings.ToUpper(string(c)) {
	case "USD", "":
		return "$"
	case "EUR":
		return "€"
	case "INR":
		return "₹"
	default:
		return string(c) + " "
	}
}
