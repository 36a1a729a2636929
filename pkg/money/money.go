// Package money renders whole-unit prices for a single display locale.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter prints amounts as "$" followed by the locale-grouped integer.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
}

// NewFormatter parses a BCP 47 locale such as "es-CL".
func NewFormatter(locale string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return &Formatter{tag: tag, printer: message.NewPrinter(tag)}, nil
}

// Locale returns the tag amounts are formatted for.
func (f *Formatter) Locale() language.Tag {
	return f.tag
}

// Format renders an amount of minor units as a currency string for the locale.
func (f *Formatter) Format(amount int64) string {
	if amount < 0 {
		return "-$" + f.printer.Sprintf("%d", -amount)
	}
	return "$" + f.printer.Sprintf("%d", amount)
}

// FormatDecimal rounds half away from zero to whole units before formatting.
func (f *Formatter) FormatDecimal(amount decimal.Decimal) string {
	return f.Format(amount.Round(0).IntPart())
}
