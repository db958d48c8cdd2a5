// pkg/invoice/format.go

package invoice

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// CurrencySymbol is printed after amounts on the document
	CurrencySymbol = "Kč"
	dateLayout     = "02. 01. 2006"
)

// FormatAmount formats an amount with two decimals, a space as the
// thousands separator and a comma as the decimal separator: 12 345,00.
// Row totals and the grand total both go through here.
func FormatAmount(d decimal.Decimal) string {
	// sign of the rounded value, so -0.001 prints as 0,00
	rounded := d.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}

	parts := strings.Split(rounded.Abs().StringFixed(2), ".")
	intPart := parts[0]
	decPart := "00"
	if len(parts) > 1 {
		decPart = parts[1]
	}

	var result strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result.WriteRune(' ')
		}
		result.WriteRune(c)
	}

	return sign + result.String() + "," + decPart
}

// FormatMoney is FormatAmount followed by the currency symbol
func FormatMoney(d decimal.Decimal) string {
	return FormatAmount(d) + " " + CurrencySymbol
}

// FormatQuantity prints a quantity with its unit, using a decimal comma
func FormatQuantity(q decimal.Decimal, unit string) string {
	s := strings.Replace(q.String(), ".", ",", 1)
	if unit == "" {
		return s
	}
	return s + " " + unit
}

func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// Upper upper-cases text using Czech casing rules. A Caser keeps state,
// so one is created per call.
func Upper(s string) string {
	return cases.Upper(language.Czech).String(s)
}
