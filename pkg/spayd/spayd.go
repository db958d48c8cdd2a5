// pkg/spayd/spayd.go

// Package spayd encodes Czech short payment descriptors (SPD), the text
// carried by QR payment codes on domestic invoices.
package spayd

import (
	"strings"
	"unicode"

	ierr "github.com/invoicing-microservice/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	header  = "SPD"
	version = "1.0"
	sep     = "*"

	DefaultCurrency = "CZK"
)

// Payment is the content of a short payment descriptor.
type Payment struct {
	IBAN           string
	BIC            string
	Amount         decimal.Decimal
	Currency       string
	VariableSymbol string
	// Message is written verbatim. A '*' inside it produces a payload that
	// scanners split in the wrong place; callers must keep it out.
	Message string
}

// Encode renders p as
//
//	SPD*1.0*ACC:<iban>[+<bic>]*AM:<amount>*CC:<currency>*X-VS:<vs>*MSG:<message>
func Encode(p Payment) (string, error) {
	iban := NormalizeIBAN(p.IBAN)
	if iban == "" {
		return "", ierr.NewError("account IBAN is empty").
			WithHint("the issuer IBAN is required for the payment code").
			Mark(ierr.ErrInvalidAccount)
	}

	account := iban
	if len(p.BIC) > 3 {
		account += "+" + strings.ToUpper(p.BIC)
	}

	currency := p.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	fields := []string{
		header,
		version,
		"ACC:" + account,
		"AM:" + p.Amount.StringFixed(2),
		"CC:" + currency,
		"X-VS:" + p.VariableSymbol,
		"MSG:" + p.Message,
	}
	return strings.Join(fields, sep), nil
}

// NormalizeIBAN removes every whitespace rune and upper-cases the rest.
func NormalizeIBAN(iban string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, iban))
}
