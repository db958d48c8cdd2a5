// pkg/spayd/parse.go

package spayd

import (
	"strings"

	ierr "github.com/invoicing-microservice/pkg/errors"
	"github.com/shopspring/decimal"
)

// Parse reads a descriptor produced by Encode. Unknown keys are ignored.
func Parse(s string) (Payment, error) {
	parts := strings.Split(s, sep)
	if len(parts) < 3 || parts[0] != header {
		return Payment{}, ierr.NewErrorf("not a short payment descriptor: %q", s).
			Mark(ierr.ErrEncoding)
	}
	if parts[1] != version {
		return Payment{}, ierr.NewErrorf("unsupported descriptor version %q", parts[1]).
			Mark(ierr.ErrEncoding)
	}

	var p Payment
	for _, field := range parts[2:] {
		key, value, ok := strings.Cut(field, ":")
		if !ok {
			return Payment{}, ierr.NewErrorf("malformed descriptor field %q", field).
				Mark(ierr.ErrEncoding)
		}

		switch key {
		case "ACC":
			p.IBAN, p.BIC, _ = strings.Cut(value, "+")
		case "AM":
			amount, err := decimal.NewFromString(value)
			if err != nil {
				return Payment{}, ierr.WithError(err).
					WithHintf("invalid amount %q", value).
					Mark(ierr.ErrEncoding)
			}
			p.Amount = amount
		case "CC":
			p.Currency = value
		case "X-VS":
			p.VariableSymbol = value
		case "MSG":
			p.Message = value
		}
	}

	if p.IBAN == "" {
		return Payment{}, ierr.NewError("descriptor has no account").Mark(ierr.ErrInvalidAccount)
	}
	return p, nil
}
