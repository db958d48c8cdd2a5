// pkg/invoice/invoice.go

package invoice

import (
	"strconv"
	"time"

	"github.com/invoicing-microservice/pkg/spayd"
	"github.com/shopspring/decimal"
)

// Party is the issuer or the recipient of an invoice.
type Party struct {
	Name   string
	Street string
	City   string
	TaxID  string
	VATID  string // optional
}

// BankAccount holds the issuer's payment details.
type BankAccount struct {
	IBAN                 string
	BIC                  string // optional
	DisplayAccountNumber string
	BankName             string
}

// NormalizedIBAN strips all whitespace and upper-cases the IBAN.
func (b BankAccount) NormalizedIBAN() string {
	return spayd.NormalizeIBAN(b.IBAN)
}

// DisplayNumber is the account number shown on the document. Falls back to
// the IBAN as written when no local account number is configured.
func (b BankAccount) DisplayNumber() string {
	if b.DisplayAccountNumber != "" {
		return b.DisplayAccountNumber
	}
	return b.IBAN
}

// LineItem represents a billable row in the invoice.
type LineItem struct {
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
}

// Invoice represents the invoice data model. All derived values are
// computed once in New and never recomputed.
type Invoice struct {
	Number           string
	IssueDate        time.Time
	DueDate          time.Time
	Issuer           Party
	IssuerAccount    BankAccount
	Recipient        Party
	Lines            []Line
	GrandTotal       decimal.Decimal
	CurrencyCode     string
	VariableSymbol   string
	RegistrationNote string
	VATNote          string
}

// Params is everything needed to build an Invoice.
type Params struct {
	Prefix           string
	IssueDate        time.Time
	DueDays          int
	Issuer           Party
	IssuerAccount    BankAccount
	Recipient        Party
	Items            []LineItem
	CurrencyCode     string
	RegistrationNote string
	VATNote          string
}

// DefaultCurrency is the only currency the document layout supports.
const DefaultCurrency = "CZK"

// New builds an invoice and computes its totals.
func New(p Params) (*Invoice, error) {
	totals, err := Calculate(p.Items)
	if err != nil {
		return nil, err
	}

	number := Number(p.Prefix, p.IssueDate)
	currency := p.CurrencyCode
	if currency == "" {
		currency = DefaultCurrency
	}

	return &Invoice{
		Number:           number,
		IssueDate:        p.IssueDate,
		DueDate:          p.IssueDate.AddDate(0, 0, p.DueDays),
		Issuer:           p.Issuer,
		IssuerAccount:    p.IssuerAccount,
		Recipient:        p.Recipient,
		Lines:            totals.Lines,
		GrandTotal:       totals.GrandTotal,
		CurrencyCode:     currency,
		VariableSymbol:   number,
		RegistrationNote: p.RegistrationNote,
		VATNote:          p.VATNote,
	}, nil
}

// Number derives the invoice number from the prefix and the issue date's
// month and day. An empty prefix means the issue year.
func Number(prefix string, issued time.Time) string {
	if prefix == "" {
		prefix = strconv.Itoa(issued.Year())
	}
	return prefix + issued.Format("0102")
}

// PaymentMessage is the free text sent along with the payment.
func (inv *Invoice) PaymentMessage() string {
	return "Faktura " + inv.Number
}

// FileName is the deterministic output name for the rendered document.
func (inv *Invoice) FileName(ext string) string {
	return "invoice_" + inv.Number + "." + ext
}
