// pkg/assembler/assembler.go

package assembler

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/invoicing-microservice/pkg/config"
	ierr "github.com/invoicing-microservice/pkg/errors"
	"github.com/invoicing-microservice/pkg/invoice"
	"github.com/invoicing-microservice/pkg/items"
	"github.com/invoicing-microservice/pkg/layout"
	"github.com/invoicing-microservice/pkg/logger"
	"github.com/invoicing-microservice/pkg/pdf"
	"github.com/invoicing-microservice/pkg/qr"
	"github.com/invoicing-microservice/pkg/spayd"
)

// Assembler turns configuration and line items into a finished invoice
type Assembler struct {
	cfg config.Configuration
	log *logger.Logger
	qr  qr.Renderer
}

func New(cfg config.Configuration, log *logger.Logger, renderer qr.Renderer) *Assembler {
	return &Assembler{cfg: cfg, log: log, qr: renderer}
}

// Invoice builds the invoice model for items issued on the given day
func (a *Assembler) Invoice(lineItems []invoice.LineItem, issued time.Time) (*invoice.Invoice, error) {
	return invoice.New(invoice.Params{
		Prefix:    a.cfg.Invoice.Prefix,
		IssueDate: issued,
		DueDays:   a.cfg.Invoice.DueDays,
		Issuer:    party(a.cfg.Issuer),
		IssuerAccount: invoice.BankAccount{
			IBAN:                 a.cfg.Bank.IBAN,
			BIC:                  a.cfg.Bank.BIC,
			DisplayAccountNumber: a.cfg.Bank.AccountNumber,
			BankName:             a.cfg.Bank.Name,
		},
		Recipient:        party(a.cfg.Recipient),
		Items:            lineItems,
		CurrencyCode:     a.cfg.Invoice.Currency,
		RegistrationNote: a.cfg.Issuer.Registration,
		VATNote:          a.cfg.Invoice.VATNote,
	})
}

// PaymentCode encodes the payment descriptor of inv as a PNG QR code
func (a *Assembler) PaymentCode(inv *invoice.Invoice) (string, []byte, error) {
	payload, err := spayd.Encode(Payment(inv))
	if err != nil {
		return "", nil, err
	}
	png, err := a.qr.PNG(payload)
	if err != nil {
		return "", nil, err
	}
	return payload, png, nil
}

// Render writes the PDF for the given items to w
func (a *Assembler) Render(w io.Writer, lineItems []invoice.LineItem, issued time.Time) (*invoice.Invoice, error) {
	inv, err := a.Invoice(lineItems, issued)
	if err != nil {
		return nil, err
	}
	payload, code, err := a.PaymentCode(inv)
	if err != nil {
		return nil, err
	}

	log := a.log.With("invoice", inv.Number)
	log.Debugw("payment descriptor encoded", "payload", payload)

	doc := pdf.New(pdf.Options{
		FontPath:     a.cfg.Render.FontPath,
		CreationDate: issued,
		Title:        "Faktura " + inv.Number,
		Author:       inv.Issuer.Name,
	}, log)

	engine := layout.NewEngine(doc, a.layoutOptions())
	if err := engine.Render(layout.Document{Invoice: inv, PaymentCode: code}); err != nil {
		return nil, err
	}
	if err := doc.Output(w); err != nil {
		return nil, err
	}

	log.Infow("invoice rendered",
		"pages", engine.Pages(),
		"lines", len(inv.Lines),
		"total", invoice.FormatMoney(inv.GrandTotal))
	return inv, nil
}

// Layout runs the layout engine against a recorder instead of a PDF
func (a *Assembler) Layout(lineItems []invoice.LineItem, issued time.Time) (*layout.Recorder, *invoice.Invoice, error) {
	inv, err := a.Invoice(lineItems, issued)
	if err != nil {
		return nil, nil, err
	}
	_, code, err := a.PaymentCode(inv)
	if err != nil {
		return nil, nil, err
	}

	rec := layout.NewRecorder()
	if err := layout.NewEngine(rec, a.layoutOptions()).Render(layout.Document{Invoice: inv, PaymentCode: code}); err != nil {
		return nil, nil, err
	}
	return rec, inv, nil
}

// Generate loads the configured items file, renders the invoice and writes
// it to the output directory. The file appears only once it is complete.
func (a *Assembler) Generate(issued time.Time) (string, error) {
	lineItems, err := items.Load(a.cfg.Invoice.ItemsPath)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	inv, err := a.Render(&buf, lineItems, issued)
	if err != nil {
		return "", err
	}

	path := filepath.Join(a.cfg.Render.OutputDir, inv.FileName("pdf"))
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return "", err
	}

	a.log.Infow("invoice written", "path", path, "bytes", buf.Len())
	return path, nil
}

// Payment is the descriptor content for an invoice's grand total
func Payment(inv *invoice.Invoice) spayd.Payment {
	return spayd.Payment{
		IBAN:           inv.IssuerAccount.IBAN,
		BIC:            inv.IssuerAccount.BIC,
		Amount:         inv.GrandTotal,
		Currency:       inv.CurrencyCode,
		VariableSymbol: inv.VariableSymbol,
		Message:        inv.PaymentMessage(),
	}
}

func (a *Assembler) layoutOptions() layout.Options {
	return layout.Options{AttributionURL: a.cfg.Render.AttributionURL}
}

func party(p config.PartyConfig) invoice.Party {
	return invoice.Party{
		Name:   p.Name,
		Street: p.Street,
		City:   p.City,
		TaxID:  p.TaxID,
		VATID:  p.VATID,
	}
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".invoice-*.tmp")
	if err != nil {
		return ierr.WithError(err).
			WithHintf("could not create a file in %s", dir).
			Mark(ierr.ErrSystem)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmpName, 0o644)
	}
	if err == nil {
		err = os.Rename(tmpName, path)
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return ierr.WithError(err).
			WithHintf("could not write %s", path).
			Mark(ierr.ErrSystem)
	}
	return nil
}
