// pkg/layout/engine.go

// Package layout composes the invoice document on a fixed-size page canvas.
// Every block is placed at absolute coordinates derived from a cursor that
// the engine owns; page breaks are decided here, not by the canvas.
package layout

import (
	"strconv"

	ierr "github.com/invoicing-microservice/pkg/errors"
	"github.com/invoicing-microservice/pkg/invoice"
)

// Options are the fixed texts that are not part of the invoice data
type Options struct {
	// AttributionURL is printed and linked in the footer of every page
	AttributionURL string
}

// Document is the input of one render pass
type Document struct {
	Invoice *invoice.Invoice
	// PaymentCode is the PNG image of the payment QR code
	PaymentCode []byte
}

// Engine renders a single document onto its canvas.
type Engine struct {
	canvas Canvas
	opts   Options
	pages  int
}

func NewEngine(canvas Canvas, opts Options) *Engine {
	return &Engine{canvas: canvas, opts: opts}
}

// Render lays out the whole document, top to bottom, in one pass.
func (e *Engine) Render(doc Document) error {
	inv := doc.Invoice
	if inv == nil {
		return ierr.NewError("nothing to render").Mark(ierr.ErrRender)
	}

	c := &cursor{}
	e.newPage(c)
	e.banner(c, inv)
	e.addresses(c, inv.Issuer, inv.Recipient)
	e.keyFacts(c, inv)
	e.table(c, inv.Lines)
	if err := e.totals(c, inv, doc.PaymentCode); err != nil {
		return err
	}
	e.footer(c.page)
	e.pages = c.page

	return nil
}

// Pages is the number of pages produced by the last Render
func (e *Engine) Pages() int {
	return e.pages
}

// newPage closes the current page with its footer and starts the next one
func (e *Engine) newPage(c *cursor) {
	if c.page > 0 {
		e.footer(c.page)
	}
	e.canvas.AddPage()
	c.page++
	c.reset()
}

func (e *Engine) style(size float64, color Color) {
	e.canvas.SetFontSize(size)
	e.canvas.SetTextColor(color)
}

// footer is drawn on every page: a divider, the attribution and the page
// number on the same line.
func (e *Engine) footer(page int) {
	y := contentBottom

	e.canvas.SetDrawColor(colorDivider)
	e.canvas.Line(marginLeft, y, pageWidth-marginRight, y)
	y += 5

	e.style(8, colorTextMuted)
	text := "Generováno automaticky"
	if e.opts.AttributionURL != "" {
		text += " | " + e.opts.AttributionURL
	}
	e.canvas.Cell(marginLeft, y, contentWidth, 5, text, AlignLeft, e.opts.AttributionURL)
	e.canvas.Cell(marginLeft, y, contentWidth, 5, "Strana "+strconv.Itoa(page), AlignRight, "")
}
