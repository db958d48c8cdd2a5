// pkg/pdf/pdf.go

package pdf

import (
	"bytes"
	"io"
	"os"
	"time"

	ierr "github.com/invoicing-microservice/pkg/errors"
	"github.com/invoicing-microservice/pkg/layout"
	"github.com/invoicing-microservice/pkg/logger"
	"github.com/jung-kurt/gofpdf"
)

const (
	unicodeFamily  = "DejaVu"
	fallbackFamily = "Helvetica"

	fallbackWarning = "unicode font not loaded: Czech characters will print as '.', set font_path to a TrueType font such as DejaVuSans.ttf"
)

// Options configure the generated PDF file
type Options struct {
	// FontPath is a TrueType font with the glyphs of the document's locale.
	// When it cannot be loaded the core Helvetica font is used instead.
	FontPath string
	// CreationDate is written into the document info. Fixing it makes the
	// output byte-for-byte reproducible.
	CreationDate time.Time
	Title        string
	Author       string
}

// Document is a layout.Canvas backed by gofpdf
type Document struct {
	pdf    *gofpdf.Fpdf
	family string
	tr     func(string) string
}

var _ layout.Canvas = (*Document)(nil)

// New creates an empty A4 portrait document
func New(opts Options, log *logger.Logger) *Document {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	// pages are broken by the layout engine
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	if !opts.CreationDate.IsZero() {
		pdf.SetCreationDate(opts.CreationDate)
	}
	pdf.SetTitle(opts.Title, true)
	pdf.SetAuthor(opts.Author, true)
	pdf.SetLineWidth(0.2)

	d := &Document{pdf: pdf}
	d.loadFont(opts.FontPath, log)
	pdf.SetFont(d.family, "", 10)
	return d
}

// loadFont registers the unicode font, or falls back to a core font with a
// warning. A missing font never fails the document.
func (d *Document) loadFont(path string, log *logger.Logger) {
	if path == "" {
		log.Warnw(fallbackWarning, "fallback", fallbackFamily)
	} else if _, err := os.Stat(path); err != nil {
		log.Warnw(fallbackWarning, "path", path, "fallback", fallbackFamily, "error", err)
	} else {
		d.pdf.AddUTF8Font(unicodeFamily, "", path)
		if d.pdf.Ok() {
			d.family = unicodeFamily
			d.tr = func(s string) string { return s }
			return
		}
		log.Warnw(fallbackWarning, "path", path, "fallback", fallbackFamily, "error", d.pdf.Error())
		d.pdf.ClearError()
	}

	// cp1252 has no č, ř, ě or ů; gofpdf prints them as '.'
	d.family = fallbackFamily
	d.tr = d.pdf.UnicodeTranslatorFromDescriptor("")
}

// FontFamily is the family actually used for text
func (d *Document) FontFamily() string {
	return d.family
}

func (d *Document) AddPage() {
	d.pdf.AddPage()
}

func (d *Document) SetFontSize(size float64) {
	d.pdf.SetFontSize(size)
}

func (d *Document) SetTextColor(c layout.Color) {
	d.pdf.SetTextColor(c.R, c.G, c.B)
}

func (d *Document) SetFillColor(c layout.Color) {
	d.pdf.SetFillColor(c.R, c.G, c.B)
}

func (d *Document) SetDrawColor(c layout.Color) {
	d.pdf.SetDrawColor(c.R, c.G, c.B)
}

func (d *Document) FillRect(x, y, w, h float64) {
	d.pdf.Rect(x, y, w, h, "F")
}

func (d *Document) Line(x1, y1, x2, y2 float64) {
	d.pdf.Line(x1, y1, x2, y2)
}

func (d *Document) Cell(x, y, w, h float64, text string, align layout.Align, link string) {
	d.pdf.SetXY(x, y)
	d.pdf.CellFormat(w, h, d.tr(text), "", 0, string(align), false, 0, link)
}

func (d *Document) MultiCell(x, y, w, lineHeight float64, text string) {
	d.pdf.SetXY(x, y)
	d.pdf.MultiCell(w, lineHeight, d.tr(text), "", "L", false)
}

// Image registers the PNG from memory and places it
func (d *Document) Image(name string, png []byte, x, y, w float64) error {
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	if !d.pdf.Ok() {
		return d.pdf.Error()
	}
	d.pdf.ImageOptions(name, x, y, w, 0, false, opts, 0, "")
	return d.pdf.Error()
}

// PageCount returns the number of pages in the document
func (d *Document) PageCount() int {
	return d.pdf.PageCount()
}

// Output serializes the document. Nothing is written when an earlier
// drawing call failed.
func (d *Document) Output(w io.Writer) error {
	if err := d.pdf.Error(); err != nil {
		return ierr.WithError(err).
			WithHint("the PDF document could not be built").
			Mark(ierr.ErrRender)
	}

	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return ierr.WithError(err).Mark(ierr.ErrRender)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return ierr.WithError(err).Mark(ierr.ErrSystem)
	}
	return nil
}
