// pkg/layout/blocks.go

package layout

import (
	"math"
	"strings"

	ierr "github.com/invoicing-microservice/pkg/errors"
	"github.com/invoicing-microservice/pkg/invoice"
)

const (
	bannerHeight = 45.0

	columnWidth  = 90.0
	rightColumnX = 110.0
	addressGap   = 15.0

	stripHeight = 22.0

	headerHeight  = 8.0
	rowPadding    = 2.0
	rowCellHeight = 8.0
	rowHeight     = rowPadding + rowCellHeight
	tableGap      = 10.0

	totalsHeight = 50.0
	totalsBottom = 270.0
	codeWidth    = 40.0
	noteX        = 55.0
	noteWidth    = 60.0
	totalX       = 120.0
	totalWidth   = 80.0
)

type column struct {
	width float64
	align Align
	title string
}

var tableColumns = [4]column{
	{90, AlignLeft, "Popis položky"},
	{30, AlignRight, "Množství"},
	{35, AlignRight, "Cena/j."},
	{35, AlignRight, "Celkem"},
}

// banner fills the full page width and prints the title and the number in
// inverted colours.
func (e *Engine) banner(c *cursor, inv *invoice.Invoice) {
	e.canvas.SetFillColor(colorPrimary)
	e.canvas.FillRect(0, 0, pageWidth, bannerHeight)

	c.y = 15
	e.style(26, colorWhite)
	e.canvas.Cell(marginLeft, c.y, 100, 10, "FAKTURA", AlignLeft, "")
	e.style(14, colorWhite)
	e.canvas.Cell(marginLeft+100, c.y, columnWidth, 10, "Č. "+inv.Number, AlignRight, "")

	c.ln(10)
	c.ln(25)
}

// addresses draws issuer and recipient side by side from the same top and
// continues below whichever column ended lower.
func (e *Engine) addresses(c *cursor, issuer, recipient invoice.Party) {
	top := c.y
	leftBottom := e.party(marginLeft, top, "Dodavatel", issuer, colorPrimary)
	rightBottom := e.party(rightColumnX, top, "Odběratel", recipient, colorBlack)

	c.x = marginLeft
	c.y = math.Max(leftBottom, rightBottom) + addressGap
}

// party draws one address column and returns its bottom edge
func (e *Engine) party(x, y float64, label string, p invoice.Party, nameColor Color) float64 {
	row := func(h float64, text string) {
		e.canvas.Cell(x, y, columnWidth, h, text, AlignLeft, "")
		y += h
	}

	e.style(8, colorTextMuted)
	row(5, invoice.Upper(label))

	e.style(11, nameColor)
	row(6, p.Name)

	e.style(10, colorBody)
	row(5, p.Street)
	row(5, p.City)
	y += 3

	e.style(9, colorBody)
	row(5, "IČ: "+p.TaxID)
	if p.VATID != "" {
		row(5, "DIČ: "+p.VATID)
	}

	return y
}

// keyFacts draws the highlighted strip with dates and bank details
func (e *Engine) keyFacts(c *cursor, inv *invoice.Invoice) {
	top := c.y
	e.canvas.SetFillColor(colorBgLight)
	e.canvas.FillRect(marginLeft, top, contentWidth, stripHeight)

	c.y = top + 5
	c.x = 15
	e.labelValue(c, "Datum vystavení", invoice.FormatDate(inv.IssueDate), 40, false)
	e.labelValue(c, "Datum splatnosti", invoice.FormatDate(inv.DueDate), 40, false)
	e.labelValue(c, "Banka", inv.IssuerAccount.BankName, 50, false)
	e.labelValue(c, "Číslo účtu", inv.IssuerAccount.DisplayNumber(), 60, false)

	c.ln(25)
}

// labelValue draws a small muted label with a larger value right below it.
// With newLine the cursor moves under the pair, otherwise it returns to the
// top of the pair at its right edge so pairs can be chained horizontally.
func (e *Engine) labelValue(c *cursor, label, value string, w float64, newLine bool) {
	x, y := c.x, c.y

	e.style(7, colorTextMuted)
	e.canvas.Cell(x, y, w, 4, invoice.Upper(label), AlignLeft, "")

	e.style(10, colorPrimary)
	e.canvas.Cell(x, y+4, w, 6, value, AlignLeft, "")

	if newLine {
		c.x = marginLeft
		c.y = y + 4 + 12
		return
	}
	c.x = x + w
	c.y = y
}

// table draws the header and one row per line, breaking pages between
// rows. The header is printed once, on the page where the table starts.
func (e *Engine) table(c *cursor, lines []invoice.Line) {
	if !c.fits(headerHeight + rowHeight) {
		e.newPage(c)
	}

	e.style(8, colorTextMuted)
	x := marginLeft
	for _, col := range tableColumns {
		e.canvas.Cell(x, c.y, col.width, headerHeight, invoice.Upper(col.title), col.align, "")
		x += col.width
	}
	c.ln(headerHeight)
	e.canvas.SetDrawColor(colorDivider)
	e.canvas.Line(marginLeft, c.y, pageWidth-marginRight, c.y)

	for _, l := range lines {
		if !c.fits(rowHeight) {
			e.newPage(c)
		}
		c.y += rowPadding

		e.style(10, colorPrimary)
		cells := [4]string{
			l.Description,
			invoice.FormatQuantity(l.Quantity, l.Unit),
			invoice.FormatMoney(l.UnitPrice),
			invoice.FormatMoney(l.Total),
		}
		x := marginLeft
		for i, col := range tableColumns {
			e.canvas.Cell(x, c.y, col.width, rowCellHeight, cells[i], col.align, "")
			x += col.width
		}
		c.ln(rowCellHeight)

		e.canvas.SetDrawColor(colorRowDivider)
		e.canvas.Line(marginLeft, c.y, pageWidth-marginRight, c.y)
	}

	c.ln(tableGap)
}

// totals draws the payment code, the registration note and the amount due.
// The block is never split: when it does not fit it goes to a new page.
func (e *Engine) totals(c *cursor, inv *invoice.Invoice, code []byte) error {
	// keeps a 2mm gap above the footer divider
	if c.y+totalsHeight > totalsBottom {
		e.newPage(c)
	}
	top := c.y

	if len(code) > 0 {
		if err := e.canvas.Image("payment-"+inv.Number, code, marginLeft, top, codeWidth); err != nil {
			return ierr.WithError(err).
				WithHint("could not place the payment code image").
				Mark(ierr.ErrRender)
		}
	}

	e.style(7, colorTextMuted)
	e.canvas.MultiCell(noteX, top, noteWidth, 3, registrationNote(inv))

	e.style(10, colorTextMuted)
	e.canvas.Cell(totalX, top, totalWidth, 8, "CELKEM K ÚHRADĚ", AlignRight, "")

	e.style(24, colorPrimary)
	e.canvas.Cell(totalX, top+8, totalWidth, 12, invoice.FormatMoney(inv.GrandTotal), AlignRight, "")

	e.style(9, colorTextMuted)
	e.canvas.Cell(totalX, top+20, totalWidth, 6, "Var. symbol: "+inv.VariableSymbol, AlignRight, "")

	c.x = marginLeft
	c.y = top + totalsHeight
	return nil
}

func registrationNote(inv *invoice.Invoice) string {
	parts := make([]string, 0, 2)
	for _, s := range []string{inv.RegistrationNote, inv.VATNote} {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}
