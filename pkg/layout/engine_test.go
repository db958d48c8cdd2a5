package layout

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	ierr "github.com/invoicing-microservice/pkg/errors"
	"github.com/invoicing-microservice/pkg/invoice"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var (
	issuer = invoice.Party{
		Name:   "Jan Novák",
		Street: "Dlouhá 12",
		City:   "110 00 Praha 1",
		TaxID:  "12345678",
	}
	recipient = invoice.Party{
		Name:   "ACME s.r.o.",
		Street: "Krátká 1",
		City:   "602 00 Brno",
		TaxID:  "87654321",
		VATID:  "CZ87654321",
	}
)

func rowName(i int) string {
	return fmt.Sprintf("Položka %03d", i)
}

func sampleInvoice(t *testing.T, rows int) *invoice.Invoice {
	t.Helper()
	items := make([]invoice.LineItem, 0, rows)
	for i := 0; i < rows; i++ {
		items = append(items, invoice.LineItem{
			Description: rowName(i),
			Quantity:    decimal.NewFromInt(int64(i%5 + 1)),
			Unit:        "hod",
			UnitPrice:   decimal.RequireFromString("1250.50"),
		})
	}

	inv, err := invoice.New(invoice.Params{
		IssueDate: time.Date(2025, time.October, 19, 0, 0, 0, 0, time.UTC),
		DueDays:   14,
		Issuer:    issuer,
		IssuerAccount: invoice.BankAccount{
			IBAN:     "CZ65 0800 0000 1920 0014 5399",
			BIC:      "GIBACZPX",
			BankName: "Česká spořitelna",
		},
		Recipient:        recipient,
		Items:            items,
		RegistrationNote: "Zapsán v živnostenském rejstříku.",
		VATNote:          "Nejsem plátce DPH.",
	})
	require.NoError(t, err)
	return inv
}

type EngineSuite struct {
	suite.Suite
	rec    *Recorder
	engine *Engine
}

func TestEngine(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.rec = NewRecorder()
	s.engine = NewEngine(s.rec, Options{AttributionURL: "https://example.org/invoice"})
}

func (s *EngineSuite) render(rows int) *invoice.Invoice {
	inv := sampleInvoice(s.T(), rows)
	err := s.engine.Render(Document{Invoice: inv, PaymentCode: []byte("png")})
	s.Require().NoError(err)
	return inv
}

// totalsOps returns every draw call belonging to the totals block
func (s *EngineSuite) totalsOps(inv *invoice.Invoice) []Op {
	var ops []Op
	for _, op := range s.rec.Ops {
		switch {
		case op.Kind == OpImage,
			op.Kind == OpMultiCell,
			op.Kind == OpCell && op.Text == "CELKEM K ÚHRADĚ",
			op.Kind == OpCell && op.Text == invoice.FormatMoney(inv.GrandTotal) && op.FontSize == 24,
			op.Kind == OpCell && op.Text == "Var. symbol: "+inv.VariableSymbol:
			ops = append(ops, op)
		}
	}
	return ops
}

func (s *EngineSuite) TestBanner() {
	inv := s.render(1)

	rects := []Op{}
	for _, op := range s.rec.Ops {
		if op.Kind == OpRect {
			rects = append(rects, op)
		}
	}
	s.Require().NotEmpty(rects)
	s.Equal(Op{Page: 1, Kind: OpRect, W: 210, H: 45, Color: colorPrimary}, rects[0])

	title := s.rec.Find(OpCell, "FAKTURA")
	s.Require().Len(title, 1)
	s.Equal(AlignLeft, title[0].Align)
	s.Equal(colorWhite, title[0].Color)

	number := s.rec.Find(OpCell, "Č. "+inv.Number)
	s.Require().Len(number, 1)
	s.Equal(AlignRight, number[0].Align)
	s.Equal(title[0].Y, number[0].Y)
}

func (s *EngineSuite) TestSinglePage() {
	s.render(3)

	s.Equal(1, s.rec.Pages())
	s.Equal(1, s.engine.Pages())
	s.Len(s.rec.Find(OpCell, "Strana 1"), 1)
}

func (s *EngineSuite) TestRowsAcrossPages() {
	const rows = 60
	s.render(rows)

	s.Greater(s.rec.Pages(), 1)

	var seen []Op
	for _, op := range s.rec.Ops {
		if op.Kind == OpCell && op.X == marginLeft && len(op.Text) > 0 && op.Text[0] == 'P' && op.Text != "POPIS POLOŽKY" {
			seen = append(seen, op)
		}
	}
	s.Require().Len(seen, rows)
	for i, op := range seen {
		s.Equal(rowName(i), op.Text, "rows must keep their order")
		s.LessOrEqual(op.Y+op.H, contentBottom)
		if i > 0 {
			prev := seen[i-1]
			s.True(op.Page > prev.Page || op.Y > prev.Y, "row %d is not below row %d", i, i-1)
		}
	}
	s.Greater(seen[rows-1].Page, seen[0].Page)

	// the header is not repeated on continuation pages
	s.Len(s.rec.Find(OpCell, "POPIS POLOŽKY"), 1)
}

func (s *EngineSuite) TestFooterOnEveryPage() {
	s.render(60)

	pages := s.rec.Pages()
	for p := 1; p <= pages; p++ {
		found := s.rec.Find(OpCell, fmt.Sprintf("Strana %d", p))
		s.Require().Len(found, 1, "page %d", p)
		s.Equal(p, found[0].Page)
		s.Equal(AlignRight, found[0].Align)
	}

	credits := s.rec.Find(OpCell, "Generováno automaticky | https://example.org/invoice")
	s.Len(credits, pages)
	for _, op := range credits {
		s.Equal("https://example.org/invoice", op.Link)
		s.Equal(AlignLeft, op.Align)
		s.Equal(contentBottom+5, op.Y)
	}
}

func (s *EngineSuite) TestTotalsBlockIsAtomic() {
	for rows := 1; rows <= 45; rows++ {
		s.SetupTest()
		inv := s.render(rows)

		ops := s.totalsOps(inv)
		s.Require().Len(ops, 5, "rows=%d", rows)
		for _, op := range ops {
			s.Equal(ops[0].Page, op.Page, "rows=%d: totals block split", rows)
		}
		s.Equal(s.rec.Pages(), ops[0].Page)
		s.LessOrEqual(ops[0].Y+totalsHeight, totalsBottom)
	}
}

func (s *EngineSuite) TestTotalsKeepGapAboveFooter() {
	// without a DIČ row the addresses end 5mm higher and eight rows leave
	// the totals block at y=222, which would end on the footer divider
	inv := sampleInvoice(s.T(), 8)
	inv.Recipient.VATID = ""
	s.Require().NoError(s.engine.Render(Document{Invoice: inv, PaymentCode: []byte("png")}))

	s.Equal(2, s.rec.Pages())
	img := s.rec.Find(OpImage, "payment-"+inv.Number)
	s.Require().Len(img, 1)
	s.Equal(2, img[0].Page)
	s.Equal(marginTop, img[0].Y)

	lastRow := s.rec.Find(OpCell, rowName(7))
	s.Require().Len(lastRow, 1)
	s.Equal(1, lastRow[0].Page)
	s.Equal(204.0, lastRow[0].Y)
}

func (s *EngineSuite) TestTotalsMoveToNewPage() {
	// ten rows end low enough that the totals block no longer fits
	inv := s.render(10)

	s.Equal(2, s.rec.Pages())
	ops := s.totalsOps(inv)
	s.Require().NotEmpty(ops)
	for _, op := range ops {
		s.Equal(2, op.Page)
		s.GreaterOrEqual(op.Y, marginTop)
	}
	img := s.rec.Find(OpImage, "payment-"+inv.Number)
	s.Require().Len(img, 1)
	s.Equal(marginTop, img[0].Y)
}

func (s *EngineSuite) TestAmountsShareOneFormat() {
	inv := s.render(4)

	for _, l := range inv.Lines {
		s.NotEmpty(s.rec.Find(OpCell, invoice.FormatMoney(l.Total)))
	}
	// four rows of 1x..4x the unit price, none equal to the grand total
	total := s.rec.Find(OpCell, invoice.FormatMoney(inv.GrandTotal))
	s.Require().Len(total, 1)
	s.Equal(float64(24), total[0].FontSize)
	s.Equal(AlignRight, total[0].Align)
}

func (s *EngineSuite) TestRegistrationNote() {
	s.render(1)

	notes := s.rec.Find(OpMultiCell, "Zapsán v živnostenském rejstříku.\n\nNejsem plátce DPH.")
	s.Len(notes, 1)
}

func (s *EngineSuite) TestMissingTextRendersEmpty() {
	inv := sampleInvoice(s.T(), 1)
	inv.Recipient = invoice.Party{}

	s.Require().NoError(s.engine.Render(Document{Invoice: inv}))
	s.NotEmpty(s.rec.Find(OpCell, "IČ: "))
	s.Empty(s.rec.Find(OpImage, "payment-"+inv.Number))
}

func TestAddresses_ContinueBelowTallerColumn(t *testing.T) {
	withVAT := recipient
	withoutVAT := issuer

	tests := []struct {
		name      string
		left      invoice.Party
		right     invoice.Party
		wantAfter float64
	}{
		{"recipient taller", withoutVAT, withVAT, 50 + 34 + addressGap},
		{"issuer taller", withVAT, withoutVAT, 50 + 34 + addressGap},
		{"same height", withoutVAT, withoutVAT, 50 + 29 + addressGap},
		{"both with vat", withVAT, withVAT, 50 + 34 + addressGap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecorder()
			e := NewEngine(rec, Options{})
			c := &cursor{x: marginLeft, y: 50, page: 1}

			e.addresses(c, tt.left, tt.right)
			assert.Equal(t, tt.wantAfter, c.y)
			assert.Equal(t, marginLeft, c.x)

			var leftBottom, rightBottom float64
			for _, op := range rec.Ops {
				if op.Kind != OpCell {
					continue
				}
				if op.X == marginLeft {
					leftBottom = max(leftBottom, op.Y+op.H)
				} else {
					rightBottom = max(rightBottom, op.Y+op.H)
				}
			}
			assert.Equal(t, max(leftBottom, rightBottom)+addressGap, c.y)
			assert.GreaterOrEqual(t, c.y, leftBottom)
			assert.GreaterOrEqual(t, c.y, rightBottom)
		})
	}
}

func TestLabelValue(t *testing.T) {
	rec := NewRecorder()
	e := NewEngine(rec, Options{})
	c := &cursor{x: 15, y: 100, page: 1}

	e.labelValue(c, "Banka", "Česká spořitelna", 50, false)
	assert.Equal(t, 65.0, c.x)
	assert.Equal(t, 100.0, c.y)

	e.labelValue(c, "Číslo účtu", "19-2000145399/0800", 60, true)
	assert.Equal(t, marginLeft, c.x)
	assert.Equal(t, 116.0, c.y)

	require.Len(t, rec.Ops, 4)
	assert.Equal(t, "BANKA", rec.Ops[0].Text)
	assert.Equal(t, colorTextMuted, rec.Ops[0].Color)
	assert.Equal(t, "Česká spořitelna", rec.Ops[1].Text)
	assert.Equal(t, 104.0, rec.Ops[1].Y)
	assert.Equal(t, "ČÍSLO ÚČTU", rec.Ops[2].Text)
	assert.Equal(t, 65.0, rec.Ops[2].X)
}

func TestCursor(t *testing.T) {
	c := &cursor{}
	c.reset()
	assert.Equal(t, marginTop, c.y)

	c.y = contentBottom - 10
	assert.True(t, c.fits(10))
	assert.False(t, c.fits(10.5))

	c.x = 99
	c.ln(5)
	assert.Equal(t, marginLeft, c.x)
	assert.Equal(t, contentBottom-5, c.y)
}

func TestRender_NoInvoice(t *testing.T) {
	err := NewEngine(NewRecorder(), Options{}).Render(Document{})
	require.Error(t, err)
	assert.True(t, ierr.IsRender(err))
}

type failingImageCanvas struct {
	*Recorder
}

func (failingImageCanvas) Image(string, []byte, float64, float64, float64) error {
	return errors.New("unsupported image")
}

func TestRender_ImageFailure(t *testing.T) {
	e := NewEngine(failingImageCanvas{NewRecorder()}, Options{})
	err := e.Render(Document{Invoice: sampleInvoice(t, 1), PaymentCode: []byte("x")})
	require.Error(t, err)
	assert.True(t, ierr.IsRender(err))
}

func TestRecorder_Dump(t *testing.T) {
	rec := NewRecorder()
	require.NoError(t, NewEngine(rec, Options{}).Render(Document{Invoice: sampleInvoice(t, 2)}))

	var buf bytes.Buffer
	require.NoError(t, rec.Dump(&buf))
	assert.Contains(t, buf.String(), `"FAKTURA"`)
	assert.Contains(t, buf.String(), "PAGE")
}
