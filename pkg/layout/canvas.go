// pkg/layout/canvas.go

package layout

// Canvas is the drawing surface the engine writes to. Coordinates are
// absolute millimetres from the top-left corner of the current page.
// Implementations must not break pages on their own; pagination belongs to
// the engine.
type Canvas interface {
	AddPage()
	SetFontSize(size float64)
	SetTextColor(c Color)
	SetFillColor(c Color)
	SetDrawColor(c Color)
	// FillRect draws a filled rectangle in the current fill colour
	FillRect(x, y, w, h float64)
	Line(x1, y1, x2, y2 float64)
	// Cell draws a single line of text inside the box (x, y, w, h).
	// A non-empty link makes the text clickable.
	Cell(x, y, w, h float64, text string, align Align, link string)
	// MultiCell draws text wrapped to width w, one line every lineHeight
	MultiCell(x, y, w, lineHeight float64, text string)
	// Image places a PNG scaled to width w, keeping its aspect ratio
	Image(name string, png []byte, x, y, w float64) error
}

// Align values match the alignment strings used by PDF cell APIs
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

type Color struct {
	R, G, B int
}

var (
	colorPrimary    = Color{41, 58, 74}
	colorTextMuted  = Color{149, 165, 166}
	colorDivider    = Color{236, 240, 241}
	colorBgLight    = Color{250, 251, 252}
	colorRowDivider = Color{245, 245, 245}
	colorBody       = Color{60, 60, 60}
	colorBlack      = Color{0, 0, 0}
	colorWhite      = Color{255, 255, 255}
)
