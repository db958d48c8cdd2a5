// pkg/layout/cursor.go

package layout

// Page geometry, A4 portrait in millimetres.
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 10.0
	marginTop    = 10.0
	marginRight  = 10.0
	marginBottom = 25.0

	contentWidth  = pageWidth - marginLeft - marginRight
	contentBottom = pageHeight - marginBottom
)

// cursor is the pen position and the active page. It is created by Render
// and handed by pointer to every layout step.
type cursor struct {
	x, y float64
	page int
}

// reset moves to the top-left content corner of the page
func (c *cursor) reset() {
	c.x = marginLeft
	c.y = marginTop
}

// ln advances by h and returns to the left margin
func (c *cursor) ln(h float64) {
	c.x = marginLeft
	c.y += h
}

// fits reports whether a block of height h still ends above the bottom margin
func (c *cursor) fits(h float64) bool {
	return c.y+h <= contentBottom
}
