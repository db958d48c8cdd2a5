// pkg/layout/recorder.go

package layout

import (
	"fmt"
	"io"
	"text/tabwriter"
)

type OpKind string

const (
	OpPage      OpKind = "page"
	OpRect      OpKind = "rect"
	OpLine      OpKind = "line"
	OpCell      OpKind = "cell"
	OpMultiCell OpKind = "multicell"
	OpImage     OpKind = "image"
)

// Op is one positioned draw call. X2/Y2 are only set for lines.
type Op struct {
	Page     int
	Kind     OpKind
	X, Y     float64
	W, H     float64
	X2, Y2   float64
	Text     string
	Align    Align
	Link     string
	FontSize float64
	Color    Color
}

// Recorder is a Canvas that keeps the draw calls instead of rendering them.
type Recorder struct {
	Ops []Op

	page     int
	fontSize float64
	text     Color
	fill     Color
	draw     Color
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(op Op) {
	op.Page = r.page
	r.Ops = append(r.Ops, op)
}

func (r *Recorder) AddPage() {
	r.page++
	r.add(Op{Kind: OpPage})
}

func (r *Recorder) SetFontSize(size float64) { r.fontSize = size }
func (r *Recorder) SetTextColor(c Color)     { r.text = c }
func (r *Recorder) SetFillColor(c Color)     { r.fill = c }
func (r *Recorder) SetDrawColor(c Color)     { r.draw = c }

func (r *Recorder) FillRect(x, y, w, h float64) {
	r.add(Op{Kind: OpRect, X: x, Y: y, W: w, H: h, Color: r.fill})
}

func (r *Recorder) Line(x1, y1, x2, y2 float64) {
	r.add(Op{Kind: OpLine, X: x1, Y: y1, X2: x2, Y2: y2, Color: r.draw})
}

func (r *Recorder) Cell(x, y, w, h float64, text string, align Align, link string) {
	r.add(Op{Kind: OpCell, X: x, Y: y, W: w, H: h, Text: text, Align: align, Link: link, FontSize: r.fontSize, Color: r.text})
}

func (r *Recorder) MultiCell(x, y, w, lineHeight float64, text string) {
	r.add(Op{Kind: OpMultiCell, X: x, Y: y, W: w, H: lineHeight, Text: text, FontSize: r.fontSize, Color: r.text})
}

func (r *Recorder) Image(name string, png []byte, x, y, w float64) error {
	r.add(Op{Kind: OpImage, X: x, Y: y, W: w, H: w, Text: name})
	return nil
}

// Pages is the number of pages started so far
func (r *Recorder) Pages() int {
	return r.page
}

// Find returns the draw calls of the given kind whose text equals text
func (r *Recorder) Find(kind OpKind, text string) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind && op.Text == text {
			out = append(out, op)
		}
	}
	return out
}

// Dump writes the draw list as an aligned table
func (r *Recorder) Dump(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PAGE\tOP\tX\tY\tW\tH\tTEXT")
	for _, op := range r.Ops {
		switch op.Kind {
		case OpLine:
			fmt.Fprintf(tw, "%d\t%s\t%.1f\t%.1f\t%.1f\t%.1f\t\n", op.Page, op.Kind, op.X, op.Y, op.X2, op.Y2)
		case OpPage:
			fmt.Fprintf(tw, "%d\t%s\t\t\t\t\t\n", op.Page, op.Kind)
		default:
			fmt.Fprintf(tw, "%d\t%s\t%.1f\t%.1f\t%.1f\t%.1f\t%q\n", op.Page, op.Kind, op.X, op.Y, op.W, op.H, op.Text)
		}
	}
	return tw.Flush()
}
