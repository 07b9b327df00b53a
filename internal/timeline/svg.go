package timeline

import (
	"fmt"
	"strings"

	"github.com/abrezinsky/m8keys/internal/keypress"
)

const arrowSize = 1.5

// ArrowPath returns the SVG path of the arrow glyph drawn on a directional
// rectangle, vertically centred on it. Non-directional rects return "".
func ArrowPath(r Rect) string {
	if !r.Directional {
		return ""
	}
	x := float64(r.X) + 1
	cy := float64(r.Y) + float64(CellSize)/2
	s := arrowSize

	switch r.Key.Base {
	case keypress.Up:
		return fmt.Sprintf("M %g,%g L %g,%g L %g,%g Z", x, cy+s, x+s, cy, x+2*s, cy+s)
	case keypress.Down:
		return fmt.Sprintf("M %g,%g L %g,%g L %g,%g Z", x, cy-s, x+s, cy, x+2*s, cy-s)
	case keypress.Left:
		return fmt.Sprintf("M %g,%g L %g,%g L %g,%g Z", x+s, cy-s, x, cy, x+s, cy+s)
	case keypress.Right:
		return fmt.Sprintf("M %g,%g L %g,%g L %g,%g Z", x, cy-s, x+s, cy, x, cy+s)
	}
	return ""
}

// SVG renders the timeline as a standalone SVG element.
func SVG(tl Timeline) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" style="display:block">`, tl.Width, tl.Height)
	for _, r := range tl.Rects {
		fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" opacity="0.8"/>`, r.X, r.Y, r.Width, CellSize, r.Color)
		if path := ArrowPath(r); path != "" {
			fmt.Fprintf(&b, `<path d="%s" fill="white" opacity="0.9"/>`, path)
		}
	}
	b.WriteString(`</svg>`)
	return b.String()
}
