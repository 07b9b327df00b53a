package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/abrezinsky/m8keys/internal/animation"
	"github.com/abrezinsky/m8keys/internal/keypress"
	"github.com/abrezinsky/m8keys/internal/timeline"
)

const (
	emptyCell = '·'
	fullCell  = '█'
)

var arrows = map[keypress.BaseKey]rune{
	keypress.Up:    '▲',
	keypress.Down:  '▼',
	keypress.Left:  '◀',
	keypress.Right: '▶',
}

var emptyStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)

// CellStyle is the style of a lit beat for a rectangle
func CellStyle(r timeline.Rect) tcell.Style {
	c := tcell.GetColor(r.Color)
	if r.Directional {
		return tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(c)
	}
	return tcell.StyleDefault.Foreground(c)
}

func cellRune(r timeline.Rect) rune {
	if r.Directional {
		return arrows[r.Key.Base]
	}
	return fullCell
}

// DrawTimeline paints one row per track and one cell per beat at (x, y).
// It returns the number of rows used.
func DrawTimeline(s tcell.Screen, x, y int, tl timeline.Timeline) int {
	for track := 0; track < tl.Tracks; track++ {
		for beat := 0; beat < animation.Beats; beat++ {
			s.SetContent(x+beat, y+track, emptyCell, nil, emptyStyle)
		}
	}
	for _, r := range tl.Rects {
		style := CellStyle(r)
		ch := cellRune(r)
		for beat := r.Start; beat < r.Start+r.Length; beat++ {
			s.SetContent(x+beat, y+r.Track, ch, nil, style)
		}
	}
	return tl.Tracks
}

// DrawPlayhead reverses the cells of one beat column over rows tracks
func DrawPlayhead(s tcell.Screen, x, y, rows, beat int) {
	if beat < 0 || beat >= animation.Beats {
		return
	}
	for row := 0; row < rows; row++ {
		ch, comb, style, _ := s.GetContent(x+beat, y+row)
		s.SetContent(x+beat, y+row, ch, comb, style.Reverse(true))
	}
}

// drawText writes s from (x, y), clipped at maxX. It returns the next column.
func drawText(s tcell.Screen, x, y, maxX int, text string, style tcell.Style) int {
	for _, r := range text {
		if x >= maxX {
			break
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}
