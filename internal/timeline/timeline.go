// Package timeline turns a key group into stacked beat intervals that can be
// drawn as rectangles under the key visual.
package timeline

import (
	"github.com/abrezinsky/m8keys/internal/animation"
	"github.com/abrezinsky/m8keys/internal/keypress"
)

// CellSize is the display width and height of one beat cell.
const CellSize = 3

// Width is the full display width of one cycle.
const Width = animation.Beats * CellSize

// Palette colors.
const (
	ColorOpt     = "#3fb8af"
	ColorEdit    = "#d9a441"
	ColorShift   = "#d6336c"
	ColorPlay    = "#8fd14f"
	ColorNeutral = "#878d8f"
)

// Run is a span of consecutive lit beats.
type Run struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// Rect is one filled interval of one key's track.
type Rect struct {
	Key         keypress.Key `json:"key"`
	Start       int          `json:"start"`
	Length      int          `json:"length"`
	Track       int          `json:"track"`
	X           int          `json:"x"`
	Y           int          `json:"y"`
	Width       int          `json:"width"`
	Color       string       `json:"color"`
	Directional bool         `json:"directional"`
}

// Timeline is the rendered interval set of a key group.
type Timeline struct {
	Rects  []Rect `json:"rects"`
	Tracks int    `json:"tracks"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Encode run-length encodes the lit beats of a pattern. A run still open at
// the end of the pattern is closed there.
func Encode(p animation.Pattern) []Run {
	var runs []Run
	start := -1
	for i, cell := range p {
		if cell == 1 {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			runs = append(runs, Run{Start: start, Length: i - start})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, Run{Start: start, Length: len(p) - start})
	}
	return runs
}

// Render stacks one track per key. The first key sits on the bottom track
// and the last key on the top, so track index runs opposite to input order.
func Render(keys []keypress.Key) Timeline {
	n := len(keys)
	tl := Timeline{
		Tracks: max(n, 1),
		Width:  Width,
		Height: max(n, 1) * CellSize,
		Rects:  []Rect{},
	}

	for i, key := range keys {
		track := n - 1 - i
		for _, run := range Encode(animation.PatternFor(key, i == 0)) {
			tl.Rects = append(tl.Rects, Rect{
				Key:         key,
				Start:       run.Start,
				Length:      run.Length,
				Track:       track,
				X:           run.Start * CellSize,
				Y:           track * CellSize,
				Width:       run.Length * CellSize,
				Color:       Color(key.Base),
				Directional: key.Base.IsDirectional(),
			})
		}
	}
	return tl
}

// Color returns the palette color of a base key.
func Color(base keypress.BaseKey) string {
	switch base {
	case keypress.Opt:
		return ColorOpt
	case keypress.Edit:
		return ColorEdit
	case keypress.Shift:
		return ColorShift
	case keypress.Play:
		return ColorPlay
	default:
		return ColorNeutral
	}
}
