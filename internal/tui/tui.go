package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/abrezinsky/m8keys/internal/animation"
	"github.com/abrezinsky/m8keys/internal/dataset"
	"github.com/abrezinsky/m8keys/internal/keypress"
	"github.com/abrezinsky/m8keys/internal/lookup"
	"github.com/abrezinsky/m8keys/internal/timeline"
)

const (
	screensWidth = 22
	labelWidth   = 16
)

type pane int

const (
	paneScreens pane = iota
	paneActivities
)

var (
	titleStyle    = tcell.StyleDefault.Bold(true)
	dimStyle      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	selectedStyle = tcell.StyleDefault.Reverse(true)
	levelStyles   = map[dataset.Level]tcell.Style{
		1: tcell.StyleDefault.Foreground(tcell.GetColor(timeline.ColorPlay)),
		2: tcell.StyleDefault.Foreground(tcell.GetColor(timeline.ColorEdit)),
		3: tcell.StyleDefault.Foreground(tcell.GetColor(timeline.ColorShift)),
	}
)

// Viewer is a two-pane terminal browser: screens on the left, the selected
// screen's activities and the selected activity's key timelines on the right.
type Viewer struct {
	screen tcell.Screen
	helper *lookup.Helper
	anim   animation.Config

	focus    pane
	screenAt int
	actAt    int
	beat     int
}

// New creates a viewer drawing to an initialized screen
func New(screen tcell.Screen, helper *lookup.Helper, anim animation.Config) *Viewer {
	return &Viewer{screen: screen, helper: helper, anim: anim, beat: -1}
}

// SelectedScreen returns the highlighted screen, if any
func (v *Viewer) SelectedScreen() *dataset.Screen {
	screens := v.helper.Screens()
	if v.screenAt >= len(screens) {
		return nil
	}
	return &screens[v.screenAt]
}

// SelectedActivity returns the highlighted activity, if any
func (v *Viewer) SelectedActivity() *dataset.Activity {
	acts := v.activities()
	if v.actAt >= len(acts) {
		return nil
	}
	return acts[v.actAt]
}

func (v *Viewer) activities() []*dataset.Activity {
	return v.helper.ActivitiesForScreen(v.SelectedScreen())
}

// HandleEvent applies one input event. It returns false when the viewer should quit.
func (v *Viewer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			if ev.Rune() == 'q' {
				return false
			}
		case tcell.KeyTab, tcell.KeyBacktab:
			if v.focus == paneScreens {
				v.focus = paneActivities
			} else {
				v.focus = paneScreens
			}
		case tcell.KeyLeft:
			v.focus = paneScreens
		case tcell.KeyRight, tcell.KeyEnter:
			v.focus = paneActivities
		case tcell.KeyUp:
			v.move(-1)
		case tcell.KeyDown:
			v.move(1)
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *Viewer) move(delta int) {
	if v.focus == paneScreens {
		n := len(v.helper.Screens())
		if next := v.screenAt + delta; next >= 0 && next < n {
			v.screenAt = next
			v.actAt = 0
		}
		return
	}
	n := len(v.activities())
	if next := v.actAt + delta; next >= 0 && next < n {
		v.actAt = next
	}
}

// SetBeat moves the playhead; -1 hides it
func (v *Viewer) SetBeat(beat int) {
	v.beat = beat
}

// Draw renders the whole viewer
func (v *Viewer) Draw() {
	s := v.screen
	s.Clear()
	w, h := s.Size()

	v.drawScreens(h)
	for y := 0; y < h; y++ {
		s.SetContent(screensWidth, y, '│', nil, dimStyle)
	}
	v.drawActivities(screensWidth+2, w)

	s.Show()
}

func (v *Viewer) drawScreens(h int) {
	s := v.screen
	style := titleStyle
	if v.focus == paneScreens {
		style = style.Underline(true)
	}
	drawText(s, 1, 0, screensWidth, "Screens", style)

	for i, sc := range v.helper.Screens() {
		y := i + 2
		if y >= h {
			break
		}
		st := tcell.StyleDefault
		if i == v.screenAt {
			st = selectedStyle
		}
		drawText(s, 1, y, screensWidth, sc.Name, st)
	}
}

func (v *Viewer) drawActivities(x, maxX int) {
	s := v.screen
	sc := v.SelectedScreen()
	if sc == nil {
		drawText(s, x, 0, maxX, "No screens", dimStyle)
		return
	}

	style := titleStyle
	if v.focus == paneActivities {
		style = style.Underline(true)
	}
	drawText(s, x, 0, maxX, sc.Name, style)
	drawText(s, x, 1, maxX, sc.Description, dimStyle)

	y := 3
	for i, a := range v.activities() {
		level := a.EffectiveLevel()
		next := drawText(s, x, y, maxX, fmt.Sprintf("[%d] ", level), levelStyles[level])
		st := tcell.StyleDefault
		if i == v.actAt {
			st = selectedStyle
		}
		drawText(s, next, y, maxX, a.Name, st)
		y++
	}

	if a := v.SelectedActivity(); a != nil {
		v.drawDetail(x, y+1, maxX, a)
	}
}

// drawDetail lays out the activity's keypress elements top to bottom, each
// press group as labelled timeline rows.
func (v *Viewer) drawDetail(x, y, maxX int, a *dataset.Activity) {
	s := v.screen
	drawText(s, x, y, maxX, a.Description, tcell.StyleDefault)
	y += 2

	for _, el := range keypress.Layout(a.Keypress) {
		switch el.Kind {
		case keypress.ElementPress:
			tl := timeline.Render(el.Keys)
			labels := make(map[int]string, len(tl.Rects))
			for _, r := range tl.Rects {
				labels[r.Track] = r.Key.String()
			}
			for track := 0; track < tl.Tracks; track++ {
				drawText(s, x, y+track, x+labelWidth, labels[track], dimStyle)
			}
			rows := DrawTimeline(s, x+labelWidth, y, tl)
			DrawPlayhead(s, x+labelWidth, y, rows, v.beat)
			y += rows
		default:
			drawText(s, x+labelWidth, y, maxX, el.Label, titleStyle)
			y++
		}
	}
}

// Run draws and handles input until the user quits or ctx ends. The
// playhead advances once per beat of the animation cycle.
func (v *Viewer) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)

	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(v.anim.BeatDuration())
	defer ticker.Stop()
	start := time.Now()

	v.beat = 0
	v.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !v.HandleEvent(ev) {
				return nil
			}
			v.Draw()
		case <-ticker.C:
			v.SetBeat(v.anim.BeatAt(time.Since(start)))
			v.Draw()
		}
	}
}
