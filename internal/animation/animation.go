// Package animation holds the beat patterns that drive key lighting and the
// timeline playhead.
package animation

import (
	"fmt"
	"time"

	"github.com/abrezinsky/m8keys/internal/keypress"
)

// Beats is the number of cells in one animation cycle.
const Beats = 8

// DefaultCycle is the duration of one full animation cycle.
const DefaultCycle = 1500 * time.Millisecond

// Pattern marks which beats of a cycle a key is held (1) or released (0).
type Pattern [Beats]uint8

var patterns = map[keypress.Modifier]Pattern{
	keypress.ModHold:         {1, 1, 1, 1, 1, 1, 1, 1},
	keypress.ModFirst:        {1, 1, 1, 1, 1, 1, 0, 0},
	keypress.ModReleaseFirst: {1, 1, 1, 1, 0, 0, 0, 0},
	keypress.ModNotFirst:     {0, 0, 1, 1, 1, 1, 0, 0},
	keypress.ModPulses:       {1, 0, 1, 0, 1, 0, 1, 0},
	keypress.Mod1x:           {1, 1, 0, 0, 0, 0, 0, 0},
	keypress.Mod2x:           {1, 0, 1, 0, 0, 0, 0, 0},
	keypress.Mod3x:           {1, 0, 1, 0, 1, 0, 0, 0},
	keypress.Mod1xNotFirst:   {0, 0, 1, 1, 0, 0, 0, 0},
	keypress.Mod2xNotFirst:   {0, 0, 1, 0, 1, 0, 0, 0},
	keypress.Mod3xNotFirst:   {0, 0, 1, 0, 1, 0, 1, 0},
}

// For returns the pattern of an explicit modifier.
func For(mod keypress.Modifier) (Pattern, bool) {
	p, ok := patterns[mod]
	return p, ok
}

// Infer returns the modifier a key animates with. An explicit modifier wins;
// otherwise the first key of a group pulses when directional and presses once
// when not, and every later key uses not-first.
func Infer(key keypress.Key, first bool) keypress.Modifier {
	if _, ok := patterns[key.Modifier]; ok {
		return key.Modifier
	}
	if !first {
		return keypress.ModNotFirst
	}
	if key.Base.IsDirectional() {
		return keypress.ModPulses
	}
	return keypress.Mod1x
}

// PatternFor resolves the pattern of a key at the given position of its group.
func PatternFor(key keypress.Key, first bool) Pattern {
	return patterns[Infer(key, first)]
}

// Active reports whether beat i is lit.
func (p Pattern) Active(i int) bool {
	if i < 0 || i >= Beats {
		return false
	}
	return p[i] == 1
}

// Config is the shared cycle timing.
type Config struct {
	Cycle time.Duration
	Beats int
}

// DefaultConfig returns the 1500ms, 8-beat cycle.
func DefaultConfig() Config {
	return Config{Cycle: DefaultCycle, Beats: Beats}
}

// Validate rejects non-positive timing values.
func (c Config) Validate() error {
	if c.Cycle <= 0 {
		return fmt.Errorf("animation cycle must be positive, got %s", c.Cycle)
	}
	if c.Beats <= 0 {
		return fmt.Errorf("animation beats must be positive, got %d", c.Beats)
	}
	return nil
}

// BeatDuration is the length of a single beat.
func (c Config) BeatDuration() time.Duration {
	return c.Cycle / time.Duration(c.Beats)
}

// BeatAt maps time since the cycle started to a beat index; the cycle loops.
func (c Config) BeatAt(elapsed time.Duration) int {
	if elapsed < 0 {
		elapsed = 0
	}
	pos := elapsed % c.Cycle
	return int(pos / c.BeatDuration())
}

// ActiveAt reports whether the pattern is lit at the given point of a looping cycle.
func (p Pattern) ActiveAt(c Config, elapsed time.Duration) bool {
	return p.Active(c.BeatAt(elapsed) * Beats / c.Beats)
}

// CSSDuration formats the cycle the way stylesheets expect, e.g. "1500ms".
func (c Config) CSSDuration() string {
	return fmt.Sprintf("%dms", c.Cycle.Milliseconds())
}
