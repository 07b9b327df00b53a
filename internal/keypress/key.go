// Package keypress models the device's key vocabulary and the token sequences
// that describe an activity's input recipe.
package keypress

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BaseKey is one of the eight physical keys on the device.
type BaseKey int

const (
	Up BaseKey = iota
	Down
	Left
	Right
	Edit
	Opt
	Shift
	Play
)

var baseKeyNames = [...]string{
	Up:    "up",
	Down:  "down",
	Left:  "left",
	Right: "right",
	Edit:  "edit",
	Opt:   "opt",
	Shift: "shift",
	Play:  "play",
}

// BaseKeys returns every base key in declaration order.
func BaseKeys() []BaseKey {
	return []BaseKey{Up, Down, Left, Right, Edit, Opt, Shift, Play}
}

func (b BaseKey) String() string {
	if b < 0 || int(b) >= len(baseKeyNames) {
		return fmt.Sprintf("BaseKey(%d)", int(b))
	}
	return baseKeyNames[b]
}

// IsDirectional reports whether b is one of the four cursor keys.
func (b BaseKey) IsDirectional() bool {
	return b == Up || b == Down || b == Left || b == Right
}

// ParseBaseKey looks up a base key by name (case-insensitive).
func ParseBaseKey(s string) (BaseKey, bool) {
	s = strings.ToLower(s)
	for i, name := range baseKeyNames {
		if name == s {
			return BaseKey(i), true
		}
	}
	return 0, false
}

// Modifier selects the timing pattern of a single key press.
type Modifier int

const (
	ModNone Modifier = iota
	ModHold
	ModFirst
	ModReleaseFirst
	ModNotFirst
	ModPulses
	Mod1x
	Mod2x
	Mod3x
	Mod1xNotFirst
	Mod2xNotFirst
	Mod3xNotFirst
)

var modifierNames = [...]string{
	ModNone:         "",
	ModHold:         "hold",
	ModFirst:        "first",
	ModReleaseFirst: "release-first",
	ModNotFirst:     "not-first",
	ModPulses:       "pulses",
	Mod1x:           "1x",
	Mod2x:           "2x",
	Mod3x:           "3x",
	Mod1xNotFirst:   "1x-not-first",
	Mod2xNotFirst:   "2x-not-first",
	Mod3xNotFirst:   "3x-not-first",
}

// Modifiers returns every explicit modifier (ModNone excluded).
func Modifiers() []Modifier {
	mods := make([]Modifier, 0, len(modifierNames)-1)
	for i := 1; i < len(modifierNames); i++ {
		mods = append(mods, Modifier(i))
	}
	return mods
}

func (m Modifier) String() string {
	if m < 0 || int(m) >= len(modifierNames) {
		return fmt.Sprintf("Modifier(%d)", int(m))
	}
	return modifierNames[m]
}

// ParseModifier looks up a modifier tag. The empty string maps to ModNone.
func ParseModifier(s string) (Modifier, bool) {
	s = strings.ToLower(s)
	for i, name := range modifierNames {
		if name == s {
			return Modifier(i), true
		}
	}
	return ModNone, false
}

// Repeated returns the repetition modifier for n presses (1..3), choosing the
// not-first variant when the key does not open its group.
func Repeated(n int, first bool) Modifier {
	if n < 1 || n > 3 {
		return ModNone
	}
	if first {
		return Mod1x + Modifier(n-1)
	}
	return Mod1xNotFirst + Modifier(n-1)
}

// Key is a base key with an optional modifier, e.g. "edit-hold".
type Key struct {
	Base     BaseKey
	Modifier Modifier
}

// NewKey composes a key from its parts.
func NewKey(base BaseKey, mod Modifier) Key {
	return Key{Base: base, Modifier: mod}
}

// HasModifier reports whether the key carries an explicit modifier.
func (k Key) HasModifier() bool {
	return k.Modifier != ModNone
}

// String composes the wire form "<base>" or "<base>-<modifier>".
func (k Key) String() string {
	if k.Modifier == ModNone {
		return k.Base.String()
	}
	return k.Base.String() + "-" + k.Modifier.String()
}

// Decompose splits a key string at the end of its longest matching base key
// name. Whatever follows the separator is the modifier tag. Strings outside
// the vocabulary report ok=false.
func Decompose(s string) (base BaseKey, mod Modifier, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	best := -1
	for i, name := range baseKeyNames {
		if strings.HasPrefix(s, name) && (best < 0 || len(name) > len(baseKeyNames[best])) {
			best = i
		}
	}
	if best < 0 {
		return 0, ModNone, false
	}
	rest := s[len(baseKeyNames[best]):]
	if rest == "" {
		return BaseKey(best), ModNone, true
	}
	if rest[0] != '-' {
		return 0, ModNone, false
	}
	mod, ok = ParseModifier(rest[1:])
	if !ok || mod == ModNone {
		return 0, ModNone, false
	}
	return BaseKey(best), mod, true
}

// ParseKey parses the wire form of a key.
func ParseKey(s string) (Key, error) {
	base, mod, ok := Decompose(s)
	if !ok {
		return Key{}, fmt.Errorf("unknown key %q", s)
	}
	return Key{Base: base, Modifier: mod}, nil
}

// MustParseKey is ParseKey for literals known to be valid.
func MustParseKey(s string) Key {
	k, err := ParseKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

// MarshalJSON encodes the key in its wire form.
func (k Key) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes the wire form of a key.
func (k *Key) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("key: %w", err)
	}
	parsed, err := ParseKey(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
