package keypress

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Token is one element of a keypress sequence. The concrete types are Key,
// Combo, Connector, Repeat and Unknown; switch on them exhaustively.
type Token interface {
	token()
	String() string
}

func (Key) token()       {}
func (Combo) token()     {}
func (Connector) token() {}
func (Repeat) token()    {}
func (Unknown) token()   {}

// Combo is a set of keys pressed simultaneously. Order is kept for stacking.
type Combo []Key

func (c Combo) String() string {
	parts := make([]string, len(c))
	for i, k := range c {
		parts[i] = k.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Connector is a structural token between presses. It carries no key.
type Connector int

const (
	And Connector = iota
	Or
	After
	Hold
	Touch
	Midi
)

var connectorNames = [...]string{
	And:   "and",
	Or:    "or",
	After: "after",
	Hold:  "hold",
	Touch: "touch",
	Midi:  "midi",
}

func (c Connector) String() string {
	if c < 0 || int(c) >= len(connectorNames) {
		return fmt.Sprintf("Connector(%d)", int(c))
	}
	return connectorNames[c]
}

// Label is the glyph or caption drawn for the connector.
func (c Connector) Label() string {
	switch c {
	case And:
		return "+"
	case After:
		return "→"
	case Or:
		return "|"
	case Hold:
		return "HOLD"
	case Touch:
		return "TOUCH"
	case Midi:
		return "MIDI"
	}
	return ""
}

// Repeat is a standalone "1x", "2x" or "3x" mark that applies to the next press.
type Repeat int

func (r Repeat) String() string {
	return fmt.Sprintf("%dx", int(r))
}

// Unknown is a token outside the vocabulary, kept verbatim. It references
// no key and draws nothing.
type Unknown string

func (u Unknown) String() string {
	return string(u)
}

// ParseToken parses a scalar token: a connector, a repeat mark or a key.
func ParseToken(s string) (Token, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	for i, name := range connectorNames {
		if name == lower {
			return Connector(i), nil
		}
	}
	switch lower {
	case "1x":
		return Repeat(1), nil
	case "2x":
		return Repeat(2), nil
	case "3x":
		return Repeat(3), nil
	}
	k, err := ParseKey(lower)
	if err != nil {
		return nil, fmt.Errorf("unknown keypress token %q", s)
	}
	return k, nil
}

// Sequence is an activity's ordered keypress recipe.
type Sequence []Token

// Keys flattens the sequence into every key it references, combos expanded.
func (s Sequence) Keys() []Key {
	var keys []Key
	for _, t := range s {
		switch v := t.(type) {
		case Key:
			keys = append(keys, v)
		case Combo:
			keys = append(keys, v...)
		}
	}
	return keys
}

// KeySet returns the distinct base keys used by the sequence, first-seen order.
func (s Sequence) KeySet() []BaseKey {
	seen := make(map[BaseKey]bool)
	var out []BaseKey
	for _, k := range s.Keys() {
		if !seen[k.Base] {
			seen[k.Base] = true
			out = append(out, k.Base)
		}
	}
	return out
}

// Uses reports whether any key of the sequence has the given base key.
func (s Sequence) Uses(base BaseKey) bool {
	for _, k := range s.Keys() {
		if k.Base == base {
			return true
		}
	}
	return false
}

// Unknown returns the tokens that were not recognised when decoding.
func (s Sequence) Unknown() []Unknown {
	var out []Unknown
	for _, t := range s {
		if u, ok := t.(Unknown); ok {
			out = append(out, u)
		}
	}
	return out
}

// MarshalJSON writes combos as arrays and every other token as a string.
func (s Sequence) MarshalJSON() ([]byte, error) {
	raw := make([]any, len(s))
	for i, t := range s {
		switch v := t.(type) {
		case Combo:
			keys := make([]string, len(v))
			for j, k := range v {
				keys[j] = k.String()
			}
			raw[i] = keys
		default:
			raw[i] = t.String()
		}
	}
	return json.Marshal(raw)
}

// UnmarshalJSON accepts strings (keys, connectors, repeat marks) and arrays of
// keys. Anything unrecognised becomes an Unknown token rather than an error.
func (s *Sequence) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("keypress: %w", err)
	}
	seq := make(Sequence, 0, len(raw))
	for _, item := range raw {
		var str string
		if err := json.Unmarshal(item, &str); err == nil {
			seq = append(seq, parseOrUnknown(str))
			continue
		}
		var names []string
		if err := json.Unmarshal(item, &names); err != nil {
			seq = append(seq, Unknown(item))
			continue
		}
		seq = append(seq, parseCombo(names))
	}
	*s = seq
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML datasets.
func (s *Sequence) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("keypress: line %d: expected a sequence", node.Line)
	}
	seq := make(Sequence, 0, len(node.Content))
	for _, item := range node.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			seq = append(seq, parseOrUnknown(item.Value))
		case yaml.SequenceNode:
			names := make([]string, len(item.Content))
			for i, k := range item.Content {
				names[i] = k.Value
			}
			seq = append(seq, parseCombo(names))
		default:
			out, _ := yaml.Marshal(item)
			seq = append(seq, Unknown(strings.TrimSpace(string(out))))
		}
	}
	*s = seq
	return nil
}

func parseOrUnknown(s string) Token {
	t, err := ParseToken(s)
	if err != nil {
		return Unknown(s)
	}
	return t
}

// parseCombo keeps a key array as a Combo, or as one Unknown token when any
// of its keys is not recognised.
func parseCombo(names []string) Token {
	combo := make(Combo, 0, len(names))
	for _, name := range names {
		k, err := ParseKey(name)
		if err != nil {
			return Unknown("[" + strings.Join(names, ",") + "]")
		}
		combo = append(combo, k)
	}
	return combo
}

// MarshalYAML keeps the YAML form identical to the JSON form.
func (s Sequence) MarshalYAML() (any, error) {
	raw := make([]any, len(s))
	for i, t := range s {
		if c, ok := t.(Combo); ok {
			keys := make([]string, len(c))
			for j, k := range c {
				keys[j] = k.String()
			}
			raw[i] = keys
			continue
		}
		raw[i] = t.String()
	}
	return raw, nil
}
