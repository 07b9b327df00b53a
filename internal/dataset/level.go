package dataset

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abrezinsky/m8keys/internal/keypress"
)

// Level is a difficulty rank 1..3. Zero means unset.
type Level int

// invalidLevel marks a level that was present but not a number.
const invalidLevel Level = -1

// Valid reports whether l is a rank within 1..3. The unset zero is not valid.
func (l Level) Valid() bool {
	return l >= 1 && l <= 3
}

// IsSet reports whether a level was given at all.
func (l Level) IsSet() bool {
	return l != 0
}

// UnmarshalJSON never fails. Out-of-range and non-numeric values decode to
// an invalid level that the resolver reports and clears.
func (l *Level) UnmarshalJSON(data []byte) error {
	var n *int
	if err := json.Unmarshal(data, &n); err != nil {
		*l = invalidLevel
		return nil
	}
	if n == nil {
		*l = 0
		return nil
	}
	*l = Level(*n)
	return nil
}

// UnmarshalYAML follows UnmarshalJSON.
func (l *Level) UnmarshalYAML(node *yaml.Node) error {
	var n *int
	if err := node.Decode(&n); err != nil {
		*l = invalidLevel
		return nil
	}
	if n == nil {
		*l = 0
		return nil
	}
	*l = Level(*n)
	return nil
}

var levelKeywords = []string{
	"deep clone",
	"render",
	"quantize",
	"snapshot",
	"interpolate",
	"randomize",
	"assign",
	"recall",
	"limiter",
	"eq",
	"table",
	"instrument",
	"first",
	"when",
	"with",
	"includes",
	"selection",
}

// InferLevel scores how hard a recipe is from its shape and description.
func InferLevel(seq keypress.Sequence, description string) Level {
	norm := func(s string) string {
		s = strings.ToLower(s)
		if b, ok := keypress.ParseBaseKey(s); ok && b.IsDirectional() {
			return "dir"
		}
		return s
	}

	var tokens []string
	var combos, bigCombos int
	for _, t := range seq {
		if c, ok := t.(keypress.Combo); ok {
			combos++
			if len(c) >= 3 {
				bigCombos++
			}
			for _, k := range c {
				tokens = append(tokens, norm(k.String()))
			}
			continue
		}
		tokens = append(tokens, norm(t.String()))
	}

	var alts, seqs, rep2, rep3, holds, advanced int
	unique := make(map[string]bool)
	for _, t := range tokens {
		switch t {
		case "or":
			alts++
		case "after", "before":
			seqs++
		case "2x":
			rep2++
		case "3x":
			rep3++
		case "touch", "midi":
			advanced++
		}
		if strings.Contains(t, "hold") {
			holds++
		}
		switch t {
		case "or", "after", "before", "2x", "3x":
		default:
			unique[t] = true
		}
	}

	desc := strings.ToLower(description)
	hits := 0
	for _, kw := range levelKeywords {
		if strings.Contains(desc, kw) {
			hits++
		}
	}

	score := 0.0
	score += float64(combos) * 0.9
	score += float64(bigCombos) * 1.1
	score += float64(alts) * 0.05
	score += float64(seqs) * 0.8
	score += float64(rep2) * 0.5
	score += float64(rep3) * 0.9
	score += float64(holds) * 0.9
	score += float64(advanced) * 1.1
	if len(unique) >= 5 {
		score += 0.5
	}
	if len(desc) > 200 {
		score += 0.5
	}
	if len(desc) > 360 {
		score += 0.6
	}
	score += float64(min(3, hits)) * 0.35

	switch {
	case score >= 3.1:
		return 3
	case score >= 1.9:
		return 2
	}
	return 1
}
