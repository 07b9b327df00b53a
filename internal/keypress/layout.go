package keypress

// ElementKind distinguishes the pieces of a laid-out sequence.
type ElementKind int

const (
	ElementPress ElementKind = iota
	ElementConnector
	ElementRepeat
)

func (k ElementKind) String() string {
	switch k {
	case ElementPress:
		return "press"
	case ElementConnector:
		return "connector"
	case ElementRepeat:
		return "repeat"
	}
	return "unknown"
}

// Element is one renderable item of a sequence.
type Element struct {
	Kind ElementKind
	// Keys holds the press group with any pending repeat already applied.
	Keys      []Key
	Connector Connector
	Repeat    Repeat
	Label     string
}

// Layout walks a sequence and emits press groups, connectors and repeat marks.
// Unknown tokens are skipped. A repeat mark applies to the next press group only; keys in that group
// without an explicit modifier take the matching Nx or Nx-not-first modifier.
func Layout(seq Sequence) []Element {
	elements := make([]Element, 0, len(seq))
	var pending Repeat

	for _, t := range seq {
		switch v := t.(type) {
		case Connector:
			elements = append(elements, Element{Kind: ElementConnector, Connector: v, Label: v.Label()})
		case Repeat:
			pending = v
			elements = append(elements, Element{Kind: ElementRepeat, Repeat: v, Label: v.String()})
		case Key:
			elements = append(elements, press([]Key{v}, pending))
			pending = 0
		case Combo:
			elements = append(elements, press(v, pending))
			pending = 0
		}
	}
	return elements
}

func press(keys []Key, repeat Repeat) Element {
	out := make([]Key, len(keys))
	for i, k := range keys {
		if repeat > 0 && !k.HasModifier() {
			k.Modifier = Repeated(int(repeat), i == 0)
		}
		out[i] = k
	}
	return Element{Kind: ElementPress, Keys: out, Repeat: repeat}
}
