package keypress

// Device key bitmask bits for the action keys.
const (
	MaskEdit  = 0x01
	MaskOpt   = 0x02
	MaskPlay  = 0x08
	MaskShift = 0x10
)

var maskBits = []struct {
	base BaseKey
	bit  int
}{
	{Opt, MaskOpt},
	{Shift, MaskShift},
	{Edit, MaskEdit},
	{Play, MaskPlay},
}

// FromMask returns the action keys held in a device key bitmask, in
// highlight priority order (opt, shift, edit, play).
func FromMask(mask int) []BaseKey {
	var keys []BaseKey
	for _, mb := range maskBits {
		if mask&mb.bit != 0 {
			keys = append(keys, mb.base)
		}
	}
	return keys
}

func maskHas(mask int, base BaseKey) bool {
	for _, mb := range maskBits {
		if mb.base == base {
			return mask&mb.bit != 0
		}
	}
	return false
}

// Highlighter latches the first newly pressed action key and clears it once
// that key is released. It is not safe for concurrent use.
type Highlighter struct {
	prev    int
	active  BaseKey
	latched bool
}

// Update feeds the next mask and returns the highlighted key, if any.
func (h *Highlighter) Update(mask int) (BaseKey, bool) {
	defer func() { h.prev = mask }()

	if h.latched {
		if maskHas(mask, h.active) {
			return h.active, true
		}
		h.latched = false
		return 0, false
	}

	for _, mb := range maskBits {
		if h.prev&mb.bit == 0 && mask&mb.bit != 0 {
			h.active = mb.base
			h.latched = true
			return h.active, true
		}
	}
	return 0, false
}

// Current returns the highlighted key without changing state.
func (h *Highlighter) Current() (BaseKey, bool) {
	return h.active, h.latched
}
