package lookup

import (
	"slices"
	"strconv"

	"github.com/abrezinsky/m8keys/internal/dataset"
)

// Levels is a set of difficulty levels. Empty means no filtering.
type Levels map[dataset.Level]bool

// ParseLevels reads a query value such as "13". Characters other than
// 1, 2 and 3 are ignored.
func ParseLevels(s string) Levels {
	out := Levels{}
	for _, ch := range s {
		switch ch {
		case '1', '2', '3':
			out[dataset.Level(ch-'0')] = true
		}
	}
	return out
}

// String renders the set sorted, e.g. "13".
func (l Levels) String() string {
	var nums []int
	for lvl, on := range l {
		if on {
			nums = append(nums, int(lvl))
		}
	}
	slices.Sort(nums)
	b := make([]byte, 0, len(nums))
	for _, n := range nums {
		b = strconv.AppendInt(b, int64(n), 10)
	}
	return string(b)
}

// FilterByLevels keeps activities whose effective level is in levels. An
// empty set keeps everything, and keepID is always kept.
func FilterByLevels(acts []*dataset.Activity, levels Levels, keepID string) []*dataset.Activity {
	if len(levels) == 0 {
		return acts
	}
	out := make([]*dataset.Activity, 0, len(acts))
	for _, a := range acts {
		if (keepID != "" && a.ID == keepID) || levels[a.EffectiveLevel()] {
			out = append(out, a)
		}
	}
	return out
}
