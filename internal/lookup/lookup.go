// Package lookup indexes a resolved dataset and answers the screen, activity
// and category queries the viewer surfaces make. Misses are ordinary results,
// never errors.
package lookup

import (
	"strings"
	"sync"

	"github.com/abrezinsky/m8keys/internal/dataset"
	"github.com/abrezinsky/m8keys/internal/keypress"
)

// Helper answers queries over one dataset. It never mutates the dataset and
// is safe for concurrent use once built.
type Helper struct {
	ds         *dataset.Dataset
	screenByID map[string]*dataset.Screen
	// later duplicates overwrite earlier ones
	activityByID map[string]*dataset.Activity
	categoryByID map[string]dataset.Category

	screenCategories   []dataset.Category
	activityCategories []dataset.Category
}

// New builds the indices for ds.
func New(ds *dataset.Dataset) *Helper {
	h := &Helper{
		ds:           ds,
		screenByID:   make(map[string]*dataset.Screen, len(ds.Screens)),
		activityByID: make(map[string]*dataset.Activity, len(ds.Activities)),
		categoryByID: make(map[string]dataset.Category, len(ds.Categories)),
	}
	for i := range ds.Screens {
		h.screenByID[strings.ToLower(ds.Screens[i].ID)] = &ds.Screens[i]
	}
	for i := range ds.Activities {
		h.activityByID[strings.ToLower(ds.Activities[i].ID)] = &ds.Activities[i]
	}
	for _, c := range ds.Categories {
		if _, ok := h.categoryByID[c.ID]; !ok {
			h.categoryByID[c.ID] = c
		}
	}

	sc := newCategorySet(h.categoryByID)
	for _, s := range ds.Screens {
		sc.add(s.CategoryIDs...)
	}
	h.screenCategories = sc.out

	ac := newCategorySet(h.categoryByID)
	for _, a := range ds.Activities {
		ac.add(a.CategoryIDs...)
	}
	h.activityCategories = ac.out
	return h
}

// Dataset returns the dataset the helper indexes.
func (h *Helper) Dataset() *dataset.Dataset {
	return h.ds
}

// Screens returns every screen in source order.
func (h *Helper) Screens() []dataset.Screen {
	return h.ds.Screens
}

// ResolveScreen matches a screen id first, then any alias, ignoring case.
func (h *Helper) ResolveScreen(idOrAlias string) (*dataset.Screen, bool) {
	if idOrAlias == "" {
		return nil, false
	}
	t := strings.ToLower(idOrAlias)
	if s, ok := h.screenByID[t]; ok {
		return s, true
	}
	for i := range h.ds.Screens {
		if hasFold(h.ds.Screens[i].Aliases, t) {
			return &h.ds.Screens[i], true
		}
	}
	return nil, false
}

// ResolveActivity matches a composite id first, then the first activity in
// dataset order carrying the alias, ignoring case.
func (h *Helper) ResolveActivity(idOrAlias string) (*dataset.Activity, bool) {
	if idOrAlias == "" {
		return nil, false
	}
	t := strings.ToLower(idOrAlias)
	if a, ok := h.activityByID[t]; ok {
		return a, true
	}
	for i := range h.ds.Activities {
		if hasFold(h.ds.Activities[i].Aliases, t) {
			return &h.ds.Activities[i], true
		}
	}
	return nil, false
}

// ResolveActivityForScreen matches within the screen's own activities only,
// by composite id or alias.
func (h *Helper) ResolveActivityForScreen(screen *dataset.Screen, idOrAlias string) (*dataset.Activity, bool) {
	if screen == nil || idOrAlias == "" {
		return nil, false
	}
	t := strings.ToLower(idOrAlias)
	for _, a := range h.ActivitiesForScreen(screen) {
		if strings.ToLower(a.ID) == t || hasFold(a.Aliases, t) {
			return a, true
		}
	}
	return nil, false
}

// ActivitiesForScreen returns the screen's activities in declared order.
func (h *Helper) ActivitiesForScreen(screen *dataset.Screen) []*dataset.Activity {
	if screen == nil {
		return nil
	}
	out := make([]*dataset.Activity, 0, len(screen.ActivityIDs))
	for _, id := range screen.ActivityIDs {
		if a, ok := h.activityByID[strings.ToLower(id)]; ok {
			out = append(out, a)
		}
	}
	return out
}

// ScreenCategories lists categories used by any screen, first-seen order.
func (h *Helper) ScreenCategories() []dataset.Category {
	return h.screenCategories
}

// ActivityCategories lists categories used by any activity, first-seen order.
func (h *Helper) ActivityCategories() []dataset.Category {
	return h.activityCategories
}

// ActivityCategoriesForScreen lists categories used by the screen's
// activities, first-seen order.
func (h *Helper) ActivityCategoriesForScreen(screen *dataset.Screen) []dataset.Category {
	set := newCategorySet(h.categoryByID)
	for _, a := range h.ActivitiesForScreen(screen) {
		set.add(a.CategoryIDs...)
	}
	return set.out
}

// Group is a category heading with the screen activities filed under it.
type Group struct {
	Category   dataset.Category    `json:"category"`
	Activities []*dataset.Activity `json:"activities"`
}

// GroupsForScreen files the screen's activities under each of its activity
// categories. An activity with several categories appears in each group.
func (h *Helper) GroupsForScreen(screen *dataset.Screen) []Group {
	acts := h.ActivitiesForScreen(screen)
	cats := h.ActivityCategoriesForScreen(screen)
	groups := make([]Group, 0, len(cats))
	for _, c := range cats {
		g := Group{Category: c}
		for _, a := range acts {
			if contains(a.CategoryIDs, c.ID) {
				g.Activities = append(g.Activities, a)
			}
		}
		groups = append(groups, g)
	}
	return groups
}

type categorySet struct {
	byID map[string]dataset.Category
	seen map[string]bool
	out  []dataset.Category
}

func newCategorySet(byID map[string]dataset.Category) *categorySet {
	return &categorySet{byID: byID, seen: make(map[string]bool), out: []dataset.Category{}}
}

func (s *categorySet) add(ids ...string) {
	for _, id := range ids {
		if s.seen[id] {
			continue
		}
		s.seen[id] = true
		if c, ok := s.byID[id]; ok {
			s.out = append(s.out, c)
		}
	}
}

func hasFold(list []string, lower string) bool {
	for _, v := range list {
		if strings.ToLower(v) == lower {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// Memo caches the helper for the most recent dataset pointer.
type Memo struct {
	mu     sync.Mutex
	ds     *dataset.Dataset
	helper *Helper
}

// Get returns the helper for ds, rebuilding only when ds changes.
func (m *Memo) Get(ds *dataset.Dataset) *Helper {
	if ds == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ds != ds {
		m.ds = ds
		m.helper = New(ds)
	}
	return m.helper
}

// MatchKey reports whether the activity presses the base key of query.
// Modifiers in the query are ignored ("opt-hold" matches "opt").
func MatchKey(a *dataset.Activity, query string) (keypress.BaseKey, bool) {
	base, ok := baseOf(query)
	if !ok {
		return 0, false
	}
	return base, a.Keypress.Uses(base)
}

func baseOf(query string) (keypress.BaseKey, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if i := strings.IndexByte(q, '-'); i >= 0 {
		q = q[:i]
	}
	return keypress.ParseBaseKey(q)
}
