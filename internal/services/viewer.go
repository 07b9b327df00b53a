package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/m8keys/internal/animation"
	"github.com/abrezinsky/m8keys/internal/dataset"
	"github.com/abrezinsky/m8keys/internal/errors"
	"github.com/abrezinsky/m8keys/internal/keypress"
	"github.com/abrezinsky/m8keys/internal/logger"
	"github.com/abrezinsky/m8keys/internal/lookup"
	"github.com/abrezinsky/m8keys/internal/timeline"
)

// Share modes
const (
	ModeFull = "full"
	ModeMin  = "min"
)

// ViewerService answers the queries behind the HTTP API and the terminal viewer
type ViewerService struct {
	log       logger.Logger
	data      DatasetProvider
	anim      animation.Config
	shareBase string
}

// NewViewerService creates a new ViewerService
func NewViewerService(log logger.Logger, data DatasetProvider, anim animation.Config, shareBase string) *ViewerService {
	return &ViewerService{log: log, data: data, anim: anim, shareBase: shareBase}
}

// ActivityQuery narrows a screen's activity listing
type ActivityQuery struct {
	Levels lookup.Levels
	// Key highlights activities using this base key
	Key string
	// Routed is the selected activity; it survives level filtering
	Routed string
}

// ActivityEntry is an activity as listed under a category
type ActivityEntry struct {
	*dataset.Activity
	EffectiveLevel dataset.Level `json:"effectiveLevel"`
	MatchedKey     string        `json:"matchedKey,omitempty"`
	Routed         bool          `json:"routed,omitempty"`
}

// ActivityGroup is a category heading with its filtered entries
type ActivityGroup struct {
	Category   dataset.Category `json:"category"`
	Activities []ActivityEntry  `json:"activities"`
}

// ScreenActivities is the activity panel of one screen
type ScreenActivities struct {
	Screen   *dataset.Screen `json:"screen"`
	RoutedID string          `json:"routedId,omitempty"`
	Groups   []ActivityGroup `json:"groups"`
}

// LayoutElement is one rendered keypress element, with a timeline for presses
type LayoutElement struct {
	Kind     string             `json:"kind"`
	Keys     []keypress.Key     `json:"keys,omitempty"`
	Label    string             `json:"label,omitempty"`
	Timeline *timeline.Timeline `json:"timeline,omitempty"`
}

// ActivityLayout is everything needed to draw an activity's key visual
type ActivityLayout struct {
	Activity *dataset.Activity `json:"activity"`
	Elements []LayoutElement   `json:"elements"`
	CycleMs  int64             `json:"cycleMs"`
	Beats    int               `json:"beats"`
	ShareURL string            `json:"shareUrl,omitempty"`
}

// Dataset returns the resolved dataset
func (s *ViewerService) Dataset(ctx context.Context) (*dataset.Dataset, error) {
	return s.data.Dataset(ctx)
}

// Screens returns every screen in source order
func (s *ViewerService) Screens(ctx context.Context) ([]dataset.Screen, error) {
	h, err := s.data.Helper(ctx)
	if err != nil {
		return nil, err
	}
	return h.Screens(), nil
}

// Screen resolves a screen by id or alias
func (s *ViewerService) Screen(ctx context.Context, idOrAlias string) (*dataset.Screen, error) {
	h, err := s.data.Helper(ctx)
	if err != nil {
		return nil, err
	}
	return screenOf(h, idOrAlias)
}

func screenOf(h *lookup.Helper, idOrAlias string) (*dataset.Screen, error) {
	screen, ok := h.ResolveScreen(idOrAlias)
	if !ok {
		return nil, errors.NotFoundf("screen %q not found", idOrAlias)
	}
	return screen, nil
}

// Categories lists categories seen on screens ("screen") or activities ("activity", the default)
func (s *ViewerService) Categories(ctx context.Context, kind string) ([]dataset.Category, error) {
	h, err := s.data.Helper(ctx)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "screen":
		return h.ScreenCategories(), nil
	case "", "activity":
		return h.ActivityCategories(), nil
	}
	return nil, errors.InvalidInputf("unknown category kind %q", kind)
}

// ScreenCategories lists the categories of a screen's activities
func (s *ViewerService) ScreenCategories(ctx context.Context, screenID string) ([]dataset.Category, error) {
	h, err := s.data.Helper(ctx)
	if err != nil {
		return nil, err
	}
	screen, err := screenOf(h, screenID)
	if err != nil {
		return nil, err
	}
	return h.ActivityCategoriesForScreen(screen), nil
}

// ScreenActivities groups a screen's activities by category, applies the
// level filter and marks key matches and the routed activity.
func (s *ViewerService) ScreenActivities(ctx context.Context, screenID string, q ActivityQuery) (*ScreenActivities, error) {
	h, err := s.data.Helper(ctx)
	if err != nil {
		return nil, err
	}
	screen, err := screenOf(h, screenID)
	if err != nil {
		return nil, err
	}

	out := &ScreenActivities{Screen: screen, Groups: []ActivityGroup{}}
	if routed, ok := h.ResolveActivityForScreen(screen, q.Routed); ok {
		out.RoutedID = routed.ID
	}

	for _, g := range h.GroupsForScreen(screen) {
		group := ActivityGroup{Category: g.Category, Activities: []ActivityEntry{}}
		for _, a := range lookup.FilterByLevels(g.Activities, q.Levels, out.RoutedID) {
			entry := ActivityEntry{
				Activity:       a,
				EffectiveLevel: a.EffectiveLevel(),
				Routed:         a.ID == out.RoutedID,
			}
			if q.Key != "" {
				if base, ok := lookup.MatchKey(a, q.Key); ok {
					entry.MatchedKey = base.String()
				}
			}
			group.Activities = append(group.Activities, entry)
		}
		out.Groups = append(out.Groups, group)
	}
	return out, nil
}

// Activity resolves an activity within a screen
func (s *ViewerService) Activity(ctx context.Context, screenID, activityID string) (*dataset.Activity, error) {
	h, err := s.data.Helper(ctx)
	if err != nil {
		return nil, err
	}
	screen, err := screenOf(h, screenID)
	if err != nil {
		return nil, err
	}
	a, ok := h.ResolveActivityForScreen(screen, activityID)
	if !ok {
		return nil, errors.NotFoundf("activity %q not found on screen %q", activityID, screen.ID)
	}
	return a, nil
}

// FindActivity resolves an activity across the whole dataset
func (s *ViewerService) FindActivity(ctx context.Context, idOrAlias string) (*dataset.Activity, error) {
	h, err := s.data.Helper(ctx)
	if err != nil {
		return nil, err
	}
	a, ok := h.ResolveActivity(idOrAlias)
	if !ok {
		return nil, errors.NotFoundf("activity %q not found", idOrAlias)
	}
	return a, nil
}

// ActivityLayout lays out the activity's keypress recipe with one timeline per press
func (s *ViewerService) ActivityLayout(ctx context.Context, screenID, activityID string) (*ActivityLayout, error) {
	a, err := s.Activity(ctx, screenID, activityID)
	if err != nil {
		return nil, err
	}

	out := &ActivityLayout{
		Activity: a,
		Elements: []LayoutElement{},
		CycleMs:  s.anim.Cycle.Milliseconds(),
		Beats:    s.anim.Beats,
	}
	if s.shareBase != "" {
		out.ShareURL = ShareURL(s.shareBase, a.ScreenID, a.ID, ModeFull)
	}
	for _, el := range keypress.Layout(a.Keypress) {
		le := LayoutElement{Kind: el.Kind.String(), Keys: el.Keys, Label: el.Label}
		if el.Kind == keypress.ElementPress {
			tl := timeline.Render(el.Keys)
			le.Timeline = &tl
		}
		out.Elements = append(out.Elements, le)
	}
	return out, nil
}

// ShareURL builds the deep link of an activity: <base>/<screen>/<activity>/<mode>.
// Unknown modes fall back to full.
func ShareURL(base, screenID, activityID, mode string) string {
	if mode != ModeMin {
		mode = ModeFull
	}
	return fmt.Sprintf("%s/%s/%s/%s", strings.TrimSuffix(base, "/"), screenID, activityID, mode)
}

// ShareQR renders the activity's share link as a 256px PNG
func (s *ViewerService) ShareQR(ctx context.Context, screenID, activityID, mode string) ([]byte, error) {
	if s.shareBase == "" {
		return nil, ErrNoShareBase
	}
	a, err := s.Activity(ctx, screenID, activityID)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(ShareURL(s.shareBase, a.ScreenID, a.ID, mode), qrcode.Medium, 256)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return png, nil
}

// StaleRefs returns references dropped while resolving the dataset
func (s *ViewerService) StaleRefs(ctx context.Context) ([]dataset.StaleRef, error) {
	if _, err := s.data.Dataset(ctx); err != nil {
		return nil, err
	}
	return s.data.StaleRefs(), nil
}

// Timeline renders a comma separated key list such as "opt,edit-hold"
func (s *ViewerService) Timeline(keys string) (*timeline.Timeline, error) {
	parsed, err := ParseKeyList(keys)
	if err != nil {
		return nil, err
	}
	tl := timeline.Render(parsed)
	return &tl, nil
}

// Animation returns the shared cycle timing
func (s *ViewerService) Animation() animation.Config {
	return s.anim
}

// ParseKeyList parses a comma separated list of keys
func ParseKeyList(s string) ([]keypress.Key, error) {
	var keys []keypress.Key
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, err := keypress.ParseKey(part)
		if err != nil {
			return nil, errors.InvalidInputf("unknown key %q", part)
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	return keys, nil
}
