package dataset

import (
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/abrezinsky/m8keys/internal/keypress"
	"github.com/abrezinsky/m8keys/internal/logger"
)

func strPtr(s string) *string { return &s }

func seq(t *testing.T, tokens ...string) keypress.Sequence {
	t.Helper()
	out := make(keypress.Sequence, len(tokens))
	for i, s := range tokens {
		tok, err := keypress.ParseToken(s)
		if err != nil {
			t.Fatalf("bad token %q: %v", s, err)
		}
		out[i] = tok
	}
	return out
}

func newTestResolver(opts Options) (*Resolver, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewResolver(logger.NewWithWriter(&buf, slog.LevelDebug), opts), &buf
}

func fixture(t *testing.T) *CompactDataset {
	return &CompactDataset{
		Categories: []Category{{ID: "global", Name: "Global"}, {ID: "edit", Name: "Editing"}},
		Activities: []ActivityTemplate{
			{ID: "play-pause", Name: "Play / pause", CategoryIDs: []string{"global"}, Keypress: seq(t, "play"), Description: "Toggle playback"},
			{ID: "copy", Name: "Copy", CategoryIDs: []string{"edit"}, Keypress: keypress.Sequence{keypress.Combo{keypress.MustParseKey("shift"), keypress.MustParseKey("opt")}}, Description: "Copy selection", Level: 2},
		},
		Screens: []ScreenData{
			{ID: "song", Name: "Song", Aliases: []string{"songview"}, Activities: []ScreenActivityRef{Ref("play-pause"), Ref("copy")}},
			{ID: "phrase", Name: "Phrase", MediaFolder: "phr", Activities: []ScreenActivityRef{
				{ID: "copy", Media: strPtr("copy-phrase"), Name: strPtr("Copy steps"), Level: 3},
				Ref("play-pause"),
			}},
		},
	}
}

func TestResolve_ConcreteScenario(t *testing.T) {
	c := &CompactDataset{
		Activities: []ActivityTemplate{{ID: "play-pause", Keypress: seq(t, "play"), CategoryIDs: []string{"global"}, Description: "Toggle playback"}},
		Screens:    []ScreenData{{ID: "song", Activities: []ScreenActivityRef{Ref("play-pause")}}},
	}
	r, _ := newTestResolver(Options{})
	ds, stale := r.Resolve(c)

	if len(stale) != 0 {
		t.Errorf("expected no stale refs, got %v", stale)
	}
	if len(ds.Activities) != 1 {
		t.Fatalf("expected 1 activity, got %d", len(ds.Activities))
	}
	a := ds.Activities[0]
	if a.ID != "play-pause__song" {
		t.Errorf("expected id play-pause__song, got %s", a.ID)
	}
	want := Media{Video: "/assets/activity/song/play-pause.mp4", EventsURL: "/assets/activity/song/play-pause.json"}
	if a.Media != want {
		t.Errorf("expected media %+v, got %+v", want, a.Media)
	}
	if !reflect.DeepEqual(a.Aliases, []string{"play-pause"}) {
		t.Errorf("expected aliases [play-pause], got %v", a.Aliases)
	}
	if !reflect.DeepEqual(ds.Screens[0].ActivityIDs, []string{"play-pause__song"}) {
		t.Errorf("unexpected screen activity ids %v", ds.Screens[0].ActivityIDs)
	}
}

func TestResolve_OverridePrecedence(t *testing.T) {
	r, _ := newTestResolver(Options{})
	ds, _ := r.Resolve(fixture(t))

	var overridden, plain Activity
	for _, a := range ds.Activities {
		switch a.ID {
		case "copy__phrase":
			overridden = a
		case "copy__song":
			plain = a
		}
	}

	if overridden.Name != "Copy steps" {
		t.Errorf("expected overridden name, got %q", overridden.Name)
	}
	if overridden.Description != "Copy selection" {
		t.Errorf("expected template description, got %q", overridden.Description)
	}
	if overridden.Level != 3 {
		t.Errorf("expected overridden level 3, got %d", overridden.Level)
	}
	if overridden.Media.Video != "/assets/activity/phr/copy-phrase.mp4" {
		t.Errorf("expected media from folder and slug override, got %s", overridden.Media.Video)
	}

	if plain.Name != "Copy" || plain.Level != 2 || plain.Description != "Copy selection" {
		t.Errorf("expected template values, got %+v", plain)
	}
	if plain.TemplateID != "copy" || plain.ScreenID != "song" {
		t.Errorf("expected template/screen ids, got %s/%s", plain.TemplateID, plain.ScreenID)
	}
}

func TestResolve_DanglingReference(t *testing.T) {
	c := fixture(t)
	c.Screens[0].Activities = []ScreenActivityRef{Ref("play-pause"), Ref("ghost"), Ref("copy")}

	r, buf := newTestResolver(Options{})
	ds, stale := r.Resolve(c)

	if !reflect.DeepEqual(ds.Screens[0].ActivityIDs, []string{"play-pause__song", "copy__song"}) {
		t.Errorf("expected dangling ref omitted, got %v", ds.Screens[0].ActivityIDs)
	}
	if len(stale) != 1 || stale[0] != (StaleRef{ScreenID: "song", ActivityID: "ghost"}) {
		t.Errorf("expected one stale ref, got %v", stale)
	}
	if !strings.Contains(buf.String(), "Unknown activity in screen") || !strings.Contains(buf.String(), "activity=ghost") {
		t.Errorf("expected warning diagnostic, got: %s", buf.String())
	}
}

func TestResolve_Idempotent(t *testing.T) {
	r, _ := newTestResolver(Options{})
	c := fixture(t)
	first, _ := r.Resolve(c)
	second, _ := r.Resolve(c)
	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical datasets from repeated resolution")
	}
}

func TestResolve_UniqueIDs(t *testing.T) {
	r, _ := newTestResolver(Options{})
	ds, _ := r.Resolve(fixture(t))

	seen := map[string]bool{}
	for _, a := range ds.Activities {
		if seen[a.ID] {
			t.Errorf("duplicate id %s", a.ID)
		}
		seen[a.ID] = true
	}
	if len(ds.Activities) != 4 {
		t.Errorf("expected 4 activities, got %d", len(ds.Activities))
	}
}

func TestResolve_PreservesScreenOrder(t *testing.T) {
	r, _ := newTestResolver(Options{})
	ds, _ := r.Resolve(fixture(t))

	if ds.Screens[0].ID != "song" || ds.Screens[1].ID != "phrase" {
		t.Errorf("expected source screen order, got %s,%s", ds.Screens[0].ID, ds.Screens[1].ID)
	}
	if ds.Screens[1].MediaFolder != "phr" || ds.Screens[0].MediaFolder != "song" {
		t.Errorf("unexpected media folders %s/%s", ds.Screens[0].MediaFolder, ds.Screens[1].MediaFolder)
	}
	if !reflect.DeepEqual(ds.Screens[1].ActivityIDs, []string{"copy__phrase", "play-pause__phrase"}) {
		t.Errorf("unexpected order %v", ds.Screens[1].ActivityIDs)
	}
}

func TestResolve_DuplicateReferenceKeepsBothEntries(t *testing.T) {
	c := fixture(t)
	c.Screens[0].Activities = []ScreenActivityRef{Ref("copy"), {ID: "copy", Name: strPtr("Copy again")}}

	r, buf := newTestResolver(Options{})
	ds, _ := r.Resolve(c)

	if !reflect.DeepEqual(ds.Screens[0].ActivityIDs, []string{"copy__song", "copy__song"}) {
		t.Errorf("expected both positional entries, got %v", ds.Screens[0].ActivityIDs)
	}
	if !strings.Contains(buf.String(), "Duplicate activity reference in screen") {
		t.Errorf("expected duplicate diagnostic, got: %s", buf.String())
	}
}

func TestResolve_DoesNotMutateInput(t *testing.T) {
	c := fixture(t)
	r, _ := newTestResolver(Options{})
	ds, _ := r.Resolve(c)

	ds.Activities[0].CategoryIDs[0] = "mutated"
	if c.Activities[0].CategoryIDs[0] != "global" {
		t.Error("expected template categories to be independent of resolved copies")
	}
}

func TestResolve_InferLevels(t *testing.T) {
	c := &CompactDataset{
		Activities: []ActivityTemplate{
			{ID: "big", Keypress: keypress.Sequence{keypress.Combo{keypress.MustParseKey("shift"), keypress.MustParseKey("opt"), keypress.MustParseKey("edit")}}},
			{ID: "set", Keypress: seq(t, "play"), Level: 3},
		},
		Screens: []ScreenData{{ID: "s", Activities: []ScreenActivityRef{Ref("big"), Ref("set")}}},
	}

	r, _ := newTestResolver(Options{})
	ds, _ := r.Resolve(c)
	if ds.Activities[0].Level != 0 {
		t.Errorf("expected no level without inference, got %d", ds.Activities[0].Level)
	}

	r, _ = newTestResolver(Options{InferLevels: true})
	ds, _ = r.Resolve(c)
	if ds.Activities[0].Level != 2 {
		t.Errorf("expected inferred level 2, got %d", ds.Activities[0].Level)
	}
	if ds.Activities[1].Level != 3 {
		t.Errorf("expected explicit level kept, got %d", ds.Activities[1].Level)
	}
}

func TestResolve_ClearsInvalidLevels(t *testing.T) {
	c := &CompactDataset{
		Activities: []ActivityTemplate{
			{ID: "high", Keypress: seq(t, "play"), Level: 4},
			{ID: "fine", Keypress: seq(t, "opt"), Level: 2},
		},
		Screens: []ScreenData{{ID: "s", Activities: []ScreenActivityRef{
			Ref("high"),
			{ID: "fine", Level: invalidLevel},
		}}},
	}

	r, buf := newTestResolver(Options{})
	ds, stale := r.Resolve(c)
	if len(stale) != 0 || len(ds.Activities) != 2 {
		t.Fatalf("expected both activities kept, got %d (stale %v)", len(ds.Activities), stale)
	}
	if ds.Activities[0].Level != 0 {
		t.Errorf("expected invalid template level cleared, got %d", ds.Activities[0].Level)
	}
	if ds.Activities[1].Level != 2 {
		t.Errorf("expected invalid override to fall back to template level, got %d", ds.Activities[1].Level)
	}
	if strings.Count(buf.String(), "Invalid activity level") != 2 {
		t.Errorf("expected two level diagnostics, got %q", buf.String())
	}
	if c.Activities[0].Level != 4 {
		t.Error("expected input templates untouched")
	}
}

func TestResolve_WarnsOnUnknownKeypressTokens(t *testing.T) {
	c := &CompactDataset{
		Activities: []ActivityTemplate{
			{ID: "swap", Keypress: keypress.Sequence{keypress.MustParseKey("edit"), keypress.Unknown("before"), keypress.MustParseKey("opt")}},
		},
		Screens: []ScreenData{{ID: "s", Activities: []ScreenActivityRef{Ref("swap")}}},
	}

	r, buf := newTestResolver(Options{})
	ds, _ := r.Resolve(c)
	if len(ds.Activities) != 1 {
		t.Fatalf("expected activity kept, got %d", len(ds.Activities))
	}
	if len(ds.Activities[0].Keypress) != 3 {
		t.Errorf("expected keypress kept whole, got %v", ds.Activities[0].Keypress)
	}
	if !strings.Contains(buf.String(), "Unknown keypress token") || !strings.Contains(buf.String(), "before") {
		t.Errorf("expected unknown token diagnostic, got %q", buf.String())
	}
}

func TestMerge(t *testing.T) {
	tmpl := ActivityTemplate{ID: "t", Name: "Name", Description: "Desc", Level: 1}

	got := Merge(tmpl, Overrides{})
	if got.Name != "Name" || got.Description != "Desc" || got.Level != 1 || got.TemplateID != "t" {
		t.Errorf("expected template values, got %+v", got)
	}

	got = Merge(tmpl, Overrides{Name: strPtr("N2"), Description: strPtr(""), Level: 3})
	if got.Name != "N2" || got.Description != "" || got.Level != 3 {
		t.Errorf("expected override values, got %+v", got)
	}
}

func TestEffectiveLevel(t *testing.T) {
	if (Activity{}).EffectiveLevel() != 1 {
		t.Error("expected unset level to count as 1")
	}
	if (Activity{Level: 3}).EffectiveLevel() != 3 {
		t.Error("expected explicit level")
	}
}
