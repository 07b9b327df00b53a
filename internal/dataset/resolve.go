package dataset

import (
	"slices"

	"github.com/abrezinsky/m8keys/internal/logger"
)

// Overrides are the per-screen fields that win over the template.
type Overrides struct {
	Name        *string
	Description *string
	Level       Level
}

// Merge applies overrides to a template, one rule per field. Identity,
// aliases and media are left to the caller.
func Merge(t ActivityTemplate, o Overrides) Activity {
	a := Activity{
		TemplateID:  t.ID,
		Name:        t.Name,
		CategoryIDs: slices.Clone(t.CategoryIDs),
		Keypress:    t.Keypress,
		Description: t.Description,
		Level:       t.Level,
	}
	if o.Name != nil {
		a.Name = *o.Name
	}
	if o.Description != nil {
		a.Description = *o.Description
	}
	if o.Level != 0 {
		a.Level = o.Level
	}
	return a
}

// CompositeID is the unique id of a template resolved on a screen.
func CompositeID(templateID, screenID string) string {
	return templateID + "__" + screenID
}

// MediaFor builds the media paths for a slug inside a screen's media folder.
func MediaFor(mediaFolder, slug string) Media {
	base := "/assets/activity/" + mediaFolder + "/" + slug
	return Media{
		Video:     base + ".mp4",
		EventsURL: base + ".json",
	}
}

// StaleRef is a screen reference to a template that does not exist.
type StaleRef struct {
	ScreenID   string `json:"screen"`
	ActivityID string `json:"activity"`
}

// Options tune resolution.
type Options struct {
	// InferLevels scores activities that have no level from either the
	// template or the override.
	InferLevels bool
}

// Resolver expands compact datasets.
type Resolver struct {
	log  logger.Logger
	opts Options
}

// NewResolver creates a Resolver that reports diagnostics to log.
func NewResolver(log logger.Logger, opts Options) *Resolver {
	return &Resolver{log: log, opts: opts}
}

// Resolve expands every screen's references into activities. Stale
// references are skipped, logged and returned; they never fail the pass.
func (r *Resolver) Resolve(c *CompactDataset) (*Dataset, []StaleRef) {
	templates := make(map[string]ActivityTemplate, len(c.Activities))
	for _, t := range c.Activities {
		for _, u := range t.Keypress.Unknown() {
			r.log.Warn("Unknown keypress token", "activity", t.ID, "token", string(u))
		}
		if t.Level.IsSet() && !t.Level.Valid() {
			r.log.Warn("Invalid activity level", "activity", t.ID, "level", int(t.Level))
			t.Level = 0
		}
		templates[t.ID] = t
	}

	ds := &Dataset{
		Screens:    make([]Screen, 0, len(c.Screens)),
		Activities: []Activity{},
		Categories: c.Categories,
		Keys:       c.Keys,
		Assets:     c.Assets,
	}
	var stale []StaleRef

	for _, sd := range c.Screens {
		mediaFolder := sd.MediaFolder
		if mediaFolder == "" {
			mediaFolder = sd.ID
		}
		screen := Screen{
			ID:          sd.ID,
			Name:        sd.Name,
			Aliases:     sd.Aliases,
			CategoryIDs: sd.CategoryIDs,
			Description: sd.Description,
			Img:         sd.Img,
			MediaFolder: mediaFolder,
			ActivityIDs: []string{},
		}
		seen := make(map[string]bool, len(sd.Activities))

		for _, ref := range sd.Activities {
			t, ok := templates[ref.ID]
			if !ok {
				r.log.Warn("Unknown activity in screen", "activity", ref.ID, "screen", sd.ID)
				stale = append(stale, StaleRef{ScreenID: sd.ID, ActivityID: ref.ID})
				continue
			}

			overrides := ref.Overrides()
			if overrides.Level.IsSet() && !overrides.Level.Valid() {
				r.log.Warn("Invalid activity level", "activity", ref.ID, "screen", sd.ID, "level", int(overrides.Level))
				overrides.Level = 0
			}
			a := Merge(t, overrides)
			a.ID = CompositeID(ref.ID, sd.ID)
			a.ScreenID = sd.ID
			a.Aliases = []string{ref.ID}
			slug := ref.ID
			if ref.Media != nil {
				slug = *ref.Media
			}
			a.Media = MediaFor(mediaFolder, slug)
			if a.Level == 0 && r.opts.InferLevels {
				a.Level = InferLevel(a.Keypress, a.Description)
			}

			if seen[a.ID] {
				r.log.Warn("Duplicate activity reference in screen", "activity", ref.ID, "screen", sd.ID)
			}
			seen[a.ID] = true

			ds.Activities = append(ds.Activities, a)
			screen.ActivityIDs = append(screen.ActivityIDs, a.ID)
		}
		ds.Screens = append(ds.Screens, screen)
	}

	r.log.Debug("Dataset resolved",
		"screens", len(ds.Screens),
		"activities", len(ds.Activities),
		"stale", len(stale))
	return ds, stale
}
