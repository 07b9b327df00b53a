package testutil

import (
	"testing"

	"github.com/abrezinsky/m8keys/internal/dataset"
	"github.com/abrezinsky/m8keys/internal/logger"
	"github.com/abrezinsky/m8keys/internal/repository"
)

// DatasetJSON is a small compact dataset covering bare refs, overrides,
// aliases, a custom media folder and multi-category activities.
const DatasetJSON = `{
  "screens": [
    {
      "id": "song", "name": "Song", "aliases": ["SongView"], "categoryIds": ["views"],
      "description": "Arrange chains", "img": "/img/song.png",
      "activities": ["play-pause", "copy", {"id": "jump", "description": "Jump to chain", "level": 2}]
    },
    {
      "id": "phrase", "name": "Phrase", "aliases": ["phr"], "categoryIds": ["views", "editing"],
      "description": "Edit steps", "img": "/img/phrase.png", "mediaFolder": "phrase-view",
      "activities": [{"id": "copy", "media": "copy-steps", "name": "Copy steps"}, "play-pause", "delete"]
    }
  ],
  "activities": [
    {"id": "play-pause", "name": "Play / stop", "categoryIds": ["global"], "keypress": ["play"], "description": "Toggle playback"},
    {"id": "copy", "name": "Copy", "categoryIds": ["editing", "global"], "keypress": [["shift", "opt"]], "description": "Copy selection", "level": 2},
    {"id": "jump", "name": "Jump", "categoryIds": ["navigation"], "keypress": ["shift-hold", "and", "up"], "description": "Move up a screen"},
    {"id": "delete", "name": "Delete", "categoryIds": ["editing"], "keypress": ["opt", "after", "edit-2x"], "description": "Clear value", "level": 3}
  ],
  "categories": [
    {"id": "views", "name": "Views"},
    {"id": "editing", "name": "Editing"},
    {"id": "global", "name": "Global"},
    {"id": "navigation", "name": "Navigation"}
  ],
  "keys": [],
  "assets": []
}`

// Compact decodes DatasetJSON.
func Compact(t testing.TB) *dataset.CompactDataset {
	t.Helper()

	c, err := dataset.Decode([]byte(DatasetJSON), dataset.FormatJSON)
	if err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}
	return c
}

// Resolved returns the resolved fixture dataset.
func Resolved(t testing.TB) *dataset.Dataset {
	t.Helper()

	ds, stale := dataset.NewResolver(logger.Discard(), dataset.Options{}).Resolve(Compact(t))
	if len(stale) != 0 {
		t.Fatalf("fixture has stale refs: %v", stale)
	}
	return ds
}

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}
