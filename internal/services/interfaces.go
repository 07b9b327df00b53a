package services

import (
	"context"

	"github.com/abrezinsky/m8keys/internal/animation"
	"github.com/abrezinsky/m8keys/internal/dataset"
	"github.com/abrezinsky/m8keys/internal/lookup"
	"github.com/abrezinsky/m8keys/internal/timeline"
)

// DatasetProvider hands out the loaded dataset and its lookup helper
type DatasetProvider interface {
	Dataset(ctx context.Context) (*dataset.Dataset, error)
	Helper(ctx context.Context) (*lookup.Helper, error)
	StaleRefs() []dataset.StaleRef
}

// ViewerServicer defines the interface for viewer queries
type ViewerServicer interface {
	Dataset(ctx context.Context) (*dataset.Dataset, error)
	Screens(ctx context.Context) ([]dataset.Screen, error)
	Screen(ctx context.Context, idOrAlias string) (*dataset.Screen, error)
	Categories(ctx context.Context, kind string) ([]dataset.Category, error)
	ScreenCategories(ctx context.Context, screenID string) ([]dataset.Category, error)
	ScreenActivities(ctx context.Context, screenID string, q ActivityQuery) (*ScreenActivities, error)
	Activity(ctx context.Context, screenID, activityID string) (*dataset.Activity, error)
	FindActivity(ctx context.Context, idOrAlias string) (*dataset.Activity, error)
	ActivityLayout(ctx context.Context, screenID, activityID string) (*ActivityLayout, error)
	ShareQR(ctx context.Context, screenID, activityID, mode string) ([]byte, error)
	StaleRefs(ctx context.Context) ([]dataset.StaleRef, error)
	Timeline(keys string) (*timeline.Timeline, error)
	Animation() animation.Config
}

// Ensure concrete types implement interfaces
var (
	_ ViewerServicer = (*ViewerService)(nil)
)
