package repository

import (
	"context"

	"github.com/abrezinsky/m8keys/internal/dataset"
)

// DatasetRepository defines dataset export operations
type DatasetRepository interface {
	Export(ctx context.Context, ds *dataset.Dataset) error
	CountActivities(ctx context.Context) (int, error)
	ActivityIDsForScreen(ctx context.Context, screenID string) ([]string, error)
}

// FullRepository combines export operations with connection management
type FullRepository interface {
	DatasetRepository
	Ping(ctx context.Context) error
	Close() error
}

// Ensure concrete types implement interfaces
var (
	_ FullRepository = (*Repository)(nil)
)
