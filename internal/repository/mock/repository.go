package mock

import (
	"context"

	"github.com/abrezinsky/m8keys/internal/dataset"
	"github.com/abrezinsky/m8keys/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.ExportError = errors.New("database error")
type Repository struct {
	repository.FullRepository

	ExportError               error
	CountActivitiesError      error
	ActivityIDsForScreenError error

	// Exports counts calls to Export that reached the wrapped repository
	Exports int
}

// NewRepository creates a mock repository that wraps a real repository
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{FullRepository: real}
}

func (m *Repository) Export(ctx context.Context, ds *dataset.Dataset) error {
	if m.ExportError != nil {
		return m.ExportError
	}
	m.Exports++
	return m.FullRepository.Export(ctx, ds)
}

func (m *Repository) CountActivities(ctx context.Context) (int, error) {
	if m.CountActivitiesError != nil {
		return 0, m.CountActivitiesError
	}
	return m.FullRepository.CountActivities(ctx)
}

func (m *Repository) ActivityIDsForScreen(ctx context.Context, screenID string) ([]string, error) {
	if m.ActivityIDsForScreenError != nil {
		return nil, m.ActivityIDsForScreenError
	}
	return m.FullRepository.ActivityIDsForScreen(ctx, screenID)
}

var _ repository.FullRepository = (*Repository)(nil)
