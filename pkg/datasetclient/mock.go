package datasetclient

import (
	"context"
	"sync"

	"github.com/abrezinsky/m8keys/internal/dataset"
)

// MockClient is a mock dataset source for testing
type MockClient struct {
	mu      sync.Mutex
	compact *dataset.CompactDataset
	url     string
	loadErr error
	calls   int
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithDataset sets the dataset to return
func WithDataset(c *dataset.CompactDataset) MockOption {
	return func(m *MockClient) {
		m.compact = c
	}
}

// WithLoadError sets an error to return from Load
func WithLoadError(err error) MockOption {
	return func(m *MockClient) {
		m.loadErr = err
	}
}

// WithURL sets the URL reported by the mock
func WithURL(u string) MockOption {
	return func(m *MockClient) {
		m.url = u
	}
}

// NewMockClient creates a new mock client with the given options
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		compact: &dataset.CompactDataset{},
		url:     "http://mock.local/dataset.json",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load returns the configured dataset or error
func (m *MockClient) Load(ctx context.Context) (*dataset.CompactDataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.compact, nil
}

// URL returns the configured URL
func (m *MockClient) URL() string {
	return m.url
}

// Calls returns how many times Load ran
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var _ Client = (*MockClient)(nil)
