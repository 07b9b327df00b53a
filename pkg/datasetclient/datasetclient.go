// Package datasetclient fetches compact datasets from an HTTP endpoint.
package datasetclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abrezinsky/m8keys/internal/dataset"
	"github.com/abrezinsky/m8keys/internal/logger"
)

// Client defines the interface for remote dataset sources
type Client interface {
	// Load fetches and decodes the compact dataset
	Load(ctx context.Context) (*dataset.CompactDataset, error)
	// URL returns the configured dataset URL
	URL() string
}

// HTTPSource loads a dataset with a single GET request
type HTTPSource struct {
	url        string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPSource creates an HTTP dataset source with a 30 second timeout
func NewHTTPSource(rawURL string, log logger.Logger) *HTTPSource {
	return NewHTTPSourceWithHTTPClient(rawURL, &http.Client{Timeout: 30 * time.Second}, log)
}

// NewHTTPSourceWithHTTPClient creates an HTTP dataset source with a custom http.Client
func NewHTTPSourceWithHTTPClient(rawURL string, httpClient *http.Client, log logger.Logger) *HTTPSource {
	return &HTTPSource{
		url:        rawURL,
		httpClient: httpClient,
		log:        log,
	}
}

// URL returns the configured dataset URL
func (s *HTTPSource) URL() string {
	return s.url
}

// Load fetches the dataset. YAML is picked from the Content-Type or the URL
// path extension; anything else is decoded as JSON.
func (s *HTTPSource) Load(ctx context.Context) (*dataset.CompactDataset, error) {
	s.log.Debug("Dataset request", "method", "GET", "url", s.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	s.log.Debug("Dataset response", "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dataset server returned status %d", resp.StatusCode)
	}

	return dataset.Decode(body, s.format(resp.Header.Get("Content-Type")))
}

func (s *HTTPSource) format(contentType string) dataset.Format {
	if strings.Contains(contentType, "yaml") {
		return dataset.FormatYAML
	}
	if u, err := url.Parse(s.url); err == nil {
		return dataset.FormatFromPath(u.Path)
	}
	return dataset.FormatJSON
}

var _ Client = (*HTTPSource)(nil)
