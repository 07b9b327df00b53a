package datasetclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abrezinsky/m8keys/internal/logger"
	"github.com/abrezinsky/m8keys/internal/testutil"
)

func TestHTTPSource_Load_JSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(testutil.DatasetJSON))
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL+"/m8-shortcuts.dataset.json", logger.Discard())
	c, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(c.Screens) != 2 || len(c.Activities) != 4 {
		t.Errorf("unexpected dataset shape: %d screens, %d activities", len(c.Screens), len(c.Activities))
	}
}

func TestHTTPSource_Load_YAMLByContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write([]byte("screens:\n  - id: song\n    activities: [a]\nactivities:\n  - id: a\n    keypress: [play]\n"))
	}))
	defer server.Close()

	c, err := NewHTTPSource(server.URL+"/dataset", logger.Discard()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Screens[0].ID != "song" {
		t.Errorf("expected song screen, got %+v", c.Screens)
	}
}

func TestHTTPSource_Load_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := NewHTTPSource(server.URL, logger.Discard()).Load(context.Background()); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestHTTPSource_Load_InvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	if _, err := NewHTTPSource(server.URL, logger.Discard()).Load(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestHTTPSource_Load_ConnectionError(t *testing.T) {
	src := NewHTTPSource("http://127.0.0.1:1/dataset.json", logger.Discard())
	if _, err := src.Load(context.Background()); err == nil {
		t.Fatal("expected connection error")
	}
}

func TestMockClient(t *testing.T) {
	m := NewMockClient(WithDataset(testutil.Compact(t)), WithURL("http://example.test/d.json"))
	c, err := m.Load(context.Background())
	if err != nil || len(c.Screens) != 2 {
		t.Fatalf("unexpected result %v %v", c, err)
	}
	if m.URL() != "http://example.test/d.json" || m.Calls() != 1 {
		t.Errorf("unexpected mock state url=%s calls=%d", m.URL(), m.Calls())
	}

	failing := NewMockClient(WithLoadError(errors.New("boom")))
	if _, err := failing.Load(context.Background()); err == nil {
		t.Error("expected configured error")
	}
}
