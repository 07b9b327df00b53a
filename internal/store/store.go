// Package store holds the process-wide dataset. The dataset is loaded at
// most once; concurrent first callers share the in-flight load and a failed
// load stays failed for the life of the process.
package store

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/abrezinsky/m8keys/internal/dataset"
	"github.com/abrezinsky/m8keys/internal/errors"
	"github.com/abrezinsky/m8keys/internal/logger"
	"github.com/abrezinsky/m8keys/internal/lookup"
)

// Source produces the compact dataset bytes, decoded.
type Source interface {
	Load(ctx context.Context) (*dataset.CompactDataset, error)
}

// State is the lifecycle of the cached dataset.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unloaded"
	}
}

// Store is the load-once dataset holder.
type Store struct {
	log      logger.Logger
	source   Source
	resolver *dataset.Resolver

	mu    sync.Mutex
	state State
	done  chan struct{}
	ds    *dataset.Dataset
	stale []dataset.StaleRef
	err   error

	memo lookup.Memo
}

// New creates a Store that resolves what source returns.
func New(log logger.Logger, source Source, resolver *dataset.Resolver) *Store {
	return &Store{
		log:      log,
		source:   source,
		resolver: resolver,
	}
}

// Dataset returns the resolved dataset, loading it on the first call. ctx
// only bounds how long this caller waits; the shared load keeps running.
func (s *Store) Dataset(ctx context.Context) (*dataset.Dataset, error) {
	s.mu.Lock()
	switch s.state {
	case StateLoaded:
		ds := s.ds
		s.mu.Unlock()
		return ds, nil
	case StateFailed:
		err := s.err
		s.mu.Unlock()
		return nil, err
	case StateUnloaded:
		s.state = StateLoading
		s.done = make(chan struct{})
		go s.load()
	}
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateFailed {
		return nil, s.err
	}
	return s.ds, nil
}

func (s *Store) load() {
	compact, err := s.source.Load(context.Background())

	s.mu.Lock()
	defer s.mu.Unlock()
	defer close(s.done)

	if err != nil {
		s.log.Error("Failed to load dataset", "error", err)
		s.state = StateFailed
		s.err = errors.Unavailable(err)
		return
	}
	s.ds, s.stale = s.resolver.Resolve(compact)
	s.state = StateLoaded
	s.log.Info("Dataset loaded",
		"screens", len(s.ds.Screens),
		"activities", len(s.ds.Activities),
		"stale_refs", len(s.stale))
}

// Helper returns the lookup helper for the loaded dataset.
func (s *Store) Helper(ctx context.Context) (*lookup.Helper, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return s.memo.Get(ds), nil
}

// State reports the current lifecycle state without triggering a load.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StaleRefs returns the references dropped while resolving.
func (s *Store) StaleRefs() []dataset.StaleRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale
}

// FileSource reads a compact dataset from a file. The format follows the
// file extension. FS defaults to the host file system.
type FileSource struct {
	Path string
	FS   fs.FS
}

// Load reads and decodes the file.
func (f FileSource) Load(ctx context.Context) (*dataset.CompactDataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	var err error
	if f.FS != nil {
		data, err = fs.ReadFile(f.FS, f.Path)
	} else {
		data, err = os.ReadFile(f.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", f.Path, err)
	}
	return dataset.Decode(data, dataset.FormatFromPath(f.Path))
}
