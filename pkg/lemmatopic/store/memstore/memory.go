package memstore

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/corpus"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/internalerr"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/store"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/topic"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu        sync.RWMutex
	runs      map[string]store.Run
	chunks    map[string][]corpus.Pair
	stoplists map[string][]string
	models    map[string][]byte
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		runs:      make(map[string]store.Run),
		chunks:    make(map[string][]corpus.Pair),
		stoplists: make(map[string][]string),
		models:    make(map[string][]byte),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// CreateRun stores r under a new ID.
func (s *Store) CreateRun(ctx context.Context, r store.Run) (store.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.ID = store.NewRunID(r.CreatedAt)
	r.Chunks = 0
	r.Fitted = false
	s.runs[r.ID] = r
	return r, nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return store.Run{}, notFound(id)
	}
	return r, nil
}

// Runs lists runs newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SaveChunks replaces the run's corpus.
func (s *Store) SaveChunks(ctx context.Context, runID string, c *corpus.Corpus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.runs[runID]
	if !ok {
		return notFound(runID)
	}
	s.chunks[runID] = c.Pairs()
	r.Chunks = c.Len()
	s.runs[runID] = r
	return nil
}

// Chunks returns the run's corpus.
func (s *Store) Chunks(ctx context.Context, runID string) (*corpus.Corpus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.runs[runID]; !ok {
		return nil, notFound(runID)
	}
	return corpus.FromPairs(s.chunks[runID])
}

// SaveStoplist replaces the run's stoplist.
func (s *Store) SaveStoplist(ctx context.Context, runID string, terms []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[runID]; !ok {
		return notFound(runID)
	}
	sorted := append([]string(nil), terms...)
	sort.Strings(sorted)
	s.stoplists[runID] = sorted
	return nil
}

// Stoplist returns the run's stoplist, sorted.
func (s *Store) Stoplist(ctx context.Context, runID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.runs[runID]; !ok {
		return nil, notFound(runID)
	}
	return append([]string(nil), s.stoplists[runID]...), nil
}

// SaveModel stores an encoded copy of m.
func (s *Store) SaveModel(ctx context.Context, runID string, m *topic.Model) error {
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.runs[runID]
	if !ok {
		return notFound(runID)
	}
	s.models[runID] = buf.Bytes()
	r.Fitted = true
	r.Params = m.Params
	s.runs[runID] = r
	return nil
}

// LoadModel decodes the run's model.
func (s *Store) LoadModel(ctx context.Context, runID string) (*topic.Model, error) {
	s.mu.RLock()
	data, ok := s.models[runID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: model for run %s", internalerr.ErrNotFound, runID)
	}
	return topic.Decode(bytes.NewReader(data))
}

func notFound(runID string) error {
	return fmt.Errorf("%w: run %s", internalerr.ErrNotFound, runID)
}
