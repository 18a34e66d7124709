// Package store persists runs: their chunked corpus, stoplist and fitted model.
package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/corpus"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/topic"
)

// Store is the persistence interface for lemmatopic runs.
type Store interface {
	Close() error

	// Runs
	CreateRun(ctx context.Context, r Run) (Run, error)
	GetRun(ctx context.Context, id string) (Run, error)
	Runs(ctx context.Context, limit int) ([]Run, error)

	// Corpus. SaveChunks replaces whatever the run held before.
	SaveChunks(ctx context.Context, runID string, c *corpus.Corpus) error
	Chunks(ctx context.Context, runID string) (*corpus.Corpus, error)

	// Stoplist used to build the run's matrix
	SaveStoplist(ctx context.Context, runID string, terms []string) error
	Stoplist(ctx context.Context, runID string) ([]string, error)

	// Model
	SaveModel(ctx context.Context, runID string, m *topic.Model) error
	LoadModel(ctx context.Context, runID string) (*topic.Model, error)
}

// Run describes one pipeline execution.
type Run struct {
	ID        string
	CreatedAt time.Time
	InputDir  string
	Language  string
	ChunkSize int
	Params    topic.Params
	Chunks    int  // set by SaveChunks
	Fitted    bool // set by SaveModel
}

var (
	idMu    sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// NewRunID returns a lexically sortable run identifier.
func NewRunID(t time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
