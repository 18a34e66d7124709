// Package chunk turns a document's annotation table into fixed-size lemma
// chunks, each paired with its identifier.
package chunk

import (
	"fmt"
	"strings"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/annotate"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/corpus"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/internalerr"
)

// DefaultSize is the number of lemmas per chunk.
const DefaultSize = 1000

// Config controls filtering and chunking.
type Config struct {
	// ExcludedTags are dropped from the lemma stream.
	ExcludedTags []annotate.Tag
	// Size is the exact number of lemmas per chunk.
	Size int
	// KeepRemainder emits the trailing short slice as a final, undersized
	// chunk. When false, documents shorter than Size contribute nothing.
	KeepRemainder bool
}

// DefaultConfig drops proper nouns and cuts 1000-lemma chunks.
func DefaultConfig() Config {
	return Config{
		ExcludedTags: []annotate.Tag{annotate.TagProperNoun},
		Size:         DefaultSize,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Size < 1 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", internalerr.ErrInvalidConfig, c.Size)
	}
	for _, t := range c.ExcludedTags {
		if !t.Valid() {
			return fmt.Errorf("%w: unknown tag %q", internalerr.ErrInvalidConfig, t)
		}
	}
	return nil
}

// Filter returns the lemma stream of a table: lemmas of tokens whose tag is
// not excluded and whose lemma is present, in original order.
func Filter(table annotate.Table, excluded []annotate.Tag) []string {
	skip := make(map[annotate.Tag]struct{}, len(excluded))
	for _, t := range excluded {
		skip[t] = struct{}{}
	}

	lemmas := make([]string, 0, len(table))
	for _, tok := range table {
		if !tok.HasLemma() {
			continue
		}
		if _, ok := skip[tok.Tag]; ok {
			continue
		}
		lemmas = append(lemmas, *tok.Lemma)
	}
	return lemmas
}

// Split cuts a lemma stream into consecutive, non-overlapping chunks of
// exactly cfg.Size lemmas, named <docID>_<index>.
func Split(docID string, lemmas []string, cfg Config) []corpus.Pair {
	if cfg.Size < 1 {
		return nil
	}

	n := len(lemmas)
	full := n / cfg.Size
	count := full
	if cfg.KeepRemainder && n%cfg.Size != 0 {
		count++
	}

	pairs := make([]corpus.Pair, 0, count)
	for i := 0; i < count; i++ {
		start := i * cfg.Size
		end := start + cfg.Size
		if end > n {
			end = n
		}
		pairs = append(pairs, corpus.Pair{
			ID:   ChunkID(docID, i),
			Text: strings.Join(lemmas[start:end], " "),
		})
	}
	return pairs
}

// ChunkID formats the identifier of the i-th chunk of a document.
func ChunkID(docID string, i int) string {
	return fmt.Sprintf("%s_%03d", docID, i)
}

// Chunker applies Filter and Split with a fixed configuration.
type Chunker struct {
	cfg Config
}

// New creates a chunker; the configuration is validated.
func New(cfg Config) (*Chunker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	excluded := make([]annotate.Tag, len(cfg.ExcludedTags))
	copy(excluded, cfg.ExcludedTags)
	cfg.ExcludedTags = excluded
	return &Chunker{cfg: cfg}, nil
}

// Config returns the chunker's configuration.
func (c *Chunker) Config() Config { return c.cfg }

// Document returns all chunks of one document. A document whose lemma
// stream is shorter than the chunk size yields no chunks unless
// KeepRemainder is set.
func (c *Chunker) Document(docID string, table annotate.Table) []corpus.Pair {
	return Split(docID, Filter(table, c.cfg.ExcludedTags), c.cfg)
}
