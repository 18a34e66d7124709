package coherence

import (
	"sort"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/dtm"
)

// Counter keeps document and co-occurrence frequencies for a watched set of
// terms. Pairs are only counted between watched terms, which keeps the map
// small on long chunks.
type Counter struct {
	N     int64               // total number of documents
	Nx    map[string]int64    // document frequency per term
	Nxy   map[TermPair]int64  // co-occurrence count per term pair
	watch map[string]struct{} // nil watches everything
}

// TermPair is an ordered pair of terms (T1 < T2).
type TermPair struct {
	T1, T2 string
}

// NewCounter creates a counter for the given terms. With no terms every
// term is watched.
func NewCounter(watch ...string) *Counter {
	c := &Counter{
		Nx:  make(map[string]int64),
		Nxy: make(map[TermPair]int64),
	}
	if len(watch) > 0 {
		c.watch = make(map[string]struct{}, len(watch))
		for _, w := range watch {
			c.watch[w] = struct{}{}
		}
	}
	return c
}

// FromMatrix counts every row of m as one document.
func FromMatrix(m *dtm.Matrix, watch ...string) *Counter {
	c := NewCounter(watch...)
	docs, terms := m.Dims()
	for i := 0; i < docs; i++ {
		present := make([]string, 0, terms)
		for j := 0; j < terms; j++ {
			if m.Counts.At(i, j) > 0 {
				present = append(present, m.Terms[j])
			}
		}
		c.AddDocument(present)
	}
	return c
}

// AddDocument updates counts for one document. Repeated terms count once.
func (c *Counter) AddDocument(terms []string) {
	c.N++

	seen := make(map[string]struct{}, len(terms))
	unique := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if c.watched(t) {
			unique = append(unique, t)
			c.Nx[t]++
		}
	}

	sort.Strings(unique)
	for i := 0; i < len(unique); i++ {
		for j := i + 1; j < len(unique); j++ {
			c.Nxy[TermPair{T1: unique[i], T2: unique[j]}]++
		}
	}
}

func (c *Counter) watched(t string) bool {
	if c.watch == nil {
		return true
	}
	_, ok := c.watch[t]
	return ok
}

// PairCount returns the co-occurrence count for a pair in either order.
func (c *Counter) PairCount(t1, t2 string) int64 {
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	return c.Nxy[TermPair{T1: t1, T2: t2}]
}

// TermCount returns the document frequency of t.
func (c *Counter) TermCount(t string) int64 {
	return c.Nx[t]
}
