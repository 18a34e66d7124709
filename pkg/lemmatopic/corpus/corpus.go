package corpus

import (
	"fmt"
	"strings"
)

// Pair is one chunk pseudo-document: its identifier and lemma text.
type Pair struct {
	ID   string
	Text string
}

// Corpus is the ordered, append-only lemmatized corpus.
//
// Identifiers and texts live in the same slice element, so the two
// sequences cannot drift apart no matter how appends are interleaved.
type Corpus struct {
	pairs []Pair
	ids   map[string]int
}

// New creates an empty corpus.
func New() *Corpus {
	return &Corpus{ids: make(map[string]int)}
}

// FromPairs builds a corpus from an ordered pair list.
func FromPairs(pairs []Pair) (*Corpus, error) {
	c := New()
	if err := c.Append(pairs...); err != nil {
		return nil, err
	}
	return c, nil
}

// Append adds pairs at the end. Nothing is added if any identifier is
// empty or already present.
func (c *Corpus) Append(pairs ...Pair) error {
	if c.ids == nil {
		c.ids = make(map[string]int)
	}
	seen := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("corpus: empty chunk identifier")
		}
		if strings.ContainsAny(p.ID, "\r\n") || strings.ContainsAny(p.Text, "\r\n") {
			return fmt.Errorf("corpus: chunk %s contains a line break", p.ID)
		}
		if _, dup := c.ids[p.ID]; dup {
			return fmt.Errorf("corpus: duplicate chunk identifier %s", p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("corpus: duplicate chunk identifier %s", p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	for _, p := range pairs {
		c.ids[p.ID] = len(c.pairs)
		c.pairs = append(c.pairs, p)
	}
	return nil
}

// Len returns the number of chunks.
func (c *Corpus) Len() int { return len(c.pairs) }

// Pairs returns a copy of the pairs in corpus order.
func (c *Corpus) Pairs() []Pair {
	out := make([]Pair, len(c.pairs))
	copy(out, c.pairs)
	return out
}

// IDs returns the chunk identifiers in corpus order.
func (c *Corpus) IDs() []string {
	out := make([]string, len(c.pairs))
	for i, p := range c.pairs {
		out[i] = p.ID
	}
	return out
}

// Texts returns the chunk texts in corpus order.
func (c *Corpus) Texts() []string {
	out := make([]string, len(c.pairs))
	for i, p := range c.pairs {
		out[i] = p.Text
	}
	return out
}

// Lookup returns the text of a chunk by identifier.
func (c *Corpus) Lookup(id string) (string, bool) {
	i, ok := c.ids[id]
	if !ok {
		return "", false
	}
	return c.pairs[i].Text, true
}
