package stoplist

import (
	"sort"
	"strings"
)

// Manager holds the stopword set used by the corpus assembler
type Manager struct {
	stops map[string]Reason
}

// Reason records where a stopword came from.
type Reason struct {
	Static    bool    // loaded from a wordlist
	HighDF    bool    // high document frequency across chunks
	DFPercent float64 // share of chunks containing the token
}

// NewManager returns a manager seeded with static stopwords. Entries are
// trimmed and lowercased; blanks are ignored.
func NewManager(initialStops []string) *Manager {
	stops := make(map[string]Reason, len(initialStops))
	for _, s := range initialStops {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		stops[s] = Reason{Static: true}
	}
	return &Manager{stops: stops}
}

// IsStop reports whether token is in the set, ignoring case.
func (m *Manager) IsStop(token string) bool {
	_, ok := m.stops[strings.ToLower(token)]
	return ok
}

// Add inserts or replaces token.
func (m *Manager) Add(token string, reason Reason) {
	m.stops[strings.ToLower(token)] = reason
}

func (m *Manager) Remove(token string) {
	delete(m.stops, strings.ToLower(token))
}

// Reason returns why token is a stopword.
func (m *Manager) Reason(token string) (Reason, bool) {
	r, ok := m.stops[strings.ToLower(token)]
	return r, ok
}

// Len returns the number of stopwords
func (m *Manager) Len() int { return len(m.stops) }

// All returns the stopwords in lexical order.
func (m *Manager) All() []string {
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// Stats holds document-frequency statistics for one token
type Stats struct {
	Token     string
	DF        int64
	DFPercent float64
}

// Candidate is a proposed stopword.
type Candidate struct {
	Token  string
	Reason Reason
	Score  float64 // DF share in [0,1]
}

// Thresholds control stopword generation.
type Thresholds struct {
	DFPercent float64 // e.g. 50: appears in more than half of the chunks
	Limit     int     // keep at most this many candidates; 0 means no cap
}

// DefaultThresholds: more than 50% of chunks, at most 100 terms.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DFPercent: 50.0,
		Limit:     100,
	}
}

// SuggestCandidates ranks tokens that are not yet stopwords by document
// frequency and returns those above the threshold, highest first.
func (m *Manager) SuggestCandidates(stats []Stats, thresholds Thresholds) []Candidate {
	if thresholds.DFPercent <= 0 {
		thresholds.DFPercent = DefaultThresholds().DFPercent
	}

	var candidates []Candidate
	for _, s := range stats {
		if m.IsStop(s.Token) {
			continue
		}
		if s.DFPercent <= thresholds.DFPercent {
			continue
		}
		candidates = append(candidates, Candidate{
			Token:  s.Token,
			Reason: Reason{HighDF: true, DFPercent: s.DFPercent},
			Score:  s.DFPercent / 100.0,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Token < candidates[j].Token
	})
	if thresholds.Limit > 0 && len(candidates) > thresholds.Limit {
		candidates = candidates[:thresholds.Limit]
	}
	return candidates
}

// Apply adds every candidate to the stoplist.
func (m *Manager) Apply(candidates []Candidate) {
	for _, c := range candidates {
		m.Add(c.Token, c.Reason)
	}
}
