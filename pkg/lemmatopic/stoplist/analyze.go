package stoplist

import (
	"sort"
	"strings"
)

// Analyze computes per-token document frequency over chunk texts.
// Tokens are lowercased whitespace-separated fields.
func Analyze(texts []string) []Stats {
	df := make(map[string]int64)
	for _, text := range texts {
		seen := make(map[string]struct{})
		for _, tok := range strings.Fields(text) {
			tok = strings.ToLower(tok)
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	total := float64(len(texts))
	stats := make([]Stats, 0, len(df))
	for tok, n := range df {
		stats = append(stats, Stats{
			Token:     tok,
			DF:        n,
			DFPercent: 100 * float64(n) / total,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].DF != stats[j].DF {
			return stats[i].DF > stats[j].DF
		}
		return stats[i].Token < stats[j].Token
	})
	return stats
}

// Generate builds a stoplist from the corpus itself: the base list plus
// every token whose document frequency exceeds the threshold.
func Generate(base *Manager, texts []string, thresholds Thresholds) (*Manager, []Candidate) {
	m := NewManager(nil)
	if base != nil {
		for tok, reason := range base.stops {
			m.stops[tok] = reason
		}
	}
	candidates := m.SuggestCandidates(Analyze(texts), thresholds)
	m.Apply(candidates)
	return m, candidates
}
