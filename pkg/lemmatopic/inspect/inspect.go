// Package inspect ranks and renders the distributions of a fitted model.
package inspect

import (
	"fmt"
	"sort"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/coherence"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/dtm"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/internalerr"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/topic"
)

// TermWeight is a term and its weight within one topic.
type TermWeight struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// TopicWeight is a topic index and its weight within one document.
type TopicWeight struct {
	Topic  int     `json:"topic"`
	Weight float64 `json:"weight"`
}

// topN returns the indices of the n largest weights, heaviest first. Equal
// weights keep their original order.
func topN(weights []float64, n int) []int {
	idx := make([]int, len(weights))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return weights[idx[a]] > weights[idx[b]]
	})
	if n < len(idx) {
		idx = idx[:n]
	}
	return idx
}

// TopTerms returns the n heaviest terms of topic k.
func TopTerms(m *topic.Model, k, n int) ([]TermWeight, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: n must be >= 1, got %d", internalerr.ErrInvalidConfig, n)
	}
	weights, err := m.TopicTerms(k)
	if err != nil {
		return nil, err
	}
	out := make([]TermWeight, 0, n)
	for _, j := range topN(weights, n) {
		out = append(out, TermWeight{Term: m.Terms[j], Weight: weights[j]})
	}
	return out, nil
}

// TopTopics returns the n heaviest topics of document d.
func TopTopics(m *topic.Model, d, n int) ([]TopicWeight, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: n must be >= 1, got %d", internalerr.ErrInvalidConfig, n)
	}
	weights, err := m.DocTopics(d)
	if err != nil {
		return nil, err
	}
	out := make([]TopicWeight, 0, n)
	for _, k := range topN(weights, n) {
		out = append(out, TopicWeight{Topic: k, Weight: weights[k]})
	}
	return out, nil
}

// TopicSummary is one topic's top terms and their NPMI coherence.
type TopicSummary struct {
	Topic     int          `json:"topic"`
	Terms     []TermWeight `json:"terms"`
	Coherence float64      `json:"coherence"`
}

// Summarize lists the top n terms of every topic. When counts is non-nil
// each topic is also scored for coherence over the matrix rows.
func Summarize(m *topic.Model, counts *dtm.Matrix, n int) ([]TopicSummary, error) {
	out := make([]TopicSummary, 0, m.K)
	var watch []string
	for k := 0; k < m.K; k++ {
		terms, err := TopTerms(m, k, n)
		if err != nil {
			return nil, err
		}
		out = append(out, TopicSummary{Topic: k, Terms: terms})
		for _, t := range terms {
			watch = append(watch, t.Term)
		}
	}
	if counts == nil {
		return out, nil
	}

	cooc := coherence.FromMatrix(counts, watch...)
	calc := coherence.NewCalculator(1.0)
	for i := range out {
		names := make([]string, len(out[i].Terms))
		for j, t := range out[i].Terms {
			names[j] = t.Term
		}
		out[i].Coherence = calc.Score(names, cooc)
	}
	return out, nil
}
