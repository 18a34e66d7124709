package dtm

import (
	"strings"
	"unicode"
)

// Normalizer applies the text cleaning chain used before counting terms:
// lowercase, stopword removal, punctuation and number stripping, whitespace
// collapsing.
type Normalizer struct {
	stopwords map[string]struct{}
	minLen    int
}

// NewNormalizer creates a normalizer with the given stopword set.
func NewNormalizer(stopwords []string) *Normalizer {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &Normalizer{stopwords: stops}
}

// SetMinLength drops terms shorter than l runes after cleaning.
func (n *Normalizer) SetMinLength(l int) {
	n.minLen = l
}

// Terms returns the cleaned terms of text in order.
func (n *Normalizer) Terms(text string) []string {
	fields := strings.Fields(text)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := n.processToken(f); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// Tokenise implements nlp.Tokeniser.
func (n *Normalizer) Tokenise(text string) []string {
	return n.Terms(text)
}

// ForEachIn implements nlp.Tokeniser.
func (n *Normalizer) ForEachIn(text string, f func(token string)) {
	for _, t := range n.Terms(text) {
		f(t)
	}
}

// processToken lowercases, removes stopwords, strips punctuation and digits.
func (n *Normalizer) processToken(token string) string {
	word := strings.ToLower(token)
	if n.isStopword(word) {
		return ""
	}

	word = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || unicode.IsControl(r) {
			return -1
		}
		return r
	}, word)

	if word == "" || n.isStopword(word) {
		return ""
	}
	if n.minLen > 0 && len([]rune(word)) < n.minLen {
		return ""
	}
	return word
}

func (n *Normalizer) isStopword(word string) bool {
	_, ok := n.stopwords[word]
	return ok
}
