// Package dtm assembles the document-term matrix from chunked pseudo-documents.
package dtm

import (
	"fmt"
	"sort"

	"github.com/e-gun/nlp"
	"github.com/e-gun/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/corpus"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/internalerr"
)

// DefaultMinGlobalFrequency is the minimum total count for a term to be kept.
const DefaultMinGlobalFrequency = 5

// Matrix is a document-term frequency matrix. Row i belongs to Rows[i],
// column j to Terms[j]. Counts is nil when there are no rows or no terms.
type Matrix struct {
	Rows   []string
	Terms  []string
	Counts *mat.Dense
}

// Dims returns the number of documents and terms.
func (m *Matrix) Dims() (docs, terms int) {
	return len(m.Rows), len(m.Terms)
}

// TermCounts returns the total count of every term, in column order.
func (m *Matrix) TermCounts() []float64 {
	out := make([]float64, len(m.Terms))
	for j := range m.Terms {
		out[j] = mat.Sum(m.Counts.ColView(j))
	}
	return out
}

// EmptyRows returns the identifiers of documents with no surviving terms.
func (m *Matrix) EmptyRows() []string {
	if m.Counts == nil {
		return append([]string(nil), m.Rows...)
	}
	var out []string
	for i, id := range m.Rows {
		if mat.Sum(m.Counts.RowView(i)) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// TermsByDocs returns the transposed counts in the sparse terms x documents
// layout the nlp transformers consume. Nonzeros are stored row-major so that
// repeated calls yield identical storage and the fitted model stays
// reproducible for a seed.
func (m *Matrix) TermsByDocs() *sparse.CSR {
	docs, terms := m.Dims()
	indptr := make([]int, terms+1)
	var ind []int
	var data []float64
	for j := 0; j < terms; j++ {
		for i := 0; i < docs; i++ {
			if v := m.Counts.At(i, j); v != 0 {
				ind = append(ind, i)
				data = append(data, v)
			}
		}
		indptr[j+1] = len(ind)
	}
	return sparse.NewCSR(terms, docs, indptr, ind, data)
}

// Builder turns pairs into a Matrix.
type Builder struct {
	Stopwords          []string
	MinGlobalFrequency int
	MinTermLength      int
	// TfidfThreshold, when positive, removes terms whose mean tf-idf over
	// all documents is below it.
	TfidfThreshold float64
	// TfidfMedian prunes at the corpus median instead of TfidfThreshold.
	TfidfMedian bool
}

// NewBuilder returns a builder with the default frequency cutoff.
func NewBuilder(stopwords []string) *Builder {
	return &Builder{
		Stopwords:          stopwords,
		MinGlobalFrequency: DefaultMinGlobalFrequency,
	}
}

// Build creates the matrix. Row order equals pair order, column order is
// the order in which terms first appear.
func (b *Builder) Build(pairs []corpus.Pair) (*Matrix, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: no documents to assemble", internalerr.ErrConfiguration)
	}

	vec := &nlp.CountVectoriser{Vocabulary: make(map[string]int), Tokeniser: b.normalizer()}
	vec.Fit(texts(pairs)...)
	all := make([]string, len(vec.Vocabulary))
	for t, j := range vec.Vocabulary {
		all[j] = t
	}

	full, err := b.Count(pairs, all)
	if err != nil {
		return nil, err
	}
	totals := full.TermCounts()
	var terms []string
	for j, t := range all {
		if totals[j] >= float64(b.MinGlobalFrequency) {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary after filtering (min frequency %d)",
			internalerr.ErrConfiguration, b.MinGlobalFrequency)
	}

	m, err := b.Count(pairs, terms)
	if err != nil {
		return nil, err
	}
	threshold := b.TfidfThreshold
	if b.TfidfMedian {
		median, err := MedianTfidf(m)
		if err != nil {
			return nil, err
		}
		threshold = median
	}
	if threshold <= 0 {
		return m, nil
	}

	kept, err := pruneTfidf(m, threshold)
	if err != nil {
		return nil, err
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary after tf-idf pruning (threshold %g)",
			internalerr.ErrConfiguration, threshold)
	}
	return b.Count(pairs, kept)
}

// Count normalizes pairs the way Build does and counts them against a fixed
// vocabulary, for example the terms of an already fitted model. Terms never
// seen get an all-zero column.
func (b *Builder) Count(pairs []corpus.Pair, terms []string) (*Matrix, error) {
	vocab := make(map[string]int, len(terms))
	for j, t := range terms {
		vocab[t] = j
	}
	vec := &nlp.CountVectoriser{Vocabulary: vocab, Tokeniser: b.normalizer()}
	tdm, err := vec.Transform(texts(pairs)...)
	if err != nil {
		return nil, fmt.Errorf("count terms: %w", err)
	}

	rows := make([]string, len(pairs))
	for i, p := range pairs {
		rows[i] = p.ID
	}
	m := &Matrix{Rows: rows, Terms: terms}
	if len(rows) == 0 || len(terms) == 0 {
		return m, nil
	}
	m.Counts = mat.NewDense(len(rows), len(terms), nil)
	for i := range rows {
		for j := range terms {
			m.Counts.Set(i, j, tdm.At(j, i))
		}
	}
	return m, nil
}

func (b *Builder) normalizer() *Normalizer {
	norm := NewNormalizer(b.Stopwords)
	norm.SetMinLength(b.MinTermLength)
	return norm
}

func texts(pairs []corpus.Pair) []string {
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.Text
	}
	return out
}

// MeanTfidf returns each term's mean tf-idf weight over all documents.
func MeanTfidf(m *Matrix) ([]float64, error) {
	tfidf := nlp.NewTfidfTransformer()
	weighted, err := tfidf.FitTransform(m.TermsByDocs())
	if err != nil {
		return nil, fmt.Errorf("tf-idf: %w", err)
	}

	nterms, ndocs := weighted.Dims()
	means := make([]float64, nterms)
	for j := 0; j < nterms; j++ {
		var sum float64
		for i := 0; i < ndocs; i++ {
			sum += weighted.At(j, i)
		}
		means[j] = sum / float64(ndocs)
	}
	return means, nil
}

func pruneTfidf(m *Matrix, threshold float64) ([]string, error) {
	means, err := MeanTfidf(m)
	if err != nil {
		return nil, err
	}
	var kept []string
	for j, t := range m.Terms {
		if means[j] >= threshold {
			kept = append(kept, t)
		}
	}
	return kept, nil
}

// MedianTfidf returns the median of MeanTfidf; pruning at it keeps about
// half of the vocabulary.
func MedianTfidf(m *Matrix) (float64, error) {
	means, err := MeanTfidf(m)
	if err != nil {
		return 0, err
	}
	if len(means) == 0 {
		return 0, nil
	}
	sorted := append([]float64(nil), means...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], nil
	}
	return (sorted[mid-1] + sorted[mid]) / 2, nil
}
