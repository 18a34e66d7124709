package topic

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/internalerr"
)

// RowTolerance is the allowed deviation of a posterior row sum from 1.
const RowTolerance = 1e-6

// Model is a fitted topic model. It is read-only once returned by a Trainer.
//
// TermTopic is K x len(Terms): row k is topic k's distribution over terms.
// DocTopic is len(DocIDs) x K: row d is document d's distribution over topics.
type Model struct {
	K         int
	Terms     []string
	DocIDs    []string
	TermTopic *mat.Dense
	DocTopic  *mat.Dense
	Params    Params
}

// TopicTerms returns a copy of topic k's term weights.
func (m *Model) TopicTerms(k int) ([]float64, error) {
	if k < 0 || k >= m.K {
		return nil, fmt.Errorf("%w: topic %d (model has %d)", internalerr.ErrNotFound, k, m.K)
	}
	return mat.Row(nil, k, m.TermTopic), nil
}

// DocTopics returns a copy of document d's topic weights.
func (m *Model) DocTopics(d int) ([]float64, error) {
	if d < 0 || d >= len(m.DocIDs) {
		return nil, fmt.Errorf("%w: document %d (model has %d)", internalerr.ErrNotFound, d, len(m.DocIDs))
	}
	return mat.Row(nil, d, m.DocTopic), nil
}

// DocIndex finds a document row by identifier.
func (m *Model) DocIndex(id string) (int, bool) {
	for i, d := range m.DocIDs {
		if d == id {
			return i, true
		}
	}
	return -1, false
}

// Validate checks shapes and that every row of both distributions sums to 1.
func (m *Model) Validate() error {
	if m.TermTopic == nil || m.DocTopic == nil {
		return fmt.Errorf("%w: model has no distributions", internalerr.ErrFitting)
	}
	if r, c := m.TermTopic.Dims(); r != m.K || c != len(m.Terms) {
		return fmt.Errorf("%w: term-topic is %dx%d, want %dx%d", internalerr.ErrFitting, r, c, m.K, len(m.Terms))
	}
	if r, c := m.DocTopic.Dims(); r != len(m.DocIDs) || c != m.K {
		return fmt.Errorf("%w: doc-topic is %dx%d, want %dx%d", internalerr.ErrFitting, r, c, len(m.DocIDs), m.K)
	}
	if err := checkRows("term-topic", m.TermTopic); err != nil {
		return err
	}
	return checkRows("doc-topic", m.DocTopic)
}

func checkRows(name string, d *mat.Dense) error {
	r, _ := d.Dims()
	for i := 0; i < r; i++ {
		sum := 0.0
		for _, v := range d.RawRowView(i) {
			if v < 0 || math.IsNaN(v) {
				return fmt.Errorf("%w: %s row %d has invalid weight %g", internalerr.ErrFitting, name, i, v)
			}
			sum += v
		}
		if math.Abs(sum-1) > RowTolerance {
			return fmt.Errorf("%w: %s row %d sums to %g", internalerr.ErrFitting, name, i, sum)
		}
	}
	return nil
}

// rowStochastic copies src and scales each row to sum to 1. Rows with no
// usable mass become uniform.
func rowStochastic(src mat.Matrix) *mat.Dense {
	out := mat.DenseCopyOf(src)
	r, c := out.Dims()
	for i := 0; i < r; i++ {
		row := out.RawRowView(i)
		sum := 0.0
		for j, v := range row {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				row[j] = 0
				continue
			}
			sum += v
		}
		if sum <= 0 {
			for j := range row {
				row[j] = 1 / float64(c)
			}
			continue
		}
		for j := range row {
			row[j] /= sum
		}
	}
	return out
}

type modelJSON struct {
	K         int         `json:"k"`
	Terms     []string    `json:"terms"`
	DocIDs    []string    `json:"doc_ids"`
	TermTopic [][]float64 `json:"term_topic"`
	DocTopic  [][]float64 `json:"doc_topic"`
	Params    Params      `json:"params"`
}

func rows(d *mat.Dense) [][]float64 {
	r, _ := d.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, d)
	}
	return out
}

func dense(name string, data [][]float64, wantRows, wantCols int) (*mat.Dense, error) {
	if len(data) != wantRows {
		return nil, fmt.Errorf("%w: %s has %d rows, want %d", internalerr.ErrInvalidConfig, name, len(data), wantRows)
	}
	flat := make([]float64, 0, wantRows*wantCols)
	for i, row := range data {
		if len(row) != wantCols {
			return nil, fmt.Errorf("%w: %s row %d has %d columns, want %d", internalerr.ErrInvalidConfig, name, i, len(row), wantCols)
		}
		flat = append(flat, row...)
	}
	if wantRows == 0 || wantCols == 0 {
		return nil, fmt.Errorf("%w: %s is empty", internalerr.ErrInvalidConfig, name)
	}
	return mat.NewDense(wantRows, wantCols, flat), nil
}

// Encode writes the model as JSON.
func (m *Model) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	return enc.Encode(modelJSON{
		K:         m.K,
		Terms:     m.Terms,
		DocIDs:    m.DocIDs,
		TermTopic: rows(m.TermTopic),
		DocTopic:  rows(m.DocTopic),
		Params:    m.Params,
	})
}

// Decode reads a model written by Encode and validates it.
func Decode(r io.Reader) (*Model, error) {
	var raw modelJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	tt, err := dense("term_topic", raw.TermTopic, raw.K, len(raw.Terms))
	if err != nil {
		return nil, err
	}
	dt, err := dense("doc_topic", raw.DocTopic, len(raw.DocIDs), raw.K)
	if err != nil {
		return nil, err
	}
	m := &Model{
		K:         raw.K,
		Terms:     raw.Terms,
		DocIDs:    raw.DocIDs,
		TermTopic: tt,
		DocTopic:  dt,
		Params:    raw.Params,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Save writes the model to path, replacing any previous file.
func (m *Model) Save(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := m.Encode(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("save model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	return nil
}

// Load reads a model saved with Save.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: model %s", internalerr.ErrNotFound, path)
		}
		return nil, fmt.Errorf("load model: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
