// Package topic fits LDA topic models over a document-term matrix.
package topic

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/e-gun/nlp"
	"golang.org/x/exp/rand"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/dtm"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/internalerr"
)

// Trainer fits a topic model. Implementations must be deterministic for a
// fixed matrix and Params.
type Trainer interface {
	Fit(ctx context.Context, m *dtm.Matrix, p Params) (*Model, error)
}

// LDA trains with the online variational LDA from github.com/e-gun/nlp.
type LDA struct {
	Logger *slog.Logger
}

// NewLDA returns an LDA trainer logging to slog.Default().
func NewLDA() *LDA {
	return &LDA{}
}

func (l *LDA) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// Fit trains one model. The fit itself is not interruptible; ctx is only
// checked before it starts.
func (l *LDA) Fit(ctx context.Context, m *dtm.Matrix, p Params) (model *Model, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if m == nil || m.Counts == nil {
		return nil, fmt.Errorf("%w: no document-term matrix", internalerr.ErrConfiguration)
	}
	docs, terms := m.Dims()
	if docs == 0 || terms == 0 {
		return nil, fmt.Errorf("%w: empty document-term matrix (%d docs, %d terms)",
			internalerr.ErrConfiguration, docs, terms)
	}

	lda := nlp.NewLatentDirichletAllocation(p.K)
	lda.Iterations = p.Iterations
	lda.BurnInPasses = p.BurnIn
	lda.PerplexityEvaluationFrequency = p.Thinning
	lda.ChangeEvaluationFrequency = p.Thinning
	lda.Alpha = p.Alpha
	lda.Eta = p.Eta
	// a single process keeps the sampler's use of Rnd in a fixed order
	lda.Processes = 1
	lda.Rnd = rand.New(rand.NewSource(uint64(p.Seed)))

	defer func() {
		if r := recover(); r != nil {
			model = nil
			err = fmt.Errorf("%w: %v", internalerr.ErrFitting, r)
		}
	}()

	start := time.Now()
	docTopics, err := lda.FitTransform(m.TermsByDocs())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrFitting, err)
	}

	model = &Model{
		K:         p.K,
		Terms:     append([]string(nil), m.Terms...),
		DocIDs:    append([]string(nil), m.Rows...),
		TermTopic: rowStochastic(lda.Components()),
		DocTopic:  rowStochastic(docTopics.T()),
		Params:    p,
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}

	l.logger().Info("topic model fitted",
		"topics", p.K,
		"docs", docs,
		"terms", terms,
		"seed", p.Seed,
		"elapsed", time.Since(start))
	return model, nil
}
