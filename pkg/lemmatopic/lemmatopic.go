// Package lemmatopic runs the lemmatize, chunk, assemble and fit pipeline
// over a directory of plain-text documents.
package lemmatopic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/annotate"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/chunk"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/corpus"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/dtm"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/internalerr"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/metrics"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/reader"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/stoplist"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/store"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/topic"
)

// Files written into OutputDir next to the corpus files.
const (
	ModelFile     = "model.json"
	StopwordsFile = "stopwords.yaml" // only when stopwords are generated
)

// Pipeline sequences the stages. Reader, Annotator, Chunker, Assembler and
// Trainer are required; the rest are optional.
type Pipeline struct {
	Reader    reader.Reader
	Annotator annotate.Annotator
	Chunker   *chunk.Chunker
	Assembler *dtm.Builder
	Trainer   topic.Trainer
	Params    topic.Params

	// GenerateStopwords, when set, adds high document-frequency lemmas of
	// the chunked corpus to the assembler's stopwords.
	GenerateStopwords *stoplist.Thresholds

	// OutputDir receives the companion corpus files and the model.
	OutputDir string
	Store     store.Store
	Metrics   *metrics.Metrics
	Logger    *slog.Logger

	// Workers > 1 annotates documents in parallel. Output order does not
	// depend on it.
	Workers int
	// Language is recorded on stored runs.
	Language string
}

// Report describes what happened to each input document.
type Report struct {
	Documents int
	Skipped   []Skipped
	Chunks    map[string]int // document id -> chunks contributed
}

// Skipped is a document abandoned after a recoverable failure.
type Skipped struct {
	Path string
	Err  error
}

// Result is everything a full run produced.
type Result struct {
	RunID     string
	Corpus    *corpus.Corpus
	Report    Report
	Stopwords []string
	Matrix    *dtm.Matrix
	Model     *topic.Model
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func (p *Pipeline) check() error {
	switch {
	case p.Annotator == nil:
		return fmt.Errorf("%w: no annotator", internalerr.ErrConfiguration)
	case p.Chunker == nil:
		return fmt.Errorf("%w: no chunker", internalerr.ErrConfiguration)
	}
	return nil
}

type docResult struct {
	path  string
	id    string
	pairs []corpus.Pair
	err   error
}

// Lemmatize reads, annotates and chunks every document in dir. Documents
// that cannot be read or annotated are logged and skipped. Cancellation is
// honoured between documents, never during one.
func (p *Pipeline) Lemmatize(ctx context.Context, dir string) (*corpus.Corpus, Report, error) {
	report := Report{Chunks: make(map[string]int)}
	if err := p.check(); err != nil {
		return nil, report, internalerr.Stage(internalerr.StageConfigure, err)
	}

	start := time.Now()
	paths, err := p.Reader.List(dir)
	if err != nil {
		return nil, report, internalerr.Stage(internalerr.StageRead, err)
	}
	if len(paths) == 0 {
		return nil, report, internalerr.Stage(internalerr.StageRead,
			fmt.Errorf("%w: no documents in %s", internalerr.ErrConfiguration, dir))
	}
	report.Documents = len(paths)

	results := make([]docResult, len(paths))
	if p.Workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.Workers)
		for i, path := range paths {
			if gctx.Err() != nil {
				break
			}
			i, path := i, path
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = p.document(gctx, path)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, report, internalerr.Stage(internalerr.StageAnnotate, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, report, internalerr.Stage(internalerr.StageAnnotate, err)
		}
	} else {
		for i, path := range paths {
			if err := ctx.Err(); err != nil {
				return nil, report, internalerr.Stage(internalerr.StageAnnotate, err)
			}
			results[i] = p.document(ctx, path)
		}
	}

	c := corpus.New()
	for _, r := range results {
		if r.err == nil {
			if err := c.Append(r.pairs...); err != nil {
				r.err = &internalerr.DocumentError{Path: r.path, Err: fmt.Errorf("%w: %v", internalerr.ErrRead, err)}
				p.Metrics.Skipped(internalerr.StageChunk)
			}
		}
		if r.err != nil {
			if !internalerr.IsRecoverable(r.err) {
				return nil, report, internalerr.Stage(internalerr.StageAnnotate, r.err)
			}
			p.logger().Warn("skipping document", "file", r.path, "err", r.err)
			report.Skipped = append(report.Skipped, Skipped{Path: r.path, Err: r.err})
			continue
		}
		report.Chunks[r.id] = len(r.pairs)
	}

	if p.Metrics != nil {
		p.Metrics.ChunksEmitted.Add(float64(c.Len()))
		p.Metrics.ObserveStage(internalerr.StageChunk, start)
	}
	p.logger().Info("corpus lemmatized",
		"dir", dir,
		"documents", report.Documents,
		"skipped", len(report.Skipped),
		"chunks", c.Len(),
		"elapsed", time.Since(start))
	return c, report, nil
}

// document runs read, annotate and chunk for one file. Failures are
// returned in the result; they never stop the batch.
func (p *Pipeline) document(ctx context.Context, path string) docResult {
	res := docResult{path: path}

	doc, err := p.Reader.Read(path)
	if err != nil {
		p.Metrics.Skipped(internalerr.StageRead)
		res.err = err
		return res
	}
	res.id = doc.ID
	if p.Metrics != nil {
		p.Metrics.DocumentsRead.Inc()
	}

	start := time.Now()
	table, err := p.Annotator.Annotate(annotate.WithDocumentID(ctx, doc.ID), doc.Text)
	if p.Metrics != nil {
		p.Metrics.AnnotationSeconds.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		p.Metrics.Skipped(internalerr.StageAnnotate)
		if !errors.Is(err, internalerr.ErrAnnotation) {
			err = fmt.Errorf("%w: %v", internalerr.ErrAnnotation, err)
		}
		res.err = &internalerr.DocumentError{Path: path, Err: err}
		return res
	}

	res.pairs = p.Chunker.Document(doc.ID, table)
	p.logger().Debug("document chunked", "file", path, "tokens", len(table), "chunks", len(res.pairs))
	return res
}

// Run lemmatizes dir and fits a model on the result.
func (p *Pipeline) Run(ctx context.Context, dir string) (*Result, error) {
	c, report, err := p.Lemmatize(ctx, dir)
	if err != nil {
		return nil, err
	}
	return p.fit(ctx, dir, c, report)
}

// FitCorpus fits a model on an already chunked corpus, for example one read
// back with corpus.ReadFiles.
func (p *Pipeline) FitCorpus(ctx context.Context, c *corpus.Corpus) (*Result, error) {
	report := Report{Chunks: make(map[string]int)}
	return p.fit(ctx, "", c, report)
}

func (p *Pipeline) fit(ctx context.Context, dir string, c *corpus.Corpus, report Report) (*Result, error) {
	if c == nil || c.Len() == 0 {
		return nil, internalerr.Stage(internalerr.StageChunk,
			fmt.Errorf("%w: no chunks survived; documents shorter than the chunk size contribute nothing", internalerr.ErrConfiguration))
	}
	if p.Assembler == nil || p.Trainer == nil {
		return nil, internalerr.Stage(internalerr.StageConfigure,
			fmt.Errorf("%w: assembler and trainer are required", internalerr.ErrConfiguration))
	}
	res := &Result{Corpus: c, Report: report}

	builder := *p.Assembler
	if p.GenerateStopwords != nil {
		stops, added := stoplist.Generate(stoplist.NewManager(builder.Stopwords), c.Texts(), *p.GenerateStopwords)
		builder.Stopwords = stops.All()
		p.logger().Info("stopwords generated", "added", len(added), "total", stops.Len())
	}
	res.Stopwords = builder.Stopwords

	if p.OutputDir != "" {
		if err := corpus.WriteFiles(p.OutputDir, c); err != nil {
			return nil, internalerr.Stage(internalerr.StagePersist, err)
		}
		if p.GenerateStopwords != nil {
			path := filepath.Join(p.OutputDir, StopwordsFile)
			if err := stoplist.Save(path, stoplist.NewManager(res.Stopwords)); err != nil {
				return nil, internalerr.Stage(internalerr.StagePersist, err)
			}
		}
	}
	if p.Store != nil {
		run, err := p.Store.CreateRun(ctx, store.Run{
			InputDir:  dir,
			Language:  p.Language,
			ChunkSize: p.chunkSize(),
			Params:    p.Params,
		})
		if err != nil {
			return nil, internalerr.Stage(internalerr.StagePersist, err)
		}
		res.RunID = run.ID
		if err := p.Store.SaveChunks(ctx, run.ID, c); err != nil {
			return nil, internalerr.Stage(internalerr.StagePersist, err)
		}
		if err := p.Store.SaveStoplist(ctx, run.ID, res.Stopwords); err != nil {
			return nil, internalerr.Stage(internalerr.StagePersist, err)
		}
	}

	start := time.Now()
	matrix, err := builder.Build(c.Pairs())
	if err != nil {
		return nil, internalerr.Stage(internalerr.StageAssemble, err)
	}
	res.Matrix = matrix
	docs, terms := matrix.Dims()
	if empty := matrix.EmptyRows(); len(empty) > 0 {
		p.logger().Warn("chunks with no surviving terms", "count", len(empty))
	}
	if p.Metrics != nil {
		p.Metrics.VocabularySize.Set(float64(terms))
		p.Metrics.ObserveStage(internalerr.StageAssemble, start)
	}
	p.logger().Info("matrix assembled", "docs", docs, "terms", terms, "tokens", floats.Sum(matrix.TermCounts()))

	if err := ctx.Err(); err != nil {
		return nil, internalerr.Stage(internalerr.StageFit, err)
	}
	start = time.Now()
	model, err := p.Trainer.Fit(ctx, matrix, p.Params)
	if err != nil {
		return nil, internalerr.Stage(internalerr.StageFit, err)
	}
	res.Model = model
	p.Metrics.ObserveStage(internalerr.StageFit, start)

	if p.OutputDir != "" {
		if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
			return nil, internalerr.Stage(internalerr.StagePersist, err)
		}
		if err := model.Save(filepath.Join(p.OutputDir, ModelFile)); err != nil {
			return nil, internalerr.Stage(internalerr.StagePersist, err)
		}
	}
	if p.Store != nil {
		if err := p.Store.SaveModel(ctx, res.RunID, model); err != nil {
			return nil, internalerr.Stage(internalerr.StagePersist, err)
		}
	}

	p.Metrics.Succeeded()
	return res, nil
}

func (p *Pipeline) chunkSize() int {
	if p.Chunker == nil {
		return 0
	}
	return p.Chunker.Config().Size
}
