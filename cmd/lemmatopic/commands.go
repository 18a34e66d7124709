package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/config"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/corpus"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/dtm"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/inspect"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/internalerr"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/store"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/store/sqlite"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/topic"
)

// overrides are command-line values applied on top of the config file and
// environment. Only flags the user actually set take effect.
type overrides struct {
	output            string
	store             string
	workers           int
	topics            int
	seed              int64
	iterations        int
	chunkSize         int
	keepRemainder     bool
	annotator         string
	lexicon           string
	stopwords         string
	generateStopwords bool
}

func (o *overrides) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", "Output directory for corpus files and the model")
	f.StringVar(&o.store, "store", "", "SQLite run store path")
	f.IntVarP(&o.workers, "workers", "w", 1, "Documents annotated in parallel")
	f.IntVarP(&o.topics, "topics", "k", 0, "Number of topics")
	f.Int64Var(&o.seed, "seed", 0, "Random seed for the sampler")
	f.IntVar(&o.iterations, "iterations", 0, "Sampling iterations")
	f.IntVar(&o.chunkSize, "chunk-size", 0, "Lemmas per chunk")
	f.BoolVar(&o.keepRemainder, "keep-remainder", false, "Emit the trailing partial chunk")
	f.StringVar(&o.annotator, "annotator", "", "Annotator kind (udpipe, lexicon, conllu)")
	f.StringVar(&o.lexicon, "lexicon", "", "Lexicon TSV for the lexicon annotator")
	f.StringVar(&o.stopwords, "stopwords", "", "Stopword file")
	f.BoolVar(&o.generateStopwords, "generate-stopwords", false, "Derive stopwords from the chunked corpus")
}

func (o *overrides) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("output") {
		cfg.OutputDir = o.output
	}
	if changed("store") {
		cfg.StorePath = o.store
	}
	if changed("workers") {
		cfg.Workers = o.workers
	}
	if changed("topics") {
		cfg.Topics.K = o.topics
	}
	if changed("seed") {
		cfg.Topics.Seed = o.seed
	}
	if changed("iterations") {
		cfg.Topics.Iterations = o.iterations
	}
	if changed("chunk-size") {
		cfg.Chunk.Size = o.chunkSize
	}
	if changed("keep-remainder") {
		cfg.Chunk.KeepRemainder = o.keepRemainder
	}
	if changed("annotator") {
		cfg.Annotator.Kind = o.annotator
	}
	if changed("lexicon") {
		cfg.Annotator.LexiconPath = o.lexicon
		if !changed("annotator") {
			cfg.Annotator.Kind = config.AnnotatorLexicon
		}
	}
	if changed("stopwords") {
		cfg.Stopwords.Path = o.stopwords
	}
	if changed("generate-stopwords") && o.generateStopwords {
		cfg.Stopwords.Source = config.StopwordsGenerated
	}
}

// buildPipeline wires a pipeline from cfg. The returned cleanup closes the
// run store, if one was opened.
func (a *app) buildPipeline(ctx context.Context, cfg config.Config) (*lemmatopic.Pipeline, func(), error) {
	comp, err := config.Build(cfg)
	if err != nil {
		return nil, nil, internalerr.Stage(internalerr.StageConfigure, err)
	}
	lda := topic.NewLDA()
	lda.Logger = a.logger
	p := &lemmatopic.Pipeline{
		Reader:    comp.Reader,
		Annotator: comp.Annotator,
		Chunker:   comp.Chunker,
		Assembler: comp.Builder,
		Trainer:   lda,
		Params:    cfg.Topics,
		OutputDir: cfg.OutputDir,
		Metrics:   a.metrics,
		Logger:    a.logger,
		Workers:   cfg.Workers,
		Language:  cfg.Language,
	}
	if cfg.Stopwords.Source == config.StopwordsGenerated {
		th := cfg.Thresholds()
		p.GenerateStopwords = &th
	}

	cleanup := func() {}
	if cfg.StorePath != "" {
		st, err := sqlite.OpenSQLite(ctx, cfg.StorePath)
		if err != nil {
			return nil, nil, internalerr.Stage(internalerr.StagePersist, err)
		}
		p.Store = st
		cleanup = func() {
			if err := st.Close(); err != nil {
				a.logger.Warn("close store", "err", err)
			}
		}
	}
	return p, cleanup, nil
}

func runCmd(a *app) *cobra.Command {
	var o overrides
	cmd := &cobra.Command{
		Use:   "run [input-dir]",
		Short: "Lemmatize, chunk and fit a topic model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			o.apply(cmd, &cfg)
			if len(args) == 1 {
				cfg.InputDir = args[0]
			}
			p, cleanup, err := a.buildPipeline(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := p.Run(cmd.Context(), cfg.InputDir)
			if err != nil {
				return err
			}
			docs, terms := res.Matrix.Dims()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "documents: %d (skipped %d)\n", res.Report.Documents, len(res.Report.Skipped))
			fmt.Fprintf(out, "chunks:    %d\n", docs)
			fmt.Fprintf(out, "terms:     %d\n", terms)
			fmt.Fprintf(out, "topics:    %d\n", res.Model.K)
			fmt.Fprintf(out, "model:     %s\n", filepath.Join(cfg.OutputDir, lemmatopic.ModelFile))
			if res.RunID != "" {
				fmt.Fprintf(out, "run:       %s\n", res.RunID)
			}
			return nil
		},
	}
	o.register(cmd)
	return cmd
}

func lemmatizeCmd(a *app) *cobra.Command {
	var o overrides
	cmd := &cobra.Command{
		Use:   "lemmatize [input-dir]",
		Short: "Lemmatize and chunk documents, writing the companion corpus files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			o.apply(cmd, &cfg)
			if len(args) == 1 {
				cfg.InputDir = args[0]
			}
			p, cleanup, err := a.buildPipeline(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			c, report, err := p.Lemmatize(cmd.Context(), cfg.InputDir)
			if err != nil {
				return err
			}
			if err := corpus.WriteFiles(cfg.OutputDir, c); err != nil {
				return internalerr.Stage(internalerr.StagePersist, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d chunks from %d documents (skipped %d) written to %s\n",
				c.Len(), report.Documents, len(report.Skipped), cfg.OutputDir)
			return nil
		},
	}
	o.register(cmd)
	return cmd
}

func fitCmd(a *app) *cobra.Command {
	var o overrides
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a topic model on previously written corpus files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			o.apply(cmd, &cfg)
			c, err := corpus.ReadFiles(cfg.OutputDir)
			if err != nil {
				return internalerr.Stage(internalerr.StageRead, err)
			}
			p, cleanup, err := a.buildPipeline(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := p.FitCorpus(cmd.Context(), c)
			if err != nil {
				return err
			}
			docs, terms := res.Matrix.Dims()
			fmt.Fprintf(cmd.OutOrStdout(), "fitted %d topics over %d chunks and %d terms\n", res.Model.K, docs, terms)
			return nil
		},
	}
	o.register(cmd)
	return cmd
}

// modelSource selects a model either from a file or from the run store.
type modelSource struct {
	path  string
	runID string
	store string
}

func (s *modelSource) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&s.path, "model", "", "Model file (default <output>/model.json)")
	f.StringVar(&s.runID, "run", "", "Load the model of this run from the store")
	f.StringVar(&s.store, "store", "", "SQLite run store path")
}

func (s *modelSource) load(ctx context.Context, cfg config.Config) (*topic.Model, error) {
	if s.runID != "" {
		path := s.store
		if path == "" {
			path = cfg.StorePath
		}
		if path == "" {
			return nil, fmt.Errorf("%w: --run requires a store", internalerr.ErrInvalidConfig)
		}
		st, err := sqlite.OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		defer st.Close()
		return st.LoadModel(ctx, s.runID)
	}
	path := s.path
	if path == "" {
		path = filepath.Join(cfg.OutputDir, lemmatopic.ModelFile)
	}
	return topic.Load(path)
}

// companionCounts rebuilds the count matrix from the corpus files next to
// the model so topics can be scored. It returns nil when they are absent.
func companionCounts(cfg config.Config, m *topic.Model) (*dtm.Matrix, error) {
	c, err := corpus.ReadFiles(cfg.OutputDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b := dtm.NewBuilder(nil)
	b.MinTermLength = cfg.MinTermLength
	return b.Count(c.Pairs(), m.Terms)
}

func topicsCmd(a *app) *cobra.Command {
	var (
		src   modelSource
		terms int
	)
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "Print the top terms of each topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := src.load(cmd.Context(), a.cfg)
			if err != nil {
				return internalerr.Stage(internalerr.StageInspect, err)
			}
			var counts *dtm.Matrix
			if src.runID == "" {
				if counts, err = companionCounts(a.cfg, m); err != nil {
					a.logger.Warn("coherence unavailable", "err", err)
					counts = nil
				}
			}
			summaries, err := inspect.Summarize(m, counts, terms)
			if err != nil {
				return internalerr.Stage(internalerr.StageInspect, err)
			}
			return inspect.WriteTable(cmd.OutOrStdout(), summaries)
		},
	}
	src.register(cmd)
	cmd.Flags().IntVarP(&terms, "terms", "n", 10, "Terms shown per topic")
	return cmd
}

func wordcloudCmd(a *app) *cobra.Command {
	var (
		src   modelSource
		out   string
		terms int
		only  int
	)
	cmd := &cobra.Command{
		Use:   "wordcloud",
		Short: "Render one word cloud per topic into an HTML page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := src.load(cmd.Context(), a.cfg)
			if err != nil {
				return internalerr.Stage(internalerr.StageInspect, err)
			}
			if !cmd.Flags().Changed("terms") {
				terms = a.cfg.WordcloudTerms
			}
			if out == "" {
				out = filepath.Join(a.cfg.OutputDir, "topics.html")
			}
			f, err := os.Create(out)
			if err != nil {
				return internalerr.Stage(internalerr.StagePersist, err)
			}
			if only >= 0 {
				err = renderTopic(f, m, only, terms)
			} else {
				err = inspect.WordClouds(f, m, terms)
			}
			if err != nil {
				f.Close()
				return internalerr.Stage(internalerr.StageInspect, err)
			}
			if err := f.Close(); err != nil {
				return internalerr.Stage(internalerr.StagePersist, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().StringVar(&out, "out", "", "HTML output path (default <output>/topics.html)")
	cmd.Flags().IntVarP(&terms, "terms", "n", 50, "Terms per cloud")
	cmd.Flags().IntVar(&only, "topic", -1, "Render only this topic")
	return cmd
}

func renderTopic(w io.Writer, m *topic.Model, k, n int) error {
	terms, err := inspect.TopTerms(m, k, n)
	if err != nil {
		return err
	}
	return inspect.WordCloud(w, fmt.Sprintf("Topic %d", k), terms)
}

func docCmd(a *app) *cobra.Command {
	var (
		src    modelSource
		topics int
		words  int
	)
	cmd := &cobra.Command{
		Use:   "doc <chunk-id>",
		Short: "Show the dominant topics of one chunk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := src.load(cmd.Context(), a.cfg)
			if err != nil {
				return internalerr.Stage(internalerr.StageInspect, err)
			}
			d, ok := m.DocIndex(args[0])
			if !ok {
				return internalerr.Stage(internalerr.StageInspect,
					fmt.Errorf("%w: chunk %s", internalerr.ErrNotFound, args[0]))
			}
			weights, err := inspect.TopTopics(m, d, topics)
			if err != nil {
				return internalerr.Stage(internalerr.StageInspect, err)
			}

			out := cmd.OutOrStdout()
			if c, err := corpus.ReadFiles(a.cfg.OutputDir); err == nil {
				if text, ok := c.Lookup(args[0]); ok {
					fmt.Fprintf(out, "%s\n\n", preview(text, words))
				}
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TOPIC\tWEIGHT\tTERMS")
			for _, w := range weights {
				terms, err := inspect.TopTerms(m, w.Topic, 5)
				if err != nil {
					return internalerr.Stage(internalerr.StageInspect, err)
				}
				names := make([]string, len(terms))
				for i, t := range terms {
					names[i] = t.Term
				}
				fmt.Fprintf(tw, "%d\t%.4f\t%s\n", w.Topic, w.Weight, strings.Join(names, " "))
			}
			return tw.Flush()
		},
	}
	src.register(cmd)
	cmd.Flags().IntVarP(&topics, "topics", "n", 3, "Topics shown")
	cmd.Flags().IntVar(&words, "words", 30, "Lemmas of the chunk text shown")
	return cmd
}

// preview returns the first n space-separated words of text.
func preview(text string, n int) string {
	fields := strings.Fields(text)
	if len(fields) <= n {
		return text
	}
	return strings.Join(fields[:n], " ") + " ..."
}

func runsCmd(a *app) *cobra.Command {
	var (
		storePath string
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := storePath
			if path == "" {
				path = a.cfg.StorePath
			}
			if path == "" {
				return fmt.Errorf("%w: no store configured", internalerr.ErrInvalidConfig)
			}
			st, err := sqlite.OpenSQLite(cmd.Context(), path)
			if err != nil {
				return err
			}
			defer st.Close()
			runs, err := st.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return writeRuns(cmd.OutOrStdout(), runs)
		},
	}
	cmd.Flags().StringVar(&storePath, "store", "", "SQLite run store path")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs listed")
	return cmd
}

func writeRuns(w io.Writer, runs []store.Run) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tINPUT\tCHUNKS\tK\tFITTED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%t\n",
			r.ID, r.CreatedAt.Format(time.RFC3339), r.InputDir, r.Chunks, r.Params.K, r.Fitted)
	}
	return tw.Flush()
}
