package config

import (
	"fmt"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/annotate"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/chunk"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/dtm"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/reader"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/stoplist"
)

// Components holds the stage objects built from a Config. They are
// read-only for the duration of a run.
type Components struct {
	Reader    reader.Reader
	Annotator annotate.Annotator
	Chunker   *chunk.Chunker
	Stoplist  *stoplist.Manager
	Builder   *dtm.Builder
}

// Build validates cfg and constructs the stage components. With the
// generated stopword source the stoplist holds only the optional base file;
// corpus-derived terms are added after chunking.
func Build(cfg Config) (*Components, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	comp := &Components{
		Reader: reader.Reader{Include: cfg.Include, StripHTML: cfg.StripHTML},
	}

	switch cfg.Annotator.Kind {
	case AnnotatorUDPipe:
		comp.Annotator = annotate.NewUDPipe(cfg.Annotator.Endpoint, cfg.Language)
	case AnnotatorLexicon:
		lex, err := annotate.LoadLexicon(cfg.Annotator.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		lex.FallbackToSurface = cfg.Annotator.FallbackToSurface
		comp.Annotator = lex
	case AnnotatorCoNLLU:
		comp.Annotator = annotate.CoNLLUDir{Dir: cfg.Annotator.CoNLLUDir}
	}

	chunker, err := chunk.New(cfg.ChunkConfig())
	if err != nil {
		return nil, err
	}
	comp.Chunker = chunker

	if cfg.Stopwords.Path != "" {
		stops, err := stoplist.Load(cfg.Stopwords.Path)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		comp.Stoplist = stops
	} else {
		comp.Stoplist = stoplist.NewManager(nil)
	}

	comp.Builder = &dtm.Builder{
		Stopwords:          comp.Stoplist.All(),
		MinGlobalFrequency: cfg.MinGlobalFrequency,
		MinTermLength:      cfg.MinTermLength,
		TfidfThreshold:     cfg.TfidfThreshold,
		TfidfMedian:        cfg.TfidfMedian,
	}
	return comp, nil
}

// Thresholds returns the stopword generation thresholds.
func (c Config) Thresholds() stoplist.Thresholds {
	return stoplist.Thresholds{
		DFPercent: c.Stopwords.GenerateDFPercent,
		Limit:     c.Stopwords.GenerateLimit,
	}
}
