// Package config holds the run parameters of a lemmatopic run.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/annotate"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/chunk"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/dtm"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/internalerr"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/stoplist"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/topic"
)

// Annotator kinds.
const (
	AnnotatorUDPipe  = "udpipe"
	AnnotatorLexicon = "lexicon"
	AnnotatorCoNLLU  = "conllu"
)

// Stopword sources.
const (
	StopwordsFile      = "file"
	StopwordsGenerated = "generated"
)

// Config is the full set of run parameters.
type Config struct {
	InputDir           string       `yaml:"input_dir"`
	OutputDir          string       `yaml:"output_dir"`
	Include            string       `yaml:"include"`
	StripHTML          bool         `yaml:"strip_html"`
	Language           string       `yaml:"language"`
	Annotator          Annotator    `yaml:"annotator"`
	Chunk              Chunk        `yaml:"chunk"`
	Stopwords          Stopwords    `yaml:"stopwords"`
	MinGlobalFrequency int          `yaml:"min_global_frequency"`
	MinTermLength      int          `yaml:"min_term_length"`
	TfidfThreshold     float64      `yaml:"tfidf_threshold"`
	TfidfMedian        bool         `yaml:"tfidf_median"`
	Topics             topic.Params `yaml:"topics"`
	Workers            int          `yaml:"workers"`
	StorePath          string       `yaml:"store_path"`
	WordcloudTerms     int          `yaml:"wordcloud_terms"`
}

// Annotator selects and configures the annotation backend.
type Annotator struct {
	Kind              string `yaml:"kind"`
	Endpoint          string `yaml:"endpoint"`
	LexiconPath       string `yaml:"lexicon_path"`
	FallbackToSurface bool   `yaml:"fallback_to_surface"`
	CoNLLUDir         string `yaml:"conllu_dir"`
}

// Chunk mirrors chunk.Config with plain tag names.
type Chunk struct {
	Size          int      `yaml:"size"`
	KeepRemainder bool     `yaml:"keep_remainder"`
	ExcludedTags  []string `yaml:"excluded_tags"`
}

// Stopwords selects where the stopword list comes from.
type Stopwords struct {
	Source            string  `yaml:"source"`
	Path              string  `yaml:"path"`
	GenerateDFPercent float64 `yaml:"generate_df_percent"`
	GenerateLimit     int     `yaml:"generate_limit"`
}

// Default returns the standard parameters: UDPipe annotation, chunks of
// 1000 lemmas without proper nouns, minimum term frequency 5 and 25 topics.
func Default() Config {
	th := stoplist.DefaultThresholds()
	cc := chunk.DefaultConfig()
	excluded := make([]string, len(cc.ExcludedTags))
	for i, t := range cc.ExcludedTags {
		excluded[i] = string(t)
	}
	return Config{
		InputDir:  "corpus",
		OutputDir: "output",
		Include:   "*",
		Language:  "english",
		Annotator: Annotator{Kind: AnnotatorUDPipe},
		Chunk: Chunk{
			Size:          cc.Size,
			KeepRemainder: cc.KeepRemainder,
			ExcludedTags:  excluded,
		},
		Stopwords: Stopwords{
			Source:            StopwordsFile,
			GenerateDFPercent: th.DFPercent,
			GenerateLimit:     th.Limit,
		},
		MinGlobalFrequency: dtm.DefaultMinGlobalFrequency,
		Topics:             topic.DefaultParams(),
		Workers:            1,
		WordcloudTerms:     50,
	}
}

// Load reads a YAML file over the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%w: config %s", internalerr.ErrNotFound, path)
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parse %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// ChunkConfig converts the chunk section.
func (c Config) ChunkConfig() chunk.Config {
	tags := make([]annotate.Tag, len(c.Chunk.ExcludedTags))
	for i, t := range c.Chunk.ExcludedTags {
		tags[i] = annotate.ParseTag(t)
	}
	return chunk.Config{
		ExcludedTags:  tags,
		Size:          c.Chunk.Size,
		KeepRemainder: c.Chunk.KeepRemainder,
	}
}

// Validate checks the configuration for values no stage can run with.
func (c Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("%w: input_dir is required", internalerr.ErrInvalidConfig)
	}
	switch c.Annotator.Kind {
	case AnnotatorUDPipe:
		if c.Language == "" {
			return fmt.Errorf("%w: language is required for udpipe", internalerr.ErrInvalidConfig)
		}
	case AnnotatorLexicon:
		if c.Annotator.LexiconPath == "" {
			return fmt.Errorf("%w: annotator.lexicon_path is required", internalerr.ErrInvalidConfig)
		}
	case AnnotatorCoNLLU:
		if c.Annotator.CoNLLUDir == "" {
			return fmt.Errorf("%w: annotator.conllu_dir is required", internalerr.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown annotator kind %q", internalerr.ErrInvalidConfig, c.Annotator.Kind)
	}
	for _, t := range c.Chunk.ExcludedTags {
		if !annotate.Tag(strings.ToUpper(strings.TrimSpace(t))).Valid() {
			return fmt.Errorf("%w: unknown tag %q in chunk.excluded_tags", internalerr.ErrInvalidConfig, t)
		}
	}
	if err := c.ChunkConfig().Validate(); err != nil {
		return err
	}
	switch c.Stopwords.Source {
	case StopwordsFile, StopwordsGenerated:
	default:
		return fmt.Errorf("%w: unknown stopwords source %q", internalerr.ErrInvalidConfig, c.Stopwords.Source)
	}
	if c.MinGlobalFrequency < 1 {
		return fmt.Errorf("%w: min_global_frequency must be >= 1", internalerr.ErrInvalidConfig)
	}
	if c.TfidfThreshold < 0 {
		return fmt.Errorf("%w: tfidf_threshold must be >= 0", internalerr.ErrInvalidConfig)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be >= 1", internalerr.ErrInvalidConfig)
	}
	return c.Topics.Validate()
}
