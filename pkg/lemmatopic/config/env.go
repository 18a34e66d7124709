package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/internalerr"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LEMMATOPIC_"

// LoadDotEnv loads the given .env files (default ".env") into the process
// environment. Missing files are ignored; existing variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from LEMMATOPIC_* variables found by lookup,
// for example LEMMATOPIC_CHUNK_SIZE or LEMMATOPIC_TOPICS_K.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	var errs []error
	num := func(name string, dst *int) {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	flt := func(name string, dst *float64) {
		if v, ok := lookup(EnvPrefix + name); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = f
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}

	str("INPUT_DIR", &c.InputDir)
	str("OUTPUT_DIR", &c.OutputDir)
	str("INCLUDE", &c.Include)
	boolean("STRIP_HTML", &c.StripHTML)
	str("LANGUAGE", &c.Language)
	str("ANNOTATOR", &c.Annotator.Kind)
	str("UDPIPE_ENDPOINT", &c.Annotator.Endpoint)
	str("LEXICON_PATH", &c.Annotator.LexiconPath)
	str("CONLLU_DIR", &c.Annotator.CoNLLUDir)
	num("CHUNK_SIZE", &c.Chunk.Size)
	boolean("KEEP_REMAINDER", &c.Chunk.KeepRemainder)
	if v, ok := lookup(EnvPrefix + "EXCLUDED_TAGS"); ok {
		c.Chunk.ExcludedTags = splitList(v)
	}
	str("STOPWORDS_SOURCE", &c.Stopwords.Source)
	str("STOPWORDS_PATH", &c.Stopwords.Path)
	num("MIN_GLOBAL_FREQUENCY", &c.MinGlobalFrequency)
	flt("TFIDF_THRESHOLD", &c.TfidfThreshold)
	boolean("TFIDF_MEDIAN", &c.TfidfMedian)
	num("TOPICS_K", &c.Topics.K)
	if v, ok := lookup(EnvPrefix + "TOPICS_SEED"); ok {
		seed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sTOPICS_SEED: %w", EnvPrefix, err))
		} else {
			c.Topics.Seed = seed
		}
	}
	num("TOPICS_ITERATIONS", &c.Topics.Iterations)
	num("WORKERS", &c.Workers)
	str("STORE_PATH", &c.StorePath)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// FromEnvironment loads .env and applies the process environment.
func (c *Config) FromEnvironment() error {
	if err := LoadDotEnv(); err != nil {
		return err
	}
	return c.ApplyEnv(os.LookupEnv)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
