package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/annotate"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/internalerr"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Chunk.Size != 1000 {
		t.Errorf("default chunk size = %d, want 1000", cfg.Chunk.Size)
	}
	if cfg.MinGlobalFrequency != 5 {
		t.Errorf("default min frequency = %d, want 5", cfg.MinGlobalFrequency)
	}
	if cfg.Topics.K != 25 || cfg.Topics.Seed != 9161 {
		t.Errorf("unexpected topic defaults: %+v", cfg.Topics)
	}
	cc := cfg.ChunkConfig()
	if len(cc.ExcludedTags) != 1 || cc.ExcludedTags[0] != annotate.TagProperNoun {
		t.Errorf("default excluded tags = %v", cc.ExcludedTags)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lemmatopic.yaml")
	yamlContent := `input_dir: texts
chunk:
  size: 500
  keep_remainder: true
topics:
  k: 10
`
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.InputDir != "texts" || cfg.Chunk.Size != 500 || !cfg.Chunk.KeepRemainder {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Topics.K != 10 {
		t.Errorf("topics.k = %d, want 10", cfg.Topics.K)
	}
	// untouched keys keep their defaults
	if cfg.Topics.Seed != 9161 || cfg.MinGlobalFrequency != 5 {
		t.Errorf("defaults lost: seed=%d minfreq=%d", cfg.Topics.Seed, cfg.MinGlobalFrequency)
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("/nonexistent/lemmatopic.yaml")
	if !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("missing file: got %v", err)
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("chunk: [unclosed"), 0o644)
	_, err = Load(path)
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("bad yaml: got %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"chunk size", func(c *Config) { c.Chunk.Size = 0 }},
		{"annotator kind", func(c *Config) { c.Annotator.Kind = "magic" }},
		{"lexicon path", func(c *Config) { c.Annotator.Kind = AnnotatorLexicon }},
		{"conllu dir", func(c *Config) { c.Annotator.Kind = AnnotatorCoNLLU }},
		{"tag", func(c *Config) { c.Chunk.ExcludedTags = []string{"PROPERNOUN"} }},
		{"stopword source", func(c *Config) { c.Stopwords.Source = "web" }},
		{"min frequency", func(c *Config) { c.MinGlobalFrequency = 0 }},
		{"workers", func(c *Config) { c.Workers = 0 }},
		{"topics", func(c *Config) { c.Topics.K = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"LEMMATOPIC_CHUNK_SIZE":     "250",
		"LEMMATOPIC_EXCLUDED_TAGS":  "propn, num",
		"LEMMATOPIC_TOPICS_K":       "7",
		"LEMMATOPIC_TOPICS_SEED":    "42",
		"LEMMATOPIC_KEEP_REMAINDER": "true",
		"LEMMATOPIC_LANGUAGE":       "latin",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Chunk.Size != 250 || !cfg.Chunk.KeepRemainder {
		t.Errorf("chunk overrides not applied: %+v", cfg.Chunk)
	}
	if cfg.Topics.K != 7 || cfg.Topics.Seed != 42 {
		t.Errorf("topic overrides not applied: %+v", cfg.Topics)
	}
	if cfg.Language != "latin" {
		t.Errorf("language = %q", cfg.Language)
	}
	if len(cfg.Chunk.ExcludedTags) != 2 {
		t.Errorf("excluded tags = %v", cfg.Chunk.ExcludedTags)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("lowercase tags should validate: %v", err)
	}

	env["LEMMATOPIC_WORKERS"] = "many"
	if err := cfg.ApplyEnv(lookup); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("bad number: got %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	os.WriteFile(path, []byte("LEMMATOPIC_TEST_DOTENV=from-file\n"), 0o644)
	t.Setenv("LEMMATOPIC_TEST_DOTENV", "")
	os.Unsetenv("LEMMATOPIC_TEST_DOTENV")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("LEMMATOPIC_TEST_DOTENV"); got != "from-file" {
		t.Errorf("dotenv value = %q", got)
	}
}

func TestBuildLexiconComponents(t *testing.T) {
	dir := t.TempDir()
	lex := filepath.Join(dir, "lemmas.tsv")
	os.WriteFile(lex, []byte("ships\tship\tNOUN\n"), 0o644)
	stops := filepath.Join(dir, "stop.txt")
	os.WriteFile(stops, []byte("# common\nthe\nof\n"), 0o644)

	cfg := Default()
	cfg.Annotator.Kind = AnnotatorLexicon
	cfg.Annotator.LexiconPath = lex
	cfg.Stopwords.Path = stops

	comp, err := Build(cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := comp.Annotator.(*annotate.Lexicon); !ok {
		t.Errorf("annotator is %T, want *annotate.Lexicon", comp.Annotator)
	}
	if comp.Stoplist.Len() != 2 || len(comp.Builder.Stopwords) != 2 {
		t.Errorf("stoplist not wired: %d / %v", comp.Stoplist.Len(), comp.Builder.Stopwords)
	}
	if comp.Chunker.Config().Size != 1000 {
		t.Errorf("chunker size = %d", comp.Chunker.Config().Size)
	}
}

func TestBuildMissingFiles(t *testing.T) {
	cfg := Default()
	cfg.Stopwords.Path = "/nonexistent/stop.yaml"
	if _, err := Build(cfg); err == nil {
		t.Error("should error on nonexistent stoplist")
	}

	cfg = Default()
	cfg.Annotator.Kind = AnnotatorLexicon
	cfg.Annotator.LexiconPath = "/nonexistent/lemmas.tsv"
	if _, err := Build(cfg); err == nil {
		t.Error("should error on nonexistent lexicon")
	}
}
