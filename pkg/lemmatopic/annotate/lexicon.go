package annotate

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Lexicon is an offline annotator backed by a form -> lemma dictionary.
//
// It is a small stand-in for a real tagger: punctuation and numbers get
// their own tags, dictionary entries get their listed tag (X when none),
// and capitalised words that are neither sentence-initial nor in the
// dictionary are treated as proper nouns.
type Lexicon struct {
	lemmas map[string]entry

	// FallbackToSurface uses the lowercased form as lemma for unknown words
	// instead of reporting the lemma as absent.
	FallbackToSurface bool
}

type entry struct {
	lemma string
	tag   Tag
}

// NewLexicon builds a lexicon annotator from a form -> lemma map.
func NewLexicon(lemmas map[string]string) *Lexicon {
	l := &Lexicon{lemmas: make(map[string]entry, len(lemmas))}
	for form, lemma := range lemmas {
		l.Add(form, lemma, TagOther)
	}
	return l
}

// Add registers a form with its lemma and tag.
func (l *Lexicon) Add(form, lemma string, tag Tag) {
	l.lemmas[strings.ToLower(form)] = entry{lemma: lemma, tag: tag}
}

// Len returns the number of dictionary forms.
func (l *Lexicon) Len() int { return len(l.lemmas) }

// LoadLexicon loads a dictionary from YAML or TSV, chosen by extension.
//
// YAML format:
//
//	lemmas:
//	  went: go
//	  mice: mouse
//	tags:
//	  went: VERB
//
// TSV format: form<TAB>lemma[<TAB>tag], '#' starts a comment.
func LoadLexicon(path string) (*Lexicon, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadLexiconYAML(path)
	default:
		return loadLexiconTSV(path)
	}
}

func loadLexiconYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config struct {
		Lemmas map[string]string `yaml:"lemmas"`
		Tags   map[string]string `yaml:"tags"`
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	l := NewLexicon(nil)
	for form, lemma := range config.Lemmas {
		tag := TagOther
		if t, ok := config.Tags[form]; ok {
			tag = ParseTag(t)
		}
		l.Add(form, lemma, tag)
	}
	return l, nil
}

func loadLexiconTSV(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	l := NewLexicon(nil)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}
		tag := TagOther
		if len(parts) > 2 {
			tag = ParseTag(parts[2])
		}
		l.Add(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), tag)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return l, nil
}

// Annotate implements Annotator.
func (l *Lexicon) Annotate(ctx context.Context, text string) (Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("lexicon", err)
	}

	var table Table
	sentenceStart := true
	for _, raw := range splitTokens(text) {
		tok := Token{Position: len(table) + 1, Surface: raw}
		first := []rune(raw)[0]

		switch {
		case unicode.IsPunct(first) || unicode.IsSymbol(first):
			tok.Tag = TagPunctuation
			if unicode.IsSymbol(first) {
				tok.Tag = TagSymbol
			}
			tok.Lemma = Lemma(raw)
			if raw == "." || raw == "!" || raw == "?" {
				sentenceStart = true
			}
			table = append(table, tok)
			continue
		case unicode.IsDigit(first):
			tok.Tag = TagNumeral
			tok.Lemma = Lemma(raw)
		default:
			lower := strings.ToLower(raw)
			if e, ok := l.lemmas[lower]; ok {
				tok.Tag = e.tag
				tok.Lemma = Lemma(e.lemma)
			} else if unicode.IsUpper(first) && !sentenceStart {
				tok.Tag = TagProperNoun
				tok.Lemma = Lemma(raw)
			} else {
				tok.Tag = TagOther
				if l.FallbackToSurface {
					tok.Lemma = Lemma(lower)
				}
			}
		}
		sentenceStart = false
		table = append(table, tok)
	}
	return table, nil
}

// splitTokens breaks text into word, number and single punctuation tokens.
// Apostrophes and hyphens inside a word stay with it.
func splitTokens(text string) []string {
	var tokens []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			tokens = append(tokens, string(current))
			current = current[:0]
		}
	}

	runes := []rune(text)
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r):
			current = append(current, r)
		case (r == '\'' || r == '’' || r == '-') && len(current) > 0 && i+1 < len(runes) && unicode.IsLetter(runes[i+1]):
			current = append(current, r)
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()
	return tokens
}
