package annotate

import (
	"context"
	"fmt"
	"strings"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/internalerr"
)

// Tag is a coarse Universal Dependencies part-of-speech tag.
type Tag string

// The closed tag set produced by annotators.
const (
	TagAdjective   Tag = "ADJ"
	TagAdposition  Tag = "ADP"
	TagAdverb      Tag = "ADV"
	TagAuxiliary   Tag = "AUX"
	TagCoordConj   Tag = "CCONJ"
	TagDeterminer  Tag = "DET"
	TagInterject   Tag = "INTJ"
	TagNoun        Tag = "NOUN"
	TagNumeral     Tag = "NUM"
	TagParticle    Tag = "PART"
	TagPronoun     Tag = "PRON"
	TagProperNoun  Tag = "PROPN"
	TagPunctuation Tag = "PUNCT"
	TagSubordConj  Tag = "SCONJ"
	TagSymbol      Tag = "SYM"
	TagVerb        Tag = "VERB"
	TagOther       Tag = "X"
)

var knownTags = map[Tag]struct{}{
	TagAdjective: {}, TagAdposition: {}, TagAdverb: {}, TagAuxiliary: {},
	TagCoordConj: {}, TagDeterminer: {}, TagInterject: {}, TagNoun: {},
	TagNumeral: {}, TagParticle: {}, TagPronoun: {}, TagProperNoun: {},
	TagPunctuation: {}, TagSubordConj: {}, TagSymbol: {}, TagVerb: {},
	TagOther: {},
}

// ParseTag maps a UPOS string onto the closed tag set. Unknown tags become X.
func ParseTag(s string) Tag {
	t := Tag(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := knownTags[t]; ok {
		return t
	}
	return TagOther
}

// Valid reports whether t belongs to the closed tag set.
func (t Tag) Valid() bool {
	_, ok := knownTags[t]
	return ok
}

// Token is one row of an annotation table.
type Token struct {
	Position int     // 1-based position in the document's token stream
	Surface  string  // original form
	Lemma    *string // nil when the annotator has no lemma
	Tag      Tag
}

// HasLemma reports whether the annotator produced a lemma.
func (t Token) HasLemma() bool { return t.Lemma != nil }

// Table is the ordered token annotation of a single document.
type Table []Token

// Lemma is a helper for building tokens with a present lemma.
func Lemma(s string) *string { return &s }

// Annotator turns a document's text into an annotation table.
// Implementations may be slow; a failure only affects that document.
type Annotator interface {
	Annotate(ctx context.Context, text string) (Table, error)
}

// Func adapts a plain function to the Annotator interface.
type Func func(ctx context.Context, text string) (Table, error)

// Annotate implements Annotator.
func (f Func) Annotate(ctx context.Context, text string) (Table, error) {
	return f(ctx, text)
}

// wrap marks err as an annotation failure.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %v", op, internalerr.ErrAnnotation, err)
}
