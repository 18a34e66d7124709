package annotate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

type docIDKey struct{}

// WithDocumentID attaches the document identifier to ctx so annotators that
// work from per-document files can find their input.
func WithDocumentID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, docIDKey{}, id)
}

// DocumentID returns the identifier stored by WithDocumentID.
func DocumentID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(docIDKey{}).(string)
	return id, ok && id != ""
}

// CoNLLUDir reads pre-annotated <id>.conllu files instead of tagging text.
type CoNLLUDir struct {
	Dir string
}

// Annotate implements Annotator. The text argument is ignored.
func (c CoNLLUDir) Annotate(ctx context.Context, _ string) (Table, error) {
	id, ok := DocumentID(ctx)
	if !ok {
		return nil, wrap("conllu", errors.New("no document id in context"))
	}
	f, err := os.Open(filepath.Join(c.Dir, id+".conllu"))
	if err != nil {
		return nil, wrap("conllu", err)
	}
	defer f.Close()

	table, err := ParseCoNLLU(f)
	if err != nil {
		return nil, wrap("conllu", fmt.Errorf("%s: %w", id, err))
	}
	return table, nil
}
