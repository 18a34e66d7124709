package annotate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/internalerr"
)

type fakeProcessor struct {
	out string
	err error
}

func (f fakeProcessor) Process(ctx context.Context, text string) (string, error) {
	return f.out, f.err
}

func TestUDPipeAnnotate(t *testing.T) {
	u := NewUDPipeWithProcessor(fakeProcessor{out: sample})

	table, err := u.Annotate(context.Background(), "Alice didn't go.")
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if len(table) != 6 {
		t.Errorf("expected 6 tokens, got %d", len(table))
	}
}

func TestUDPipeFailureIsAnnotationError(t *testing.T) {
	u := NewUDPipeWithProcessor(fakeProcessor{err: errors.New("model not loaded")})

	_, err := u.Annotate(context.Background(), "text")
	if !errors.Is(err, internalerr.ErrAnnotation) {
		t.Fatalf("expected ErrAnnotation, got %v", err)
	}
}

func TestUDPipeMalformedOutput(t *testing.T) {
	u := NewUDPipeWithProcessor(fakeProcessor{out: "garbage line\n"})

	_, err := u.Annotate(context.Background(), "text")
	if !errors.Is(err, internalerr.ErrAnnotation) {
		t.Fatalf("expected ErrAnnotation, got %v", err)
	}
}

func TestCoNLLUDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "doc1.conllu"), []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	ann := CoNLLUDir{Dir: dir}

	table, err := ann.Annotate(WithDocumentID(context.Background(), "doc1"), "")
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if len(table) != 6 {
		t.Errorf("expected 6 tokens, got %d", len(table))
	}

	_, err = ann.Annotate(WithDocumentID(context.Background(), "missing"), "")
	if !errors.Is(err, internalerr.ErrAnnotation) {
		t.Errorf("missing file should be an annotation error, got %v", err)
	}

	_, err = ann.Annotate(context.Background(), "")
	if !errors.Is(err, internalerr.ErrAnnotation) {
		t.Errorf("missing document id should be an annotation error, got %v", err)
	}
}
