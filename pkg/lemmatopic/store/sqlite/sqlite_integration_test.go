package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/corpus"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/store"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/store/storetest"
)

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
		if err != nil {
			t.Fatalf("OpenSQLite: %v", err)
		}
		return st
	})
}

// TestSQLiteReopen checks data survives closing the database.
func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	st, err := OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	run, err := st.CreateRun(ctx, store.Run{InputDir: "corpus"})
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	c, _ := corpus.FromPairs([]corpus.Pair{{ID: "doc1_000", Text: "alpha beta"}})
	if err := st.SaveChunks(ctx, run.ID, c); err != nil {
		t.Fatalf("SaveChunks: %v", err)
	}
	st.Close()

	st, err = OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()

	got, err := st.Chunks(ctx, run.ID)
	if err != nil {
		t.Fatalf("Chunks: %v", err)
	}
	if got.Len() != 1 {
		t.Fatalf("expected 1 chunk after reopen, got %d", got.Len())
	}
	if text, _ := got.Lookup("doc1_000"); text != "alpha beta" {
		t.Errorf("chunk text = %q", text)
	}
}
