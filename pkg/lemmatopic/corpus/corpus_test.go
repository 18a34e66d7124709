package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/internalerr"
)

func TestAppendKeepsPairing(t *testing.T) {
	c := New()
	require.NoError(t, c.Append(Pair{ID: "a_000", Text: "x y"}, Pair{ID: "a_001", Text: "z"}))
	require.NoError(t, c.Append(Pair{ID: "b_000", Text: "w"}))

	assert.Equal(t, []string{"a_000", "a_001", "b_000"}, c.IDs())
	assert.Equal(t, []string{"x y", "z", "w"}, c.Texts())
	assert.Len(t, c.IDs(), c.Len())
	assert.Len(t, c.Texts(), c.Len())

	text, ok := c.Lookup("a_001")
	assert.True(t, ok)
	assert.Equal(t, "z", text)
}

func TestAppendRejectsWholeBatch(t *testing.T) {
	c := New()
	require.NoError(t, c.Append(Pair{ID: "a_000", Text: "x"}))

	err := c.Append(Pair{ID: "b_000", Text: "ok"}, Pair{ID: "a_000", Text: "dup"})
	require.Error(t, err)
	assert.Equal(t, 1, c.Len(), "a rejected batch must not leave a partial append")

	require.Error(t, c.Append(Pair{ID: "", Text: "no id"}))
	require.Error(t, c.Append(Pair{ID: "c_000", Text: "line\nbreak"}))
	require.Error(t, c.Append(Pair{ID: "d_000", Text: "a"}, Pair{ID: "d_000", Text: "b"}))
	assert.Equal(t, 1, c.Len())
}

func TestZeroValueCorpus(t *testing.T) {
	var c Corpus
	require.NoError(t, c.Append(Pair{ID: "a_000", Text: "x"}))
	assert.Equal(t, 1, c.Len())
}

func TestWriteAndReadFiles(t *testing.T) {
	dir := t.TempDir()
	c, err := FromPairs([]Pair{
		{ID: "doc1_000", Text: "house tree"},
		{ID: "doc1_001", Text: "river"},
		{ID: "doc3_000", Text: "stone"},
	})
	require.NoError(t, err)

	require.NoError(t, WriteFiles(dir, c))

	texts, err := os.ReadFile(filepath.Join(dir, TextsFile))
	require.NoError(t, err)
	ids, err := os.ReadFile(filepath.Join(dir, IDsFile))
	require.NoError(t, err)
	assert.Equal(t, "house tree\nriver\nstone\n", string(texts))
	assert.Equal(t, "doc1_000\ndoc1_001\ndoc3_000\n", string(ids))

	back, err := ReadFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, c.Pairs(), back.Pairs())
}

func TestWriteFilesReplacesStaleContent(t *testing.T) {
	dir := t.TempDir()
	first, _ := FromPairs([]Pair{{ID: "old_000", Text: "a"}, {ID: "old_001", Text: "b"}})
	second, _ := FromPairs([]Pair{{ID: "new_000", Text: "c"}})

	require.NoError(t, WriteFiles(dir, first))
	require.NoError(t, WriteFiles(dir, second))

	back, err := ReadFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"new_000"}, back.IDs())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), "."), "temp file %s left behind", e.Name())
	}
}

func TestReadFilesMismatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, TextsFile), []byte("a\nb\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, IDsFile), []byte("x_000\n"), 0o644))

	_, err := ReadFiles(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, internalerr.ErrConfiguration))
}
