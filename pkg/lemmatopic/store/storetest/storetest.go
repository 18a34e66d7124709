// Package storetest runs the same behavioural checks against every
// store.Store implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/corpus"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/internalerr"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/store"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/topic"
)

// Run exercises st. open must return an empty store.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("runs", func(t *testing.T) { testRuns(t, open(t)) })
	t.Run("chunks", func(t *testing.T) { testChunks(t, open(t)) })
	t.Run("stoplist", func(t *testing.T) { testStoplist(t, open(t)) })
	t.Run("model", func(t *testing.T) { testModel(t, open(t)) })
	t.Run("missing run", func(t *testing.T) { testMissing(t, open(t)) })
}

func testRuns(t *testing.T, st store.Store) {
	ctx := context.Background()
	defer st.Close()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	first, err := st.CreateRun(ctx, store.Run{
		CreatedAt: base,
		InputDir:  "corpus",
		Language:  "english",
		ChunkSize: 1000,
		Params:    topic.DefaultParams(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := st.CreateRun(ctx, store.Run{CreatedAt: base.Add(time.Minute), InputDir: "other"})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	got, err := st.GetRun(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "corpus", got.InputDir)
	assert.Equal(t, 1000, got.ChunkSize)
	assert.Equal(t, topic.DefaultParams(), got.Params)
	assert.True(t, base.Equal(got.CreatedAt))

	runs, err := st.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)

	runs, err = st.Runs(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func testChunks(t *testing.T, st store.Store) {
	ctx := context.Background()
	defer st.Close()

	run, err := st.CreateRun(ctx, store.Run{InputDir: "corpus"})
	require.NoError(t, err)

	c, err := corpus.FromPairs([]corpus.Pair{
		{ID: "doc3_000", Text: "zeta eta"},
		{ID: "doc1_000", Text: "alpha beta"},
		{ID: "doc1_001", Text: "gamma delta"},
	})
	require.NoError(t, err)
	require.NoError(t, st.SaveChunks(ctx, run.ID, c))

	got, err := st.Chunks(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Pairs(), got.Pairs(), "order must survive the round trip")

	r, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Chunks)

	// a second save replaces instead of appending
	smaller, err := corpus.FromPairs([]corpus.Pair{{ID: "doc2_000", Text: "one"}})
	require.NoError(t, err)
	require.NoError(t, st.SaveChunks(ctx, run.ID, smaller))
	got, err = st.Chunks(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc2_000"}, got.IDs())
}

func testStoplist(t *testing.T, st store.Store) {
	ctx := context.Background()
	defer st.Close()

	run, err := st.CreateRun(ctx, store.Run{})
	require.NoError(t, err)

	require.NoError(t, st.SaveStoplist(ctx, run.ID, []string{"the", "and", "of"}))
	require.NoError(t, st.SaveStoplist(ctx, run.ID, []string{"zebra", "apple"}))

	got, err := st.Stoplist(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "zebra"}, got)
}

func testModel(t *testing.T, st store.Store) {
	ctx := context.Background()
	defer st.Close()

	run, err := st.CreateRun(ctx, store.Run{})
	require.NoError(t, err)

	_, err = st.LoadModel(ctx, run.ID)
	assert.ErrorIs(t, err, internalerr.ErrNotFound)

	params := topic.DefaultParams()
	params.K = 2
	m := &topic.Model{
		K:         2,
		Terms:     []string{"ship", "grain"},
		DocIDs:    []string{"a_000"},
		TermTopic: mat.NewDense(2, 2, []float64{0.75, 0.25, 0.5, 0.5}),
		DocTopic:  mat.NewDense(1, 2, []float64{0.125, 0.875}),
		Params:    params,
	}
	require.NoError(t, st.SaveModel(ctx, run.ID, m))

	got, err := st.LoadModel(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Terms, got.Terms)
	assert.True(t, mat.Equal(m.TermTopic, got.TermTopic))
	assert.True(t, mat.Equal(m.DocTopic, got.DocTopic))

	r, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, r.Fitted)
	assert.Equal(t, 2, r.Params.K)
}

func testMissing(t *testing.T, st store.Store) {
	ctx := context.Background()
	defer st.Close()

	_, err := st.GetRun(ctx, "01HNOSUCHRUN")
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
	_, err = st.Chunks(ctx, "01HNOSUCHRUN")
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
	err = st.SaveChunks(ctx, "01HNOSUCHRUN", corpus.New())
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
	err = st.SaveStoplist(ctx, "01HNOSUCHRUN", []string{"x"})
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}
