package inspect

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/dtm"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/internalerr"
	"github.com/cognicore/lemmatopic/pkg/lemmatopic/topic"
)

func model() *topic.Model {
	return &topic.Model{
		K:      2,
		Terms:  []string{"ship", "sail", "field", "grain"},
		DocIDs: []string{"a_000", "b_000", "c_000"},
		TermTopic: mat.NewDense(2, 4, []float64{
			0.4, 0.4, 0.1, 0.1,
			0.05, 0.05, 0.3, 0.6,
		}),
		DocTopic: mat.NewDense(3, 2, []float64{
			0.9, 0.1,
			0.2, 0.8,
			0.5, 0.5,
		}),
		Params: topic.DefaultParams(),
	}
}

func TestTopTermsStableOrder(t *testing.T) {
	got, err := TopTerms(model(), 0, 3)
	require.NoError(t, err)
	// ship and sail tie; column order wins
	assert.Equal(t, []TermWeight{
		{Term: "ship", Weight: 0.4},
		{Term: "sail", Weight: 0.4},
		{Term: "field", Weight: 0.1},
	}, got)

	got, err = TopTerms(model(), 1, 10)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "grain", got[0].Term)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Weight, got[i].Weight)
	}
}

func TestTopTermsErrors(t *testing.T) {
	_, err := TopTerms(model(), 5, 3)
	assert.ErrorIs(t, err, internalerr.ErrNotFound)

	_, err = TopTerms(model(), 0, 0)
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

func TestTopTopics(t *testing.T) {
	got, err := TopTopics(model(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []TopicWeight{{Topic: 1, Weight: 0.8}}, got)

	got, err = TopTopics(model(), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, got[0].Topic)
	assert.Equal(t, 1, got[1].Topic)
}

func TestSummarizeCoherence(t *testing.T) {
	counts := &dtm.Matrix{
		Rows:  []string{"a_000", "b_000", "c_000"},
		Terms: []string{"ship", "sail", "field", "grain"},
		Counts: mat.NewDense(3, 4, []float64{
			3, 2, 0, 0,
			0, 0, 2, 3,
			0, 0, 1, 1,
		}),
	}

	sums, err := Summarize(model(), counts, 2)
	require.NoError(t, err)
	require.Len(t, sums, 2)
	assert.Equal(t, "ship", sums[0].Terms[0].Term)
	assert.Equal(t, "grain", sums[1].Terms[0].Term)
	assert.Greater(t, sums[0].Coherence, 0.0)

	plain, err := Summarize(model(), nil, 2)
	require.NoError(t, err)
	assert.Zero(t, plain[0].Coherence)

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sums))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[1], "ship (0.4000)")
}

func TestWordCloudRenders(t *testing.T) {
	var buf bytes.Buffer
	terms, err := TopTerms(model(), 1, 4)
	require.NoError(t, err)

	require.NoError(t, WordCloud(&buf, "Topic 1", terms))
	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "grain")

	buf.Reset()
	require.NoError(t, WordClouds(&buf, model(), 3))
	assert.Contains(t, buf.String(), "Topic 0")
	assert.Contains(t, buf.String(), "Topic 1")
}
