package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.DocumentsRead.Add(3)
	m.Skipped("annotate")
	m.ChunksEmitted.Add(5)
	m.ObserveStage("fit", time.Now().Add(-time.Second))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.DocumentsRead))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsSkipped.WithLabelValues("annotate")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.ChunksEmitted))
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.StageSeconds.WithLabelValues("fit")), 1.0)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Skipped("read")
	m.ObserveStage("read", time.Now())
	m.Succeeded()
}

func TestWriteFile(t *testing.T) {
	m := New()
	m.ChunksEmitted.Add(2)
	m.Succeeded()

	path := filepath.Join(t.TempDir(), "lemmatopic.prom")
	require.NoError(t, m.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "lemmatopic_chunks_emitted_total 2"))
}
