package xmetrics

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/yandex/streamtool/streamtool/pkg/xlog"
)

func TestStreamMetrics(t *testing.T) {
	r := NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_bytes_total",
		Help: "Bytes.",
	})
	r.MustRegister(c)
	c.Add(42)

	var buf bytes.Buffer
	require.NoError(t, r.StreamMetrics(context.Background(), &buf))
	require.Contains(t, buf.String(), "test_bytes_total 42")

	path := filepath.Join(t.TempDir(), "metrics.txt")
	require.NoError(t, r.DumpToFile(context.Background(), path))
	dumped, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, buf.String(), string(dumped))
}

func TestHTTPHandler(t *testing.T) {
	r := NewRegistry(WithProcessCollectors())

	rec := httptest.NewRecorder()
	r.HTTPHandler(xlog.ForTest(t)).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestStreamMetricsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, NewRegistry().StreamMetrics(ctx, &bytes.Buffer{}), context.Canceled)
}

func TestDumpToFileKeepsPreviousDumpOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metrics.txt")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, NewRegistry().DumpToFile(ctx, path), context.Canceled)

	dumped, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "previous", string(dumped))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
