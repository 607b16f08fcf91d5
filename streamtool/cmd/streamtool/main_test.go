package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/yandex/streamtool/streamtool/internal/linescan"
)

func execute(t *testing.T, args ...string) string {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestSplitVerifyJoin(t *testing.T) {
	dir := t.TempDir()
	confPath := filepath.Join(dir, "streamtool.yaml")
	require.NoError(t, os.WriteFile(confPath, []byte(fmt.Sprintf(`
log_level: warn
split:
  chunk_size: 1KiB
  codec: zstd_1
storage:
  fs:
    root: %s
`, filepath.Join(dir, "chunks"))), 0o644))

	var input bytes.Buffer
	for i := 0; i < 500; i++ {
		fmt.Fprintf(&input, "record %d\n", i)
	}
	inputPath := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(inputPath, input.Bytes(), 0o644))

	metricsPath := filepath.Join(dir, "metrics.txt")
	execute(t, "split", "--config", confPath, "--metrics-dump", metricsPath, inputPath)
	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	require.Contains(t, string(metrics), fmt.Sprintf("streamtool_read_bytes_total %d", input.Len()))

	execute(t, "verify", "--config", confPath, "--metrics-dump", "")

	outputPath := filepath.Join(dir, "output.txt")
	execute(t, "join", "--config", confPath, outputPath)
	output, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	require.Equal(t, input.Bytes(), output)

	out := execute(t, "stat", "--config", confPath, "--offset", "9", "--limit", "20", inputPath)
	var stats linescan.Stats
	require.NoError(t, yaml.Unmarshal([]byte(out), &stats))
	require.Equal(t, linescan.Stats{Skipped: 9, Bytes: 20, Records: 3, LongestRecord: 9}, stats)
}

func TestParseDelim(t *testing.T) {
	for _, test := range []struct {
		input    string
		expected byte
		err      bool
	}{
		{`\n`, '\n', false},
		{`\t`, '\t', false},
		{`\x00`, 0, false},
		{";", ';', false},
		{"ab", 0, true},
		{"", 0, true},
	} {
		delim, err := parseDelim(test.input)
		if test.err {
			require.Error(t, err, test.input)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, test.expected, delim)
	}
}
