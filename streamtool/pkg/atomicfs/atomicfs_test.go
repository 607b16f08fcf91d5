package atomicfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func listDir(t *testing.T, dir string) []string {
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestCommit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chunk")

	f, err := Create(path, WithSync(), WithMode(0o640))
	require.NoError(t, err)

	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))

	require.NoError(t, f.Commit())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
	require.Equal(t, []string{"chunk"}, listDir(t, dir))

	require.ErrorIs(t, f.Commit(), ErrFinished)
	require.NoError(t, f.Discard())
	_, err = f.Write([]byte("x"))
	require.ErrorIs(t, err, ErrFinished)
}

func TestDiscard(t *testing.T) {
	dir := t.TempDir()

	f, err := Create(filepath.Join(dir, "chunk"))
	require.NoError(t, err)
	_, err = f.Write([]byte("partial"))
	require.NoError(t, err)

	require.NoError(t, f.Discard())
	require.Empty(t, listDir(t, dir))
}
