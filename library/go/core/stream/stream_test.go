package stream

import (
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func TestAsInputKeepsDecorators(t *testing.T) {
	c := NewCountingInput(AsInput(strings.NewReader("abc")))
	require.Same(t, c, AsInput(c).(*CountingInput))
}

func TestReadToDoesNotReadAhead(t *testing.T) {
	for _, test := range []struct {
		name string
		wrap func(r io.Reader) io.Reader
	}{
		{"byte reader", func(r io.Reader) io.Reader { return r }},
		{"plain reader", iotest.OneByteReader},
	} {
		t.Run(test.name, func(t *testing.T) {
			slave := strings.NewReader("key=value;rest")
			in := AsInput(test.wrap(slave))

			res, err := in.ReadTo(nil, ';')
			require.NoError(t, err)
			require.Equal(t, "key=value;", string(res))
			require.Equal(t, len("rest"), slave.Len())
		})
	}
}

type stalledReader struct{}

func (stalledReader) Read(p []byte) (int, error) {
	return 0, nil
}

func TestReadToStalledReader(t *testing.T) {
	_, err := AsInput(stalledReader{}).ReadTo(nil, '\n')
	require.ErrorIs(t, err, io.ErrNoProgress)
}

func TestSkipPastEnd(t *testing.T) {
	in := AsInput(strings.NewReader("abc"))

	skipped, err := in.Skip(2)
	require.NoError(t, err)
	require.Equal(t, uint64(2), skipped)

	skipped, err = in.Skip(2)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, uint64(1), skipped)
}

type delimWithErrReader struct {
	err  error
	done bool
}

func (r *delimWithErrReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	r.done = true
	p[0] = '\n'
	return 1, r.err
}

func TestReadToDelimiterWithError(t *testing.T) {
	res, err := AsInput(&delimWithErrReader{err: errBoom}).ReadTo(nil, '\n')
	require.ErrorIs(t, err, errBoom)
	require.Equal(t, "\n", string(res))

	res, err = AsInput(&delimWithErrReader{err: io.EOF}).ReadTo(nil, '\n')
	require.NoError(t, err)
	require.Equal(t, "\n", string(res))
}
