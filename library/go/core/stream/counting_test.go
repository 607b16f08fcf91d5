package stream

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestCountingInputSkipThenRead(t *testing.T) {
	c := NewCountingInput(AsInput(strings.NewReader("abcdef")))

	skipped, err := c.Skip(3)
	require.NoError(t, err)
	require.Equal(t, uint64(3), skipped)
	require.Equal(t, uint64(3), c.Counter())

	buf := make([]byte, 10)
	n, err := c.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "def", string(buf[:n]))
	require.Equal(t, uint64(6), c.Counter())
}

func TestCountingInputReadTo(t *testing.T) {
	c := NewCountingInput(AsInput(strings.NewReader("one\ntwo")))

	line, err := c.ReadTo([]byte("x"), '\n')
	require.NoError(t, err)
	require.Equal(t, "xone\n", string(line))
	require.Equal(t, uint64(4), c.Counter())

	line, err = c.ReadTo(line[:0], '\n')
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, "two", string(line))
	require.Equal(t, uint64(7), c.Counter())

	line, err = c.ReadTo(nil, '\n')
	require.ErrorIs(t, err, io.EOF)
	require.Empty(t, line)
	require.Equal(t, uint64(7), c.Counter())
}

func TestCountingInputReadAll(t *testing.T) {
	c := NewCountingInput(AsInput(strings.NewReader("abcdef")))

	_, err := c.Read(make([]byte, 2))
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := c.ReadAll(&buf)
	require.NoError(t, err)
	require.Equal(t, uint64(4), n)
	require.Equal(t, "cdef", buf.String())
	require.Equal(t, uint64(6), c.Counter())
}

func TestCountingInputCountsDataReturnedWithError(t *testing.T) {
	c := NewCountingInput(AsInput(iotest.DataErrReader(strings.NewReader("abc"))))

	data, err := io.ReadAll(c)
	require.NoError(t, err)
	require.Equal(t, "abc", string(data))
	require.Equal(t, uint64(3), c.Counter())
}

func TestCountingInputPropagatesErrors(t *testing.T) {
	c := NewCountingInput(AsInput(iotest.ErrReader(errBoom)))

	_, err := c.Read(make([]byte, 4))
	require.ErrorIs(t, err, errBoom)

	_, err = c.Skip(4)
	require.ErrorIs(t, err, errBoom)

	_, err = c.ReadTo(nil, '\n')
	require.ErrorIs(t, err, errBoom)

	_, err = c.ReadAll(io.Discard)
	require.ErrorIs(t, err, errBoom)

	require.Equal(t, uint64(0), c.Counter())
}

func TestCountingInputEveryOperationAccounts(t *testing.T) {
	c := NewCountingInput(AsInput(iotest.OneByteReader(strings.NewReader("0123456789\nabcdefghij"))))

	before := c.Counter()
	n, err := c.Read(make([]byte, 4))
	require.NoError(t, err)
	require.Equal(t, before+uint64(n), c.Counter())

	before = c.Counter()
	skipped, err := c.Skip(2)
	require.NoError(t, err)
	require.Equal(t, before+skipped, c.Counter())

	before = c.Counter()
	line, err := c.ReadTo(nil, '\n')
	require.NoError(t, err)
	require.Equal(t, before+uint64(len(line)), c.Counter())

	before = c.Counter()
	drained, err := c.ReadAll(io.Discard)
	require.NoError(t, err)
	require.Equal(t, before+drained, c.Counter())

	require.Equal(t, uint64(21), c.Counter())
	require.Equal(t, c.Counter(), c.Counter())
}

func TestCountingInputUnderLengthLimit(t *testing.T) {
	c := NewCountingInput(AsInput(strings.NewReader("abcdefgh")))
	l := NewLengthLimitedInput(c, 5)

	var buf bytes.Buffer
	_, err := io.Copy(&buf, l)
	require.NoError(t, err)
	require.Equal(t, "abcde", buf.String())
	require.Equal(t, uint64(5), c.Counter())

	_, err = l.Skip(1)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, uint64(5), c.Counter())
}

////////////////////////////////////////////////////////////////////////////////

type failingWriter struct {
	accept int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if len(p) > w.accept {
		return w.accept, errBoom
	}
	return len(p), nil
}

func TestCountingOutputWrites(t *testing.T) {
	var buf bytes.Buffer
	w := NewCountingOutput(&buf)

	_, err := w.Write([]byte("foo"))
	require.NoError(t, err)
	_, err = w.Write([]byte("bar"))
	require.NoError(t, err)

	require.Equal(t, uint64(6), w.Counter())
	require.Equal(t, "foobar", buf.String())
}

func TestCountingOutputFailedWriteIsNotCounted(t *testing.T) {
	w := NewCountingOutput(&failingWriter{accept: 3})

	_, err := w.Write([]byte("abc"))
	require.NoError(t, err)
	require.Equal(t, uint64(3), w.Counter())

	n, err := w.Write([]byte("abcdef"))
	require.ErrorIs(t, err, errBoom)
	require.Equal(t, 3, n)
	require.Equal(t, uint64(3), w.Counter())
}

func TestCountingOutputMove(t *testing.T) {
	var buf bytes.Buffer
	w := NewCountingOutput(&buf)
	_, err := w.Write([]byte("foo"))
	require.NoError(t, err)

	moved := *w
	_, err = moved.Write([]byte("bar"))
	require.NoError(t, err)

	require.Equal(t, uint64(6), moved.Counter())
	require.Equal(t, "foobar", buf.String())
}

func TestCountingOutputAsCopyTarget(t *testing.T) {
	var buf bytes.Buffer
	w := NewCountingOutput(&buf)

	n, err := io.Copy(w, iotest.HalfReader(strings.NewReader("some payload")))
	require.NoError(t, err)
	require.Equal(t, uint64(n), w.Counter())
	require.Equal(t, "some payload", buf.String())
}
