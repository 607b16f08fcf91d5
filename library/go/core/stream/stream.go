// Package stream provides pass-through decorators over byte streams.
//
// Decorators hold a borrowed reference to a slave stream. They never buffer,
// never close the slave and are not safe for concurrent use.
package stream

import (
	"errors"
	"io"
	"math"
)

////////////////////////////////////////////////////////////////////////////////

// Input is a readable byte stream with the extended capabilities the
// decorators in this package forward and account for.
type Input interface {
	io.Reader

	// Skip consumes up to n bytes without copying them anywhere.
	// If the stream ends before n bytes are consumed, the error is io.EOF.
	Skip(n uint64) (uint64, error)

	// ReadTo appends bytes to dst up to and including delim and returns the
	// extended slice. If the stream ends first, the partial result is
	// returned together with io.EOF.
	ReadTo(dst []byte, delim byte) ([]byte, error)

	// ReadAll drains the stream into w. Reaching end of stream is not an error.
	ReadAll(w io.Writer) (uint64, error)
}

// Output is a writable byte stream. A successful Write consumes the whole buffer.
type Output = io.Writer

////////////////////////////////////////////////////////////////////////////////

// AsInput returns r itself if it already implements Input, or wraps it
// with default Skip, ReadTo and ReadAll built on top of Read.
func AsInput(r io.Reader) Input {
	if in, ok := r.(Input); ok {
		return in
	}
	return &readerInput{r: r}
}

type readerInput struct {
	r io.Reader
}

func (i *readerInput) Read(p []byte) (int, error) {
	return i.r.Read(p)
}

func (i *readerInput) Skip(n uint64) (uint64, error) {
	return skip(i.r, n)
}

func (i *readerInput) ReadTo(dst []byte, delim byte) ([]byte, error) {
	return readTo(i.r, dst, delim)
}

func (i *readerInput) ReadAll(w io.Writer) (uint64, error) {
	n, err := io.Copy(w, i.r)
	return uint64(n), err
}

func (i *readerInput) WriteTo(w io.Writer) (int64, error) {
	n, err := i.ReadAll(w)
	return int64(n), err
}

////////////////////////////////////////////////////////////////////////////////

// readerOnly hides every method but Read, so io.Copy cannot route back into
// a decorator's WriteTo.
type readerOnly struct {
	io.Reader
}

const maxConsecutiveEmptyReads = 100

func skip(r io.Reader, n uint64) (uint64, error) {
	var skipped uint64
	for skipped < n {
		chunk := min(n-skipped, math.MaxInt64)
		m, err := io.CopyN(io.Discard, readerOnly{r}, int64(chunk))
		skipped += uint64(m)
		if err != nil {
			return skipped, err
		}
	}
	return skipped, nil
}

// readTo consumes one byte at a time so nothing past the delimiter is taken
// from r.
func readTo(r io.Reader, dst []byte, delim byte) ([]byte, error) {
	if br, ok := r.(io.ByteReader); ok {
		for {
			c, err := br.ReadByte()
			if err != nil {
				return dst, err
			}
			dst = append(dst, c)
			if c == delim {
				return dst, nil
			}
		}
	}

	var buf [1]byte
	empty := 0
	for {
		n, err := r.Read(buf[:])
		if n > 0 {
			empty = 0
			dst = append(dst, buf[0])
			if buf[0] == delim {
				if err != nil && !errors.Is(err, io.EOF) {
					return dst, err
				}
				return dst, nil
			}
		} else if err == nil {
			empty++
			if empty >= maxConsecutiveEmptyReads {
				return dst, io.ErrNoProgress
			}
		}
		if err != nil {
			return dst, err
		}
	}
}

func readAll(r io.Reader, w io.Writer) (uint64, error) {
	n, err := io.Copy(w, readerOnly{r})
	return uint64(n), err
}
