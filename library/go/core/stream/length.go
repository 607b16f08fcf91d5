package stream

import (
	"io"
)

////////////////////////////////////////////////////////////////////////////////

// LengthLimitedInput reads at most a fixed number of bytes from a slave
// stream. This can be used to break the slave stream into chunks and treat
// each of them as a separate stream.
//
// Running out of budget looks exactly like end of stream.
type LengthLimitedInput struct {
	slave  Input
	length uint64
}

var _ Input = (*LengthLimitedInput)(nil)
var _ io.WriterTo = (*LengthLimitedInput)(nil)

func NewLengthLimitedInput(slave Input, length uint64) *LengthLimitedInput {
	return &LengthLimitedInput{
		slave:  slave,
		length: length,
	}
}

// Remaining returns the number of bytes still available through the wrapper.
func (l *LengthLimitedInput) Remaining() uint64 {
	return l.length
}

////////////////////////////////////////////////////////////////////////////////

func (l *LengthLimitedInput) Read(p []byte) (int, error) {
	if l.length == 0 {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	if uint64(len(p)) > l.length {
		p = p[:l.length]
	}

	n, err := l.slave.Read(p)
	l.consume(uint64(n))
	return n, err
}

func (l *LengthLimitedInput) Skip(n uint64) (uint64, error) {
	clamped := min(n, l.length)
	if clamped == 0 {
		if n == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}

	skipped, err := l.slave.Skip(clamped)
	l.consume(skipped)
	if err == nil && skipped < n {
		err = io.EOF
	}
	return skipped, err
}

func (l *LengthLimitedInput) ReadTo(dst []byte, delim byte) ([]byte, error) {
	return readTo(l, dst, delim)
}

func (l *LengthLimitedInput) ReadAll(w io.Writer) (uint64, error) {
	return readAll(l, w)
}

func (l *LengthLimitedInput) WriteTo(w io.Writer) (int64, error) {
	n, err := l.ReadAll(w)
	return int64(n), err
}

func (l *LengthLimitedInput) consume(n uint64) {
	if n > l.length {
		n = l.length
	}
	l.length -= n
}
