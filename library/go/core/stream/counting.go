package stream

import (
	"io"
)

////////////////////////////////////////////////////////////////////////////////

// CountingInput forwards every operation to a slave stream and counts the
// bytes consumed from it. Skipped bytes are counted as read.
type CountingInput struct {
	slave Input
	count uint64
}

var _ Input = (*CountingInput)(nil)
var _ io.WriterTo = (*CountingInput)(nil)

func NewCountingInput(slave Input) *CountingInput {
	return &CountingInput{slave: slave}
}

// Counter returns the total number of bytes read from this stream.
func (c *CountingInput) Counter() uint64 {
	return c.count
}

func (c *CountingInput) Read(p []byte) (int, error) {
	n, err := c.slave.Read(p)
	if n > 0 {
		c.count += uint64(n)
	}
	return n, err
}

func (c *CountingInput) Skip(n uint64) (uint64, error) {
	skipped, err := c.slave.Skip(n)
	c.count += skipped
	return skipped, err
}

func (c *CountingInput) ReadTo(dst []byte, delim byte) ([]byte, error) {
	res, err := c.slave.ReadTo(dst, delim)
	if len(res) > len(dst) {
		c.count += uint64(len(res) - len(dst))
	}
	return res, err
}

func (c *CountingInput) ReadAll(w io.Writer) (uint64, error) {
	n, err := c.slave.ReadAll(w)
	c.count += n
	return n, err
}

func (c *CountingInput) WriteTo(w io.Writer) (int64, error) {
	n, err := c.ReadAll(w)
	return int64(n), err
}

////////////////////////////////////////////////////////////////////////////////

// CountingOutput forwards writes to a slave stream and counts the bytes
// written. A failed write is not counted.
//
// The value may be moved to a new owner: a copy keeps both the slave and the
// counter, and the moved-from value must not be used afterwards.
type CountingOutput struct {
	slave io.Writer
	count uint64
}

var _ Output = (*CountingOutput)(nil)

func NewCountingOutput(slave io.Writer) *CountingOutput {
	return &CountingOutput{slave: slave}
}

// Counter returns the total number of bytes written into this stream.
func (c *CountingOutput) Counter() uint64 {
	return c.count
}

func (c *CountingOutput) Write(p []byte) (int, error) {
	n, err := c.slave.Write(p)
	if err != nil {
		return n, err
	}
	c.count += uint64(len(p))
	return n, nil
}
