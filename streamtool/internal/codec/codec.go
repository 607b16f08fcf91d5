package codec

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const (
	NameNone = "none"
	NameZstd = "zstd"

	defaultZstdLevel = 3
)

// Codec encodes chunk payloads on the way into a store and decodes them on
// the way out.
type Codec interface {
	// Name is the canonical codec string, suitable for Parse.
	Name() string
	NewWriter(w io.Writer) (io.WriteCloser, error)
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// Parse accepts "", "none", "zstd" and "zstd_<level>".
func Parse(codec string) (Codec, error) {
	if codec == "" || codec == NameNone {
		return noneCodec{}, nil
	}

	if codec == NameZstd || strings.HasPrefix(codec, NameZstd+"_") {
		level := defaultZstdLevel
		if codec != NameZstd {
			var err error
			level, err = strconv.Atoi(strings.TrimPrefix(codec, NameZstd+"_"))
			if err != nil {
				return nil, fmt.Errorf("malformed zstd codec %q: %w", codec, err)
			}
		}
		if level < 1 || level > 22 {
			return nil, fmt.Errorf("zstd level %d is out of range [1, 22]", level)
		}
		return &zstdCodec{level: level}, nil
	}

	return nil, fmt.Errorf("unrecognized compression codec %s", codec)
}

////////////////////////////////////////////////////////////////////////////////

type noneCodec struct{}

func (noneCodec) Name() string {
	return NameNone
}

func (noneCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

func (noneCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

////////////////////////////////////////////////////////////////////////////////

type zstdCodec struct {
	level int
}

func (c *zstdCodec) Name() string {
	return fmt.Sprintf("zstd_%d", c.level)
}

func (c *zstdCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(c.level)),
		zstd.WithEncoderConcurrency(1),
	)
}

func (c *zstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}
