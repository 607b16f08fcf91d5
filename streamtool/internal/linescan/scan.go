package linescan

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/yandex/streamtool/library/go/core/stream"
)

type Options struct {
	// Offset bytes are skipped before scanning.
	Offset uint64
	// Limit caps the scanned window. Zero means no limit.
	Limit uint64
	Delim byte
}

type Stats struct {
	Skipped       uint64 `yaml:"skipped"`
	Bytes         uint64 `yaml:"bytes"`
	Records       uint64 `yaml:"records"`
	LongestRecord uint64 `yaml:"longest_record"`
}

const readBufferSize = 64 << 10

// Scan counts delimited records in a window of src. A trailing record
// without a delimiter is counted too. src is read through a buffer and may
// be consumed past the window.
func Scan(ctx context.Context, src io.Reader, opts Options) (*Stats, error) {
	in := stream.NewCountingInput(stream.AsInput(bufio.NewReaderSize(src, readBufferSize)))

	stats := &Stats{}
	if opts.Offset > 0 {
		skipped, err := in.Skip(opts.Offset)
		stats.Skipped = skipped
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to skip %d bytes: %w", opts.Offset, err)
		}
	}

	var window stream.Input = in
	if opts.Limit > 0 {
		window = stream.NewLengthLimitedInput(in, opts.Limit)
	}

	var record []byte
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var err error
		record, err = window.ReadTo(record[:0], opts.Delim)
		if len(record) > 0 {
			stats.Records++
			stats.LongestRecord = max(stats.LongestRecord, uint64(len(record)))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record #%d: %w", stats.Records, err)
		}
	}

	stats.Bytes = in.Counter() - stats.Skipped
	return stats, nil
}
