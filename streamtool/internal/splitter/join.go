package splitter

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yandex/streamtool/library/go/core/stream"
	"github.com/yandex/streamtool/streamtool/internal/codec"
	"github.com/yandex/streamtool/streamtool/internal/manifest"
	"github.com/yandex/streamtool/streamtool/pkg/xlog"
)

// Join writes the stream described by m into dst and returns the number of
// bytes written. Every chunk is checked against the manifest on the way.
func (s *Splitter) Join(ctx context.Context, m *manifest.Manifest, dst io.Writer) (uint64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	c, err := codec.Parse(m.Codec)
	if err != nil {
		return 0, err
	}
	ctx = xlog.WrapContext(ctx, zap.String("source", m.Source))

	out := stream.NewCountingOutput(dst)
	total := manifest.NewHash()
	w := io.MultiWriter(out, total)

	for _, chunk := range m.Chunks {
		if err := ctx.Err(); err != nil {
			return out.Counter(), err
		}
		if err := s.readChunk(ctx, c, chunk, w); err != nil {
			return out.Counter(), err
		}
		s.metrics.chunks.WithLabelValues("join").Inc()
	}
	s.metrics.writtenBytes.Add(float64(out.Counter()))

	if out.Counter() != m.TotalSize {
		return out.Counter(), fmt.Errorf("%w: joined %d bytes, expected %d", ErrCorruptChunk, out.Counter(), m.TotalSize)
	}
	if sum := manifest.FormatChecksum(total); sum != m.Checksum {
		return out.Counter(), fmt.Errorf("%w: stream checksum %s, expected %s", ErrCorruptChunk, sum, m.Checksum)
	}

	s.l.Info(ctx, "Joined stream",
		zap.Int("chunks", len(m.Chunks)),
		zap.String("size", humanize.IBytes(out.Counter())),
	)
	return out.Counter(), nil
}

// Verify checks every chunk of m, up to concurrency chunks at a time.
func (s *Splitter) Verify(ctx context.Context, m *manifest.Manifest, concurrency int) error {
	if err := m.Validate(); err != nil {
		return err
	}
	c, err := codec.Parse(m.Codec)
	if err != nil {
		return err
	}
	ctx = xlog.WrapContext(ctx, zap.String("source", m.Source))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))

	for _, chunk := range m.Chunks {
		g.Go(func() error {
			if err := s.readChunk(ctx, c, chunk, io.Discard); err != nil {
				return err
			}
			s.metrics.chunks.WithLabelValues("verify").Inc()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	s.l.Info(ctx, "Verified chunks", zap.Int("chunks", len(m.Chunks)))
	return nil
}

////////////////////////////////////////////////////////////////////////////////

func (s *Splitter) readChunk(ctx context.Context, c codec.Codec, chunk manifest.Chunk, dst io.Writer) error {
	ctx = xlog.WrapContext(ctx, zap.String("chunk", chunk.Name))

	r, err := s.store.Open(ctx, chunk.Name)
	if err != nil {
		return fmt.Errorf("failed to open chunk %s: %w", chunk.Name, err)
	}
	defer r.Close()

	stored := stream.NewCountingInput(stream.AsInput(r))
	dec, err := c.NewReader(stored)
	if err != nil {
		return fmt.Errorf("failed to decode chunk %s: %w", chunk.Name, err)
	}
	defer dec.Close()

	// One extra byte of budget exposes chunks longer than recorded.
	decoded := stream.NewLengthLimitedInput(stream.AsInput(dec), chunk.Size+1)
	h := manifest.NewHash()

	n, err := decoded.ReadAll(io.MultiWriter(dst, h))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCorruptChunk, chunk.Name, err)
	}
	if n != chunk.Size {
		return fmt.Errorf("%w: %s has %d bytes, expected %d", ErrCorruptChunk, chunk.Name, n, chunk.Size)
	}

	if _, err := stored.ReadAll(io.Discard); err != nil {
		return fmt.Errorf("failed to read chunk %s: %w", chunk.Name, err)
	}
	s.metrics.storedBytes.Add(float64(stored.Counter()))
	if stored.Counter() != chunk.StoredSize {
		return fmt.Errorf("%w: %s has %d stored bytes, expected %d", ErrCorruptChunk, chunk.Name, stored.Counter(), chunk.StoredSize)
	}

	if sum := manifest.FormatChecksum(h); sum != chunk.Checksum {
		return fmt.Errorf("%w: %s checksum %s, expected %s", ErrCorruptChunk, chunk.Name, sum, chunk.Checksum)
	}

	s.l.Debug(ctx, "Read chunk", zap.Uint64("size", n), zap.Uint64("stored_size", stored.Counter()))
	return nil
}
