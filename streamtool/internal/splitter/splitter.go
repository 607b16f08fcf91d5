package splitter

import (
	"context"
	"errors"
	"fmt"
	"hash"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/yandex/streamtool/library/go/core/stream"
	"github.com/yandex/streamtool/streamtool/internal/chunkstore"
	"github.com/yandex/streamtool/streamtool/internal/codec"
	"github.com/yandex/streamtool/streamtool/internal/manifest"
	"github.com/yandex/streamtool/streamtool/pkg/xlog"
)

var ErrCorruptChunk = errors.New("corrupt chunk")

type Options struct {
	ChunkSize uint64
	Codec     codec.Codec
}

type Splitter struct {
	l       xlog.Logger
	store   chunkstore.Store
	metrics *metrics
}

func New(l xlog.Logger, r prometheus.Registerer, store chunkstore.Store) *Splitter {
	return &Splitter{
		l:       l.WithName("splitter"),
		store:   store,
		metrics: newMetrics(r),
	}
}

func (s *Splitter) Store() chunkstore.Store {
	return s.store
}

////////////////////////////////////////////////////////////////////////////////

// Split cuts src into chunks of the configured size, stores each of them
// encoded, and stores the resulting manifest last.
func (s *Splitter) Split(ctx context.Context, src io.Reader, source string, opts Options) (*manifest.Manifest, error) {
	if opts.ChunkSize == 0 {
		return nil, fmt.Errorf("chunk size must be positive")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("codec is not set")
	}
	ctx = xlog.WrapContext(ctx, zap.String("source", source))

	m := &manifest.Manifest{
		Version:   manifest.Version,
		Source:    source,
		ChunkSize: opts.ChunkSize,
		Codec:     opts.Codec.Name(),
	}

	in := stream.NewCountingInput(stream.AsInput(src))
	total := manifest.NewHash()

	for index := 0; ; index++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		offset := in.Counter()
		chunk := stream.NewLengthLimitedInput(in, opts.ChunkSize)

		info, err := s.storeChunk(ctx, opts.Codec, index, chunk, total)
		if err != nil {
			return nil, fmt.Errorf("failed to store chunk #%d: %w", index, err)
		}
		if info == nil {
			break
		}

		info.Offset = offset
		m.Chunks = append(m.Chunks, *info)

		if chunk.Remaining() > 0 {
			break
		}
	}

	m.TotalSize = in.Counter()
	m.Checksum = manifest.FormatChecksum(total)
	s.metrics.readBytes.Add(float64(m.TotalSize))

	if err := manifest.Store(ctx, s.store, m); err != nil {
		return nil, fmt.Errorf("failed to store manifest: %w", err)
	}

	s.l.Info(ctx, "Split stream",
		zap.Int("chunks", len(m.Chunks)),
		zap.String("size", humanize.IBytes(m.TotalSize)),
		zap.String("codec", m.Codec),
	)
	return m, nil
}

// storeChunk returns nil info if the chunk turned out to be empty.
func (s *Splitter) storeChunk(ctx context.Context, c codec.Codec, index int, chunk stream.Input, total hash.Hash64) (info *manifest.Chunk, err error) {
	name := manifest.ChunkName(index)
	ctx = xlog.WrapContext(ctx, zap.String("chunk", name))

	w, err := s.store.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil || info == nil {
			_ = w.Discard()
		}
	}()

	stored := stream.NewCountingOutput(w)
	enc, err := c.NewWriter(stored)
	if err != nil {
		return nil, err
	}

	h := manifest.NewHash()
	raw := stream.NewCountingOutput(io.MultiWriter(enc, h, total))

	if _, err = chunk.ReadAll(raw); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err = enc.Close(); err != nil {
		return nil, err
	}
	if raw.Counter() == 0 {
		return nil, nil
	}

	if err = w.Commit(); err != nil {
		return nil, err
	}

	s.metrics.storedBytes.Add(float64(stored.Counter()))
	s.metrics.chunks.WithLabelValues("split").Inc()
	s.l.Debug(ctx, "Stored chunk",
		zap.Uint64("size", raw.Counter()),
		zap.Uint64("stored_size", stored.Counter()),
	)

	return &manifest.Chunk{
		Index:      index,
		Name:       name,
		Size:       raw.Counter(),
		StoredSize: stored.Counter(),
		Checksum:   manifest.FormatChecksum(h),
	}, nil
}
