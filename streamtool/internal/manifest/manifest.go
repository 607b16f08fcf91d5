package manifest

import (
	"context"
	"errors"
	"fmt"
	"hash"
	"io"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/yandex/streamtool/streamtool/internal/chunkstore"
)

const (
	Version = 1

	// ObjectName is the name of the manifest object in a chunk store.
	ObjectName = "manifest.yaml"
)

var ErrInvalid = errors.New("invalid manifest")

type Chunk struct {
	Index      int    `yaml:"index"`
	Name       string `yaml:"name"`
	Offset     uint64 `yaml:"offset"`
	Size       uint64 `yaml:"size"`
	StoredSize uint64 `yaml:"stored_size"`
	Checksum   string `yaml:"checksum"`
}

type Manifest struct {
	Version   int     `yaml:"version"`
	Source    string  `yaml:"source"`
	ChunkSize uint64  `yaml:"chunk_size"`
	Codec     string  `yaml:"codec"`
	TotalSize uint64  `yaml:"total_size"`
	Checksum  string  `yaml:"checksum"`
	Chunks    []Chunk `yaml:"chunks"`
}

func ChunkName(index int) string {
	return fmt.Sprintf("chunk-%06d", index)
}

////////////////////////////////////////////////////////////////////////////////

func NewHash() hash.Hash64 {
	return xxhash.New()
}

func FormatChecksum(h hash.Hash64) string {
	return fmt.Sprintf("%016x", h.Sum64())
}

func ParseChecksum(s string) (uint64, error) {
	if len(s) != 16 {
		return 0, fmt.Errorf("checksum %q must have 16 hex digits", s)
	}
	return strconv.ParseUint(s, 16, 64)
}

////////////////////////////////////////////////////////////////////////////////

// Validate checks that chunks cover [0, TotalSize) contiguously and that every
// chunk but the last one is full.
func (m *Manifest) Validate() error {
	if m.Version != Version {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalid, m.Version)
	}
	if m.ChunkSize == 0 {
		return fmt.Errorf("%w: zero chunk size", ErrInvalid)
	}
	if _, err := ParseChecksum(m.Checksum); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	var offset uint64
	for i, chunk := range m.Chunks {
		if chunk.Index != i {
			return fmt.Errorf("%w: chunk #%d has index %d", ErrInvalid, i, chunk.Index)
		}
		if chunk.Name == "" {
			return fmt.Errorf("%w: chunk #%d has no name", ErrInvalid, i)
		}
		if chunk.Offset != offset {
			return fmt.Errorf("%w: chunk #%d starts at %d, expected %d", ErrInvalid, i, chunk.Offset, offset)
		}
		if chunk.Size == 0 || chunk.Size > m.ChunkSize {
			return fmt.Errorf("%w: chunk #%d has size %d", ErrInvalid, i, chunk.Size)
		}
		if i+1 < len(m.Chunks) && chunk.Size != m.ChunkSize {
			return fmt.Errorf("%w: non-final chunk #%d is not full", ErrInvalid, i)
		}
		if _, err := ParseChecksum(chunk.Checksum); err != nil {
			return fmt.Errorf("%w: chunk #%d: %w", ErrInvalid, i, err)
		}
		offset += chunk.Size
	}

	if offset != m.TotalSize {
		return fmt.Errorf("%w: chunks cover %d bytes, total size is %d", ErrInvalid, offset, m.TotalSize)
	}
	return nil
}

////////////////////////////////////////////////////////////////////////////////

func Encode(w io.Writer, m *Manifest) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return err
	}
	return enc.Close()
}

func Decode(r io.Reader) (*Manifest, error) {
	m := &Manifest{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return m, nil
}

func Store(ctx context.Context, store chunkstore.Store, m *Manifest) (err error) {
	w, err := store.Create(ctx, ObjectName)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = w.Discard()
		}
	}()

	if err = Encode(w, m); err != nil {
		return err
	}
	return w.Commit()
}

func Load(ctx context.Context, store chunkstore.Store) (*Manifest, error) {
	r, err := store.Open(ctx, ObjectName)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	m, err := Decode(r)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
