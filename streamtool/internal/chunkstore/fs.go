package chunkstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yandex/streamtool/streamtool/pkg/atomicfs"
)

type FSStore struct {
	root string
	opts []atomicfs.FileOption
}

var _ Store = (*FSStore)(nil)

func NewFSStore(conf *FSConfig) (*FSStore, error) {
	if conf.Root == "" {
		return nil, fmt.Errorf("fs storage root is empty")
	}
	if err := os.MkdirAll(conf.Root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", conf.Root, err)
	}

	s := &FSStore{root: conf.Root}
	if conf.Sync {
		s.opts = append(s.opts, atomicfs.WithSync())
	}
	return s, nil
}

func (s *FSStore) path(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.root, name), nil
}

func (s *FSStore) Create(ctx context.Context, name string) (Writer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	f, err := atomicfs.Create(path, s.opts...)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FSStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return f, err
}
