package chunkstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yandex/streamtool/streamtool/pkg/s3"
)

var (
	ErrNotFound    = errors.New("chunk not found")
	ErrInvalidName = errors.New("invalid chunk name")
)

// Writer receives a single object. Nothing is visible in the store until
// Commit succeeds. Discard after Commit is a no-op.
type Writer interface {
	io.Writer
	Commit() error
	Discard() error
}

type Store interface {
	Create(ctx context.Context, name string) (Writer, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// validateName accepts only plain object names, so that no store can be
// tricked into addressing anything outside its root or prefix.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

////////////////////////////////////////////////////////////////////////////////

type FSConfig struct {
	Root string `yaml:"root"`
	Sync bool   `yaml:"sync"`
}

type Config struct {
	FS *FSConfig  `yaml:"fs,omitempty"`
	S3 *s3.Config `yaml:"s3,omitempty"`
}

func New(conf *Config) (Store, error) {
	switch {
	case conf.FS != nil && conf.S3 != nil:
		return nil, fmt.Errorf("exactly one of fs and s3 storage must be configured")
	case conf.FS != nil:
		return NewFSStore(conf.FS)
	case conf.S3 != nil:
		client, err := s3.NewClient(conf.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 client: %w", err)
		}
		return NewS3Store(client, conf.S3.Bucket, conf.S3.Prefix)
	default:
		return nil, fmt.Errorf("no storage configured")
	}
}
