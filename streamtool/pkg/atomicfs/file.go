package atomicfs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

var ErrFinished = errors.New("atomic file is already committed or discarded")

////////////////////////////////////////////////////////////////////////////////

// File is written to a temporary file next to its destination and renamed
// into place on Commit. Readers of the destination never see partial data.
type File struct {
	tmpfile *os.File
	dstpath string
	sync    bool
}

type FileOption func(f *File) error

// WithSync makes Commit fsync the data before the rename.
func WithSync() FileOption {
	return func(f *File) error {
		f.sync = true
		return nil
	}
}

func WithMode(mode os.FileMode) FileOption {
	return func(f *File) error {
		return f.tmpfile.Chmod(mode)
	}
}

////////////////////////////////////////////////////////////////////////////////

const tmpsuffix = ".tmp-"

func Create(path string, opts ...FileOption) (*File, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination path: %w", err)
	}
	dir, base := filepath.Split(path)

	tmpf, err := os.CreateTemp(dir, base+tmpsuffix)
	if err != nil {
		return nil, err
	}

	file := &File{tmpfile: tmpf, dstpath: path}

	// Leaked files are removed when collected.
	runtime.SetFinalizer(file, (*File).Discard)

	for _, opt := range opts {
		if err = opt(file); err != nil {
			_ = file.Discard()
			return nil, err
		}
	}

	return file, nil
}

////////////////////////////////////////////////////////////////////////////////

func (f *File) Write(data []byte) (int, error) {
	if f.tmpfile == nil {
		return 0, ErrFinished
	}
	return f.tmpfile.Write(data)
}

// Discard drops the temporary file. It is a no-op after Commit.
func (f *File) Discard() error {
	if f.tmpfile == nil {
		return nil
	}
	tmp := f.tmpfile
	f.tmpfile = nil
	runtime.SetFinalizer(f, nil)

	err := tmp.Close()
	if rmErr := os.Remove(tmp.Name()); err == nil {
		err = rmErr
	}
	return err
}

// Commit publishes the written data at the destination path.
func (f *File) Commit() (err error) {
	if f.tmpfile == nil {
		return ErrFinished
	}
	defer func() {
		if err != nil {
			_ = f.Discard()
		}
	}()

	if f.sync {
		if err = f.tmpfile.Sync(); err != nil {
			return err
		}
	}

	if err = f.tmpfile.Close(); err != nil {
		return err
	}

	if err = os.Rename(f.tmpfile.Name(), f.dstpath); err != nil {
		// The temporary file is closed already, Discard only removes it.
		return err
	}

	f.tmpfile = nil
	runtime.SetFinalizer(f, nil)
	return nil
}

////////////////////////////////////////////////////////////////////////////////

var _ io.Writer = (*File)(nil)
