// Package workdir hands out the directory a download is written into: either
// a caller-chosen path, or a temporary directory that is removed when the
// scope using it ends.
//
//	err := workdir.With("", func(dir string) error {
//	    path, err := dl.MaybeDownload(ctx, url, download.Options{WorkDir: dir})
//	    ...
//	    return err
//	})
//	// the temporary directory is gone here, whatever fn returned
package workdir

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const tempPattern = "gobase-*"

// Dir is an acquired work directory.
type Dir struct {
	path      string
	temporary bool

	once     sync.Once
	closeErr error
}

// Acquire returns a work directory.
//
// An empty path creates a fresh temporary directory which Close removes
// together with everything inside it. A non-empty path is resolved to its
// absolute, symlink-free form and is never touched by Close; it does not
// have to exist yet.
func Acquire(path string) (*Dir, error) {
	if path == "" {
		tmp, err := os.MkdirTemp("", tempPattern)
		if err != nil {
			return nil, fmt.Errorf("create temp dir: %w", err)
		}
		return &Dir{path: tmp, temporary: true}, nil
	}

	real, err := realPath(path)
	if err != nil {
		return nil, err
	}
	return &Dir{path: real}, nil
}

// Path returns the directory path.
func (d *Dir) Path() string { return d.path }

// Temporary reports whether Close deletes the directory.
func (d *Dir) Temporary() bool { return d.temporary }

// Close removes a temporary directory recursively. It is safe to call more
// than once; caller-supplied directories are left alone.
func (d *Dir) Close() error {
	if !d.temporary {
		return nil
	}
	d.once.Do(func() {
		if err := os.RemoveAll(d.path); err != nil {
			d.closeErr = fmt.Errorf("remove temp dir: %w", err)
		}
	})
	return d.closeErr
}

// With acquires a work directory, runs fn with its path, and releases the
// directory on every exit path. A panic inside fn still removes a temporary
// directory before it continues unwinding.
//
// fn's error wins over a cleanup error; both are reported when both occur.
func With(path string, fn func(dir string) error) (err error) {
	d, err := Acquire(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := d.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	return fn(d.path)
}

// realPath mirrors realpath(3) but tolerates paths that do not exist yet:
// the longest existing prefix has its symlinks resolved and the rest is
// appended unchanged.
func realPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}

	parent, base := filepath.Split(abs)
	parent = filepath.Clean(parent)
	if parent == abs {
		return abs, nil
	}
	head, err := realPath(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(head, base), nil
}
