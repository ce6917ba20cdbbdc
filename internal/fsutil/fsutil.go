// Package fsutil wraps the handful of filesystem primitives the generator
// needs so that every failure carries ErrIO.
package fsutil

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrIO marks a directory or file that could not be created or written.
var ErrIO = errors.New("i/o failure")

func wrap(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrIO, op, path, err)
}

// MkdirAll creates path and any missing parents
func MkdirAll(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return wrap("mkdir", path, err)
	}
	return nil
}

// Create creates (or truncates) the file at path, creating parent directories first.
func Create(path string) (*os.File, error) {
	if err := MkdirAll(filepath.Dir(path)); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, wrap("create", path, err)
	}
	return f, nil
}

// Render creates the file at path and hands a buffered writer to fn. The file
// is flushed and closed on every path; the first error wins.
func Render(path string, fn func(w io.Writer) error) (err error) {
	f, err := Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = wrap("close", path, cerr)
		}
	}()

	bufw := bufio.NewWriter(f)
	if err := fn(bufw); err != nil {
		return wrap("write", path, err)
	}
	if err := bufw.Flush(); err != nil {
		return wrap("write", path, err)
	}
	return nil
}

// WriteFile writes content to path, creating parent directories first.
func WriteFile(path, content string) error {
	return Render(path, func(w io.Writer) error {
		_, err := io.WriteString(w, content)
		return err
	})
}
