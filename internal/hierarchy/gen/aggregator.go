package gen

import (
	"bufio"
	"fmt"
	"os"
	"slices"

	"github.com/qobs-build/hiergen/internal/fsutil"
)

// Aggregator is an open aggregator descriptor: the build file of a directory
// that lists the subdirectories to traverse. It receives exactly one entry per
// added unit, in the order they are added. Close must be called once; later
// calls are no-ops.
type Aggregator struct {
	path    string
	f       *os.File
	w       *bufio.Writer
	entry   func(name string) string
	footer  string
	entries []string
	closed  bool
}

// openAggregator creates path and writes header. entry renders the line for
// one subdirectory and footer is written on Close.
func openAggregator(path, header, footer string, entry func(name string) string) (*Aggregator, error) {
	f, err := fsutil.Create(path)
	if err != nil {
		return nil, err
	}
	agg := &Aggregator{
		path:    path,
		f:       f,
		w:       bufio.NewWriter(f),
		entry:   entry,
		footer:  footer,
		entries: []string{},
	}
	if _, err := agg.w.WriteString(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: write %s: %w", fsutil.ErrIO, path, err)
	}
	return agg, nil
}

func (a *Aggregator) Path() string { return a.path }

// Entries returns the subdirectories added so far.
func (a *Aggregator) Entries() []string { return slices.Clone(a.entries) }

// Add appends the entry for subdirectory name.
func (a *Aggregator) Add(name string) error {
	if a.closed {
		return fmt.Errorf("%w: add %s to %s: %w", fsutil.ErrIO, name, a.path, os.ErrClosed)
	}
	if _, err := a.w.WriteString(a.entry(name)); err != nil {
		return fmt.Errorf("%w: write %s: %w", fsutil.ErrIO, a.path, err)
	}
	a.entries = append(a.entries, name)
	return nil
}

// Close writes the footer, flushes and releases the file.
func (a *Aggregator) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true

	_, werr := a.w.WriteString(a.footer)
	if werr == nil {
		werr = a.w.Flush()
	}
	cerr := a.f.Close()
	if werr != nil {
		return fmt.Errorf("%w: write %s: %w", fsutil.ErrIO, a.path, werr)
	}
	if cerr != nil {
		return fmt.Errorf("%w: close %s: %w", fsutil.ErrIO, a.path, cerr)
	}
	return nil
}
