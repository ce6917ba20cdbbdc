package hierarchy

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/qobs-build/hiergen/internal/hierarchy/gen"
)

// ErrConfiguration marks invalid user input: unknown backend, bad counts or
// an unreadable configuration file. Nothing is written when it is returned.
var ErrConfiguration = errors.New("configuration error")

// Options is everything needed to generate one hierarchy.
type Options struct {
	Name      string
	Backend   string
	Root      string
	Std       string
	Libraries int
	Functions int

	Manifest      bool
	Git           bool
	CommitMessage string
}

func DefaultOptions() Options {
	return Options{
		Name:          "hierarchy",
		Std:           "c99",
		CommitMessage: "Generate hierarchy",
	}
}

// ParseCount parses a non-negative count given on the command line.
func ParseCount(what, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", ErrConfiguration, what, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative, got %d", ErrConfiguration, what, n)
	}
	return n, nil
}

func (o Options) Project() gen.Project {
	return gen.Project{Name: o.Name, Std: o.Std}
}

// Validate reports the first problem with o, wrapped in ErrConfiguration.
func (o Options) Validate() error {
	if _, err := gen.New(o.Backend, o.Project()); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if o.Root == "" {
		return fmt.Errorf("%w: no hierarchy path given", ErrConfiguration)
	}
	if o.Libraries < 0 {
		return fmt.Errorf("%w: library count must not be negative, got %d", ErrConfiguration, o.Libraries)
	}
	if o.Functions < 0 {
		return fmt.Errorf("%w: function count must not be negative, got %d", ErrConfiguration, o.Functions)
	}
	return nil
}

// NewHierarchy validates o and returns the hierarchy it describes, with a
// fresh emitter. version is recorded in the manifest when one is requested.
func (o Options) NewHierarchy(version string) (*Hierarchy, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	e, err := gen.New(o.Backend, o.Project())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	h, err := New(o.Root, o.Libraries, o.Functions, e)
	if err != nil {
		return nil, err
	}
	if o.Manifest {
		h.Manifest = NewManifest(o, version)
	}
	return h, nil
}
