// Package hierarchy builds the library/application model of a generated tree
// and drives a build emitter over it.
package hierarchy

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/qobs-build/hiergen/internal/fsutil"
	"github.com/qobs-build/hiergen/internal/hierarchy/gen"
	"github.com/qobs-build/hiergen/internal/model"
	"github.com/qobs-build/hiergen/internal/msg"
)

const (
	LibrariesDir   = "libs"
	ApplicationDir = "apps"
	TestAppName    = "testapp"
)

// Hierarchy is the aggregate root of one generated tree: LibraryCount
// libraries of FunctionsPerLibrary functions each and one test application
// depending on all of them.
type Hierarchy struct {
	Root                string
	LibraryCount        int
	FunctionsPerLibrary int

	// Progress, when set, advances once per library and once per application.
	Progress *msg.ProgressBar
	// Manifest, when set, is written to the root after a successful Create.
	Manifest *Manifest

	emitter      gen.Emitter
	libraries    []*model.Library
	applications []*model.Application
}

// New returns a hierarchy rooted at root rendered through e.
func New(root string, libraryCount, functionsPerLibrary int, e gen.Emitter) (*Hierarchy, error) {
	if libraryCount < 0 || functionsPerLibrary < 0 {
		return nil, fmt.Errorf("%w: counts must not be negative (libraries=%d, functions=%d)", ErrConfiguration, libraryCount, functionsPerLibrary)
	}
	if e == nil {
		return nil, fmt.Errorf("%w: no backend", ErrConfiguration)
	}
	return &Hierarchy{
		Root:                root,
		LibraryCount:        libraryCount,
		FunctionsPerLibrary: functionsPerLibrary,
		emitter:             e,
	}, nil
}

// LibraryName is the directory name of library i: L<base> with base = i*f
// zero-padded to three digits. With f == 0 every base collapses to zero, so
// the library index is used instead to keep names distinct.
func LibraryName(i, f int) string {
	base := i * f
	if f == 0 {
		base = i
	}
	return fmt.Sprintf("L%03d", base)
}

// LibraryRange returns the function indices owned by library i when every
// library holds f functions. Index 0 is never used.
func LibraryRange(i, f int) model.Range {
	base := i * f
	return model.Range{Start: base + 1, End: base + f + 1}
}

func (h *Hierarchy) LibrariesPath() string    { return filepath.Join(h.Root, LibrariesDir) }
func (h *Hierarchy) ApplicationsPath() string { return filepath.Join(h.Root, ApplicationDir) }

// Libraries returns the libraries built by Create, in creation order.
func (h *Hierarchy) Libraries() []*model.Library { return slices.Clone(h.libraries) }

// Applications returns the applications built by Create.
func (h *Hierarchy) Applications() []*model.Application { return h.applications }

func (h *Hierarchy) tick() {
	if h.Progress != nil {
		h.Progress.Add(1)
	}
}

// Create writes every library, the test application and all build
// descriptors. Partial output stays on disk when it fails.
func (h *Hierarchy) Create() error {
	if err := fsutil.MkdirAll(h.Root); err != nil {
		return err
	}

	libsPath := h.LibrariesPath()
	appsPath := h.ApplicationsPath()

	h.libraries = make([]*model.Library, 0, h.LibraryCount)
	for i := range h.LibraryCount {
		name := LibraryName(i, h.FunctionsPerLibrary)
		lib := model.NewLibrary(filepath.Join(libsPath, name), LibraryRange(i, h.FunctionsPerLibrary))
		if err := lib.Create(); err != nil {
			return fmt.Errorf("create library %s: %w", lib.Name(), err)
		}
		h.libraries = append(h.libraries, lib)
		h.tick()
	}

	app := model.NewApplication(filepath.Join(appsPath, TestAppName), h.libraries)
	if err := app.Create(); err != nil {
		return fmt.Errorf("create application %s: %w", app.Name(), err)
	}
	h.applications = []*model.Application{app}
	h.tick()

	if err := h.emit(libsPath, appsPath); err != nil {
		return err
	}

	if h.Manifest != nil {
		h.Manifest.Record(h)
		if err := h.Manifest.Write(h.Root); err != nil {
			return err
		}
	}
	return nil
}

// emit runs the emission protocol: root, libraries, applications, end.
func (h *Hierarchy) emit(libsPath, appsPath string) error {
	if err := h.emitter.BeginRoot(h.Root, appsPath, libsPath); err != nil {
		return fmt.Errorf("emit root: %w", err)
	}
	if err := h.emitLibraries(libsPath); err != nil {
		return fmt.Errorf("emit libraries: %w", err)
	}
	if err := h.emitApplications(appsPath); err != nil {
		return fmt.Errorf("emit applications: %w", err)
	}
	if err := h.emitter.EndRoot(); err != nil {
		return fmt.Errorf("emit root: %w", err)
	}
	return nil
}

func (h *Hierarchy) emitLibraries(libsPath string) (err error) {
	agg, err := h.emitter.BeginLibraries(libsPath)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, agg.Close()) }()

	for _, lib := range h.libraries {
		if err := h.emitter.AddLibrary(agg, lib); err != nil {
			return fmt.Errorf("%s: %w", lib.Name(), err)
		}
	}
	return nil
}

func (h *Hierarchy) emitApplications(appsPath string) (err error) {
	agg, err := h.emitter.BeginApplications(appsPath)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, agg.Close()) }()

	for _, app := range h.applications {
		if err := app.Validate(); err != nil {
			return err
		}
		if err := h.emitter.AddApplication(agg, app); err != nil {
			return fmt.Errorf("%s: %w", app.Name(), err)
		}
	}
	return nil
}
