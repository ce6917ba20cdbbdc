// Package gen renders a hierarchy of libraries and applications into build
// descriptors for one backend.
package gen

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/qobs-build/hiergen/internal/model"
)

const (
	BackendCMake   = "cmake"
	BackendMeson   = "meson"
	BackendCreator = "creator"
	BackendVS2022  = "vs2022"
)

var ErrUnknownBackend = errors.New("unknown backend")

// Project holds the settings shared by every descriptor of one hierarchy.
type Project struct {
	Name string // project name declared by the root descriptor
	Std  string // C language standard, e.g. "c99"
}

func (p Project) withDefaults() Project {
	if p.Name == "" {
		p.Name = "hierarchy"
	}
	if p.Std == "" {
		p.Std = "c99"
	}
	return p
}

// Emitter writes the build descriptors of one backend. The driver calls
// BeginRoot, then BeginLibraries/AddLibrary/Close, then
// BeginApplications/AddApplication/Close, then EndRoot.
type Emitter interface {
	// BeginRoot writes the top-level descriptor that aggregates libsPath and appsPath.
	BeginRoot(root, appsPath, libsPath string) error
	// BeginLibraries opens the aggregator of libsPath.
	BeginLibraries(libsPath string) (*Aggregator, error)
	// AddLibrary writes the library's descriptor and adds it to agg.
	AddLibrary(agg *Aggregator, lib *model.Library) error
	// BeginApplications opens the aggregator of appsPath.
	BeginApplications(appsPath string) (*Aggregator, error)
	// AddApplication writes the application's descriptor and adds it to agg.
	AddApplication(agg *Aggregator, app *model.Application) error
	// EndRoot finalizes the hierarchy.
	EndRoot() error
}

var backends = map[string]struct {
	help string
	new  func(Project) Emitter
}{
	BackendCMake:   {"Generates CMakeLists.txt files", func(p Project) Emitter { return &CMakeGen{project: p} }},
	BackendMeson:   {"Generates meson.build files", func(p Project) Emitter { return &MesonGen{project: p} }},
	BackendCreator: {"Generates .creator units", func(p Project) Emitter { return &CreatorGen{project: p} }},
	BackendVS2022:  {"Generates Visual Studio 2022 projects", func(p Project) Emitter { return NewVS2022Gen(p) }},
}

// New returns a fresh emitter for backend.
func New(backend string, p Project) (Emitter, error) {
	b, ok := backends[backend]
	if !ok {
		return nil, fmt.Errorf("%w %q, must be one of: %s", ErrUnknownBackend, backend, strings.Join(Backends(), ", "))
	}
	return b.new(p.withDefaults()), nil
}

// Backends returns the supported backend names, sorted.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Help returns the backend names mapped to a one-line description.
func Help() map[string]string {
	help := make(map[string]string, len(backends))
	for name, b := range backends {
		help[name] = b.help
	}
	return help
}
