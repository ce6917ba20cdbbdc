package hierarchy

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/qobs-build/hiergen/internal/fsutil"
	"gopkg.in/yaml.v3"
)

// ManifestFile is written to the hierarchy root when a manifest is requested.
const ManifestFile = ".hiergen.yaml"

// Manifest records how a tree was generated and what it contains.
type Manifest struct {
	Version             string                `yaml:"version"`
	Backend             string                `yaml:"backend"`
	Name                string                `yaml:"name"`
	Std                 string                `yaml:"std"`
	LibraryCount        int                   `yaml:"library_count"`
	FunctionsPerLibrary int                   `yaml:"functions_per_library"`
	Libraries           []ManifestLibrary     `yaml:"libraries"`
	Applications        []ManifestApplication `yaml:"applications"`
}

type ManifestLibrary struct {
	Name   string `yaml:"name"`
	Path   string `yaml:"path"` // relative to the root
	Header string `yaml:"header"`
	First  int    `yaml:"first"`
	Last   int    `yaml:"last"` // inclusive; First-1 when empty
}

type ManifestApplication struct {
	Name    string   `yaml:"name"`
	Path    string   `yaml:"path"`
	Depends []string `yaml:"depends"`
}

func NewManifest(o Options, version string) *Manifest {
	return &Manifest{
		Version:             version,
		Backend:             o.Backend,
		Name:                o.Name,
		Std:                 o.Std,
		LibraryCount:        o.Libraries,
		FunctionsPerLibrary: o.Functions,
		Libraries:           []ManifestLibrary{},
		Applications:        []ManifestApplication{},
	}
}

func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Record replaces the manifest's unit lists with the contents of h.
func (m *Manifest) Record(h *Hierarchy) {
	m.Libraries = make([]ManifestLibrary, 0, len(h.Libraries()))
	for _, lib := range h.Libraries() {
		r := lib.Range()
		m.Libraries = append(m.Libraries, ManifestLibrary{
			Name:   lib.Name(),
			Path:   relSlash(h.Root, lib.Path()),
			Header: lib.HeaderName(),
			First:  r.Start,
			Last:   r.End - 1,
		})
	}

	m.Applications = make([]ManifestApplication, 0, len(h.Applications()))
	for _, app := range h.Applications() {
		m.Applications = append(m.Applications, ManifestApplication{
			Name:    app.Name(),
			Path:    relSlash(h.Root, app.Path()),
			Depends: app.LibraryNames(),
		})
	}
}

func (m *Manifest) Write(root string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return fsutil.WriteFile(filepath.Join(root, ManifestFile), string(data))
}

// ReadManifest loads the manifest of the tree at root.
func ReadManifest(root string) (*Manifest, error) {
	path := filepath.Join(root, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", fsutil.ErrIO, path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrConfiguration, path, err)
	}
	return &m, nil
}

// Options reconstructs the generation options recorded for the tree at root.
func (m *Manifest) Options(root string) Options {
	o := DefaultOptions()
	o.Root = root
	o.Backend = m.Backend
	o.Libraries = m.LibraryCount
	o.Functions = m.FunctionsPerLibrary
	o.Manifest = true
	if m.Name != "" {
		o.Name = m.Name
	}
	if m.Std != "" {
		o.Std = m.Std
	}
	return o
}
