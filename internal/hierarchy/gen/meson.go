package gen

import (
	"path/filepath"
	"strings"

	"github.com/qobs-build/hiergen/internal/fsutil"
	"github.com/qobs-build/hiergen/internal/model"
)

const mesonBuildFile = "meson.build"

type MesonGen struct {
	project Project
}

// mesonDep is the variable a library exposes to its consumers
func mesonDep(lib string) string { return "lib" + lib + "_dep" }

func (g *MesonGen) BeginRoot(root, appsPath, libsPath string) error {
	var sb strings.Builder

	writeln(&sb, "project(", pyQuote(g.project.Name), ", 'c')")
	writeln(&sb, "add_global_arguments(", pyQuote("-std="+g.project.Std), ", language : 'c')")
	writeln(&sb)
	// libraries first: applications reference their *_dep variables
	writeln(&sb, "subdir(", pyQuote(relPath(root, libsPath)), ")")
	writeln(&sb, "subdir(", pyQuote(relPath(root, appsPath)), ")")

	return fsutil.WriteFile(filepath.Join(root, mesonBuildFile), sb.String())
}

func (g *MesonGen) EndRoot() error { return nil }

func mesonSubdir(name string) string {
	return "subdir(" + pyQuote(name) + ")\n"
}

func (g *MesonGen) BeginLibraries(libsPath string) (*Aggregator, error) {
	return openAggregator(filepath.Join(libsPath, mesonBuildFile), "", "", mesonSubdir)
}

func (g *MesonGen) BeginApplications(appsPath string) (*Aggregator, error) {
	return openAggregator(filepath.Join(appsPath, mesonBuildFile), "", "", mesonSubdir)
}

func (g *MesonGen) AddLibrary(agg *Aggregator, lib *model.Library) error {
	var sb strings.Builder
	name := lib.Name()
	src := pyQuote(relPath(lib.Path(), lib.SourcePath()))

	writeln(&sb, "incs = include_directories('include')")
	writeln(&sb, "lib", name, " = static_library(", pyQuote(name), ", ", src, ", include_directories : incs)")
	writeln(&sb, mesonDep(name), " = declare_dependency(include_directories : incs, link_with : lib", name, ")")

	if err := fsutil.WriteFile(filepath.Join(lib.Path(), mesonBuildFile), sb.String()); err != nil {
		return err
	}
	return agg.Add(name)
}

func (g *MesonGen) AddApplication(agg *Aggregator, app *model.Application) error {
	var sb strings.Builder
	name := app.Name()

	writeln(&sb, "executable(", pyQuote(name), ",")
	writeln(&sb, "  ", pyQuote(app.MainSource()), ",")
	writeln(&sb, "  install : true,")
	writeln(&sb, "  dependencies : [")
	for _, lib := range app.Libraries() {
		writeln(&sb, "    ", mesonDep(lib.Name()), ",")
	}
	writeln(&sb, "  ])")

	if err := fsutil.WriteFile(filepath.Join(app.Path(), mesonBuildFile), sb.String()); err != nil {
		return err
	}
	return agg.Add(name)
}
