package gen

import (
	"path/filepath"
	"strings"

	"github.com/qobs-build/hiergen/internal/fsutil"
	"github.com/qobs-build/hiergen/internal/model"
)

const cmakeBuildFile = "CMakeLists.txt"

type CMakeGen struct {
	project Project
}

func cmakeQuote(s string) string { return `"` + s + `"` }

// cmakeStandard maps a compiler -std value to CMAKE_C_STANDARD and
// CMAKE_C_EXTENSIONS. CMake knows 90, 99, 11, 17 and 23 only.
func cmakeStandard(std string) (standard, extensions string) {
	extensions = "OFF"
	if strings.HasPrefix(std, "gnu") {
		extensions = "ON"
	}
	standard = strings.TrimLeft(std, "cgnu")
	switch standard {
	case "89", "90":
		standard = "90"
	case "9x":
		standard = "99"
	case "1x":
		standard = "11"
	case "18":
		standard = "17"
	case "2x":
		standard = "23"
	}
	return standard, extensions
}

func (g *CMakeGen) BeginRoot(root, appsPath, libsPath string) error {
	var sb strings.Builder
	std, extensions := cmakeStandard(g.project.Std)

	writeln(&sb, "cmake_minimum_required(VERSION 3.5)")
	writeln(&sb, "project(", cmakeQuote(g.project.Name), " C)")
	writeln(&sb)
	writeln(&sb, "set(CMAKE_C_STANDARD ", std, ")")
	writeln(&sb, "set(CMAKE_C_STANDARD_REQUIRED ON)")
	writeln(&sb, "set(CMAKE_C_EXTENSIONS ", extensions, ")")
	writeln(&sb)
	writeln(&sb, "find_program(CCACHE_FOUND ccache)")
	writeln(&sb, "if(CCACHE_FOUND)")
	writeln(&sb, "  set_property(GLOBAL PROPERTY RULE_LAUNCH_COMPILE ccache)")
	writeln(&sb, "  set_property(GLOBAL PROPERTY RULE_LAUNCH_LINK ccache)")
	writeln(&sb, "endif(CCACHE_FOUND)")
	writeln(&sb)
	writeln(&sb, "add_subdirectory(", cmakeQuote(relPath(root, libsPath)), ")")
	writeln(&sb, "add_subdirectory(", cmakeQuote(relPath(root, appsPath)), ")")

	return fsutil.WriteFile(filepath.Join(root, cmakeBuildFile), sb.String())
}

func (g *CMakeGen) EndRoot() error { return nil }

func cmakeSubdirectory(name string) string {
	return "add_subdirectory(" + cmakeQuote(name) + ")\n"
}

func (g *CMakeGen) BeginLibraries(libsPath string) (*Aggregator, error) {
	return openAggregator(filepath.Join(libsPath, cmakeBuildFile), "", "", cmakeSubdirectory)
}

func (g *CMakeGen) BeginApplications(appsPath string) (*Aggregator, error) {
	return openAggregator(filepath.Join(appsPath, cmakeBuildFile), "", "", cmakeSubdirectory)
}

// AddLibrary declares a static library with a public include directory; the
// target name itself is the handle consumers link against.
func (g *CMakeGen) AddLibrary(agg *Aggregator, lib *model.Library) error {
	var sb strings.Builder
	name := lib.Name()

	writeln(&sb, "add_library(", name, " STATIC")
	writeln(&sb, "    ", relPath(lib.Path(), lib.SourcePath()))
	writeln(&sb, ")")
	writeln(&sb, "target_include_directories(", name, " PUBLIC ", cmakeQuote("include"), ")")

	if err := fsutil.WriteFile(filepath.Join(lib.Path(), cmakeBuildFile), sb.String()); err != nil {
		return err
	}
	return agg.Add(name)
}

func (g *CMakeGen) AddApplication(agg *Aggregator, app *model.Application) error {
	var sb strings.Builder
	name := app.Name()

	writeln(&sb, "add_executable(", name, " ", app.MainSource(), ")")
	writeln(&sb, "target_link_libraries(", name)
	for _, lib := range app.Libraries() {
		writeln(&sb, "    ", lib.Name())
	}
	writeln(&sb, ")")

	if err := fsutil.WriteFile(filepath.Join(app.Path(), cmakeBuildFile), sb.String()); err != nil {
		return err
	}
	return agg.Add(name)
}
