package gen

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/qobs-build/hiergen/internal/model"
	"github.com/stretchr/testify/require"
)

type tree struct {
	root, libsPath, appsPath string
	libs                     []*model.Library
	app                      *model.Application
}

// newTree writes n libraries of f functions and the test application below a
// fresh temporary root.
func newTree(t *testing.T, n, f int) tree {
	t.Helper()
	root := t.TempDir()
	tr := tree{
		root:     root,
		libsPath: filepath.Join(root, "libs"),
		appsPath: filepath.Join(root, "apps"),
	}
	for i := range n {
		base := i * f
		lib := model.NewLibrary(filepath.Join(tr.libsPath, fmt.Sprintf("L%03d", base)), model.Range{Start: base + 1, End: base + f + 1})
		require.NoError(t, lib.Create())
		tr.libs = append(tr.libs, lib)
	}
	tr.app = model.NewApplication(filepath.Join(tr.appsPath, "testapp"), tr.libs)
	require.NoError(t, tr.app.Create())
	return tr
}

func emitAll(t *testing.T, e Emitter, tr tree) {
	t.Helper()
	require.NoError(t, e.BeginRoot(tr.root, tr.appsPath, tr.libsPath))

	agg, err := e.BeginLibraries(tr.libsPath)
	require.NoError(t, err)
	for _, lib := range tr.libs {
		require.NoError(t, e.AddLibrary(agg, lib))
	}
	require.NoError(t, agg.Close())

	agg, err = e.BeginApplications(tr.appsPath)
	require.NoError(t, err)
	require.NoError(t, e.AddApplication(agg, tr.app))
	require.NoError(t, agg.Close())

	require.NoError(t, e.EndRoot())
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func requireFile(t *testing.T, path, want string) {
	t.Helper()
	if diff := cmp.Diff(want, readFile(t, path)); diff != "" {
		t.Errorf("%s mismatch (-want +got):\n%s", filepath.Base(path), diff)
	}
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New("ninja", Project{})
	require.ErrorIs(t, err, ErrUnknownBackend)
	require.Contains(t, err.Error(), `"ninja"`)
	require.Contains(t, err.Error(), "cmake, creator, meson, vs2022")
}

func TestNewReturnsFreshEmitters(t *testing.T) {
	for _, backend := range Backends() {
		a, err := New(backend, Project{})
		require.NoError(t, err)
		b, err := New(backend, Project{})
		require.NoError(t, err)
		require.NotSame(t, a, b, backend)
	}
	require.Len(t, Help(), len(Backends()))
}

func TestAggregator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "agg.txt")
	agg, err := openAggregator(path, "head\n", "foot\n", func(name string) string { return "- " + name + "\n" })
	require.NoError(t, err)

	require.NoError(t, agg.Add("b"))
	require.NoError(t, agg.Add("a"))
	require.Equal(t, []string{"b", "a"}, agg.Entries())

	require.NoError(t, agg.Close())
	require.NoError(t, agg.Close(), "second close is a no-op")
	require.ErrorIs(t, agg.Add("c"), os.ErrClosed)

	requireFile(t, path, "head\n- b\n- a\nfoot\n")
}

func TestCMake(t *testing.T) {
	tr := newTree(t, 2, 3)
	e, err := New(BackendCMake, Project{Name: "bench", Std: "c11"})
	require.NoError(t, err)
	emitAll(t, e, tr)

	root := readFile(t, filepath.Join(tr.root, "CMakeLists.txt"))
	require.Contains(t, root, `project("bench" C)`)
	require.Contains(t, root, "set(CMAKE_C_STANDARD 11)")
	require.Contains(t, root, "add_subdirectory(\"libs\")\nadd_subdirectory(\"apps\")\n")

	requireFile(t, filepath.Join(tr.libsPath, "CMakeLists.txt"), "add_subdirectory(\"L000\")\nadd_subdirectory(\"L003\")\n")
	requireFile(t, filepath.Join(tr.appsPath, "CMakeLists.txt"), "add_subdirectory(\"testapp\")\n")
	requireFile(t, filepath.Join(tr.libsPath, "L003", "CMakeLists.txt"), `add_library(L003 STATIC
    src/L003.c
)
target_include_directories(L003 PUBLIC "include")
`)
	requireFile(t, filepath.Join(tr.appsPath, "testapp", "CMakeLists.txt"), `add_executable(testapp src/main.c)
target_link_libraries(testapp
    L000
    L003
)
`)
}

func TestMeson(t *testing.T) {
	tr := newTree(t, 2, 3)
	e, err := New(BackendMeson, Project{})
	require.NoError(t, err)
	emitAll(t, e, tr)

	requireFile(t, filepath.Join(tr.root, "meson.build"), `project('hierarchy', 'c')
add_global_arguments('-std=c99', language : 'c')

subdir('libs')
subdir('apps')
`)
	requireFile(t, filepath.Join(tr.libsPath, "meson.build"), "subdir('L000')\nsubdir('L003')\n")
	requireFile(t, filepath.Join(tr.libsPath, "L000", "meson.build"), `incs = include_directories('include')
libL000 = static_library('L000', 'src/L000.c', include_directories : incs)
libL000_dep = declare_dependency(include_directories : incs, link_with : libL000)
`)
	requireFile(t, filepath.Join(tr.appsPath, "testapp", "meson.build"), `executable('testapp',
  'src/main.c',
  install : true,
  dependencies : [
    libL000_dep,
    libL003_dep,
  ])
`)
}

func TestCreator(t *testing.T) {
	tr := newTree(t, 2, 3)
	e, err := New(BackendCreator, Project{})
	require.NoError(t, err)
	emitAll(t, e, tr)

	root := readFile(t, filepath.Join(tr.root, ".creator"))
	require.Contains(t, root, "load('apps')\nload('libs')\n")
	require.FileExists(t, filepath.Join(tr.root, "template.app.creator"))
	require.FileExists(t, filepath.Join(tr.root, "template.lib.creator"))

	requireFile(t, filepath.Join(tr.libsPath, ".creator"), "# @creator.unit.name = libs\nload('L000')\nload('L003')\n")
	requireFile(t, filepath.Join(tr.libsPath, "L000", ".creator"), "# @creator.unit.name = L000\nextends('template.lib')\n")
	requireFile(t, filepath.Join(tr.appsPath, "testapp", ".creator"), `# @creator.unit.name = testapp
extends('template.app')
load('L000')
load('L003')
append('Libs', ';$L000:Lib;$L003:Lib')
append('Includes', ';$L000:Includes;$L003:Includes')
[obj.requires(x) for x in ['L000:lib', 'L003:lib']]
`)
}

func TestVS2022(t *testing.T) {
	tr := newTree(t, 2, 3)
	e, err := New(BackendVS2022, Project{Name: "bench", Std: "c11"})
	require.NoError(t, err)
	emitAll(t, e, tr)

	requireFile(t, filepath.Join(tr.root, "dirs.proj"), `<Project Sdk="Microsoft.Build.Traversal/4.1.0">
  <ItemGroup>
    <ProjectReference Include="libs\libs.proj" />
    <ProjectReference Include="apps\apps.proj" />
  </ItemGroup>
</Project>
`)
	requireFile(t, filepath.Join(tr.libsPath, "libs.proj"), `<Project Sdk="Microsoft.Build.Traversal/4.1.0">
  <ItemGroup>
    <ProjectReference Include="L000\L000.vcxproj" />
    <ProjectReference Include="L003\L003.vcxproj" />
  </ItemGroup>
</Project>
`)

	var app VSProject
	require.NoError(t, xml.Unmarshal([]byte(readFile(t, filepath.Join(tr.appsPath, "testapp", "testapp.vcxproj"))), &app))
	var refs []string
	for _, g := range app.ItemGroups {
		for _, ref := range g.ProjectReferences {
			refs = append(refs, ref.Include)
		}
	}
	require.Equal(t, []string{`..\..\libs\L000\L000.vcxproj`, `..\..\libs\L003\L003.vcxproj`}, refs)
	require.Equal(t, "stdc11", app.ItemDefinitionGroups[0].ClCompile.LanguageStandardC)
	require.NotNil(t, app.ItemDefinitionGroups[0].Link)

	var lib VSProject
	require.NoError(t, xml.Unmarshal([]byte(readFile(t, filepath.Join(tr.libsPath, "L000", "L000.vcxproj"))), &lib))
	require.Equal(t, "StaticLibrary", lib.PropertyGroups[1].ConfigurationType)
	require.Nil(t, lib.ItemDefinitionGroups[0].Link)

	sln := readFile(t, filepath.Join(tr.root, "bench.sln"))
	require.Regexp(t, `(?s)"L000", "libs\\L000\\L000.vcxproj".*"L003".*"testapp", "apps\\testapp\\testapp.vcxproj"`, sln)
}

func TestVS2022GUIDs(t *testing.T) {
	a := NewVS2022Gen(Project{Name: "bench"})
	b := NewVS2022Gen(Project{Name: "bench"})
	c := NewVS2022Gen(Project{Name: "other"})

	require.Equal(t, a.guid("L000"), b.guid("L000"))
	require.NotEqual(t, a.guid("L000"), a.guid("L001"))
	require.NotEqual(t, a.guid("L000"), c.guid("L000"))
}

func TestAddAfterCloseFails(t *testing.T) {
	tr := newTree(t, 1, 1)
	e, err := New(BackendMeson, Project{})
	require.NoError(t, err)

	agg, err := e.BeginLibraries(tr.libsPath)
	require.NoError(t, err)
	require.NoError(t, agg.Close())

	err = e.AddLibrary(agg, tr.libs[0])
	require.True(t, errors.Is(err, os.ErrClosed))
}

func TestPyQuote(t *testing.T) {
	require.Equal(t, `'a\'b'`, pyQuote("a'b"))
	require.Equal(t, `'a\\b'`, pyQuote(`a\b`))
	require.Equal(t, "['x', 'y']", pyList([]string{"x", "y"}))
	require.Equal(t, "[]", pyList(nil))
}

func TestCMakeStandard(t *testing.T) {
	tests := []struct {
		std, standard, extensions string
	}{
		{"c89", "90", "OFF"},
		{"gnu89", "90", "ON"},
		{"c99", "99", "OFF"},
		{"gnu99", "99", "ON"},
		{"c11", "11", "OFF"},
		{"gnu11", "11", "ON"},
		{"c17", "17", "OFF"},
		{"gnu17", "17", "ON"},
		{"c23", "23", "OFF"},
	}
	for _, tt := range tests {
		t.Run(tt.std, func(t *testing.T) {
			tr := newTree(t, 0, 0)
			e, err := New(BackendCMake, Project{Std: tt.std})
			require.NoError(t, err)
			require.NoError(t, e.BeginRoot(tr.root, tr.appsPath, tr.libsPath))

			root := readFile(t, filepath.Join(tr.root, "CMakeLists.txt"))
			require.Contains(t, root, "set(CMAKE_C_STANDARD "+tt.standard+")\n")
			require.Contains(t, root, "set(CMAKE_C_EXTENSIONS "+tt.extensions+")\n")
		})
	}
}
