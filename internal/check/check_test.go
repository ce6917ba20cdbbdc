package check

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/qobs-build/hiergen/internal/hierarchy"
	"github.com/qobs-build/hiergen/internal/hierarchy/gen"
	"github.com/stretchr/testify/require"
)

func generated(t *testing.T, backend string) (string, hierarchy.Options) {
	t.Helper()
	o := hierarchy.DefaultOptions()
	o.Backend = backend
	o.Root = filepath.Join(t.TempDir(), "tree")
	o.Libraries, o.Functions = 3, 2
	o.Manifest = true

	h, err := o.NewHierarchy("test")
	require.NoError(t, err)
	require.NoError(t, h.Create())
	return o.Root, o
}

func TestCleanTree(t *testing.T) {
	for _, backend := range gen.Backends() {
		t.Run(backend, func(t *testing.T) {
			root, o := generated(t, backend)

			// metadata the generator never writes is ignored
			require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
			require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "HEAD"), []byte("ref: refs/heads/master\n"), 0o644))

			report, err := Run(root, o)
			require.NoError(t, err)
			require.True(t, report.Clean(), "%+v", report.Entries)
		})
	}
}

func TestDrift(t *testing.T) {
	root, o := generated(t, gen.BackendCMake)

	src := filepath.Join(root, "libs", "L002", "src", "L002.c")
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	edited := strings.Replace(string(data), `printf("func3\n")`, `printf("changed\n")`, 1)
	require.NoError(t, os.WriteFile(src, []byte(edited), 0o644))

	require.NoError(t, os.Remove(filepath.Join(root, "apps", "testapp", "CMakeLists.txt")))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hi\n"), 0o644))

	report, err := Run(root, o)
	require.NoError(t, err)
	require.False(t, report.Clean())

	require.Len(t, report.Entries, 3)
	require.Equal(t, Entry{Path: "apps/testapp/CMakeLists.txt", Kind: Missing}, report.Entries[0])
	require.Equal(t, "libs/L002/src/L002.c", report.Entries[1].Path)
	require.Equal(t, Modified, report.Entries[1].Kind)
	require.Contains(t, report.Entries[1].Diff, "-    printf(\"func3\\n\");\n")
	require.Contains(t, report.Entries[1].Diff, "+    printf(\"changed\\n\");\n")
	require.Equal(t, Entry{Path: "notes.txt", Kind: Extra}, report.Entries[2])

	color.NoColor = true
	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf))
	require.Contains(t, buf.String(), "missing apps/testapp/CMakeLists.txt\n")
	require.Contains(t, buf.String(), "    +    printf(\"changed\\n\");\n")
}

func TestDifferentOptionsDrift(t *testing.T) {
	root, o := generated(t, gen.BackendMeson)
	o.Functions = 3

	report, err := Run(root, o)
	require.NoError(t, err)
	require.False(t, report.Clean())
}

func TestRunRejectsBadOptions(t *testing.T) {
	root, o := generated(t, gen.BackendMeson)
	o.Backend = "ninja"

	_, err := Run(root, o)
	require.ErrorIs(t, err, hierarchy.ErrConfiguration)
}

func TestLineDiff(t *testing.T) {
	require.Empty(t, lineDiff("a\nb\n", "a\nb\n"))
	require.Equal(t, "-b\n+c\n", lineDiff("a\nb\n", "a\nc\n"))
	require.Equal(t, "+x\n\\ no newline at end of file\n", lineDiff("", "x"))
}
