package model

import (
	"path/filepath"
	"strings"

	"github.com/qobs-build/hiergen/internal/fsutil"
)

// Header is a generated C header file.
type Header struct {
	Path        string
	Comments    []string
	Includes    []string // local, rendered as #include "x"
	SysIncludes []string // rendered as #include <x>
	Types       []string
	Funcs       []string
}

// NewHeader returns an empty header at path. Every list is freshly allocated.
func NewHeader(path string) *Header {
	return &Header{
		Path:        path,
		Comments:    []string{},
		Includes:    []string{},
		SysIncludes: []string{},
		Types:       []string{},
		Funcs:       []string{},
	}
}

// Name returns the header's basename as used in #include directives.
func (h *Header) Name() string { return filepath.Base(h.Path) }

// Guard returns the include-guard token for this header.
func (h *Header) Guard() string { return GuardToken(h.Path) }

func (h *Header) AddFunctionDecl(sig string) { h.Funcs = append(h.Funcs, sig) }
func (h *Header) AddTypeDecl(decl string)    { h.Types = append(h.Types, decl) }

// Render returns the header contents.
func (h *Header) Render() string {
	var sb strings.Builder
	guard := h.Guard()

	for _, line := range h.Comments {
		writeln(&sb, "// ", line)
	}
	writeln(&sb)
	writeln(&sb, "#ifndef ", guard)
	writeln(&sb, "#define ", guard)
	writeln(&sb)
	writeGroup(&sb, h.Includes, `#include "`, `"`)
	writeGroup(&sb, h.SysIncludes, "#include <", ">")
	writeGroup(&sb, h.Types, "", ";")
	writeGroup(&sb, h.Funcs, "", ";")
	writeln(&sb, "#endif // ", guard)
	return sb.String()
}

// Write renders the header to its path.
func (h *Header) Write() error {
	return fsutil.WriteFile(h.Path, h.Render())
}

// GuardToken derives the include-guard token from the absolute form of path:
// every component root-to-leaf uppercased and followed by '_', a "__" prefix,
// one extra trailing '_', and anything that cannot appear in a macro name
// replaced by '_'. /src/h/L000.h becomes __SRC_H_L000_H__.
func GuardToken(path string) string {
	return GuardPrefix(path) + "_"
}

// GuardPrefix returns the prefix shared by the guard token of every file below dir.
func GuardPrefix(dir string) string {
	var sb strings.Builder
	sb.WriteString("__")
	for _, part := range pathComponents(dir) {
		sb.WriteString(sanitizeMacro(strings.ToUpper(part)))
		sb.WriteByte('_')
	}
	return sb.String()
}

func pathComponents(path string) []string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}

	var parts []string
	vol := filepath.VolumeName(abs)
	if vol != "" {
		parts = append(parts, vol)
	}
	for part := range strings.SplitSeq(filepath.ToSlash(abs[len(vol):]), "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func sanitizeMacro(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
