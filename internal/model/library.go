package model

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qobs-build/hiergen/internal/fsutil"
)

// Range is a half-open interval [Start, End) of global function indices.
type Range struct {
	Start, End int
}

func (r Range) Len() int {
	return max(r.End-r.Start, 0)
}

func (r Range) Contains(i int) bool {
	return i >= r.Start && i < r.End
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// Source is the C source file of a library: its includes, type declarations
// and one definition per function.
type Source struct {
	Path        string
	Comments    []string
	Includes    []string
	SysIncludes []string
	Types       []string
	Functions   []Function
}

// Render returns the source contents.
func (s *Source) Render() string {
	var sb strings.Builder

	for _, line := range s.Comments {
		writeln(&sb, "// ", line)
	}
	writeln(&sb)
	writeGroup(&sb, s.Includes, `#include "`, `"`)
	writeGroup(&sb, s.SysIncludes, "#include <", ">")
	writeGroup(&sb, s.Types, "", ";")

	for _, fn := range s.Functions {
		fn.write(&sb)
		writeln(&sb)
	}
	return sb.String()
}

// Library is a directory holding one header and one source file that expose a
// contiguous range of trivial functions. Its name is the basename of its path.
type Library struct {
	path   string
	funcs  Range
	header *Header
	source *Source
}

// NewLibrary returns a library rooted at path owning the functions in funcs.
// Nothing is written until Create.
func NewLibrary(path string, funcs Range) *Library {
	lib := &Library{path: path, funcs: funcs}
	lib.reset()
	return lib
}

func (l *Library) reset() {
	name := l.Name()
	l.header = NewHeader(l.HeaderPath())
	l.header.Comments = append(l.header.Comments, name+" public interface")
	l.header.SysIncludes = append(l.header.SysIncludes, "stdio.h")
	l.header.AddTypeDecl("typedef int " + name + "_status")

	l.source = &Source{
		Path:        l.SourcePath(),
		Comments:    []string{"library " + name},
		Includes:    []string{l.header.Name()},
		SysIncludes: []string{},
		Types:       []string{},
		Functions:   make([]Function, 0, l.funcs.Len()),
	}
}

func (l *Library) Path() string { return l.path }
func (l *Library) Name() string { return filepath.Base(l.path) }
func (l *Library) Range() Range { return l.funcs }

// HeaderPath is <path>/include/<name>.h
func (l *Library) HeaderPath() string {
	return filepath.Join(l.path, "include", l.Name()+".h")
}

// SourcePath is <path>/src/<name>.c
func (l *Library) SourcePath() string {
	return filepath.Join(l.path, "src", l.Name()+".c")
}

// HeaderName returns the basename dependents include.
func (l *Library) HeaderName() string { return l.header.Name() }

// Header exposes the library's header model.
func (l *Library) Header() *Header { return l.header }

// Functions returns the library's functions in ascending index order.
func (l *Library) Functions() []Function { return l.source.Functions }

// AddFunction appends fn to the library and declares it in the header.
func (l *Library) AddFunction(fn Function) {
	fn = fn.clone()
	l.header.AddFunctionDecl(fn.Signature())
	l.source.Functions = append(l.source.Functions, fn)
}

// Create synthesizes func<i> for every index in the library's range and writes
// include/<name>.h and src/<name>.c. Calling it again regenerates from scratch.
func (l *Library) Create() error {
	l.reset()
	for i := l.funcs.Start; i < l.funcs.End; i++ {
		l.AddFunction(newIndexedFunction(i))
	}

	if err := fsutil.MkdirAll(l.path); err != nil {
		return err
	}
	if err := fsutil.WriteFile(l.source.Path, l.source.Render()); err != nil {
		return err
	}
	return l.header.Write()
}
