package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/qobs-build/hiergen/internal/fsutil"
)

// ErrUnsupportedSignature is returned when an application would have to call
// a function that takes parameters.
var ErrUnsupportedSignature = errors.New("only functions without parameters are supported")

// Application is a test driver that includes every library header and calls
// every library function. It does not own its libraries.
type Application struct {
	path      string
	libraries []*Library
}

// NewApplication returns an application at path depending on libs, in order.
func NewApplication(path string, libs []*Library) *Application {
	return &Application{path: path, libraries: slices.Clone(libs)}
}

func (a *Application) Path() string           { return a.path }
func (a *Application) Name() string           { return filepath.Base(a.path) }
func (a *Application) Libraries() []*Library  { return slices.Clone(a.libraries) }
func (a *Application) MainPath() string       { return filepath.Join(a.path, "src", "main.c") }
func (a *Application) MainSource() string     { return "src/main.c" }
func (a *Application) LibraryNames() []string { return libraryNames(a.libraries) }

func libraryNames(libs []*Library) []string {
	names := make([]string, len(libs))
	for i, lib := range libs {
		names[i] = lib.Name()
	}
	return names
}

// Validate checks that every function in the dependency closure can be called
// without arguments.
func (a *Application) Validate() error {
	for _, lib := range a.libraries {
		for _, fn := range lib.Functions() {
			if len(fn.Params) != 0 {
				return fmt.Errorf("%w: %s:%s", ErrUnsupportedSignature, lib.Name(), fn.Signature())
			}
		}
	}
	return nil
}

// Render returns the driver source.
func (a *Application) Render() (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}

	var sb strings.Builder
	writeln(&sb, "#include <stdio.h>")
	for _, lib := range a.libraries {
		writeln(&sb, `#include "`, lib.HeaderName(), `"`)
	}
	writeln(&sb, "int main(void) {")
	for _, lib := range a.libraries {
		for _, fn := range lib.Functions() {
			writeln(&sb, "  ", fn.Call())
		}
	}
	writeln(&sb, "  return 0; // ok")
	writeln(&sb, "}")
	return sb.String(), nil
}

// Create writes src/main.c. Nothing is written if validation fails.
func (a *Application) Create() error {
	src, err := a.Render()
	if err != nil {
		return err
	}
	return fsutil.WriteFile(a.MainPath(), src)
}
