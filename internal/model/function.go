// Package model describes the generated C code: functions, headers, libraries
// and the test application that links them.
package model

import (
	"fmt"
	"slices"
	"strings"
)

// Function is one generated C function.
type Function struct {
	Name       string
	ReturnType string
	Params     []string
	Comments   []string
	Locals     []string
	Body       []string
}

// newIndexedFunction returns the trivial function generated for global index i:
// void func<i>(void) printing its own name.
func newIndexedFunction(i int) Function {
	name := FunctionName(i)
	return Function{
		Name:       name,
		ReturnType: "void",
		Params:     []string{},
		Comments:   []string{name},
		Locals:     []string{},
		Body:       []string{fmt.Sprintf(`printf("%s\n")`, name)},
	}
}

// FunctionName is the name given to the function with global index i.
func FunctionName(i int) string {
	return fmt.Sprintf("func%d", i)
}

// Signature renders the prototype without a trailing semicolon, e.g. `void func1(void)`.
func (f Function) Signature() string {
	params := "void"
	if len(f.Params) > 0 {
		params = strings.Join(f.Params, ", ")
	}
	return f.ReturnType + " " + f.Name + "(" + params + ")"
}

// Call renders a call statement. Only valid for functions without parameters.
func (f Function) Call() string {
	return f.Name + "();"
}

// clone returns a copy that shares no backing storage with f
func (f Function) clone() Function {
	f.Params = slices.Clone(f.Params)
	f.Comments = slices.Clone(f.Comments)
	f.Locals = slices.Clone(f.Locals)
	f.Body = slices.Clone(f.Body)
	return f
}

func (f Function) write(sb *strings.Builder) {
	for _, line := range f.Comments {
		writeln(sb, "// ", line)
	}
	writeln(sb, f.Signature(), " {")
	if len(f.Locals) > 0 {
		for _, line := range f.Locals {
			writeln(sb, "    ", line, ";")
		}
		writeln(sb)
	}
	for _, line := range f.Body {
		writeln(sb, "    ", line, ";")
	}
	writeln(sb, "}")
}
