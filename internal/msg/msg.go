package msg

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Out receives every message printed by this package.
var Out io.Writer = os.Stdout

// exit is replaced in tests
var exit = os.Exit

func printf(prefix, format string, a ...any) {
	fmt.Fprint(Out, prefix)
	fmt.Fprint(Out, ": ")
	fmt.Fprintf(Out, format, a...)
	fmt.Fprint(Out, "\n")
}

func Error(format string, a ...any) {
	printf(color.HiRedString("error"), format, a...)
}

func Warn(format string, a ...any) {
	printf(color.YellowString("warn"), format, a...)
}

// Fatal prints the message and exits with status 1
func Fatal(format string, a ...any) {
	printf(color.RedString("fatal"), format, a...)
	exit(1)
}

func Info(format string, a ...any) {
	printf(color.HiGreenString("info"), format, a...)
}

// Created reports a file written on behalf of the user
func Created(path string) {
	fmt.Fprintf(Out, "%s file: %s\n", color.HiGreenString("Created"), path)
}

// IndentWriter prefixes every line written through it with Indent.
type IndentWriter struct {
	Indent    string
	W         io.Writer
	didIndent bool
}

func (w *IndentWriter) Write(p []byte) (n int, err error) {
	var buf bytes.Buffer
	for _, c := range p {
		if !w.didIndent {
			buf.WriteString(w.Indent)
			w.didIndent = true
		}
		buf.WriteByte(c)
		if c == '\n' || c == '\r' {
			w.didIndent = false
		}
	}
	if _, err := w.W.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}
