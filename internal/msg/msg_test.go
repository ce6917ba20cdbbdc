package msg

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	color.NoColor = true
	var buf bytes.Buffer
	oldOut, oldExit := Out, exit
	Out = &buf
	t.Cleanup(func() { Out, exit = oldOut, oldExit })
	return &buf
}

func TestFatalExitsWithOne(t *testing.T) {
	buf := capture(t)
	code := -1
	exit = func(c int) { code = c }

	Fatal("bad backend %q", "ninja")
	require.Equal(t, 1, code)
	require.Equal(t, "fatal: bad backend \"ninja\"\n", buf.String())
}

func TestLevels(t *testing.T) {
	buf := capture(t)
	Info("a")
	Warn("b")
	Error("c")
	Created("libs/L000/meson.build")
	require.Equal(t, "info: a\nwarn: b\nerror: c\nCreated file: libs/L000/meson.build\n", buf.String())
}

func TestIndentWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &IndentWriter{Indent: "  ", W: &buf}
	_, err := w.Write([]byte("-a\n+b"))
	require.NoError(t, err)
	_, err = w.Write([]byte("c\n"))
	require.NoError(t, err)
	require.Equal(t, "  -a\n  +bc\n", buf.String())
}

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	pb := NewProgressBar("Generating", 3, 2, &buf)
	for range 3 {
		pb.Add(1)
	}
	pb.Finish()

	require.Equal(t, int64(3), pb.Current)
	require.True(t, strings.HasPrefix(buf.String(), "\r  Generating"))
	require.Contains(t, buf.String(), "3/3")
	require.True(t, strings.HasSuffix(buf.String(), "\n"))
}
