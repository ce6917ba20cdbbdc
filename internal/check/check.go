// Package check detects drift between a generated tree on disk and what the
// generator would produce for the same options today.
package check

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/qobs-build/hiergen/internal/fsutil"
	"github.com/qobs-build/hiergen/internal/hierarchy"
	"github.com/qobs-build/hiergen/internal/model"
	"github.com/qobs-build/hiergen/internal/msg"
	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/sync/errgroup"
)

type Kind string

const (
	Missing  Kind = "missing"  // expected but absent from the tree
	Extra    Kind = "extra"    // present in the tree but never generated
	Modified Kind = "modified" // contents differ
)

type Entry struct {
	Path string // slash separated, relative to the root
	Kind Kind
	Diff string // line diff for Modified entries, expected vs actual
}

// Report lists every difference found, sorted by path.
type Report struct {
	Root    string
	Entries []Entry
}

func (r *Report) Clean() bool { return len(r.Entries) == 0 }

// Write prints one line per entry, followed by the indented diff of modified files.
func (r *Report) Write(w io.Writer) error {
	for _, e := range r.Entries {
		kind := string(e.Kind)
		switch e.Kind {
		case Missing:
			kind = color.RedString(kind)
		case Extra:
			kind = color.YellowString(kind)
		case Modified:
			kind = color.CyanString(kind)
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", kind, e.Path); err != nil {
			return err
		}
		if e.Diff != "" {
			iw := &msg.IndentWriter{Indent: "    ", W: w}
			if _, err := io.WriteString(iw, e.Diff); err != nil {
				return err
			}
		}
	}
	return nil
}

// excluded are never compared: repository metadata and the manifest, which
// records the tool version.
var excluded = []string{".git/**", hierarchy.ManifestFile}

// Run regenerates the hierarchy described by opts into a scratch directory
// and compares it with the tree at root. opts.Root is ignored.
func Run(root string, opts hierarchy.Options) (*Report, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %w", fsutil.ErrIO, root, err)
	}

	scratch, err := os.MkdirTemp("", "hiergen-check-")
	if err != nil {
		return nil, fmt.Errorf("%w: create scratch directory: %w", fsutil.ErrIO, err)
	}
	defer os.RemoveAll(scratch)

	opts.Root = scratch
	opts.Manifest = false
	opts.Git = false
	h, err := opts.NewHierarchy("")
	if err != nil {
		return nil, err
	}
	if err := h.Create(); err != nil {
		return nil, fmt.Errorf("regenerate: %w", err)
	}

	want, err := listFiles(scratch)
	if err != nil {
		return nil, err
	}
	got, err := listFiles(root)
	if err != nil {
		return nil, err
	}

	c := &comparer{
		expectedRoot: scratch,
		actualRoot:   root,
		normalize:    strings.NewReplacer(model.GuardPrefix(scratch), model.GuardPrefix(root)),
	}

	report := &Report{Root: root, Entries: []Entry{}}
	var jobs []string
	for _, p := range want {
		if _, ok := slices.BinarySearch(got, p); ok {
			jobs = append(jobs, p)
		} else {
			report.Entries = append(report.Entries, Entry{Path: p, Kind: Missing})
		}
	}
	for _, p := range got {
		if _, ok := slices.BinarySearch(want, p); !ok {
			report.Entries = append(report.Entries, Entry{Path: p, Kind: Extra})
		}
	}

	modified, err := c.compareAll(jobs, runtime.NumCPU())
	if err != nil {
		return nil, err
	}
	report.Entries = append(report.Entries, modified...)

	slices.SortFunc(report.Entries, func(a, b Entry) int { return strings.Compare(a.Path, b.Path) })
	return report, nil
}

// listFiles returns every file below dir, slash separated and sorted.
func listFiles(dir string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "**", doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", fsutil.ErrIO, dir, err)
	}

	files := matches[:0]
	for _, m := range matches {
		if !isExcluded(m) {
			files = append(files, m)
		}
	}
	slices.Sort(files)
	return files, nil
}

func isExcluded(path string) bool {
	for _, pat := range excluded {
		if ok, _ := doublestar.Match(pat, path); ok {
			return true
		}
	}
	return false
}

type comparer struct {
	expectedRoot string
	actualRoot   string
	normalize    *strings.Replacer
}

// compareAll compares the files at paths in parallel and returns an entry for
// every one that differs, in input order.
func (c *comparer) compareAll(paths []string, limit int) ([]Entry, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	results := make([]*Entry, len(paths))

	eg, _ := errgroup.WithContext(context.Background())
	eg.SetLimit(limit)
	for i, p := range paths {
		eg.Go(func() error {
			e, err := c.compare(p)
			results[i] = e
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var entries []Entry
	for _, e := range results {
		if e != nil {
			entries = append(entries, *e)
		}
	}
	return entries, nil
}

func (c *comparer) compare(path string) (*Entry, error) {
	want, err := readFile(c.expectedRoot, path)
	if err != nil {
		return nil, err
	}
	got, err := readFile(c.actualRoot, path)
	if err != nil {
		return nil, err
	}

	// guards embed the absolute location of the tree
	want = []byte(c.normalize.Replace(string(want)))
	if bytes.Equal(want, got) {
		return nil, nil
	}
	return &Entry{Path: path, Kind: Modified, Diff: lineDiff(string(want), string(got))}, nil
}

func readFile(root, path string) ([]byte, error) {
	data, err := fs.ReadFile(os.DirFS(root), path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", fsutil.ErrIO, filepath.Join(root, filepath.FromSlash(path)), err)
	}
	return data, nil
}

// lineDiff renders the changed lines between want and got, prefixed with
// "-" for expected lines and "+" for actual ones.
func lineDiff(want, got string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(want, got)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			continue
		}
		for line := range strings.Lines(d.Text) {
			sb.WriteString(prefix)
			sb.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteString("\n\\ no newline at end of file\n")
			}
		}
	}
	return sb.String()
}
