package vcs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/stretchr/testify/require"
)

func TestCommitTree(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "libs", "L000"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "libs", "L000", "meson.build"), []byte("# lib\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "meson.build"), []byte("# root\n"), 0o644))

	first, err := CommitTree(root, "Generate hierarchy")
	require.NoError(t, err)
	require.Len(t, first, 40)

	repo, err := git.PlainOpen(root)
	require.NoError(t, err)
	commit, err := repo.CommitObject(plumbing.NewHash(first))
	require.NoError(t, err)
	require.Equal(t, "Generate hierarchy", strings.TrimSpace(commit.Message))
	require.Equal(t, "hiergen", commit.Author.Name)

	tree, err := commit.Tree()
	require.NoError(t, err)
	_, err = tree.File("libs/L000/meson.build")
	require.NoError(t, err)

	// unchanged tree
	_, err = CommitTree(root, "again")
	require.ErrorIs(t, err, ErrNothingToCommit)

	// existing repository is reused
	require.NoError(t, os.WriteFile(filepath.Join(root, "meson.build"), []byte("# root v2\n"), 0o644))
	second, err := CommitTree(root, "Regenerate")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	commit, err = repo.CommitObject(plumbing.NewHash(second))
	require.NoError(t, err)
	require.Equal(t, []plumbing.Hash{plumbing.NewHash(first)}, commit.ParentHashes)
}
