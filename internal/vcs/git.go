// Package vcs records generated trees in a git repository.
package vcs

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/object"
)

const (
	authorName  = "hiergen"
	authorEmail = "hiergen@localhost"
)

// ErrNothingToCommit is returned when the tree matches the last commit.
var ErrNothingToCommit = errors.New("nothing to commit")

// openOrInit opens the repository at root, creating it first if needed
func openOrInit(root string) (*git.Repository, error) {
	repo, err := git.PlainInit(root, false)
	if errors.Is(err, git.ErrTargetDirNotEmpty) {
		return git.PlainOpen(root)
	}
	return repo, err
}

// CommitTree stages every file below root and commits it, returning the new
// commit hash.
func CommitTree(root, message string) (string, error) {
	repo, err := openOrInit(root)
	if err != nil {
		return "", fmt.Errorf("open repository %s: %w", root, err)
	}

	w, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("could not get worktree: %w", err)
	}
	if err := w.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return "", fmt.Errorf("stage %s: %w", root, err)
	}

	status, err := w.Status()
	if err != nil {
		return "", fmt.Errorf("status %s: %w", root, err)
	}
	if status.IsClean() {
		return "", ErrNothingToCommit
	}

	hash, err := w.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("commit %s: %w", root, err)
	}
	return hash.String(), nil
}
