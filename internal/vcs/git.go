// Package vcs reads source files from git revisions.
package vcs

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNotRepository is returned when no repository contains the path.
var ErrNotRepository = errors.New("not a git repository")

// Repository is an opened git repository.
type Repository struct {
	repo *git.Repository
	root string
}

// Open opens the repository containing path, searching parent directories
// for .git.
func Open(path string) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, path)
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}

	return &Repository{repo: repo, root: wt.Filesystem.Root()}, nil
}

// Root returns the worktree root directory.
func (r *Repository) Root() string {
	return r.root
}

// Tree resolves a revision such as "HEAD~2", a branch, a tag or a commit
// hash to the tree of that commit.
func (r *Repository) Tree(rev string) (*Tree, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", rev, err)
	}

	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to load commit %s: %w", hash, err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load tree of %s: %w", hash, err)
	}

	return &Tree{tree: tree, commit: hash.String()}, nil
}

// Tree is the file tree of one commit. It is safe for concurrent use.
type Tree struct {
	tree   *object.Tree
	commit string
	mu     sync.Mutex
}

// Commit returns the hash of the commit the tree belongs to.
func (t *Tree) Commit() string {
	return t.commit
}

// Files lists the regular files in the tree, relative to the repository
// root and sorted. If keep is non-nil only paths it accepts are returned.
func (t *Tree) Files(keep func(path string) bool) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var files []string
	err := t.tree.Files().ForEach(func(f *object.File) error {
		if f.Mode == filemode.Symlink || f.Mode == filemode.Submodule {
			return nil
		}
		if keep == nil || keep(f.Name) {
			files = append(files, f.Name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tree %s: %w", t.commit, err)
	}

	sort.Strings(files)
	return files, nil
}

// File returns the content of path at this commit.
func (t *Tree) File(path string) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := t.tree.File(filepath.ToSlash(path))
	if err != nil {
		return nil, fmt.Errorf("%s at %s: %w", path, t.commit, err)
	}

	content, err := f.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return []byte(content), nil
}
