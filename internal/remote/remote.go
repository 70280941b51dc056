// Package remote clones repositories named on the command line so they can
// be analyzed like local directories.
package remote

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Source represents a remote repository to analyze.
type Source struct {
	URL      string // normalized git URL
	Ref      string // branch, tag, or SHA (empty = default branch)
	CloneDir string // temp directory after clone
}

// Parse detects if a path is a remote reference.
// Returns nil if path exists on filesystem (local path takes precedence).
func Parse(path string) (*Source, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, nil
	}

	ref := ""
	if idx := strings.LastIndex(path[refSearchStart(path):], "@"); idx != -1 {
		idx += refSearchStart(path)
		ref = path[idx+1:]
		path = path[:idx]
	}

	switch {
	case strings.HasPrefix(path, "https://"), strings.HasPrefix(path, "http://"),
		strings.HasPrefix(path, "git@"), strings.HasPrefix(path, "ssh://"):
		return &Source{URL: path, Ref: ref}, nil
	case isHostPath(path):
		return &Source{URL: "https://" + path, Ref: ref}, nil
	case isGitHubShorthand(path):
		return &Source{URL: "https://github.com/" + path, Ref: ref}, nil
	}

	return nil, nil
}

// refSearchStart skips the scheme and host of a URL so that the user part of
// git@host or ssh://user@host is not taken for a ref separator.
func refSearchStart(path string) int {
	if i := strings.Index(path, "://"); i != -1 {
		start := i + 3
		if j := strings.Index(path[start:], "/"); j != -1 {
			return start + j
		}
		return len(path)
	}
	if strings.HasPrefix(path, "git@") {
		if i := strings.Index(path, ":"); i != -1 {
			return i
		}
	}
	return 0
}

// isHostPath matches host/owner/repo where the host contains a dot.
func isHostPath(path string) bool {
	parts := strings.Split(path, "/")
	host := parts[0]
	if len(parts) < 3 || !strings.Contains(host, ".") || strings.HasPrefix(host, ".") {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}

// isGitHubShorthand returns true if path matches owner/repo pattern.
func isGitHubShorthand(path string) bool {
	slashIdx := strings.Index(path, "/")
	if slashIdx == -1 {
		return false
	}
	if strings.Count(path, "/") != 1 {
		return false
	}
	// No dots before the slash (would indicate a domain)
	if strings.Contains(path[:slashIdx], ".") {
		return false
	}
	return slashIdx > 0 && slashIdx < len(path)-1
}

// Clone clones the repository into a new temporary directory and checks out
// Ref. A shallow clone fetches only the tip commit. Git progress is written
// to progress.
func (s *Source) Clone(ctx context.Context, progress io.Writer, shallow bool) error {
	dir, err := os.MkdirTemp("", "cyclo-clone-*")
	if err != nil {
		return fmt.Errorf("failed to create clone directory: %w", err)
	}

	opts := &git.CloneOptions{
		URL:      s.URL,
		Progress: progress,
	}
	if shallow {
		opts.Depth = 1
	}
	// Branches and tags can be fetched directly; anything else is assumed to
	// be a commit and checked out after a full clone.
	isHash := plumbing.IsHash(s.Ref)
	if s.Ref != "" && !isHash {
		opts.ReferenceName = plumbing.NewBranchReferenceName(s.Ref)
		opts.SingleBranch = true
	}

	repo, err := git.PlainCloneContext(ctx, dir, false, opts)
	if err != nil && opts.ReferenceName != "" {
		// Retry the ref as a tag.
		os.RemoveAll(dir)
		if dir, err = os.MkdirTemp("", "cyclo-clone-*"); err != nil {
			return fmt.Errorf("failed to create clone directory: %w", err)
		}
		opts.ReferenceName = plumbing.NewTagReferenceName(s.Ref)
		repo, err = git.PlainCloneContext(ctx, dir, false, opts)
	}
	if err != nil {
		os.RemoveAll(dir)
		return fmt.Errorf("failed to clone %s: %w", s.URL, err)
	}

	if isHash {
		wt, err := repo.Worktree()
		if err != nil {
			os.RemoveAll(dir)
			return fmt.Errorf("failed to open worktree: %w", err)
		}
		if err := wt.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(s.Ref)}); err != nil {
			os.RemoveAll(dir)
			return fmt.Errorf("failed to check out %s: %w", s.Ref, err)
		}
	}

	s.CloneDir = dir
	return nil
}

// Cleanup removes the clone directory.
func (s *Source) Cleanup() error {
	if s.CloneDir == "" {
		return nil
	}
	err := os.RemoveAll(s.CloneDir)
	s.CloneDir = ""
	return err
}
