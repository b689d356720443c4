// Package vcs reads staged changes from a git repository and records commits.
package vcs

import (
	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/maadhav-codes/diff2commit/internal/logger"
	"github.com/maadhav-codes/diff2commit/internal/models"
)

// Repository is a git repository opened at its working tree.
type Repository struct {
	repo *git.Repository
	root string
}

// Info describes where the repository currently stands.
type Info struct {
	Branch string
	Remote string
	Root   string
}

// Open finds the repository containing path, searching parent directories.
func Open(path string) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, errors.WithHint(
				errors.Wrapf(models.ErrNotRepository, "%s", path),
				"run 'git init' first")
		}
		return nil, errors.Wrap(err, "open repository")
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, errors.WithHint(
			errors.Mark(errors.Wrap(err, "open worktree"), models.ErrNotRepository),
			"bare repositories have no staging area to read")
	}

	root := wt.Filesystem.Root()
	logger.Debug("opened repository", "root", root)
	return &Repository{repo: repo, root: root}, nil
}

// Root returns the top-level directory of the working tree.
func (r *Repository) Root() string {
	return r.root
}

// Info reports the current branch, the origin URL and the root directory.
func (r *Repository) Info() Info {
	info := Info{Branch: "detached HEAD", Remote: "no remote", Root: r.root}

	head, err := r.repo.Reference(plumbing.HEAD, false)
	if err == nil && head.Type() == plumbing.SymbolicReference {
		info.Branch = head.Target().Short()
		if _, err := r.repo.Head(); errors.Is(err, plumbing.ErrReferenceNotFound) {
			info.Branch += " (no commits)"
		}
	}

	if remote, err := r.repo.Remote("origin"); err == nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			info.Remote = urls[0]
		}
	}
	return info
}

// headTree returns the tree of HEAD, or nil before the first commit.
func (r *Repository) headTree() (*object.Tree, error) {
	ref, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "resolve HEAD")
	}

	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, errors.Wrap(err, "read HEAD commit")
	}
	return commit.Tree()
}

// Commit records the index as a new commit and returns its hash.
func (r *Repository) Commit(message string) (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", errors.Wrap(err, "open worktree")
	}

	hash, err := wt.Commit(message, &git.CommitOptions{})
	if err != nil {
		switch {
		case errors.Is(err, git.ErrMissingAuthor):
			return "", errors.WithHint(errors.Wrap(err, "commit"),
				"set your identity with 'git config user.name' and 'git config user.email'")
		case errors.Is(err, git.ErrEmptyCommit):
			return "", errors.WithHint(errors.Mark(errors.Wrap(err, "commit"), models.ErrNoStagedChanges),
				"stage your changes with 'git add' first")
		}
		return "", errors.Wrap(err, "commit")
	}

	logger.Debug("created commit", "hash", hash.String())
	return hash.String(), nil
}
