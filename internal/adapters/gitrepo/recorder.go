// Package gitrepo records every change of the data directory in a local git history.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/example/safer/internal/ports/secondary"
)

// DefaultPrefix is prepended to every commit message.
const DefaultPrefix = "[SAFER]"

const remoteName = "origin"

// gitignore keeps lock and temp files out of history.
const gitignore = ".safer.lock\n*.tmp.*\n"

// Options configures a Recorder.
type Options struct {
	AutoCommit  bool
	Prefix      string
	AuthorName  string
	AuthorEmail string
	SyncEnabled bool
	RemoteURL   string
	Branch      string
}

// Recorder implements secondary.VersionRecorder with go-git.
type Recorder struct {
	dir  string
	opts Options
	now  func() time.Time
	mu   sync.Mutex
}

// New creates a recorder for the working tree at dir.
func New(dir string, opts Options) *Recorder {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Branch == "" {
		opts.Branch = "main"
	}
	if opts.AuthorName == "" {
		opts.AuthorName = "safer"
	}
	if opts.AuthorEmail == "" {
		opts.AuthorEmail = "safer@localhost"
	}
	return &Recorder{dir: dir, opts: opts, now: time.Now}
}

// Init creates the repository when missing. Existing repositories are left alone.
func (r *Recorder) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := git.PlainOpen(r.dir); err == nil {
		return nil
	} else if !errors.Is(err, git.ErrRepositoryNotExists) {
		return fmt.Errorf("open repo: %w", err)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create repo dir: %w", err)
	}
	repo, err := git.PlainInit(r.dir, false)
	if err != nil {
		return fmt.Errorf("init repo: %w", err)
	}
	if err := repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(r.opts.Branch))); err != nil {
		return fmt.Errorf("set HEAD to %s: %w", r.opts.Branch, err)
	}
	if err := os.WriteFile(filepath.Join(r.dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("write .gitignore: %w", err)
	}
	return nil
}

// Commit stages all changes, deletions included, and commits them.
func (r *Recorder) Commit(ctx context.Context, message string) (bool, error) {
	if !r.opts.AutoCommit {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	repo, err := git.PlainOpen(r.dir)
	if err != nil {
		return false, fmt.Errorf("open repo: %w", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("open worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("read status: %w", err)
	}
	if status.IsClean() {
		return false, nil
	}

	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return false, fmt.Errorf("git add: %w", err)
	}
	_, err = worktree.Commit(r.opts.Prefix+" "+message, &git.CommitOptions{
		All: true,
		Author: &object.Signature{
			Name:  r.opts.AuthorName,
			Email: r.opts.AuthorEmail,
			When:  r.now(),
		},
	})
	if err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// History returns up to limit commits from HEAD, newest first.
func (r *Recorder) History(ctx context.Context, limit int) ([]secondary.CommitRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	repo, err := git.PlainOpen(r.dir)
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer iter.Close()

	var records []secondary.CommitRecord
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		records = append(records, secondary.CommitRecord{
			Hash:    c.Hash.String(),
			Message: strings.TrimSpace(c.Message),
			Author:  c.Author.Name,
			When:    c.Author.When,
		})
		if limit > 0 && len(records) >= limit {
			return io.EOF
		}
		return nil
	})
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("iterate log: %w", err)
	}
	return records, nil
}

// Push sends the configured branch to origin.
func (r *Recorder) Push(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	repo, err := r.syncRepo()
	if err != nil {
		return err
	}
	ref := plumbing.NewBranchReferenceName(r.opts.Branch)
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{config.RefSpec(ref + ":" + ref)},
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("push: %w", err)
	}
	return nil
}

// Pull fast-forwards the configured branch from origin.
func (r *Recorder) Pull(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	repo, err := r.syncRepo()
	if err != nil {
		return err
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	err = worktree.PullContext(ctx, &git.PullOptions{
		RemoteName:    remoteName,
		ReferenceName: plumbing.NewBranchReferenceName(r.opts.Branch),
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("pull: %w", err)
	}
	return nil
}

// syncRepo checks the sync settings and makes sure origin exists.
func (r *Recorder) syncRepo() (*git.Repository, error) {
	if !r.opts.SyncEnabled {
		return nil, secondary.ErrSyncDisabled
	}
	repo, err := git.PlainOpen(r.dir)
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}

	_, err = repo.Remote(remoteName)
	switch {
	case err == nil:
		return repo, nil
	case !errors.Is(err, git.ErrRemoteNotFound):
		return nil, fmt.Errorf("read remote: %w", err)
	case r.opts.RemoteURL == "":
		return nil, secondary.ErrRemoteNotConfigured
	}

	if _, err := repo.CreateRemote(&config.RemoteConfig{
		Name: remoteName,
		URLs: []string{r.opts.RemoteURL},
	}); err != nil {
		return nil, fmt.Errorf("create remote: %w", err)
	}
	return repo, nil
}

var _ secondary.VersionRecorder = (*Recorder)(nil)
