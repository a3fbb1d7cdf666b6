package gitrepo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/example/safer/internal/ports/secondary"
)

func newTestRecorder(t *testing.T, opts Options) (*Recorder, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "data")
	rec := New(dir, opts)
	if err := rec.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return rec, dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestInit_SetsHeadToMain(t *testing.T) {
	rec, dir := newTestRecorder(t, Options{AutoCommit: true})

	repo, err := git.PlainOpen(dir)
	if err != nil {
		t.Fatalf("PlainOpen() error = %v", err)
	}
	head, err := repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		t.Fatalf("read HEAD: %v", err)
	}
	if head.Target() != plumbing.NewBranchReferenceName("main") {
		t.Errorf("HEAD target = %s, want refs/heads/main", head.Target())
	}
	if _, err := os.Stat(filepath.Join(dir, ".gitignore")); err != nil {
		t.Errorf(".gitignore missing: %v", err)
	}

	// Second init is a no-op.
	if err := rec.Init(); err != nil {
		t.Errorf("second Init() error = %v", err)
	}
}

func TestCommit_RecordsChangesWithPrefix(t *testing.T) {
	rec, dir := newTestRecorder(t, Options{AutoCommit: true, AuthorName: "Avery", AuthorEmail: "avery@example.com"})
	ctx := context.Background()

	writeFile(t, dir, "active/DI-001.json", `{"id":"DI-001"}`)
	committed, err := rec.Commit(ctx, "create DI-001")
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if !committed {
		t.Fatal("expected a commit")
	}

	history, err := rec.History(ctx, 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
	if history[0].Message != "[SAFER] create DI-001" {
		t.Errorf("message = %q", history[0].Message)
	}
	if history[0].Author != "Avery" {
		t.Errorf("author = %q", history[0].Author)
	}
}

func TestCommit_SkipsCleanTree(t *testing.T) {
	rec, dir := newTestRecorder(t, Options{AutoCommit: true})
	ctx := context.Background()

	writeFile(t, dir, "active/DI-001.json", `{}`)
	if _, err := rec.Commit(ctx, "first"); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	committed, err := rec.Commit(ctx, "nothing changed")
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if committed {
		t.Error("expected clean tree to skip the commit")
	}
}

func TestCommit_StagesDeletions(t *testing.T) {
	rec, dir := newTestRecorder(t, Options{AutoCommit: true})
	ctx := context.Background()

	writeFile(t, dir, "active/DI-001.json", `{}`)
	if _, err := rec.Commit(ctx, "create"); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if err := os.Remove(filepath.Join(dir, "active", "DI-001.json")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	committed, err := rec.Commit(ctx, "delete")
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if !committed {
		t.Fatal("expected deletion to be committed")
	}

	repo, _ := git.PlainOpen(dir)
	worktree, _ := repo.Worktree()
	status, err := worktree.Status()
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if !status.IsClean() {
		t.Errorf("worktree not clean after commit: %v", status)
	}
}

func TestCommit_DisabledIsNoop(t *testing.T) {
	rec, dir := newTestRecorder(t, Options{AutoCommit: false})
	ctx := context.Background()

	writeFile(t, dir, "active/DI-001.json", `{}`)
	committed, err := rec.Commit(ctx, "create")
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if committed {
		t.Error("expected no commit with auto-commit off")
	}

	history, err := rec.History(ctx, 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history length = %d, want 0", len(history))
	}
}

func TestHistory_Limit(t *testing.T) {
	rec, dir := newTestRecorder(t, Options{AutoCommit: true})
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		writeFile(t, dir, name+".json", name)
		if _, err := rec.Commit(ctx, "add "+name); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}
	}

	history, err := rec.History(ctx, 2)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Message != "[SAFER] add c" {
		t.Errorf("newest message = %q", history[0].Message)
	}
}

func TestSync_Errors(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr error
	}{
		{
			name:    "sync disabled",
			opts:    Options{SyncEnabled: false, RemoteURL: "https://example.com/data.git"},
			wantErr: secondary.ErrSyncDisabled,
		},
		{
			name:    "no remote",
			opts:    Options{SyncEnabled: true},
			wantErr: secondary.ErrRemoteNotConfigured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := newTestRecorder(t, tt.opts)
			ctx := context.Background()

			if err := rec.Push(ctx); !errors.Is(err, tt.wantErr) {
				t.Errorf("Push() error = %v, want %v", err, tt.wantErr)
			}
			if err := rec.Pull(ctx); !errors.Is(err, tt.wantErr) {
				t.Errorf("Pull() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
