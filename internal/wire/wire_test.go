package wire

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/safer/internal/config"
	"github.com/example/safer/internal/ports/primary"
)

func newTestContainer(t *testing.T) *Container {
	t.Helper()
	paths := config.NewPaths(t.TempDir())
	cfg := config.Default()
	cfg.User.Name = "Test User"
	cfg.User.Email = "test@example.com"
	cfg.WipLimit = 2

	c, err := Initialize(context.Background(), paths, cfg, nil)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestInitialize_RefusesExistingConfig(t *testing.T) {
	c := newTestContainer(t)

	_, err := Initialize(context.Background(), c.Paths, c.Config, nil)
	if !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}
}

func TestContainer_CreateCommitsAndLogs(t *testing.T) {
	c := newTestContainer(t)
	ctx := context.Background()

	resp, err := c.Items.CreateItem(ctx, primary.CreateItemRequest{Title: "Ship onboarding"})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if resp.Warning != "" {
		t.Errorf("unexpected warning: %s", resp.Warning)
	}
	if resp.Item.ID != "DI-001" || resp.Item.Constraints.WipSlot != 1 {
		t.Errorf("got %s in slot %d", resp.Item.ID, resp.Item.Constraints.WipSlot)
	}

	commits, err := c.Sync.History(ctx, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(commits))
	}
	if !strings.Contains(commits[0].Message, "Create DI-001: Ship onboarding") {
		t.Errorf("unexpected head commit %q", commits[0].Message)
	}

	entries, err := c.Logs.ListLogs(ctx, primary.LogFilters{EntityID: "DI-001"})
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != "create" {
		t.Errorf("expected one create entry, got %+v", entries)
	}
}

func TestContainer_WipLimitAndArchive(t *testing.T) {
	c := newTestContainer(t)
	ctx := context.Background()

	for _, title := range []string{"one", "two"} {
		if _, err := c.Items.CreateItem(ctx, primary.CreateItemRequest{Title: title}); err != nil {
			t.Fatalf("CreateItem(%s): %v", title, err)
		}
	}
	if _, err := c.Items.CreateItem(ctx, primary.CreateItemRequest{Title: "three"}); err == nil {
		t.Fatal("expected WIP limit error")
	}

	if _, err := c.Items.CompleteItem(ctx, primary.CompleteItemRequest{ID: "DI-001", Archive: true}); err != nil {
		t.Fatalf("CompleteItem: %v", err)
	}

	resp, err := c.Items.CreateItem(ctx, primary.CreateItemRequest{Title: "three"})
	if err != nil {
		t.Fatalf("CreateItem after archive: %v", err)
	}
	if resp.Item.ID != "DI-003" || resp.Item.Constraints.WipSlot != 1 {
		t.Errorf("expected DI-003 in slot 1, got %s in slot %d", resp.Item.ID, resp.Item.Constraints.WipSlot)
	}

	agg, err := c.Metrics.Aggregate(ctx)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if agg.TotalCompleted != 1 {
		t.Errorf("expected 1 completed, got %d", agg.TotalCompleted)
	}
}

func TestShutdown_ClosesSingletonDatabase(t *testing.T) {
	c := newTestContainer(t)
	container = c
	t.Cleanup(func() { container = nil })

	Shutdown()

	if err := c.database.PingContext(context.Background()); err == nil {
		t.Fatal("expected the activity database to be closed")
	}
}

func TestShutdown_WithoutContainer(t *testing.T) {
	container = nil
	Shutdown()
}
