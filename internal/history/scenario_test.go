package history

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"daily-todo/internal/api"
	"daily-todo/internal/client"
	"daily-todo/internal/repository"
	"daily-todo/internal/service"
	"daily-todo/internal/syncer"
)

func TestSaveAndDeleteSnapshotEndToEnd(t *testing.T) {
	ctx := context.Background()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "scenario.db"), quietLogger())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	tasks := service.NewTaskService(repository.NewTaskRepository(db))
	snaps := service.NewSnapshotService(repository.NewSnapshotRepository(db), quietLogger())
	srv := httptest.NewServer(api.New(api.Options{}, tasks, snaps, quietLogger()))
	t.Cleanup(srv.Close)

	c := client.New(srv.URL)
	c.Logger = quietLogger()
	ctrl := syncer.New(c, c, nil, nil, quietLogger())
	viewer := NewViewer(c, nil, quietLogger())

	if err := ctrl.Add(ctx, "Buy milk"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := ctrl.ToggleAt(ctx, 0); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	listed, err := c.ListTasks(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || !listed[0].Completed {
		t.Fatalf("expected one completed task, got %+v", listed)
	}

	if _, err := ctrl.Capture(ctx, "25/06/01"); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if err := viewer.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}
	cards := viewer.Cards()
	if len(cards) != 1 || cards[0].Title != "25/06/01" {
		t.Fatalf("unexpected cards %+v", cards)
	}
	if items := cards[0].Items; len(items) != 1 || items[0].Text != "Buy milk" || !bool(items[0].Completed) {
		t.Fatalf("unexpected card items %+v", items)
	}

	if err := viewer.CloseCard(ctx, cards[0].SnapshotID); err != nil {
		t.Fatalf("close card: %v", err)
	}
	if err := viewer.Open(ctx); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := viewer.Cards(); len(got) != 0 {
		t.Fatalf("history should be empty, got %+v", got)
	}
}
