package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"daily-todo/internal/apperr"
)

func TestTaskServiceCreateThenList(t *testing.T) {
	ctx := context.Background()
	tasks, _ := newTestServices(t)

	for _, title := range []string{"Buy milk", "  padded  ", "유니코드"} {
		created, err := tasks.Create(ctx, title)
		if err != nil {
			t.Fatalf("create %q: %v", title, err)
		}
		if created.Completed {
			t.Fatalf("new task %q must be open", title)
		}
		if !created.CreatedAt.Equal(created.UpdatedAt) {
			t.Fatalf("created_at %v != updated_at %v", created.CreatedAt, created.UpdatedAt)
		}
	}

	list, err := tasks.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	titles := map[string]bool{}
	for _, tk := range list {
		titles[tk.Title] = !tk.Completed
	}
	for _, title := range []string{"Buy milk", "  padded  ", "유니코드"} {
		if open, ok := titles[title]; !ok || !open {
			t.Fatalf("expected open task %q in list %+v", title, list)
		}
	}
}

func TestTaskServiceCreateRejectsBlankTitle(t *testing.T) {
	tasks, _ := newTestServices(t)
	if _, err := tasks.Create(context.Background(), "   "); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTaskServiceUpdateOnlyTouchesTarget(t *testing.T) {
	ctx := context.Background()
	tasks, _ := newTestServices(t)

	a, err := tasks.Create(ctx, "a")
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	b, err := tasks.Create(ctx, "b")
	if err != nil {
		t.Fatalf("create b: %v", err)
	}

	later := a.UpdatedAt.Add(time.Minute)
	tasks.now = func() time.Time { return later }

	updated, err := tasks.Update(ctx, a.ID, "a", true)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Completed || updated.ID != a.ID {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if !updated.UpdatedAt.After(a.UpdatedAt) {
		t.Fatalf("updated_at not advanced: %v <= %v", updated.UpdatedAt, a.UpdatedAt)
	}

	list, err := tasks.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(list))
	}
	for _, tk := range list {
		switch tk.ID {
		case a.ID:
			if !tk.Completed {
				t.Fatal("a should be completed")
			}
		case b.ID:
			if tk.Completed {
				t.Fatal("b should stay open")
			}
		default:
			t.Fatalf("unexpected id %d", tk.ID)
		}
	}
}

func TestTaskServiceUpdateMissing(t *testing.T) {
	tasks, _ := newTestServices(t)
	if _, err := tasks.Update(context.Background(), 42, "x", true); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTaskServiceDeleteIsNotIdempotent(t *testing.T) {
	ctx := context.Background()
	tasks, _ := newTestServices(t)

	task, err := tasks.Create(ctx, "once")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := tasks.Delete(ctx, task.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := tasks.Delete(ctx, task.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
}
