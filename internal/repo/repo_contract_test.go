package repo

import (
	"context"
	"errors"
	"testing"

	dom "tasklist/internal/domain"
)

// runTaskRepoContract exercises the behaviour every TaskRepo must share.
// missingID must be a well-formed id that does not exist in the backend.
func runTaskRepoContract(t *testing.T, r TaskRepo, missingID string) {
	t.Helper()
	ctx := context.Background()

	a, err := r.Create(ctx, dom.Task{Title: "Buy milk"})
	if err != nil {
		t.Fatalf("create A: %v", err)
	}
	if a.ID == "" {
		t.Fatalf("expected generated id")
	}
	if a.Completed {
		t.Fatalf("new task should not be completed")
	}
	if a.CreatedAt.IsZero() {
		t.Fatalf("expected createdAt to be set")
	}

	b, err := r.Create(ctx, dom.Task{Title: "Walk dog"})
	if err != nil {
		t.Fatalf("create B: %v", err)
	}
	if b.ID == a.ID {
		t.Fatalf("ids must be unique")
	}

	list, err := r.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) < 2 || list[0].ID != b.ID || list[1].ID != a.ID {
		t.Fatalf("expected newest first (B, A), got %+v", list)
	}

	got, err := r.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Buy milk" {
		t.Fatalf("title=%q", got.Title)
	}

	done := true
	updated, err := r.Update(ctx, a.ID, dom.TaskPatch{Completed: &done})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Completed || updated.Title != "Buy milk" {
		t.Fatalf("update changed the wrong fields: %+v", updated)
	}
	if !updated.CreatedAt.Equal(a.CreatedAt) {
		t.Fatalf("createdAt changed: %s -> %s", a.CreatedAt, updated.CreatedAt)
	}

	title := "Buy oat milk"
	updated, err = r.Update(ctx, a.ID, dom.TaskPatch{Title: &title})
	if err != nil {
		t.Fatalf("update title: %v", err)
	}
	if updated.Title != title || !updated.Completed {
		t.Fatalf("unexpected task after title update: %+v", updated)
	}

	unchanged, err := r.Update(ctx, a.ID, dom.TaskPatch{})
	if err != nil {
		t.Fatalf("empty update: %v", err)
	}
	if unchanged.ID != updated.ID || unchanged.Title != updated.Title ||
		unchanged.Completed != updated.Completed || !unchanged.CreatedAt.Equal(updated.CreatedAt) {
		t.Fatalf("empty patch changed the task: %+v vs %+v", unchanged, updated)
	}

	for _, id := range []string{missingID, "not-an-id"} {
		if _, err := r.GetByID(ctx, id); !errors.Is(err, dom.ErrNotFound) {
			t.Fatalf("get %q: expected ErrNotFound, got %v", id, err)
		}
		if _, err := r.Update(ctx, id, dom.TaskPatch{Completed: &done}); !errors.Is(err, dom.ErrNotFound) {
			t.Fatalf("update %q: expected ErrNotFound, got %v", id, err)
		}
		if err := r.Delete(ctx, id); !errors.Is(err, dom.ErrNotFound) {
			t.Fatalf("delete %q: expected ErrNotFound, got %v", id, err)
		}
	}

	if err := r.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := r.Delete(ctx, a.ID); !errors.Is(err, dom.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
	list, err = r.List(ctx)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	for _, task := range list {
		if task.ID == a.ID {
			t.Fatalf("deleted task still listed")
		}
	}

	if err := r.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
