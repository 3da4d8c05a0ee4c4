package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"remindd/internal/task"
	"remindd/pkg/logx"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(Config{Path: filepath.Join(t.TempDir(), "tasks.db")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func mustInsert(t *testing.T, st *Store, tk task.Task) int64 {
	t.Helper()
	id, err := st.Insert(context.Background(), tk)
	if err != nil {
		t.Fatalf("Insert(%+v): %v", tk, err)
	}
	return id
}

func TestInsertAssignsIDAndCreatedAt(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	id := mustInsert(t, st, task.Task{Title: "Pay rent", Date: "2024-03-31", Time: "09:00"})
	if id == 0 {
		t.Fatal("expected a non-zero id")
	}

	got, err := st.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("created_at not assigned")
	}
	if got.Fired || got.Recurrence != task.RecurNone || got.Note != "" {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}

func TestInsertRejectsMalformed(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	tests := []task.Task{
		{Title: "", Date: "2024-03-31", Time: "09:00"},
		{Title: "x", Date: "2024-13-01", Time: "09:00"},
		{Title: "x", Date: "2024-03-31", Time: "25:00"},
	}
	for _, tk := range tests {
		if _, err := st.Insert(ctx, tk); !task.IsValidation(err) {
			t.Fatalf("Insert(%+v) = %v, want ValidationError", tk, err)
		}
	}

	// Rejected inserts must leave no row behind.
	n, err := st.CountAll(ctx)
	if err != nil {
		t.Fatalf("CountAll: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty store, found %d rows", n)
	}
}

func TestIDsNeverReused(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	first := mustInsert(t, st, task.Task{Title: "a", Date: "2024-03-01", Time: "09:00"})
	if err := st.Delete(ctx, first); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	second := mustInsert(t, st, task.Task{Title: "b", Date: "2024-03-01", Time: "09:00"})
	if second <= first {
		t.Fatalf("id %d reused after deleting %d", second, first)
	}
}

func TestUpdate(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	id := mustInsert(t, st, task.Task{Title: "a", Date: "2024-03-01", Time: "09:00"})

	title := "renamed"
	fired := true
	if err := st.Update(ctx, id, Fields{Title: &title, Fired: &fired}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := st.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "renamed" || !got.Fired {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.Date != "2024-03-01" || got.Time != "09:00" {
		t.Fatalf("untouched fields changed: %+v", got)
	}

	if err := st.Update(ctx, 9999, Fields{Title: &title}); !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("Update(unknown) = %v, want ErrNotFound", err)
	}

	bad := "2024-00-10"
	if err := st.Update(ctx, id, Fields{Date: &bad}); !task.IsValidation(err) {
		t.Fatalf("Update(bad date) = %v, want ValidationError", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	id := mustInsert(t, st, task.Task{Title: "a", Date: "2024-03-01", Time: "09:00"})
	if err := st.Delete(ctx, id); err != nil {
		t.Fatalf("first Delete: %v", err)
	}
	if err := st.Delete(ctx, id); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if err := st.Delete(ctx, 424242); err != nil {
		t.Fatalf("Delete(absent): %v", err)
	}
}

func TestListOrdering(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	// Inserted out of order on purpose; ties on (date,time) break by id.
	c := mustInsert(t, st, task.Task{Title: "c", Date: "2024-03-02", Time: "08:00"})
	a := mustInsert(t, st, task.Task{Title: "a", Date: "2024-03-01", Time: "09:00"})
	d := mustInsert(t, st, task.Task{Title: "d", Date: "2024-03-02", Time: "08:00"})
	b := mustInsert(t, st, task.Task{Title: "b", Date: "2024-03-01", Time: "10:00"})

	got, err := st.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []int64{a, b, c, d}
	if len(got) != len(want) {
		t.Fatalf("List returned %d tasks, want %d", len(got), len(want))
	}
	for i, tk := range got {
		if tk.ID != want[i] {
			t.Fatalf("position %d: id %d, want %d", i, tk.ID, want[i])
		}
	}
}

func TestDue(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	past := mustInsert(t, st, task.Task{Title: "past", Date: "2024-03-30", Time: "23:59"})
	exact := mustInsert(t, st, task.Task{Title: "exact", Date: "2024-03-31", Time: "09:00"})
	mustInsert(t, st, task.Task{Title: "future", Date: "2024-03-31", Time: "09:01"})
	firedID := mustInsert(t, st, task.Task{Title: "fired", Date: "2024-03-01", Time: "00:00", Fired: true})

	now := time.Date(2024, 3, 31, 9, 0, 30, 0, time.Local) // seconds ignored

	due, err := st.Due(ctx, now, false)
	if err != nil {
		t.Fatalf("Due: %v", err)
	}
	if len(due) != 2 || due[0].ID != past || due[1].ID != exact {
		t.Fatalf("unexpected due set: %+v", due)
	}

	firedDue, err := st.Due(ctx, now, true)
	if err != nil {
		t.Fatalf("Due(include fired): %v", err)
	}
	if len(firedDue) != 1 || firedDue[0].ID != firedID {
		t.Fatalf("unexpected fired set: %+v", firedDue)
	}
}

func TestDeleteExpired(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	oldFired := mustInsert(t, st, task.Task{Title: "old fired", Date: "2024-01-01", Time: "09:00", Fired: true})
	oldMissed := mustInsert(t, st, task.Task{Title: "old missed one-shot", Date: "2024-01-02", Time: "09:00"})
	oldPendingRecurring := mustInsert(t, st, task.Task{Title: "old pending recurring", Date: "2024-01-03", Time: "09:00", Recurrence: task.RecurWeekly})
	recent := mustInsert(t, st, task.Task{Title: "recent", Date: "2024-02-20", Time: "09:00", Fired: true})

	n, err := st.DeleteExpired(ctx, "2024-02-01")
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 2 {
		t.Fatalf("removed %d, want 2", n)
	}

	for _, id := range []int64{oldFired, oldMissed} {
		if _, err := st.Get(ctx, id); !errors.Is(err, task.ErrNotFound) {
			t.Fatalf("task %d should be gone, got %v", id, err)
		}
	}
	for _, id := range []int64{oldPendingRecurring, recent} {
		if _, err := st.Get(ctx, id); err != nil {
			t.Fatalf("task %d should survive: %v", id, err)
		}
	}
}
