package cleanup

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"remindd/internal/store"
	"remindd/internal/task"
	"remindd/pkg/logx"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(store.Config{Path: filepath.Join(t.TempDir(), "tasks.db")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestRunRemovesAgedOutTasks(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.Local)

	day := func(offset int) string { return now.AddDate(0, 0, offset).Format(task.DateLayout) }

	insert := func(tk task.Task) int64 {
		t.Helper()
		id, err := st.Insert(ctx, tk)
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		return id
	}

	// 40 days old with retention 30: removable when fired or one-shot.
	firedOld := insert(task.Task{Title: "fired old", Date: day(-40), Time: "09:00", Fired: true})
	missedOld := insert(task.Task{Title: "missed one-shot", Date: day(-40), Time: "09:00"})
	pendingRecurring := insert(task.Task{Title: "pending recurring", Date: day(-400), Time: "09:00", Recurrence: task.RecurDaily})
	recentFired := insert(task.Task{Title: "recent fired", Date: day(-10), Time: "09:00", Fired: true})

	svc := New(st, 30, logx.Nop())
	n, err := svc.Run(ctx, now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 2 {
		t.Fatalf("removed %d, want 2", n)
	}

	for _, id := range []int64{firedOld, missedOld} {
		if _, err := st.Get(ctx, id); !errors.Is(err, task.ErrNotFound) {
			t.Fatalf("task %d should be removed, got %v", id, err)
		}
	}
	for _, id := range []int64{pendingRecurring, recentFired} {
		if _, err := st.Get(ctx, id); err != nil {
			t.Fatalf("task %d should survive: %v", id, err)
		}
	}
}

func TestRunWithNothingToRemove(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	svc := New(st, 30, logx.Nop())
	n, err := svc.Run(ctx, time.Now())
	if err != nil {
		t.Fatalf("Run on empty store: %v", err)
	}
	if n != 0 {
		t.Fatalf("removed %d from empty store", n)
	}
}

func TestRetentionBoundaryIsStrict(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.Local)

	// Exactly at the cutoff date: "strictly older" means it stays.
	atCutoff := now.AddDate(0, 0, -30).Format(task.DateLayout)
	id, err := st.Insert(ctx, task.Task{Title: "edge", Date: atCutoff, Time: "09:00", Fired: true})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	svc := New(st, 30, logx.Nop())
	n, err := svc.Run(ctx, now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 0 {
		t.Fatalf("removed %d, cutoff-day task must survive", n)
	}
	if _, err := st.Get(ctx, id); err != nil {
		t.Fatalf("edge task should survive: %v", err)
	}
}
