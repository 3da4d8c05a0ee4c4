package task

import (
	"errors"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	t.Parallel()
	valid := Task{Title: "Pay rent", Date: "2024-03-31", Time: "09:00", Recurrence: RecurDaily}

	tests := []struct {
		name    string
		mutate  func(*Task)
		wantErr string // offending field, "" for ok
	}{
		{name: "valid", mutate: func(*Task) {}},
		{name: "empty title", mutate: func(x *Task) { x.Title = "  " }, wantErr: "title"},
		{name: "month out of range", mutate: func(x *Task) { x.Date = "2024-13-01" }, wantErr: "date"},
		{name: "day out of range", mutate: func(x *Task) { x.Date = "2024-02-30" }, wantErr: "date"},
		{name: "wrong date layout", mutate: func(x *Task) { x.Date = "31-03-2024" }, wantErr: "date"},
		{name: "hour out of range", mutate: func(x *Task) { x.Time = "24:00" }, wantErr: "time"},
		{name: "minute out of range", mutate: func(x *Task) { x.Time = "09:60" }, wantErr: "time"},
		{name: "seconds not allowed", mutate: func(x *Task) { x.Time = "09:00:30" }, wantErr: "time"},
		{name: "bad recurrence", mutate: func(x *Task) { x.Recurrence = "monthly" }, wantErr: "recurrence"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tk := valid
			tt.mutate(&tk)
			err := tk.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() = %v, want ValidationError", err)
			}
			if ve.Field != tt.wantErr {
				t.Fatalf("Field = %q, want %q", ve.Field, tt.wantErr)
			}
		})
	}
}

func TestParseRecurrence(t *testing.T) {
	t.Parallel()
	for raw, want := range map[string]Recurrence{
		"":       RecurNone,
		"none":   RecurNone,
		"daily":  RecurDaily,
		"WEEKLY": RecurWeekly,
		" daily": RecurDaily,
	} {
		got, err := ParseRecurrence(raw)
		if err != nil {
			t.Fatalf("ParseRecurrence(%q) error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseRecurrence(%q) = %q, want %q", raw, got, want)
		}
	}

	if _, err := ParseRecurrence("hourly"); err == nil {
		t.Fatal("expected error for unknown recurrence")
	}
}

func TestDueAt(t *testing.T) {
	t.Parallel()
	tk := Task{Title: "x", Date: "2024-03-31", Time: "09:05"}
	due, err := tk.DueAt()
	if err != nil {
		t.Fatalf("DueAt error: %v", err)
	}
	want := time.Date(2024, 3, 31, 9, 5, 0, 0, time.Local)
	if !due.Equal(want) {
		t.Fatalf("DueAt = %v, want %v", due, want)
	}
}
