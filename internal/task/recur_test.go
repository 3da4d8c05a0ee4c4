package task

import (
	"errors"
	"testing"
)

func TestNextAdvancesCalendar(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		date  string
		recur Recurrence
		want  string
	}{
		{name: "daily across month end", date: "2024-01-31", recur: RecurDaily, want: "2024-02-01"},
		{name: "daily across year end", date: "2024-12-31", recur: RecurDaily, want: "2025-01-01"},
		{name: "daily plain", date: "2024-03-31", recur: RecurDaily, want: "2024-04-01"},
		{name: "weekly across leap february", date: "2024-02-28", recur: RecurWeekly, want: "2024-03-06"},
		{name: "weekly across non-leap february", date: "2023-02-27", recur: RecurWeekly, want: "2023-03-06"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := Task{ID: 7, Title: "t", Date: tt.date, Time: "09:00", Note: "n", Fired: true, Recurrence: tt.recur}
			got, err := Next(in)
			if err != nil {
				t.Fatalf("Next error: %v", err)
			}
			if got.Date != tt.want {
				t.Fatalf("Date = %s, want %s", got.Date, tt.want)
			}
			if got.Time != "09:00" || got.Title != "t" || got.Note != "n" || got.Recurrence != tt.recur {
				t.Fatalf("carried fields changed: %+v", got)
			}
			if got.Fired {
				t.Fatal("successor must start un-fired")
			}
			if got.ID != 0 || !got.CreatedAt.IsZero() {
				t.Fatal("successor must leave id/created_at unset")
			}
		})
	}
}

func TestNextTwiceNeverSkipsOrRepeats(t *testing.T) {
	t.Parallel()
	start := Task{Title: "t", Date: "2024-02-28", Time: "12:00", Recurrence: RecurDaily}

	one, err := Next(start)
	if err != nil {
		t.Fatalf("first Next: %v", err)
	}
	two, err := Next(one)
	if err != nil {
		t.Fatalf("second Next: %v", err)
	}
	if one.Date != "2024-02-29" || two.Date != "2024-03-01" {
		t.Fatalf("got %s then %s, want 2024-02-29 then 2024-03-01", one.Date, two.Date)
	}
	if one.Date == two.Date {
		t.Fatal("consecutive occurrences repeated a date")
	}
}

func TestNextRejectsNonRecurring(t *testing.T) {
	t.Parallel()
	_, err := Next(Task{Title: "t", Date: "2024-03-31", Time: "09:00", Recurrence: RecurNone})
	if !errors.Is(err, ErrNotRecurring) {
		t.Fatalf("err = %v, want ErrNotRecurring", err)
	}
}
