package task

import (
	"fmt"
	"time"
)

// Next computes the successor occurrence of a recurring task:
// daily advances the date by one calendar day, weekly by seven.
// Time, title, note and recurrence carry over unchanged; Fired is
// reset and ID/CreatedAt are cleared for the caller to insert as a
// fresh record. Month and year boundaries follow normal calendar math
// (Jan 31 + 1 day = Feb 1).
//
// Calling Next on a non-recurring task returns ErrNotRecurring.
func Next(t Task) (Task, error) {
	var days int
	switch t.Recurrence {
	case RecurDaily:
		days = 1
	case RecurWeekly:
		days = 7
	default:
		return Task{}, fmt.Errorf("next occurrence of task %d (%s): %w", t.ID, t.Recurrence, ErrNotRecurring)
	}

	date, err := time.ParseInLocation(DateLayout, t.Date, time.Local)
	if err != nil {
		return Task{}, &ValidationError{Field: "date", Reason: err.Error()}
	}

	next := t
	next.ID = 0
	next.CreatedAt = time.Time{}
	next.Fired = false
	next.Date = date.AddDate(0, 0, days).Format(DateLayout)
	return next, nil
}
