package task

import (
	"strings"
	"time"
)

// Date and clock layouts used everywhere a task's schedule is parsed
// or rendered. Dates and times are stored as strings in these layouts;
// both compare lexicographically in chronological order, which the
// store relies on for ordering and due queries.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Recurrence says how a task regenerates itself after firing.
type Recurrence string

const (
	RecurNone   Recurrence = "none"
	RecurDaily  Recurrence = "daily"
	RecurWeekly Recurrence = "weekly"
)

// ParseRecurrence validates a raw recurrence value. Empty means none.
func ParseRecurrence(raw string) (Recurrence, error) {
	switch Recurrence(strings.ToLower(strings.TrimSpace(raw))) {
	case "", RecurNone:
		return RecurNone, nil
	case RecurDaily:
		return RecurDaily, nil
	case RecurWeekly:
		return RecurWeekly, nil
	default:
		return "", &ValidationError{Field: "recurrence", Reason: "must be none, daily or weekly"}
	}
}

// Task is one concrete scheduled occurrence.
//
// ID and CreatedAt are assigned by the store on insert and are
// immutable afterwards. A recurring task that fires is never rewritten
// in place; a successor row is inserted instead (copy-and-advance).
type Task struct {
	ID         int64
	Title      string
	Date       string // DateLayout
	Time       string // TimeLayout
	Note       string
	Fired      bool
	Recurrence Recurrence
	CreatedAt  time.Time
}

// DueAt combines Date and Time into a local wall-clock instant.
func (t Task) DueAt() (time.Time, error) {
	due, err := time.ParseInLocation(DateLayout+" "+TimeLayout, t.Date+" "+t.Time, time.Local)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date/time", Reason: err.Error()}
	}
	return due, nil
}

// Validate checks the fields an external add/edit request controls.
// The store calls this before any insert; malformed values are
// rejected rather than silently truncated.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if err := ValidateDate(t.Date); err != nil {
		return err
	}
	if err := ValidateTime(t.Time); err != nil {
		return err
	}
	if _, err := ParseRecurrence(string(t.Recurrence)); err != nil {
		return err
	}
	return nil
}

// ValidateDate checks an ISO calendar date (YYYY-MM-DD).
func ValidateDate(s string) error {
	parsed, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil || parsed.Format(DateLayout) != s {
		return &ValidationError{Field: "date", Reason: "must be a valid YYYY-MM-DD date"}
	}
	return nil
}

// ValidateTime checks a 24-hour clock value (HH:MM).
func ValidateTime(s string) error {
	parsed, err := time.Parse(TimeLayout, s)
	if err != nil || parsed.Format(TimeLayout) != s {
		return &ValidationError{Field: "time", Reason: "must be a valid 24-hour HH:MM time"}
	}
	return nil
}
