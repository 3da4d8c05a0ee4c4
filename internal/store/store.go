package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"remindd/internal/task"
	"remindd/pkg/logx"
)

// Config configures the SQLite store.
type Config struct {
	Path        string
	BusyTimeout time.Duration // 0 means driver default
}

// Store is the durable task record. All mutating operations go through
// one serialized connection; readers see consistent snapshots.
type Store struct {
	db  *sql.DB
	log logx.Logger
}

// Open opens (creating if needed) the database at cfg.Path and brings
// the schema up to date. A migration failure closes the database and
// is returned as a *MigrationError.
func Open(cfg Config, log logx.Logger) (*Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("store path is required")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers; one
	// connection gives us the single-writer discipline for free.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	s := &Store{db: db, log: log}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const taskColumns = `id, title, date, time, note, fired, recurrence, created_at`

// Insert validates t, assigns id and created_at, and stores it.
// The incoming ID and CreatedAt are ignored.
func (s *Store) Insert(ctx context.Context, t task.Task) (int64, error) {
	if t.Recurrence == "" {
		t.Recurrence = task.RecurNone
	}
	if err := t.Validate(); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks(title, date, time, note, fired, recurrence, created_at)
		 VALUES(?,?,?,?,?,?,?)`,
		t.Title, t.Date, t.Time, t.Note, boolToInt(t.Fired), string(t.Recurrence),
		time.Now().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	return id, nil
}

// Fields is a partial update: nil means "leave unchanged".
// ID and CreatedAt are immutable and have no field here.
type Fields struct {
	Title      *string
	Date       *string
	Time       *string
	Note       *string
	Fired      *bool
	Recurrence *task.Recurrence
}

// Update applies the set fields to the task with the given id.
// Unknown ids return task.ErrNotFound; malformed values are rejected
// before anything is written.
func (s *Store) Update(ctx context.Context, id int64, f Fields) error {
	set := make([]string, 0, 6)
	args := make([]any, 0, 7)

	if f.Title != nil {
		if strings.TrimSpace(*f.Title) == "" {
			return &task.ValidationError{Field: "title", Reason: "must not be empty"}
		}
		set, args = append(set, "title = ?"), append(args, *f.Title)
	}
	if f.Date != nil {
		if err := task.ValidateDate(*f.Date); err != nil {
			return err
		}
		set, args = append(set, "date = ?"), append(args, *f.Date)
	}
	if f.Time != nil {
		if err := task.ValidateTime(*f.Time); err != nil {
			return err
		}
		set, args = append(set, "time = ?"), append(args, *f.Time)
	}
	if f.Note != nil {
		set, args = append(set, "note = ?"), append(args, *f.Note)
	}
	if f.Fired != nil {
		set, args = append(set, "fired = ?"), append(args, boolToInt(*f.Fired))
	}
	if f.Recurrence != nil {
		rec, err := task.ParseRecurrence(string(*f.Recurrence))
		if err != nil {
			return err
		}
		set, args = append(set, "recurrence = ?"), append(args, string(rec))
	}
	if len(set) == 0 {
		// Nothing to change; still surface unknown ids.
		_, err := s.Get(ctx, id)
		return err
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update task %d: %w", id, task.ErrNotFound)
	}
	return nil
}

// Delete removes the task if present. Deleting an absent id is not an
// error, which keeps concurrent edit/delete races harmless.
func (s *Store) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id int64) (task.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, fmt.Errorf("get task %d: %w", id, task.ErrNotFound)
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// ListFilter narrows List output.
type ListFilter struct {
	PendingOnly bool // only tasks that have not fired yet
}

// List returns tasks ordered by (date, time, id) ascending. The
// ordering is deterministic so display and tests are reproducible.
func (s *Store) List(ctx context.Context, f ListFilter) ([]task.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks`
	if f.PendingOnly {
		q += ` WHERE fired = 0`
	}
	q += ` ORDER BY date ASC, time ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// Due returns tasks scheduled at or before now, in (date, time, id)
// order. With includeFired=false (the monitor's view) only tasks that
// have not fired are returned; due comparison is minute-precision.
func (s *Store) Due(ctx context.Context, now time.Time, includeFired bool) ([]task.Task, error) {
	dateStr := now.Format(task.DateLayout)
	timeStr := now.Format(task.TimeLayout)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE (date < ? OR (date = ? AND time <= ?)) AND fired = ?
		 ORDER BY date ASC, time ASC, id ASC`,
		dateStr, dateStr, timeStr, boolToInt(includeFired),
	)
	if err != nil {
		return nil, fmt.Errorf("due tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// DeleteExpired removes tasks dated strictly before cutoffDate that
// are either fired or non-recurring, returning the count removed.
// A pending recurring task is never touched regardless of age.
func (s *Store) DeleteExpired(ctx context.Context, cutoffDate string) (int64, error) {
	if err := task.ValidateDate(cutoffDate); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE date < ? AND (fired = 1 OR recurrence = ?)`,
		cutoffDate, string(task.RecurNone),
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired tasks: %w", err)
	}
	return res.RowsAffected()
}

// CountAll reports the number of stored tasks.
func (s *Store) CountAll(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(r rowScanner) (task.Task, error) {
	var (
		t         task.Task
		fired     int
		rec       string
		createdAt string
	)
	if err := r.Scan(&t.ID, &t.Title, &t.Date, &t.Time, &t.Note, &fired, &rec, &createdAt); err != nil {
		return task.Task{}, err
	}
	t.Fired = fired != 0
	t.Recurrence = task.Recurrence(rec)
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		t.CreatedAt = ts
	}
	return t, nil
}

func collectTasks(rows *sql.Rows) ([]task.Task, error) {
	var out []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
