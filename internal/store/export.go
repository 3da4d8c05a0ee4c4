package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// ExportCSV writes every stored task to w as CSV with a header row,
// in the same (date, time, id) order List uses.
func (s *Store) ExportCSV(ctx context.Context, w io.Writer) error {
	tasks, err := s.List(ctx, ListFilter{})
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "title", "date", "time", "note", "fired", "recurrence", "created_at"}); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	for _, t := range tasks {
		rec := []string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			t.Date,
			t.Time,
			t.Note,
			strconv.FormatBool(t.Fired),
			string(t.Recurrence),
			t.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("export csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
