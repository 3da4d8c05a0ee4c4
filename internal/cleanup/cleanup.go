// Package cleanup purges tasks that have aged out of the retention
// window. Fired tasks and missed one-shot tasks are fair game once old
// enough; a pending recurring task is kept no matter its age.
package cleanup

import (
	"context"
	"time"

	"remindd/internal/store"
	"remindd/internal/task"
	"remindd/pkg/logx"
)

const DefaultRetentionDays = 30

type Service struct {
	store         *store.Store
	retentionDays int
	log           logx.Logger
}

func New(st *store.Store, retentionDays int, log logx.Logger) *Service {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{store: st, retentionDays: retentionDays, log: log}
}

// Run deletes every task dated strictly before now minus the retention
// window that is either fired or non-recurring, and reports the count.
// Zero matches is a normal outcome, not an error.
func (s *Service) Run(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.AddDate(0, 0, -s.retentionDays).Format(task.DateLayout)
	n, err := s.store.DeleteExpired(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("cleanup removed old tasks",
			logx.Int64("removed", n),
			logx.String("cutoff", cutoff),
		)
	} else {
		s.log.Debug("cleanup found nothing to remove", logx.String("cutoff", cutoff))
	}
	return n, nil
}
