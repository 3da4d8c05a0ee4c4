package notify

import (
	"context"

	"remindd/internal/task"
	"remindd/pkg/logx"
)

// Console writes reminders to the structured log. It is the default
// channel and can never fail, which also makes it the safe fallback
// for headless test setups.
type Console struct {
	log logx.Logger
}

func NewConsole(log logx.Logger) *Console {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Console{log: log}
}

func (c *Console) Notify(_ context.Context, t task.Task) error {
	c.log.Info("🔔 reminder",
		logx.Int64("task", t.ID),
		logx.String("title", t.Title),
		logx.String("due", t.Date+" "+t.Time),
		logx.String("note", t.Note),
	)
	return nil
}
