package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"remindd/internal/task"
	"remindd/pkg/logx"
)

// Command runs a user-configured program per reminder (play a sound,
// call notify-send, whatever the host offers). The reminder text is
// appended as the final argument and task fields are exported in the
// environment for scripts that want structure.
type Command struct {
	path string
	args []string
	log  logx.Logger
}

func NewCommand(cfg CommandConfig, log logx.Logger) (*Command, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("notify command path is required")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Command{path: cfg.Path, args: cfg.Args, log: log}, nil
}

func (c *Command) Notify(ctx context.Context, t task.Task) error {
	args := append(append([]string(nil), c.args...), Render(t))
	cmd := exec.CommandContext(ctx, c.path, args...)
	cmd.Env = append(cmd.Environ(),
		"REMIND_TASK_ID="+strconv.FormatInt(t.ID, 10),
		"REMIND_TITLE="+t.Title,
		"REMIND_DUE="+t.Date+" "+t.Time,
		"REMIND_NOTE="+t.Note,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("notify command %s: %w (output: %s)", c.path, err, strings.TrimSpace(string(out)))
	}
	c.log.Debug("notify command ok", logx.Int64("task", t.ID), logx.String("cmd", c.path))
	return nil
}
