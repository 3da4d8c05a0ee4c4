// Package notify delivers due-task reminders. The scheduler core only
// sees the one-method Notifier interface; how a reminder is rendered
// (log line, external command, telegram message) is an adapter's
// concern.
package notify

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"remindd/internal/task"
	"remindd/pkg/logx"
)

// Notifier delivers one reminder. Implementations must respect ctx:
// the monitor bounds every call with a timeout so a stuck delivery
// cannot stall the scan.
type Notifier interface {
	Notify(ctx context.Context, t task.Task) error
}

// Func adapts a plain function to Notifier.
type Func func(ctx context.Context, t task.Task) error

func (f Func) Notify(ctx context.Context, t task.Task) error { return f(ctx, t) }

type Config struct {
	Channel    string // console | command | telegram
	RatePerSec int
	Command    CommandConfig
	Telegram   TelegramConfig
}

type CommandConfig struct {
	Path string
	Args []string
}

type TelegramConfig struct {
	Token  string
	ChatID int64
}

// New builds the configured adapter wrapped in a rate limiter.
// After daemon downtime many tasks can come due in one scan; the
// limiter paces the resulting burst instead of hammering the channel.
func New(cfg Config, log logx.Logger) (Notifier, error) {
	var (
		n   Notifier
		err error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Channel)) {
	case "", "console":
		n = NewConsole(log)
	case "command":
		n, err = NewCommand(cfg.Command, log)
	case "telegram":
		n, err = NewTelegram(cfg.Telegram)
	default:
		return nil, fmt.Errorf("unknown notify channel %q", cfg.Channel)
	}
	if err != nil {
		return nil, err
	}
	return Limited(n, cfg.RatePerSec), nil
}

// Limited paces deliveries at ratePerSec with an equal burst.
// A non-positive rate disables limiting.
func Limited(n Notifier, ratePerSec int) Notifier {
	if ratePerSec <= 0 {
		return n
	}
	lim := rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec)
	return Func(func(ctx context.Context, t task.Task) error {
		if err := lim.Wait(ctx); err != nil {
			return fmt.Errorf("notify rate limit: %w", err)
		}
		return n.Notify(ctx, t)
	})
}

// Render is the shared plain-text reminder body.
func Render(t task.Task) string {
	var b strings.Builder
	b.WriteString(t.Title)
	b.WriteString(" (due ")
	b.WriteString(t.Date)
	b.WriteString(" ")
	b.WriteString(t.Time)
	b.WriteString(")")
	if note := strings.TrimSpace(t.Note); note != "" {
		b.WriteString("\n")
		b.WriteString(note)
	}
	return b.String()
}
