package notify

import (
	"context"
	"errors"
	"fmt"

	tele "gopkg.in/telebot.v4"

	"remindd/internal/task"
)

// Telegram pushes reminders to a chat. For a headless daemon this is
// the closest thing to the desktop popup a GUI planner would show.
type Telegram struct {
	bot  *tele.Bot
	chat *tele.Chat
}

func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram token is required")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat_id is required")
	}
	// Send-only: no poller, just the HTTP client.
	bot, err := tele.NewBot(tele.Settings{Token: cfg.Token})
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chat: &tele.Chat{ID: cfg.ChatID}}, nil
}

func (t *Telegram) Notify(ctx context.Context, tk task.Task) error {
	// telebot has no per-call context; honor ctx around the send so a
	// timeout still surfaces as a notify failure.
	done := make(chan error, 1)
	go func() {
		_, err := t.bot.Send(t.chat, "⏰ "+Render(tk))
		done <- err
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("telegram send: %w", err)
		}
		return nil
	}
}
