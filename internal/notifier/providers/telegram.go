package providers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"feedpulse/internal/types"
)

// TelegramSender delivers notifications to a Telegram chat.
type TelegramSender struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramSender creates a Telegram sender. It validates the token by
// contacting the Bot API.
func NewTelegramSender(token string, chatID int64) (*TelegramSender, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramSender{api: api, chatID: chatID}, nil
}

// Send delivers one notification as a single message. Priority is shown
// as an emoji prefix, tags as a trailing hashtag line.
func (s *TelegramSender) Send(ctx context.Context, title, body string, priority types.Priority, tags []string) error {
	prefix := ""
	switch priority {
	case types.PriorityUrgent:
		prefix = "🚨 "
	case types.PriorityHigh:
		prefix = "⚠️ "
	}

	var text strings.Builder
	text.WriteString(prefix)
	text.WriteString(title)
	text.WriteString("\n\n")
	text.WriteString(body)
	if len(tags) > 0 {
		text.WriteString("\n\n")
		for i, tag := range tags {
			if i > 0 {
				text.WriteString(" ")
			}
			text.WriteString("#" + tag)
		}
	}

	msg := tgbotapi.NewMessage(s.chatID, text.String())
	msg.DisableWebPagePreview = true
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	return nil
}
