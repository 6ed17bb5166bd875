// Package telegram adapts the Telegram Bot API to the notifier's Messenger
// port. Messages are sent to a single configured chat in MarkdownV2.
package telegram

import (
	"context"
	"fmt"

	"github.com/chainbell/chainbell/internal/notify"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// sender is the slice of the bot API the messenger uses.
type sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Messenger delivers messages to one Telegram chat.
type Messenger struct {
	bot    sender
	chatID string
}

var _ notify.Messenger = (*Messenger)(nil)

// NewMessenger creates a messenger that sends through the given bot to the
// given chat.
func NewMessenger(b *bot.Bot, chatID string) *Messenger {
	return &Messenger{
		bot:    b,
		chatID: chatID,
	}
}

// SendMessage implements notify.Messenger.
func (m *Messenger) SendMessage(ctx context.Context, text string) error {
	_, err := m.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    m.chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdown,
	})
	if err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}

	return nil
}
