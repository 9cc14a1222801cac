package notify

import (
	"context"
	"fmt"

	"github.com/NotAnonymousUser/Ticket-System/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts a short alert for every event into the admin chat.
type Telegram struct {
	bot    telegramSender
	chatID int64
}

func NewTelegram(cfg config.TelegramConfig) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: cfg.ChatID}, nil
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Publish(_ context.Context, n Notification, m Message) error {
	text := fmt.Sprintf("🎫 %s\n%s\nStatus: %s | Priority: %s", m.Subject, n.Ticket.Title, n.Ticket.Status, n.Ticket.Priority)
	if n.Actor.Username != "" {
		text += "\nBy: " + n.Actor.Username
	}
	if n.Comment != nil {
		text += "\n💬 " + n.Comment.Text
	}
	_, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text))
	return err
}
