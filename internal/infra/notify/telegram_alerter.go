package notify

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"smm-storefront/internal/config"
	"smm-storefront/internal/domain/ports/adapter"
)

var _ adapter.Alerter = (*TelegramAlerter)(nil)

// TelegramAlerter pushes operator alerts (failed submissions, guard-record
// inconsistencies) into a Telegram chat.
type TelegramAlerter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramAlerter(cfg config.TelegramConfig) (*TelegramAlerter, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	return &TelegramAlerter{bot: bot, chatID: cfg.ChatID}, nil
}

func (a *TelegramAlerter) Alert(ctx context.Context, message string) error {
	msg := tgbotapi.NewMessage(a.chatID, "⚠️ "+message)
	_, err := a.bot.Send(msg)
	return err
}
