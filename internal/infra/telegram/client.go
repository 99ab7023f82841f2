// internal/infra/telegram/client.go
package telegram

import (
	domainTelegram "question_cycle_service/internal/domain/telegram"

	"gopkg.in/telebot.v3"
)

var _ domainTelegram.Client = (*TelebotAdapter)(nil)

// TelebotAdapter implements the Client interface using the gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendText sends a text message to the specified chat.
func (tba *TelebotAdapter) SendText(chatID int64, text string) error {
	recipient := &telebot.Chat{ID: chatID}
	_, err := tba.bot.Send(recipient, text)
	return err
}
