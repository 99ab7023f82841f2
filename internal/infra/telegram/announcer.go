package telegram

import (
	"context"
	"fmt"

	"question_cycle_service/internal/app"
	domainTelegram "question_cycle_service/internal/domain/telegram"
)

// RolloverAnnouncer posts a rollover summary to the admin chat.
type RolloverAnnouncer struct {
	client domainTelegram.Client
	chatID int64
}

func NewRolloverAnnouncer(client domainTelegram.Client, chatID int64) *RolloverAnnouncer {
	return &RolloverAnnouncer{client: client, chatID: chatID}
}

func (a *RolloverAnnouncer) AnnounceRollover(_ context.Context, result app.RolloverResult) error {
	if err := a.client.SendText(a.chatID, formatRollover(result)); err != nil {
		return fmt.Errorf("failed to send rollover summary to chat %d: %w", a.chatID, err)
	}
	return nil
}
