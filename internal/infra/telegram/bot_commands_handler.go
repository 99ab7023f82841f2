// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"strings"

	"question_cycle_service/internal/app"
	"question_cycle_service/internal/domain/question"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// QuestionService is what the bot commands need from app.AssignmentService.
type QuestionService interface {
	Resolve(ctx context.Context, region string) (app.Assignment, error)
	CreateQuestion(ctx context.Context, region, text string, assignedCycle int) (*question.Question, error)
	ListQuestions(ctx context.Context) ([]*question.Question, error)
	CycleInfo() app.CycleInfo
}

func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	svc QuestionService,
	adminTelegramID int64,
	baseLogger *logrus.Entry, // For contextual logging
) {
	commandLogger := baseLogger.WithField("handler_group", "commands")

	b.Handle("/start", func(c telebot.Context) error {
		commandLogger.WithField("command", "/start").WithField("sender_id", c.Sender().ID).Info("Processing /start command")
		return c.Send("Hi! I share the question of the cycle for each region. Try /question <region>.\n\n" + helpText)
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		commandLogger.WithField("command", "/help").WithField("sender_id", senderID).Info("Processing /help command")
		if senderID == adminTelegramID {
			return c.Send(helpText + adminHelpText)
		}
		return c.Send(helpText)
	})

	b.Handle("/question", func(c telebot.Context) error {
		region := strings.TrimSpace(c.Message().Payload)
		logCtx := commandLogger.WithFields(logrus.Fields{
			"command":   "/question",
			"sender_id": c.Sender().ID,
			"region":    region,
		})
		if region == "" {
			return c.Send("Usage: /question <region>")
		}

		assignment, err := svc.Resolve(ctx, region)
		if err != nil {
			logCtx.WithError(err).Error("Failed to resolve assigned question")
			return c.Send("Could not look up the question right now. Please try again later.")
		}
		logCtx.WithField("found", assignment.Found()).Info("Assigned question resolved")
		return c.Send(formatAssignment(assignment))
	})

	b.Handle("/cycle", func(c telebot.Context) error {
		commandLogger.WithField("command", "/cycle").WithField("sender_id", c.Sender().ID).Info("Processing /cycle command")
		return c.Send(formatCycle(svc.CycleInfo()))
	})
}
