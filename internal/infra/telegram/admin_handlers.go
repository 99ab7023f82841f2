package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"question_cycle_service/internal/domain/question"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterAdminHandlers registers handlers for admin commands.
// It requires the bot instance, question service, and the configured admin Telegram ID.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, svc QuestionService, adminTelegramID int64, baseLogger *logrus.Entry) {
	b.Handle("/add_question", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/add_question",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Error: you are not allowed to run this command.")
		}

		region, cycle, text, err := parseAddQuestion(c.Message().Payload)
		if err != nil {
			handlerLogger.WithError(err).Warn("Invalid command format")
			return c.Send(fmt.Sprintf("Invalid command: %v\n%v", err, errAddQuestionUsage))
		}
		handlerLogger = handlerLogger.WithFields(logrus.Fields{"region": region, "cycle": cycle})

		q, err := svc.CreateQuestion(ctx, region, text, cycle)
		if err != nil {
			if errors.Is(err, question.ErrInvalid) {
				handlerLogger.WithError(err).Warn("Rejected invalid question")
				return c.Send(fmt.Sprintf("Error: %v", err))
			}
			handlerLogger.WithError(err).Error("Failed to add question")
			return c.Send("An error occurred while adding the question.")
		}

		handlerLogger.WithField("question_id", q.ID).Info("Question added successfully")
		return c.Send(fmt.Sprintf("Question %s added for %s, cycle %d.", q.ID, q.Region, q.AssignedCycle))
	})

	b.Handle("/list_questions", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/list_questions",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Error: you are not allowed to run this command.")
		}

		region := strings.TrimSpace(c.Message().Payload)
		all, err := svc.ListQuestions(ctx)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to list questions")
			return c.Send("An error occurred while listing questions.")
		}
		handlerLogger.WithField("questions_count", len(all)).Info("Successfully retrieved question list")
		return c.Send(formatQuestionList(all, region))
	})
}
