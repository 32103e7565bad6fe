package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Kerhoff/familygifts/internal/models"
	"github.com/Kerhoff/familygifts/internal/policy"
	"github.com/Kerhoff/familygifts/internal/service"
	"github.com/Kerhoff/familygifts/internal/telegram"
)

func reply(bot telegram.Sender, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// member registers the sender on first contact and returns their user row.
func member(ctx context.Context, svc *service.Service, message *tgbotapi.Message) (*models.User, error) {
	from := message.From
	user, err := svc.EnsureUser(ctx, from.ID, from.UserName, from.FirstName, from.LastName)
	if err != nil {
		return nil, fmt.Errorf("failed to register telegram user %d: %w", from.ID, err)
	}
	return user, nil
}

// friendlyError turns a service error the member caused into a reply text.
// It returns false for internal failures.
func friendlyError(err error) (string, bool) {
	switch {
	case errors.Is(err, policy.ErrNotFound):
		return "🔍 Not found.", true
	case errors.Is(err, policy.ErrForbidden):
		return "🚫 You are not allowed to do that.", true
	case errors.Is(err, policy.ErrInvalidTransition):
		return "⚠️ That suggestion was already handled.", true
	case errors.Is(err, policy.ErrValidation):
		return "⚠️ " + escape(err.Error()), true
	default:
		return "", false
	}
}

// replyOrFail reports member errors in the chat and passes internal ones on.
func replyOrFail(bot telegram.Sender, chatID int64, err error) error {
	if text, ok := friendlyError(err); ok {
		return reply(bot, chatID, text)
	}
	return err
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil && id > 0
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}
