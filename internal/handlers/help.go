package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/familygifts/internal/telegram"
)

const helpText = `📚 *Family Gifts Help*

*Lists:*
• /lists - Show every list you can see
• /list <id> - Show the items on a list

*Suggestions:*
• /suggestions - Pending gift ideas for you
• /approve <id> <list\_id> - Add a suggestion to one of your lists
• /deny <id> [reason] - Turn a suggestion down

*Surprises:*
On a surprise list you never see who bought, contributed to, or talked about your own items.
`

// HelpHandler handles the /help command
type HelpHandler struct {
	logger *logrus.Logger
}

// NewHelpHandler creates a new help command handler
func NewHelpHandler(logger *logrus.Logger) *HelpHandler {
	return &HelpHandler{
		logger: logger,
	}
}

// Handle processes the /help command
func (h *HelpHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if err := reply(bot, message.Chat.ID, helpText); err != nil {
		return fmt.Errorf("failed to send help message: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
	}).Info("Sent help message")

	return nil
}
