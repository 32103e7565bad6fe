package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/familygifts/internal/service"
	"github.com/Kerhoff/familygifts/internal/telegram"
)

// StartHandler handles the /start command
type StartHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewStartHandler creates a new start command handler
func NewStartHandler(svc *service.Service, logger *logrus.Logger) *StartHandler {
	return &StartHandler{
		svc:    svc,
		logger: logger,
	}
}

// Handle registers the sender and greets them
func (h *StartHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	user, err := member(ctx, h.svc, message)
	if err != nil {
		return err
	}

	welcomeText := fmt.Sprintf(`🎁 *Welcome to Family Gifts, %s!*

Keep your wish lists here and see what the family wants, without spoiling any surprises.

Your member id is *%d*.

*Commands:*
• /lists - Lists you can see
• /list <id> - Items on a list
• /suggestions - Gift ideas others suggested for you
• /help - Show all commands
`, escape(user.DisplayName()), user.ID)

	if err := reply(bot, message.Chat.ID, welcomeText); err != nil {
		return fmt.Errorf("failed to send start message: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": user.ID,
	}).Info("Sent start message")

	return nil
}
