package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/familygifts/internal/models"
	"github.com/Kerhoff/familygifts/internal/policy"
	"github.com/Kerhoff/familygifts/internal/service"
	"github.com/Kerhoff/familygifts/internal/telegram"
)

// SuggestionsHandler lists the pending suggestions made for the sender
type SuggestionsHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewSuggestionsHandler creates a new suggestions command handler
func NewSuggestionsHandler(svc *service.Service, logger *logrus.Logger) *SuggestionsHandler {
	return &SuggestionsHandler{
		svc:    svc,
		logger: logger,
	}
}

// Handle processes the /suggestions command
func (h *SuggestionsHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	user, err := member(ctx, h.svc, message)
	if err != nil {
		return err
	}

	pending := models.SuggestionStatusPending
	suggestions, err := h.svc.ListSuggestionsForTarget(ctx, user.ID, &pending)
	if err != nil {
		return err
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": user.ID,
		"count":   len(suggestions),
	}).Info("Sent pending suggestions")

	return reply(bot, message.Chat.ID, formatSuggestions(suggestions))
}

func formatSuggestions(suggestions []models.GiftSuggestion) string {
	if len(suggestions) == 0 {
		return "📭 No pending gift suggestions."
	}

	var b strings.Builder
	b.WriteString("💡 *Pending suggestions:*\n\n")
	for _, s := range suggestions {
		fmt.Fprintf(&b, "• #%d %s", s.ID, escape(s.Name))
		if s.Price != "" {
			fmt.Fprintf(&b, " - %s", escape(s.Price))
		}
		if s.SuggestedByName != nil {
			fmt.Fprintf(&b, " from %s", escape(*s.SuggestedByName))
		} else {
			b.WriteString(" from someone anonymous")
		}
		b.WriteString("\n")
	}
	b.WriteString("\nUse /approve <id> <list\\_id> or /deny <id> [reason].")
	return b.String()
}

// TransitionHandler handles /approve and /deny
type TransitionHandler struct {
	svc    *service.Service
	logger *logrus.Logger
	action policy.Action
}

// NewApproveHandler creates the /approve command handler
func NewApproveHandler(svc *service.Service, logger *logrus.Logger) *TransitionHandler {
	return &TransitionHandler{svc: svc, logger: logger, action: policy.ActionApprove}
}

// NewDenyHandler creates the /deny command handler
func NewDenyHandler(svc *service.Service, logger *logrus.Logger) *TransitionHandler {
	return &TransitionHandler{svc: svc, logger: logger, action: policy.ActionDeny}
}

func (h *TransitionHandler) usage() string {
	if h.action == policy.ActionApprove {
		return "❌ Usage: /approve <id> <list\\_id>"
	}
	return "❌ Usage: /deny <id> [reason]"
}

// Handle applies the handler's action to a suggestion
func (h *TransitionHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	user, err := member(ctx, h.svc, message)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return reply(bot, message.Chat.ID, h.usage())
	}
	suggestionID, ok := parseID(args[0])
	if !ok {
		return reply(bot, message.Chat.ID, h.usage())
	}

	var req service.TransitionRequest
	if h.action == policy.ActionApprove {
		if len(args) < 2 {
			return reply(bot, message.Chat.ID, h.usage())
		}
		listID, ok := parseID(args[1])
		if !ok {
			return reply(bot, message.Chat.ID, h.usage())
		}
		req.ListID = listID
	} else {
		req.DenialReason = strings.Join(args[1:], " ")
	}

	result, err := h.svc.TransitionSuggestion(ctx, suggestionID, h.action, user.ID, req)
	if err != nil {
		return replyOrFail(bot, message.Chat.ID, err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id":       message.Chat.ID,
		"user_id":       user.ID,
		"suggestion_id": suggestionID,
		"action":        string(h.action),
	}).Info("Transitioned suggestion")

	if result.Item != nil {
		return reply(bot, message.Chat.ID, fmt.Sprintf("✅ Added *%s* to your list as item #%d.", escape(result.Item.Name), result.Item.ID))
	}
	return reply(bot, message.Chat.ID, fmt.Sprintf("🗑 Suggestion #%d denied.", suggestionID))
}
