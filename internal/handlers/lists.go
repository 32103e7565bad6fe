package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/familygifts/internal/models"
	"github.com/Kerhoff/familygifts/internal/service"
	"github.com/Kerhoff/familygifts/internal/telegram"
)

// ListsHandler handles /lists and /list <id>
type ListsHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewListsHandler creates a new lists command handler
func NewListsHandler(svc *service.Service, logger *logrus.Logger) *ListsHandler {
	return &ListsHandler{
		svc:    svc,
		logger: logger,
	}
}

// Handle shows every visible list, or one list's items when an id is given
func (h *ListsHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	user, err := member(ctx, h.svc, message)
	if err != nil {
		return err
	}

	log := h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": user.ID,
	})

	if len(args) == 0 {
		lists, err := h.svc.BrowseLists(ctx, user.ID)
		if err != nil {
			return err
		}
		log.WithField("count", len(lists)).Info("Sent visible lists")
		return reply(bot, message.Chat.ID, formatLists(lists, user.ID))
	}

	listID, ok := parseID(args[0])
	if !ok {
		return reply(bot, message.Chat.ID, "❌ Usage: /list <id>")
	}

	view, err := h.svc.GetList(ctx, listID, user.ID)
	if err != nil {
		return replyOrFail(bot, message.Chat.ID, err)
	}

	log.WithField("list_id", listID).Info("Sent list items")
	return reply(bot, message.Chat.ID, formatListView(view, user.ID))
}

func formatLists(lists []*models.List, viewerID int64) string {
	if len(lists) == 0 {
		return "📭 There are no lists you can see yet."
	}

	var b strings.Builder
	b.WriteString("📋 *Wish lists:*\n\n")
	for _, l := range lists {
		fmt.Fprintf(&b, "• #%d %s", l.ID, escape(l.Name))
		switch {
		case l.OwnerID == viewerID:
			b.WriteString(" (yours)")
		case l.Owner != nil:
			fmt.Fprintf(&b, " by %s", escape(l.Owner.DisplayName()))
		}
		b.WriteString("\n")
	}
	b.WriteString("\nUse /list <id> to see the items.")
	return b.String()
}

func formatListView(view *service.ListView, viewerID int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎁 *%s*\n", escape(view.List.Name))
	if view.List.Description != "" {
		fmt.Fprintf(&b, "%s\n", escape(view.List.Description))
	}
	if view.List.OwnerID == viewerID && view.List.IsSurprise() {
		b.WriteString("_Surprise list: purchases stay hidden from you._\n")
	}
	b.WriteString("\n")

	if len(view.Items) == 0 {
		b.WriteString("No items yet.")
		return b.String()
	}

	for _, item := range view.Items {
		b.WriteString(formatItem(item))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatItem(item models.GiftItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "• #%d %s", item.ID, escape(item.Name))
	if item.Price != "" {
		fmt.Fprintf(&b, " - %s", escape(item.Price))
	}

	switch {
	case item.IsGiftCard:
		fmt.Fprintf(&b, " 💳 gift card, target %s", formatCents(item.TargetAmount))
	case item.IsGroupGift:
		b.WriteString(" 👥 group gift")
	}

	if item.IsPurchased() {
		b.WriteString(" ✅ bought")
		if item.PurchasedByName != nil {
			fmt.Fprintf(&b, " by %s", escape(*item.PurchasedByName))
		}
	}

	if item.SuggestedByName != nil {
		fmt.Fprintf(&b, " (suggested by %s)", escape(*item.SuggestedByName))
	}
	return b.String()
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
