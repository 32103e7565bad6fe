package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/familygifts/internal/models"
	"github.com/Kerhoff/familygifts/internal/policy"
)

const maxCommentLength = 2000

// AddContribution records a gift card contribution of amount cents by actorID.
func (s *Service) AddContribution(ctx context.Context, itemID, actorID, amount int64) (*models.GiftCardPurchase, error) {
	item, _, err := s.visibleItem(ctx, itemID, actorID)
	if err != nil {
		return nil, err
	}
	if !item.IsGiftCard {
		return nil, validationError("item %d is not a gift card", itemID)
	}
	if item.Archived {
		return nil, validationError("item %d is archived", itemID)
	}
	if amount <= 0 {
		return nil, validationError("contribution amount must be positive")
	}

	c, err := s.store.Contributions().Create(ctx, &models.GiftCardPurchase{
		GiftItemID:  item.ID,
		PurchaserID: actorID,
		Amount:      amount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add contribution to item %d: %w", itemID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"item_id":         item.ID,
		"contribution_id": c.ID,
	}).Info("Gift card contribution added")
	return c, nil
}

// editableContribution loads a contribution the actor may change. A
// contribution on a list the actor cannot see does not exist for them.
func (s *Service) editableContribution(ctx context.Context, contributionID, actorID int64) (*models.GiftCardPurchase, error) {
	c, err := s.store.Contributions().GetByID(ctx, contributionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contribution %d: %w", contributionID, err)
	}
	if c == nil {
		return nil, fmt.Errorf("contribution %d: %w", contributionID, policy.ErrNotFound)
	}
	if _, _, err := s.visibleItem(ctx, c.GiftItemID, actorID); err != nil {
		return nil, fmt.Errorf("contribution %d: %w", contributionID, err)
	}
	if err := policy.CanEditContribution(*c, actorID); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateContribution changes the amount of the actor's own contribution.
func (s *Service) UpdateContribution(ctx context.Context, contributionID, actorID, amount int64) (*models.GiftCardPurchase, error) {
	c, err := s.editableContribution(ctx, contributionID, actorID)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, validationError("contribution amount must be positive")
	}

	c.Amount = amount
	c, err = s.store.Contributions().Update(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to update contribution %d: %w", contributionID, err)
	}
	return c, nil
}

// DeleteContribution removes the actor's own contribution.
func (s *Service) DeleteContribution(ctx context.Context, contributionID, actorID int64) error {
	if _, err := s.editableContribution(ctx, contributionID, actorID); err != nil {
		return err
	}
	if err := s.store.Contributions().Delete(ctx, contributionID); err != nil {
		return fmt.Errorf("failed to delete contribution %d: %w", contributionID, err)
	}
	return nil
}

// GetContributionView returns the gift card progress as seen by viewerID.
func (s *Service) GetContributionView(ctx context.Context, itemID, viewerID int64) (*policy.ContributionView, error) {
	item, list, err := s.visibleItem(ctx, itemID, viewerID)
	if err != nil {
		return nil, err
	}
	if !item.IsGiftCard {
		return nil, validationError("item %d is not a gift card", itemID)
	}

	contributions, err := s.store.Contributions().GetByItem(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contributions of item %d: %w", itemID, err)
	}

	viewer := policy.NewViewer(list, viewerID)
	view := policy.BuildContributionView(*item, contributions, viewerID, viewer.IsOwner, viewer.ListIsPublic)
	s.metrics.Redacted(string(policy.KindContribution), len(contributions)-len(view.Contributors))
	return &view, nil
}

// ToggleInterest sets or clears viewerID's interest in a group gift and
// returns the interest rows the viewer may see afterwards. Both directions
// are idempotent.
func (s *Service) ToggleInterest(ctx context.Context, itemID, viewerID int64, interested bool) ([]models.GiftInterest, error) {
	item, list, err := s.visibleItem(ctx, itemID, viewerID)
	if err != nil {
		return nil, err
	}
	if !item.IsGroupGift {
		return nil, validationError("item %d is not a group gift", itemID)
	}

	if interested {
		err = s.store.Interests().Add(ctx, item.ID, viewerID)
	} else {
		err = s.store.Interests().Remove(ctx, item.ID, viewerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to toggle interest on item %d: %w", itemID, err)
	}

	interests, err := s.store.Interests().GetByItem(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get interests of item %d: %w", itemID, err)
	}
	viewer := policy.NewViewer(list, viewerID)
	visible := policy.FilterInterest(interests, viewerID, viewer.IsOwner, viewer.ListIsPublic)
	s.metrics.Redacted(string(policy.KindInterest), len(interests)-len(visible))
	return visible, nil
}

// AddComment posts a comment. Seeing the list is the only requirement.
func (s *Service) AddComment(ctx context.Context, itemID, actorID int64, content string) (*models.GiftItemComment, error) {
	item, _, err := s.visibleItem(ctx, itemID, actorID)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > maxCommentLength {
		return nil, validationError("comment must be 1-%d characters", maxCommentLength)
	}

	c, err := s.store.Comments().Create(ctx, &models.GiftItemComment{
		GiftItemID: item.ID,
		UserID:     actorID,
		Content:    content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add comment to item %d: %w", itemID, err)
	}
	return c, nil
}

// ListComments returns the comments of an item the viewer may read.
func (s *Service) ListComments(ctx context.Context, itemID, viewerID int64) ([]models.GiftItemComment, error) {
	item, list, err := s.visibleItem(ctx, itemID, viewerID)
	if err != nil {
		return nil, err
	}

	comments, err := s.store.Comments().GetByItem(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments of item %d: %w", itemID, err)
	}
	viewer := policy.NewViewer(list, viewerID)
	visible := policy.FilterComments(comments, viewerID, viewer.IsOwner, viewer.ListIsPublic)
	s.metrics.Redacted(string(policy.KindComment), len(comments)-len(visible))
	return visible, nil
}

// DeleteComment removes a comment. Only its author may do so; a comment
// hidden from the actor does not exist for them.
func (s *Service) DeleteComment(ctx context.Context, commentID, actorID int64) error {
	c, err := s.store.Comments().GetByID(ctx, commentID)
	if err != nil {
		return fmt.Errorf("failed to get comment %d: %w", commentID, err)
	}
	if c == nil {
		return fmt.Errorf("comment %d: %w", commentID, policy.ErrNotFound)
	}

	_, list, err := s.visibleItem(ctx, c.GiftItemID, actorID)
	if err != nil {
		return fmt.Errorf("comment %d: %w", commentID, err)
	}
	viewer := policy.NewViewer(list, actorID)
	if len(policy.FilterComments([]models.GiftItemComment{*c}, actorID, viewer.IsOwner, viewer.ListIsPublic)) == 0 {
		return fmt.Errorf("comment %d: %w", commentID, policy.ErrNotFound)
	}
	if c.UserID != actorID {
		return fmt.Errorf("comment %d belongs to another member: %w", commentID, policy.ErrForbidden)
	}

	if err := s.store.Comments().Delete(ctx, commentID); err != nil {
		return fmt.Errorf("failed to delete comment %d: %w", commentID, err)
	}
	return nil
}
