package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Kerhoff/familygifts/internal/models"
	"github.com/Kerhoff/familygifts/internal/policy"
	"github.com/Kerhoff/familygifts/internal/repository"
)

// ItemView is one gift item with every disclosure record the viewer may see.
type ItemView struct {
	Item          models.GiftItem          `json:"item"`
	Contributions *policy.ContributionView `json:"contributions,omitempty"`
	Interests     []models.GiftInterest    `json:"interests"`
	Comments      []models.GiftItemComment `json:"comments"`
}

// NewItem holds the owner supplied fields of a gift item.
type NewItem struct {
	Name         string
	URL          string
	Price        string
	Notes        string
	IsGiftCard   bool
	IsGroupGift  bool
	TargetAmount int64
}

// GetItem returns a visible item with its contributions, interests and
// comments, each redacted for viewerID.
func (s *Service) GetItem(ctx context.Context, itemID, viewerID int64) (*ItemView, error) {
	item, list, err := s.visibleItem(ctx, itemID, viewerID)
	if err != nil {
		return nil, err
	}

	var (
		contributions []models.GiftCardPurchase
		interests     []models.GiftInterest
		comments      []models.GiftItemComment
	)
	g, gctx := errgroup.WithContext(ctx)
	if item.IsGiftCard {
		g.Go(func() error {
			var err error
			contributions, err = s.store.Contributions().GetByItem(gctx, item.ID)
			return err
		})
	}
	if item.IsGroupGift {
		g.Go(func() error {
			var err error
			interests, err = s.store.Interests().GetByItem(gctx, item.ID)
			return err
		})
	}
	g.Go(func() error {
		var err error
		comments, err = s.store.Comments().GetByItem(gctx, item.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load gift item %d details: %w", item.ID, err)
	}

	viewer := policy.NewViewer(list, viewerID)
	view := &ItemView{Item: s.redactItem(*item, viewerID, list)}

	if item.IsGiftCard {
		cv := policy.BuildContributionView(*item, contributions, viewerID, viewer.IsOwner, viewer.ListIsPublic)
		s.metrics.Redacted(string(policy.KindContribution), len(contributions)-len(cv.Contributors))
		view.Contributions = &cv
	}

	visibleInterests, err := s.surpriseRedaction(policy.KindInterest, interests, viewer)
	if err != nil {
		return nil, err
	}
	view.Interests = visibleInterests.([]models.GiftInterest)

	visibleComments, err := s.surpriseRedaction(policy.KindComment, comments, viewer)
	if err != nil {
		return nil, err
	}
	view.Comments = visibleComments.([]models.GiftItemComment)

	return view, nil
}

// surpriseRedaction filters rows and counts what was hidden.
func (s *Service) surpriseRedaction(kind policy.ResourceKind, rows any, viewer policy.Viewer) (any, error) {
	out, err := policy.SurpriseRedaction(kind, rows, viewer)
	if err != nil {
		return nil, err
	}
	switch kind {
	case policy.KindInterest:
		s.metrics.Redacted(string(kind), len(rows.([]models.GiftInterest))-len(out.([]models.GiftInterest)))
	case policy.KindComment:
		s.metrics.Redacted(string(kind), len(rows.([]models.GiftItemComment))-len(out.([]models.GiftItemComment)))
	}
	return out, nil
}

// AddItem adds an item to a list. Only the list owner may add items.
func (s *Service) AddItem(ctx context.Context, listID, actorID int64, in NewItem) (*models.GiftItem, error) {
	list, err := s.ownedList(ctx, listID, actorID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > maxNameLength {
		return nil, validationError("item name must be 1-%d characters", maxNameLength)
	}
	if in.IsGiftCard && in.TargetAmount <= 0 {
		return nil, validationError("gift card target amount must be positive")
	}
	if !in.IsGiftCard && in.TargetAmount != 0 {
		return nil, validationError("only gift cards have a target amount")
	}

	item, err := s.store.Items().Create(ctx, &models.GiftItem{
		ListID:       list.ID,
		OwnerID:      list.OwnerID,
		Name:         name,
		URL:          strings.TrimSpace(in.URL),
		Price:        strings.TrimSpace(in.Price),
		Notes:        strings.TrimSpace(in.Notes),
		IsGiftCard:   in.IsGiftCard,
		IsGroupGift:  in.IsGroupGift,
		TargetAmount: in.TargetAmount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add item to list %d: %w", list.ID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"list_id": list.ID,
		"item_id": item.ID,
	}).Info("Gift item added")
	return item, nil
}

// MarkPurchased records actorID as the buyer of an item. The owner cannot
// mark their own items, and an item is bought at most once.
func (s *Service) MarkPurchased(ctx context.Context, itemID, actorID int64) (*models.GiftItem, error) {
	item, list, err := s.visibleItem(ctx, itemID, actorID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID == actorID {
		return nil, fmt.Errorf("owner cannot mark their own item %d: %w", itemID, policy.ErrForbidden)
	}
	if item.Archived {
		return nil, validationError("item %d is archived", itemID)
	}

	ok, err := s.store.Items().MarkPurchased(ctx, item.ID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark item %d purchased: %w", itemID, err)
	}
	if !ok {
		return nil, fmt.Errorf("item %d is already purchased: %w", itemID, repository.ErrConflict)
	}

	s.logger.WithFields(logrus.Fields{
		"item_id":      item.ID,
		"purchaser_id": actorID,
	}).Info("Gift item marked purchased")
	return s.reloadItem(ctx, item.ID, actorID, list)
}

// UnmarkPurchased clears a purchase. Only the purchaser may do so.
func (s *Service) UnmarkPurchased(ctx context.Context, itemID, actorID int64) (*models.GiftItem, error) {
	item, list, err := s.visibleItem(ctx, itemID, actorID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID == actorID {
		return nil, fmt.Errorf("owner cannot change the purchase of item %d: %w", itemID, policy.ErrForbidden)
	}

	ok, err := s.store.Items().UnmarkPurchased(ctx, item.ID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to unmark item %d: %w", itemID, err)
	}
	if !ok {
		return nil, fmt.Errorf("item %d was not purchased by user %d: %w", itemID, actorID, policy.ErrForbidden)
	}
	return s.reloadItem(ctx, item.ID, actorID, list)
}

// ArchiveItem hides an item from the list view or brings it back. Only the
// owner may do so.
func (s *Service) ArchiveItem(ctx context.Context, itemID, actorID int64, archived bool) (*models.GiftItem, error) {
	item, list, err := s.visibleItem(ctx, itemID, actorID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != actorID {
		return nil, fmt.Errorf("item %d is owned by another member: %w", itemID, policy.ErrForbidden)
	}

	item.Archived = archived
	if _, err := s.store.Items().Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to archive item %d: %w", itemID, err)
	}
	return s.reloadItem(ctx, item.ID, actorID, list)
}

func (s *Service) reloadItem(ctx context.Context, itemID, viewerID int64, list *models.List) (*models.GiftItem, error) {
	item, err := s.store.Items().GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload gift item %d: %w", itemID, err)
	}
	if item == nil {
		return nil, fmt.Errorf("gift item %d: %w", itemID, policy.ErrNotFound)
	}
	redacted := s.redactItem(*item, viewerID, list)
	return &redacted, nil
}
