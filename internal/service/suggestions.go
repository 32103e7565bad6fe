package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/familygifts/internal/models"
	"github.com/Kerhoff/familygifts/internal/policy"
	"github.com/Kerhoff/familygifts/internal/repository"
)

// NewSuggestion holds the suggester supplied fields of a gift suggestion.
type NewSuggestion struct {
	TargetUserID int64
	Name         string
	URL          string
	Price        string
	Notes        string
	IsAnonymous  bool
}

// TransitionRequest carries the action specific input of a transition.
type TransitionRequest struct {
	// ListID is the destination list of an approval.
	ListID       int64
	DenialReason string
}

// TransitionResult is the suggestion after a transition and, for
// approvals, the item it became.
type TransitionResult struct {
	Suggestion *models.GiftSuggestion `json:"suggestion,omitempty"`
	Item       *models.GiftItem       `json:"item,omitempty"`
	Deleted    bool                   `json:"deleted,omitempty"`
}

// CreateSuggestion proposes a gift for another member.
func (s *Service) CreateSuggestion(ctx context.Context, suggesterID int64, in NewSuggestion) (*models.GiftSuggestion, error) {
	if _, err := s.GetUser(ctx, suggesterID); err != nil {
		return nil, err
	}
	if in.TargetUserID == suggesterID {
		return nil, validationError("members cannot suggest gifts for themselves")
	}
	if _, err := s.GetUser(ctx, in.TargetUserID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > maxNameLength {
		return nil, validationError("suggestion name must be 1-%d characters", maxNameLength)
	}

	by := suggesterID
	sug, err := s.store.Suggestions().Create(ctx, &models.GiftSuggestion{
		SuggestedByID: &by,
		TargetUserID:  in.TargetUserID,
		Name:          name,
		URL:           strings.TrimSpace(in.URL),
		Price:         strings.TrimSpace(in.Price),
		Notes:         strings.TrimSpace(in.Notes),
		IsAnonymous:   in.IsAnonymous,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create suggestion: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"suggestion_id": sug.ID,
		"target_id":     in.TargetUserID,
		"anonymous":     in.IsAnonymous,
	}).Info("Gift suggestion created")
	return sug, nil
}

// GetSuggestion returns a suggestion to one of its two parties.
func (s *Service) GetSuggestion(ctx context.Context, suggestionID, viewerID int64) (*models.GiftSuggestion, error) {
	sug, err := s.visibleSuggestion(ctx, suggestionID, viewerID)
	if err != nil {
		return nil, err
	}
	redacted := policy.RedactSuggestion(*sug, viewerID)
	return &redacted, nil
}

// ListSuggestionsForTarget returns suggestions addressed to targetID,
// optionally filtered by status, with anonymous suggesters hidden.
func (s *Service) ListSuggestionsForTarget(ctx context.Context, targetID int64, status *models.SuggestionStatus) ([]models.GiftSuggestion, error) {
	rows, err := s.store.Suggestions().GetByTarget(ctx, targetID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestions for user %d: %w", targetID, err)
	}
	out := make([]models.GiftSuggestion, 0, len(rows))
	for _, sug := range rows {
		out = append(out, policy.RedactSuggestion(*sug, targetID))
	}
	return out, nil
}

// ListSuggestionsBySuggester returns the suggestions suggesterID made.
func (s *Service) ListSuggestionsBySuggester(ctx context.Context, suggesterID int64) ([]models.GiftSuggestion, error) {
	rows, err := s.store.Suggestions().GetBySuggester(ctx, suggesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestions by user %d: %w", suggesterID, err)
	}
	out := make([]models.GiftSuggestion, 0, len(rows))
	for _, sug := range rows {
		out = append(out, policy.RedactSuggestion(*sug, suggesterID))
	}
	return out, nil
}

func (s *Service) visibleSuggestion(ctx context.Context, suggestionID, viewerID int64) (*models.GiftSuggestion, error) {
	sug, err := s.store.Suggestions().GetByID(ctx, suggestionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestion %d: %w", suggestionID, err)
	}
	if sug == nil || !policy.CanSeeSuggestion(*sug, viewerID) {
		return nil, fmt.Errorf("suggestion %d: %w", suggestionID, policy.ErrNotFound)
	}
	return sug, nil
}

// TransitionSuggestion applies action to a suggestion on behalf of actorID.
// An approval adds the item to the destination list and records the
// approval in one transaction.
func (s *Service) TransitionSuggestion(ctx context.Context, suggestionID int64, action policy.Action, actorID int64, req TransitionRequest) (*TransitionResult, error) {
	sug, err := s.visibleSuggestion(ctx, suggestionID, actorID)
	if err != nil {
		return nil, err
	}

	payload := policy.TransitionPayload{DenialReason: req.DenialReason, Now: time.Now()}
	if action == policy.ActionApprove && req.ListID != 0 {
		list, err := s.visibleList(ctx, req.ListID, actorID)
		if err != nil {
			return nil, err
		}
		payload.DestinationList = list
	}

	next, err := policy.TransitionSuggestion(*sug, action, actorID, payload)
	if err != nil {
		return nil, err
	}

	log := s.logger.WithFields(logrus.Fields{
		"suggestion_id": sug.ID,
		"action":        string(action),
		"actor_id":      actorID,
	})

	switch action {
	case policy.ActionDelete:
		if err := s.store.Suggestions().Delete(ctx, sug.ID); err != nil {
			return nil, conflictAsTransition(sug.ID, err)
		}
		log.Info("Gift suggestion deleted")
		return &TransitionResult{Deleted: true}, nil

	case policy.ActionDeny:
		updated, err := s.store.Suggestions().Update(ctx, &next)
		if err != nil {
			return nil, conflictAsTransition(sug.ID, err)
		}
		log.Info("Gift suggestion denied")
		redacted := policy.RedactSuggestion(*updated, actorID)
		return &TransitionResult{Suggestion: &redacted}, nil

	default:
		var item *models.GiftItem
		err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
			draft := policy.ItemFromSuggestion(next, payload.DestinationList)
			created, err := tx.Items().Create(ctx, &draft)
			if err != nil {
				return fmt.Errorf("failed to create item from suggestion %d: %w", sug.ID, err)
			}
			item = created
			next.ApprovedItemID = &created.ID
			if _, err := tx.Suggestions().Update(ctx, &next); err != nil {
				return conflictAsTransition(sug.ID, err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		log.WithField("item_id", item.ID).Info("Gift suggestion approved")
		redactedSug := policy.RedactSuggestion(next, actorID)
		redactedItem := s.redactItem(*item, actorID, payload.DestinationList)
		return &TransitionResult{Suggestion: &redactedSug, Item: &redactedItem}, nil
	}
}
