package policy

import (
	"fmt"
	"strings"
	"time"

	"github.com/Kerhoff/familygifts/internal/models"
)

// Action is something a member does to a gift suggestion.
type Action string

const (
	ActionApprove Action = "approve"
	ActionDeny    Action = "deny"
	ActionDelete  Action = "delete"
)

// ParseAction converts user input into an Action.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionApprove, ActionDeny, ActionDelete:
		return a, nil
	default:
		return "", fmt.Errorf("unknown suggestion action %q: %w", s, ErrValidation)
	}
}

// TransitionPayload carries the action specific input.
type TransitionPayload struct {
	// DestinationList is the list an approved suggestion is added to.
	DestinationList *models.List
	// DenialReason is an optional note attached to a denial.
	DenialReason string
	Now          time.Time
}

// TransitionSuggestion validates and applies action to s on behalf of actorID.
//
// pending -> approved and pending -> denied are performed by the target only;
// a pending suggestion may be deleted by its suggester. Approved and denied
// are terminal. For ActionDelete the returned suggestion is unchanged and the
// caller removes it.
func TransitionSuggestion(s models.GiftSuggestion, action Action, actorID int64, payload TransitionPayload) (models.GiftSuggestion, error) {
	now := payload.Now
	if now.IsZero() {
		now = time.Now()
	}

	switch action {
	case ActionApprove, ActionDeny:
		if s.TargetUserID != actorID {
			return s, fmt.Errorf("suggestion %d is not addressed to user %d: %w", s.ID, actorID, ErrForbidden)
		}
		if !s.IsPending() {
			return s, fmt.Errorf("suggestion %d is already %s: %w", s.ID, s.Status, ErrInvalidTransition)
		}
		if action == ActionApprove {
			list := payload.DestinationList
			if list == nil {
				return s, fmt.Errorf("approving suggestion %d requires a destination list: %w", s.ID, ErrValidation)
			}
			if list.OwnerID != actorID {
				return s, fmt.Errorf("list %d is not owned by user %d: %w", list.ID, actorID, ErrForbidden)
			}
			s.Status = models.SuggestionStatusApproved
		} else {
			s.Status = models.SuggestionStatusDenied
			s.DenialReason = strings.TrimSpace(payload.DenialReason)
		}
		s.UpdatedAt = now
		return s, nil

	case ActionDelete:
		if s.SuggestedByID == nil || *s.SuggestedByID != actorID {
			return s, fmt.Errorf("suggestion %d was made by another member: %w", s.ID, ErrForbidden)
		}
		if !s.IsPending() {
			return s, fmt.Errorf("suggestion %d is already %s: %w", s.ID, s.Status, ErrInvalidTransition)
		}
		return s, nil

	default:
		return s, fmt.Errorf("unknown suggestion action %q: %w", action, ErrValidation)
	}
}

// ItemFromSuggestion builds the gift item an approved suggestion turns into.
// The suggester and the anonymity flag travel with the item so the owner
// stays unaware of anonymous suggesters later on.
func ItemFromSuggestion(s models.GiftSuggestion, list *models.List) models.GiftItem {
	return models.GiftItem{
		ListID:                list.ID,
		OwnerID:               list.OwnerID,
		Name:                  s.Name,
		URL:                   s.URL,
		Price:                 s.Price,
		Notes:                 s.Notes,
		SuggestedByID:         s.SuggestedByID,
		SuggestedByName:       s.SuggestedByName,
		IsAnonymousSuggestion: s.IsAnonymous,
	}
}

// RedactSuggestion hides an anonymous suggester from the suggestion's target.
func RedactSuggestion(s models.GiftSuggestion, viewerID int64) models.GiftSuggestion {
	if s.IsAnonymous && viewerID == s.TargetUserID {
		s.SuggestedByID = nil
		s.SuggestedByName = nil
	}
	return s
}

// CanSeeSuggestion reports whether viewerID is a party to the suggestion.
func CanSeeSuggestion(s models.GiftSuggestion, viewerID int64) bool {
	if s.TargetUserID == viewerID {
		return true
	}
	return s.SuggestedByID != nil && *s.SuggestedByID == viewerID
}
