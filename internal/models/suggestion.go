package models

import "time"

// SuggestionStatus represents the state of a gift suggestion
type SuggestionStatus string

const (
	SuggestionStatusPending  SuggestionStatus = "pending"
	SuggestionStatusApproved SuggestionStatus = "approved"
	SuggestionStatusDenied   SuggestionStatus = "denied"
)

// GiftSuggestion is a gift idea one member proposes for another member's
// wish list. The target approves it into one of their lists or denies it.
type GiftSuggestion struct {
	ID              int64            `json:"id" db:"id"`
	SuggestedByID   *int64           `json:"suggested_by_id" db:"suggested_by_id"`
	SuggestedByName *string          `json:"suggested_by_name" db:"-"`
	TargetUserID    int64            `json:"target_user_id" db:"target_user_id"`
	Name            string           `json:"name" db:"name"`
	URL             string           `json:"url" db:"url"`
	Price           string           `json:"price" db:"price"`
	Notes           string           `json:"notes" db:"notes"`
	IsAnonymous     bool             `json:"is_anonymous" db:"is_anonymous"`
	Status          SuggestionStatus `json:"status" db:"status"`
	DenialReason    string           `json:"denial_reason" db:"denial_reason"`
	ApprovedItemID  *int64           `json:"approved_item_id" db:"approved_item_id"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" db:"updated_at"`
}

// IsPending returns true if the target has not acted on the suggestion yet
func (s *GiftSuggestion) IsPending() bool {
	return s.Status == SuggestionStatusPending
}

// IsTerminal returns true once the suggestion was approved or denied
func (s *GiftSuggestion) IsTerminal() bool {
	return s.Status == SuggestionStatusApproved || s.Status == SuggestionStatusDenied
}
