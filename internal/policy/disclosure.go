package policy

import (
	"fmt"

	"github.com/Kerhoff/familygifts/internal/models"
)

// ResourceKind names the kinds of disclosure data attached to a gift item.
type ResourceKind string

const (
	KindPurchase     ResourceKind = "purchase"
	KindContribution ResourceKind = "contribution"
	KindInterest     ResourceKind = "interest"
	KindComment      ResourceKind = "comment"
)

// Viewer is the request-scoped role of a user looking at one list's items.
type Viewer struct {
	ID           int64
	IsOwner      bool
	ListIsPublic bool
}

// NewViewer derives the viewer's role on list.
func NewViewer(list *models.List, viewerID int64) Viewer {
	return Viewer{
		ID:           viewerID,
		IsOwner:      list != nil && list.OwnerID == viewerID,
		ListIsPublic: list != nil && list.IsPublic,
	}
}

// Surprise reports whether the viewer is the owner of a surprise list, the
// least privileged position for disclosure data.
func (v Viewer) Surprise() bool {
	return v.IsOwner && !v.ListIsPublic
}

// visibleRow is the single rule table behind every row-level redaction.
// authorID is the user who created the row (purchaser, contributor,
// interested member or comment author).
func visibleRow(kind ResourceKind, v Viewer, authorID int64) bool {
	switch kind {
	case KindPurchase:
		return !v.Surprise()
	case KindContribution:
		if !v.IsOwner {
			return authorID == v.ID
		}
		if v.Surprise() {
			return authorID != v.ID
		}
		return true
	case KindInterest:
		if !v.IsOwner {
			return true
		}
		if v.Surprise() {
			return false
		}
		return authorID != v.ID
	case KindComment:
		if v.Surprise() {
			return authorID == v.ID
		}
		return true
	default:
		return false
	}
}

func filterRows[T any](kind ResourceKind, rows []T, v Viewer, author func(T) int64) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if visibleRow(kind, v, author(r)) {
			out = append(out, r)
		}
	}
	return out
}

// SurpriseRedaction applies the redaction rule of kind to rows as seen by v.
// rows must be a models.GiftItem for KindPurchase and a slice of the matching
// model for the other kinds.
func SurpriseRedaction(kind ResourceKind, rows any, v Viewer) (any, error) {
	switch kind {
	case KindPurchase:
		item, ok := rows.(models.GiftItem)
		if !ok {
			break
		}
		return redactPurchase(item, v), nil
	case KindContribution:
		cs, ok := rows.([]models.GiftCardPurchase)
		if !ok {
			break
		}
		return filterRows(kind, cs, v, func(c models.GiftCardPurchase) int64 { return c.PurchaserID }), nil
	case KindInterest:
		is, ok := rows.([]models.GiftInterest)
		if !ok {
			break
		}
		return filterRows(kind, is, v, func(i models.GiftInterest) int64 { return i.UserID }), nil
	case KindComment:
		cs, ok := rows.([]models.GiftItemComment)
		if !ok {
			break
		}
		return filterRows(kind, cs, v, func(c models.GiftItemComment) int64 { return c.UserID }), nil
	default:
		return nil, fmt.Errorf("unknown resource kind %q", kind)
	}
	return nil, fmt.Errorf("unexpected rows %T for resource kind %q", rows, kind)
}

func redactPurchase(item models.GiftItem, v Viewer) models.GiftItem {
	if !visibleRow(KindPurchase, v, 0) {
		item.PurchasedByID = nil
		item.PurchasedByName = nil
	}
	return item
}

// RedactPurchase hides who bought an item from its owner on a surprise list.
// The check is against the item's owner; the list only supplies the flag.
func RedactPurchase(item models.GiftItem, viewerID int64, list *models.List) models.GiftItem {
	v := Viewer{
		ID:           viewerID,
		IsOwner:      viewerID == item.OwnerID,
		ListIsPublic: list != nil && list.IsPublic,
	}
	return redactPurchase(item, v)
}

// RedactAttribution hides the suggester of an item created from an anonymous
// suggestion when the item's owner looks at it. Everyone else sees the name.
func RedactAttribution(item models.GiftItem, viewerID int64) models.GiftItem {
	if item.IsAnonymousSuggestion && viewerID == item.OwnerID {
		item.SuggestedByID = nil
		item.SuggestedByName = nil
	}
	return item
}

// RedactItem applies every item-level redaction for viewerID.
func RedactItem(item models.GiftItem, viewerID int64, list *models.List) models.GiftItem {
	return RedactAttribution(RedactPurchase(item, viewerID, list), viewerID)
}

// ContributionView is the gift card progress shown to one viewer.
type ContributionView struct {
	// Total is the sum of every contribution, including hidden ones.
	Total  int64 `json:"total"`
	Target int64 `json:"target"`
	// Count is the number of contributions behind Total. It is only set for
	// the owner of a tracked list, the one viewer who sees every line.
	Count                 int                       `json:"count,omitempty"`
	Contributors          []models.GiftCardPurchase `json:"contributors"`
	OwnContributionHidden bool                      `json:"own_contribution_hidden"`
}

// BuildContributionView sums all contributions and picks the line items the
// viewer may see. Non-owners only get their own lines, the owner of a
// surprise list gets everyone else's, and the owner of a tracked list gets all.
func BuildContributionView(item models.GiftItem, contributions []models.GiftCardPurchase, viewerID int64, isOwner, listIsPublic bool) ContributionView {
	v := Viewer{ID: viewerID, IsOwner: isOwner, ListIsPublic: listIsPublic}

	view := ContributionView{Target: item.TargetAmount}
	if v.IsOwner && v.ListIsPublic {
		view.Count = len(contributions)
	}
	for _, c := range contributions {
		view.Total += c.Amount
		if v.Surprise() && c.PurchaserID == viewerID {
			view.OwnContributionHidden = true
		}
	}
	view.Contributors = filterRows(KindContribution, contributions, v, func(c models.GiftCardPurchase) int64 {
		return c.PurchaserID
	})
	return view
}

// Remaining returns how much is still missing to reach the target, never negative.
func (cv ContributionView) Remaining() int64 {
	if cv.Total >= cv.Target {
		return 0
	}
	return cv.Target - cv.Total
}

// FilterInterest returns the group gift interest rows the viewer may see.
func FilterInterest(interests []models.GiftInterest, viewerID int64, isOwner, listIsPublic bool) []models.GiftInterest {
	v := Viewer{ID: viewerID, IsOwner: isOwner, ListIsPublic: listIsPublic}
	return filterRows(KindInterest, interests, v, func(i models.GiftInterest) int64 { return i.UserID })
}

// FilterComments returns the comments the viewer may read. On a surprise
// list the owner only reads their own comments.
func FilterComments(comments []models.GiftItemComment, viewerID int64, isOwner, listIsPublic bool) []models.GiftItemComment {
	v := Viewer{ID: viewerID, IsOwner: isOwner, ListIsPublic: listIsPublic}
	return filterRows(KindComment, comments, v, func(c models.GiftItemComment) int64 { return c.UserID })
}

// CanEditContribution allows edits and deletes only by the contribution's purchaser.
func CanEditContribution(c models.GiftCardPurchase, actorID int64) error {
	if c.PurchaserID != actorID {
		return fmt.Errorf("contribution %d belongs to another member: %w", c.ID, ErrForbidden)
	}
	return nil
}
