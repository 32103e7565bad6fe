package models

import "time"

// List is a named wish list owned by one family member.
//
// IsPublic is the "track purchases" flag. It does not decide who may see the
// list (that is the job of ListPermission rows); it decides whether the owner
// may see who bought, contributed to, or talked about their own items. A list
// with IsPublic == false is a surprise list.
type List struct {
	ID          int64     `json:"id" db:"id"`
	OwnerID     int64     `json:"owner_id" db:"owner_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	IsPublic    bool      `json:"is_public" db:"is_public"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	Owner       *User     `json:"owner,omitempty"`
}

// IsSurprise reports whether the owner is kept in the dark about purchases.
func (l *List) IsSurprise() bool {
	return !l.IsPublic
}

// ListPermission is a sparse visibility exception for one user on one list.
// All rows of a list carry the same CanView value: true rows form an
// allow-list, false rows a deny-list. No rows means visible to everyone.
type ListPermission struct {
	ListID  int64 `json:"list_id" db:"list_id"`
	UserID  int64 `json:"user_id" db:"user_id"`
	CanView bool  `json:"can_view" db:"can_view"`
}
