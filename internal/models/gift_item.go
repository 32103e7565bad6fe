package models

import "time"

// GiftItem represents an item on a wish list
type GiftItem struct {
	ID                    int64     `json:"id" db:"id"`
	ListID                int64     `json:"list_id" db:"list_id"`
	OwnerID               int64     `json:"owner_id" db:"owner_id"`
	Name                  string    `json:"name" db:"name"`
	URL                   string    `json:"url" db:"url"`
	Price                 string    `json:"price" db:"price"`
	Notes                 string    `json:"notes" db:"notes"`
	PurchasedByID         *int64    `json:"purchased_by_id" db:"purchased_by_id"`
	PurchasedByName       *string   `json:"purchased_by_name" db:"-"`
	IsGiftCard            bool      `json:"is_gift_card" db:"is_gift_card"`
	IsGroupGift           bool      `json:"is_group_gift" db:"is_group_gift"`
	TargetAmount          int64     `json:"target_amount" db:"target_amount"` // cents, gift cards only
	Archived              bool      `json:"archived" db:"archived"`
	SuggestedByID         *int64    `json:"suggested_by_id" db:"suggested_by_id"`
	SuggestedByName       *string   `json:"suggested_by_name" db:"-"`
	IsAnonymousSuggestion bool      `json:"is_anonymous_suggestion" db:"is_anonymous_suggestion"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`
}

// IsPurchased returns true if someone marked the item as bought
func (i *GiftItem) IsPurchased() bool {
	return i.PurchasedByID != nil
}

// GiftCardPurchase is one member's contribution towards a gift card item.
type GiftCardPurchase struct {
	ID            int64     `json:"id" db:"id"`
	GiftItemID    int64     `json:"gift_item_id" db:"gift_item_id"`
	PurchaserID   int64     `json:"purchaser_id" db:"purchaser_id"`
	PurchaserName string    `json:"purchaser_name" db:"-"`
	Amount        int64     `json:"amount" db:"amount"` // cents, always > 0
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// GiftInterest marks a member as interested in chipping in on a group gift.
// There is at most one row per (GiftItemID, UserID).
type GiftInterest struct {
	ID         int64     `json:"id" db:"id"`
	GiftItemID int64     `json:"gift_item_id" db:"gift_item_id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	UserName   string    `json:"user_name" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// GiftItemComment represents a comment on a gift item
type GiftItemComment struct {
	ID         int64     `json:"id" db:"id"`
	GiftItemID int64     `json:"gift_item_id" db:"gift_item_id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	UserName   string    `json:"user_name" db:"-"`
	Content    string    `json:"content" db:"content"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
