package repository

import (
	"context"

	"github.com/Kerhoff/familygifts/internal/models"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
}

// ListRepository defines the interface for wish list operations
type ListRepository interface {
	Create(ctx context.Context, list *models.List) (*models.List, error)
	GetByID(ctx context.Context, id int64) (*models.List, error)
	GetAll(ctx context.Context) ([]*models.List, error)
	GetByOwner(ctx context.Context, ownerID int64) ([]*models.List, error)
	Update(ctx context.Context, list *models.List) (*models.List, error)
	Delete(ctx context.Context, id int64) error
}

// PermissionRepository persists the sparse visibility exceptions of lists.
type PermissionRepository interface {
	GetExceptions(ctx context.Context, listID int64) ([]models.ListPermission, error)
	GetExceptionsForLists(ctx context.Context, listIDs []int64) (map[int64][]models.ListPermission, error)
	// ReplaceExceptions swaps the whole exception set of a list atomically.
	// Readers never observe the empty intermediate state.
	ReplaceExceptions(ctx context.Context, listID int64, rows []models.ListPermission) error
}

// GiftItemRepository defines the interface for gift item operations
type GiftItemRepository interface {
	Create(ctx context.Context, item *models.GiftItem) (*models.GiftItem, error)
	GetByID(ctx context.Context, id int64) (*models.GiftItem, error)
	GetByList(ctx context.Context, listID int64, includeArchived bool) ([]*models.GiftItem, error)
	Update(ctx context.Context, item *models.GiftItem) (*models.GiftItem, error)
	// MarkPurchased sets the purchaser if the item is not purchased yet and
	// reports whether it did.
	MarkPurchased(ctx context.Context, itemID, purchaserID int64) (bool, error)
	// UnmarkPurchased clears the purchase if it was made by purchaserID.
	UnmarkPurchased(ctx context.Context, itemID, purchaserID int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

// ContributionRepository defines the interface for gift card contributions
type ContributionRepository interface {
	Create(ctx context.Context, c *models.GiftCardPurchase) (*models.GiftCardPurchase, error)
	GetByID(ctx context.Context, id int64) (*models.GiftCardPurchase, error)
	GetByItem(ctx context.Context, itemID int64) ([]models.GiftCardPurchase, error)
	Update(ctx context.Context, c *models.GiftCardPurchase) (*models.GiftCardPurchase, error)
	Delete(ctx context.Context, id int64) error
}

// InterestRepository stores group gift interest as a set per item.
type InterestRepository interface {
	// Add is a no-op when the user is already interested.
	Add(ctx context.Context, itemID, userID int64) error
	// Remove is a no-op when the user is not interested.
	Remove(ctx context.Context, itemID, userID int64) error
	GetByItem(ctx context.Context, itemID int64) ([]models.GiftInterest, error)
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.GiftItemComment) (*models.GiftItemComment, error)
	GetByID(ctx context.Context, id int64) (*models.GiftItemComment, error)
	GetByItem(ctx context.Context, itemID int64) ([]models.GiftItemComment, error)
	Delete(ctx context.Context, id int64) error
}

// SuggestionRepository defines the interface for gift suggestion operations
type SuggestionRepository interface {
	Create(ctx context.Context, s *models.GiftSuggestion) (*models.GiftSuggestion, error)
	GetByID(ctx context.Context, id int64) (*models.GiftSuggestion, error)
	GetByTarget(ctx context.Context, targetUserID int64, status *models.SuggestionStatus) ([]*models.GiftSuggestion, error)
	GetBySuggester(ctx context.Context, suggesterID int64) ([]*models.GiftSuggestion, error)
	Update(ctx context.Context, s *models.GiftSuggestion) (*models.GiftSuggestion, error)
	Delete(ctx context.Context, id int64) error
}

// Store bundles every repository over one connection or transaction.
type Store interface {
	Users() UserRepository
	Lists() ListRepository
	Permissions() PermissionRepository
	Items() GiftItemRepository
	Contributions() ContributionRepository
	Interests() InterestRepository
	Comments() CommentRepository
	Suggestions() SuggestionRepository

	// WithTx runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
