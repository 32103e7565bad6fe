package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kerhoff/familygifts/internal/models"
	"github.com/Kerhoff/familygifts/internal/repository"
)

const itemSelect = `
		SELECT gi.id, gi.list_id, gi.owner_id, gi.name, gi.url, gi.price, gi.notes,
			gi.purchased_by_id, pu.telegram_username, pu.first_name, pu.last_name,
			gi.is_gift_card, gi.is_group_gift, gi.target_amount, gi.archived,
			gi.suggested_by_id, su.telegram_username, su.first_name, su.last_name,
			gi.is_anonymous_suggestion, gi.created_at, gi.updated_at
		FROM gift_items gi
		LEFT JOIN users pu ON pu.id = gi.purchased_by_id
		LEFT JOIN users su ON su.id = gi.suggested_by_id`

type giftItemRepository struct {
	db DBTX
}

// NewGiftItemRepository creates a new gift item repository
func NewGiftItemRepository(db DBTX) repository.GiftItemRepository {
	return &giftItemRepository{db: db}
}

func scanItem(row interface{ Scan(...any) error }) (*models.GiftItem, error) {
	var (
		item                 models.GiftItem
		purchasedBy          sql.NullInt64
		pUser, pFirst, pLast sql.NullString
		suggestedBy          sql.NullInt64
		sUser, sFirst, sLast sql.NullString
	)
	err := row.Scan(
		&item.ID,
		&item.ListID,
		&item.OwnerID,
		&item.Name,
		&item.URL,
		&item.Price,
		&item.Notes,
		&purchasedBy, &pUser, &pFirst, &pLast,
		&item.IsGiftCard,
		&item.IsGroupGift,
		&item.TargetAmount,
		&item.Archived,
		&suggestedBy, &sUser, &sFirst, &sLast,
		&item.IsAnonymousSuggestion,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if purchasedBy.Valid {
		id := purchasedBy.Int64
		item.PurchasedByID = &id
		item.PurchasedByName = displayName(pUser, pFirst, pLast)
	}
	if suggestedBy.Valid {
		id := suggestedBy.Int64
		item.SuggestedByID = &id
		item.SuggestedByName = displayName(sUser, sFirst, sLast)
	}
	return &item, nil
}

func (r *giftItemRepository) Create(ctx context.Context, item *models.GiftItem) (*models.GiftItem, error) {
	query := `
		INSERT INTO gift_items (list_id, owner_id, name, url, price, notes, is_gift_card, is_group_gift,
			target_amount, archived, suggested_by_id, is_anonymous_suggestion, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	item.Archived = false
	item.PurchasedByID = nil
	item.PurchasedByName = nil

	err := r.db.QueryRowContext(ctx, query,
		item.ListID,
		item.OwnerID,
		item.Name,
		item.URL,
		item.Price,
		item.Notes,
		item.IsGiftCard,
		item.IsGroupGift,
		item.TargetAmount,
		item.Archived,
		item.SuggestedByID,
		item.IsAnonymousSuggestion,
		item.CreatedAt,
		item.UpdatedAt,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create gift item: %w", err)
	}

	return item, nil
}

func (r *giftItemRepository) GetByID(ctx context.Context, id int64) (*models.GiftItem, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx, itemSelect+` WHERE gi.id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get gift item by ID: %w", err)
	}
	return item, nil
}

func (r *giftItemRepository) GetByList(ctx context.Context, listID int64, includeArchived bool) ([]*models.GiftItem, error) {
	query := itemSelect + ` WHERE gi.list_id = $1 AND (gi.archived = false OR $2) ORDER BY gi.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, listID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to query gift items: %w", err)
	}
	defer rows.Close()

	var items []*models.GiftItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gift item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *giftItemRepository) Update(ctx context.Context, item *models.GiftItem) (*models.GiftItem, error) {
	query := `
		UPDATE gift_items
		SET name = $2, url = $3, price = $4, notes = $5, is_gift_card = $6, is_group_gift = $7,
			target_amount = $8, archived = $9, updated_at = $10
		WHERE id = $1
		RETURNING updated_at`

	item.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		item.ID,
		item.Name,
		item.URL,
		item.Price,
		item.Notes,
		item.IsGiftCard,
		item.IsGroupGift,
		item.TargetAmount,
		item.Archived,
		item.UpdatedAt,
	).Scan(&item.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to update gift item: %w", err)
	}

	return item, nil
}

func (r *giftItemRepository) MarkPurchased(ctx context.Context, itemID, purchaserID int64) (bool, error) {
	query := `
		UPDATE gift_items
		SET purchased_by_id = $2, updated_at = $3
		WHERE id = $1 AND purchased_by_id IS NULL`

	result, err := r.db.ExecContext(ctx, query, itemID, purchaserID, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to mark gift item purchased: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

func (r *giftItemRepository) UnmarkPurchased(ctx context.Context, itemID, purchaserID int64) (bool, error) {
	query := `
		UPDATE gift_items
		SET purchased_by_id = NULL, updated_at = $3
		WHERE id = $1 AND purchased_by_id = $2`

	result, err := r.db.ExecContext(ctx, query, itemID, purchaserID, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to unmark gift item purchase: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

func (r *giftItemRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM gift_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete gift item: %w", err)
	}
	return expectOneRow(result, "gift item", id)
}
