package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kerhoff/familygifts/internal/models"
	"github.com/Kerhoff/familygifts/internal/repository"
)

type interestRepository struct {
	db DBTX
}

// NewInterestRepository creates a new group gift interest repository
func NewInterestRepository(db DBTX) repository.InterestRepository {
	return &interestRepository{db: db}
}

func (r *interestRepository) Add(ctx context.Context, itemID, userID int64) error {
	query := `
		INSERT INTO gift_interests (gift_item_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (gift_item_id, user_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, itemID, userID, time.Now()); err != nil {
		return fmt.Errorf("failed to add interest: %w", err)
	}
	return nil
}

func (r *interestRepository) Remove(ctx context.Context, itemID, userID int64) error {
	query := `DELETE FROM gift_interests WHERE gift_item_id = $1 AND user_id = $2`

	if _, err := r.db.ExecContext(ctx, query, itemID, userID); err != nil {
		return fmt.Errorf("failed to remove interest: %w", err)
	}
	return nil
}

func (r *interestRepository) GetByItem(ctx context.Context, itemID int64) ([]models.GiftInterest, error) {
	query := `
		SELECT i.id, i.gift_item_id, i.user_id, u.telegram_username, u.first_name, u.last_name, i.created_at
		FROM gift_interests i
		LEFT JOIN users u ON u.id = i.user_id
		WHERE i.gift_item_id = $1
		ORDER BY i.created_at ASC, i.id ASC`

	rows, err := r.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query interests: %w", err)
	}
	defer rows.Close()

	var out []models.GiftInterest
	for rows.Next() {
		var (
			in                 models.GiftInterest
			uname, first, last sql.NullString
		)
		if err := rows.Scan(&in.ID, &in.GiftItemID, &in.UserID, &uname, &first, &last, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan interest: %w", err)
		}
		in.UserName = nameOrEmpty(displayName(uname, first, last))
		out = append(out, in)
	}
	return out, rows.Err()
}
