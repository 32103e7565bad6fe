package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kerhoff/familygifts/internal/models"
	"github.com/Kerhoff/familygifts/internal/repository"
)

const contributionSelect = `
		SELECT c.id, c.gift_item_id, c.purchaser_id, u.telegram_username, u.first_name, u.last_name,
			c.amount, c.created_at, c.updated_at
		FROM gift_card_purchases c
		LEFT JOIN users u ON u.id = c.purchaser_id`

type contributionRepository struct {
	db DBTX
}

// NewContributionRepository creates a new gift card contribution repository
func NewContributionRepository(db DBTX) repository.ContributionRepository {
	return &contributionRepository{db: db}
}

func scanContribution(row interface{ Scan(...any) error }) (models.GiftCardPurchase, error) {
	var (
		c                  models.GiftCardPurchase
		uname, first, last sql.NullString
	)
	err := row.Scan(&c.ID, &c.GiftItemID, &c.PurchaserID, &uname, &first, &last, &c.Amount, &c.CreatedAt, &c.UpdatedAt)
	c.PurchaserName = nameOrEmpty(displayName(uname, first, last))
	return c, err
}

func (r *contributionRepository) Create(ctx context.Context, c *models.GiftCardPurchase) (*models.GiftCardPurchase, error) {
	query := `
		INSERT INTO gift_card_purchases (gift_item_id, purchaser_id, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		c.GiftItemID,
		c.PurchaserID,
		c.Amount,
		c.CreatedAt,
		c.UpdatedAt,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create contribution: %w", err)
	}
	return c, nil
}

func (r *contributionRepository) GetByID(ctx context.Context, id int64) (*models.GiftCardPurchase, error) {
	c, err := scanContribution(r.db.QueryRowContext(ctx, contributionSelect+` WHERE c.id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contribution by ID: %w", err)
	}
	return &c, nil
}

// GetByItem returns every contribution of an item from a single statement,
// so the caller's total is a consistent snapshot of committed rows.
func (r *contributionRepository) GetByItem(ctx context.Context, itemID int64) ([]models.GiftCardPurchase, error) {
	rows, err := r.db.QueryContext(ctx, contributionSelect+` WHERE c.gift_item_id = $1 ORDER BY c.created_at ASC, c.id ASC`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contributions: %w", err)
	}
	defer rows.Close()

	var out []models.GiftCardPurchase
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *contributionRepository) Update(ctx context.Context, c *models.GiftCardPurchase) (*models.GiftCardPurchase, error) {
	query := `
		UPDATE gift_card_purchases
		SET amount = $2, updated_at = $3
		WHERE id = $1
		RETURNING updated_at`

	c.UpdatedAt = time.Now()
	if err := r.db.QueryRowContext(ctx, query, c.ID, c.Amount, c.UpdatedAt).Scan(&c.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to update contribution: %w", err)
	}
	return c, nil
}

func (r *contributionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM gift_card_purchases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contribution: %w", err)
	}
	return expectOneRow(result, "contribution", id)
}
