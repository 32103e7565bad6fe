package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kerhoff/familygifts/internal/models"
	"github.com/Kerhoff/familygifts/internal/repository"
)

const commentSelect = `
		SELECT c.id, c.gift_item_id, c.user_id, u.telegram_username, u.first_name, u.last_name,
			c.content, c.created_at, c.updated_at
		FROM gift_item_comments c
		LEFT JOIN users u ON u.id = c.user_id`

type commentRepository struct {
	db DBTX
}

func NewCommentRepository(db DBTX) repository.CommentRepository {
	return &commentRepository{db: db}
}

func scanComment(row interface{ Scan(...any) error }) (models.GiftItemComment, error) {
	var (
		c                  models.GiftItemComment
		uname, first, last sql.NullString
	)
	err := row.Scan(&c.ID, &c.GiftItemID, &c.UserID, &uname, &first, &last, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	c.UserName = nameOrEmpty(displayName(uname, first, last))
	return c, err
}

func (r *commentRepository) Create(ctx context.Context, comment *models.GiftItemComment) (*models.GiftItemComment, error) {
	query := `INSERT INTO gift_item_comments (gift_item_id, user_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	err := r.db.QueryRowContext(ctx, query,
		comment.GiftItemID, comment.UserID, comment.Content, comment.CreatedAt, comment.UpdatedAt,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*models.GiftItemComment, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx, commentSelect+` WHERE c.id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get comment by ID: %w", err)
	}
	return &c, nil
}

func (r *commentRepository) GetByItem(ctx context.Context, itemID int64) ([]models.GiftItemComment, error) {
	rows, err := r.db.QueryContext(ctx, commentSelect+` WHERE c.gift_item_id = $1 ORDER BY c.created_at ASC, c.id ASC`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	var comments []models.GiftItemComment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM gift_item_comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("comment %d not found", id)
	}
	return nil
}
