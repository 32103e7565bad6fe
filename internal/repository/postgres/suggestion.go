package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kerhoff/familygifts/internal/models"
	"github.com/Kerhoff/familygifts/internal/repository"
)

const suggestionSelect = `
		SELECT s.id, s.suggested_by_id, u.telegram_username, u.first_name, u.last_name,
			s.target_user_id, s.name, s.url, s.price, s.notes, s.is_anonymous, s.status,
			s.denial_reason, s.approved_item_id, s.created_at, s.updated_at
		FROM gift_suggestions s
		LEFT JOIN users u ON u.id = s.suggested_by_id`

type suggestionRepository struct {
	db DBTX
}

// NewSuggestionRepository creates a new gift suggestion repository
func NewSuggestionRepository(db DBTX) repository.SuggestionRepository {
	return &suggestionRepository{db: db}
}

func scanSuggestion(row interface{ Scan(...any) error }) (*models.GiftSuggestion, error) {
	var (
		s                  models.GiftSuggestion
		suggestedBy        int64
		uname, first, last sql.NullString
		approvedItem       sql.NullInt64
	)
	err := row.Scan(
		&s.ID,
		&suggestedBy, &uname, &first, &last,
		&s.TargetUserID,
		&s.Name,
		&s.URL,
		&s.Price,
		&s.Notes,
		&s.IsAnonymous,
		&s.Status,
		&s.DenialReason,
		&approvedItem,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.SuggestedByID = &suggestedBy
	s.SuggestedByName = displayName(uname, first, last)
	if approvedItem.Valid {
		id := approvedItem.Int64
		s.ApprovedItemID = &id
	}
	return &s, nil
}

func (r *suggestionRepository) Create(ctx context.Context, s *models.GiftSuggestion) (*models.GiftSuggestion, error) {
	if s.SuggestedByID == nil {
		return nil, fmt.Errorf("failed to create suggestion: suggester is required")
	}

	query := `
		INSERT INTO gift_suggestions (suggested_by_id, target_user_id, name, url, price, notes,
			is_anonymous, status, denial_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, '', $9, $10)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	s.Status = models.SuggestionStatusPending

	err := r.db.QueryRowContext(ctx, query,
		*s.SuggestedByID,
		s.TargetUserID,
		s.Name,
		s.URL,
		s.Price,
		s.Notes,
		s.IsAnonymous,
		s.Status,
		s.CreatedAt,
		s.UpdatedAt,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create suggestion: %w", err)
	}
	return s, nil
}

func (r *suggestionRepository) GetByID(ctx context.Context, id int64) (*models.GiftSuggestion, error) {
	s, err := scanSuggestion(r.db.QueryRowContext(ctx, suggestionSelect+` WHERE s.id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get suggestion by ID: %w", err)
	}
	return s, nil
}

func (r *suggestionRepository) query(ctx context.Context, query string, args ...any) ([]*models.GiftSuggestion, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query suggestions: %w", err)
	}
	defer rows.Close()

	var out []*models.GiftSuggestion
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *suggestionRepository) GetByTarget(ctx context.Context, targetUserID int64, status *models.SuggestionStatus) ([]*models.GiftSuggestion, error) {
	if status != nil {
		return r.query(ctx, suggestionSelect+` WHERE s.target_user_id = $1 AND s.status = $2 ORDER BY s.created_at DESC`, targetUserID, *status)
	}
	return r.query(ctx, suggestionSelect+` WHERE s.target_user_id = $1 ORDER BY s.created_at DESC`, targetUserID)
}

func (r *suggestionRepository) GetBySuggester(ctx context.Context, suggesterID int64) ([]*models.GiftSuggestion, error) {
	return r.query(ctx, suggestionSelect+` WHERE s.suggested_by_id = $1 ORDER BY s.created_at DESC`, suggesterID)
}

// Update persists a state transition. The status guard keeps terminal
// suggestions immutable even if two requests race.
func (r *suggestionRepository) Update(ctx context.Context, s *models.GiftSuggestion) (*models.GiftSuggestion, error) {
	query := `
		UPDATE gift_suggestions
		SET status = $2, denial_reason = $3, approved_item_id = $4, updated_at = $5
		WHERE id = $1 AND status = 'pending'`

	s.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query, s.ID, s.Status, s.DenialReason, s.ApprovedItemID, s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update suggestion: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("suggestion %d is no longer pending: %w", s.ID, repository.ErrConflict)
	}
	return s, nil
}

func (r *suggestionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM gift_suggestions WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return fmt.Errorf("failed to delete suggestion: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("suggestion %d is no longer pending: %w", id, repository.ErrConflict)
	}
	return nil
}
