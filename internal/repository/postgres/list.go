package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kerhoff/familygifts/internal/models"
	"github.com/Kerhoff/familygifts/internal/repository"
)

const listSelect = `
	SELECT l.id, l.owner_id, l.name, l.description, l.is_public, l.created_at, l.updated_at,
	       u.id, u.telegram_id, u.telegram_username, u.first_name, u.last_name, u.is_active, u.created_at, u.updated_at
	FROM lists l
	JOIN users u ON u.id = l.owner_id`

type listRepository struct {
	db DBTX
}

// NewListRepository creates a new wish list repository
func NewListRepository(db DBTX) repository.ListRepository {
	return &listRepository{db: db}
}

// scanList reads a listSelect row, owner included.
func scanList(row interface{ Scan(...any) error }) (*models.List, error) {
	list := &models.List{Owner: &models.User{}}
	err := row.Scan(
		&list.ID,
		&list.OwnerID,
		&list.Name,
		&list.Description,
		&list.IsPublic,
		&list.CreatedAt,
		&list.UpdatedAt,
		&list.Owner.ID,
		&list.Owner.TelegramID,
		&list.Owner.TelegramUsername,
		&list.Owner.FirstName,
		&list.Owner.LastName,
		&list.Owner.IsActive,
		&list.Owner.CreatedAt,
		&list.Owner.UpdatedAt,
	)
	return list, err
}

func (r *listRepository) Create(ctx context.Context, list *models.List) (*models.List, error) {
	query := `
		INSERT INTO lists (owner_id, name, description, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	list.CreatedAt = now
	list.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		list.OwnerID,
		list.Name,
		list.Description,
		list.IsPublic,
		list.CreatedAt,
		list.UpdatedAt,
	).Scan(&list.ID, &list.CreatedAt, &list.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}

	return list, nil
}

func (r *listRepository) GetByID(ctx context.Context, id int64) (*models.List, error) {
	query := listSelect + ` WHERE l.id = $1`

	list, err := scanList(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get list by ID: %w", err)
	}

	return list, nil
}

func (r *listRepository) query(ctx context.Context, query string, args ...any) ([]*models.List, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lists: %w", err)
	}
	defer rows.Close()

	var lists []*models.List
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, list)
	}

	return lists, rows.Err()
}

func (r *listRepository) GetAll(ctx context.Context) ([]*models.List, error) {
	return r.query(ctx, listSelect+` ORDER BY l.created_at ASC, l.id ASC`)
}

func (r *listRepository) GetByOwner(ctx context.Context, ownerID int64) ([]*models.List, error) {
	return r.query(ctx, listSelect+` WHERE l.owner_id = $1 ORDER BY l.created_at ASC, l.id ASC`, ownerID)
}

func (r *listRepository) Update(ctx context.Context, list *models.List) (*models.List, error) {
	query := `
		UPDATE lists
		SET name = $2, description = $3, is_public = $4, updated_at = $5
		WHERE id = $1
		RETURNING updated_at`

	list.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		list.ID,
		list.Name,
		list.Description,
		list.IsPublic,
		list.UpdatedAt,
	).Scan(&list.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to update list: %w", err)
	}

	return list, nil
}

func (r *listRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	return expectOneRow(result, "list", id)
}
