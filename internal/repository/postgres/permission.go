package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Kerhoff/familygifts/internal/models"
	"github.com/Kerhoff/familygifts/internal/repository"
)

type permissionRepository struct {
	db   *sql.DB
	conn DBTX
}

// NewPermissionRepository creates a permission repository. db is used to open
// a transaction for ReplaceExceptions when conn is not one already.
func NewPermissionRepository(db *sql.DB, conn DBTX) repository.PermissionRepository {
	return &permissionRepository{db: db, conn: conn}
}

func (r *permissionRepository) GetExceptions(ctx context.Context, listID int64) ([]models.ListPermission, error) {
	query := `
		SELECT list_id, user_id, can_view
		FROM list_permissions
		WHERE list_id = $1
		ORDER BY user_id ASC`

	rows, err := r.conn.QueryContext(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to query list permissions: %w", err)
	}
	defer rows.Close()

	var perms []models.ListPermission
	for rows.Next() {
		var p models.ListPermission
		if err := rows.Scan(&p.ListID, &p.UserID, &p.CanView); err != nil {
			return nil, fmt.Errorf("failed to scan list permission: %w", err)
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func (r *permissionRepository) GetExceptionsForLists(ctx context.Context, listIDs []int64) (map[int64][]models.ListPermission, error) {
	out := make(map[int64][]models.ListPermission, len(listIDs))
	if len(listIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT list_id, user_id, can_view
		FROM list_permissions
		WHERE list_id = ANY($1)
		ORDER BY list_id ASC, user_id ASC`

	rows, err := r.conn.QueryContext(ctx, query, pq.Array(listIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query list permissions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.ListPermission
		if err := rows.Scan(&p.ListID, &p.UserID, &p.CanView); err != nil {
			return nil, fmt.Errorf("failed to scan list permission: %w", err)
		}
		out[p.ListID] = append(out[p.ListID], p)
	}
	return out, rows.Err()
}

func (r *permissionRepository) ReplaceExceptions(ctx context.Context, listID int64, perms []models.ListPermission) error {
	if _, inTx := r.conn.(*sql.Tx); inTx || r.db == nil {
		return replaceExceptions(ctx, r.conn, listID, perms)
	}
	return WithTx(ctx, r.db, nil, func(ctx context.Context, tx DBTX) error {
		return replaceExceptions(ctx, tx, listID, perms)
	})
}

// replaceExceptions must run inside a transaction. The list row is locked so
// concurrent replacements of the same list are serialised.
func replaceExceptions(ctx context.Context, tx DBTX, listID int64, perms []models.ListPermission) error {
	var locked int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM lists WHERE id = $1 FOR UPDATE`, listID).Scan(&locked); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("list with ID %d not found", listID)
		}
		return fmt.Errorf("failed to lock list: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM list_permissions WHERE list_id = $1`, listID); err != nil {
		return fmt.Errorf("failed to clear list permissions: %w", err)
	}

	for _, p := range perms {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO list_permissions (list_id, user_id, can_view) VALUES ($1, $2, $3)`,
			listID, p.UserID, p.CanView,
		)
		if err != nil {
			return fmt.Errorf("failed to insert list permission for user %d: %w", p.UserID, err)
		}
	}
	return nil
}
