package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Kerhoff/familygifts/internal/models"
	"github.com/Kerhoff/familygifts/internal/repository"
)

// DBTX is the subset of database/sql used by the repositories.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with it and commits on success. On
// error or panic the transaction is rolled back; panics are rethrown.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cerr)
		}
	}()

	return fn(ctx, tx)
}

// Store is the PostgreSQL implementation of repository.Store.
type Store struct {
	db   *sql.DB
	conn DBTX
}

// NewStore creates a store over a connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, conn: db}
}

func (s *Store) Users() repository.UserRepository { return NewUserRepository(s.conn) }
func (s *Store) Lists() repository.ListRepository { return NewListRepository(s.conn) }
func (s *Store) Permissions() repository.PermissionRepository {
	return NewPermissionRepository(s.db, s.conn)
}
func (s *Store) Items() repository.GiftItemRepository { return NewGiftItemRepository(s.conn) }
func (s *Store) Contributions() repository.ContributionRepository {
	return NewContributionRepository(s.conn)
}
func (s *Store) Interests() repository.InterestRepository { return NewInterestRepository(s.conn) }
func (s *Store) Comments() repository.CommentRepository   { return NewCommentRepository(s.conn) }
func (s *Store) Suggestions() repository.SuggestionRepository {
	return NewSuggestionRepository(s.conn)
}

// WithTx runs fn against a store bound to one transaction. Calls made on a
// store that is already transactional join the running transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if _, inTx := s.conn.(*sql.Tx); inTx {
		return fn(ctx, s)
	}
	return WithTx(ctx, s.db, nil, func(ctx context.Context, tx DBTX) error {
		return fn(ctx, &Store{db: s.db, conn: tx})
	})
}

// displayName builds a user's display name from nullable joined columns.
func displayName(username, firstName, lastName sql.NullString) *string {
	if !username.Valid && !firstName.Valid {
		return nil
	}
	u := models.User{
		TelegramUsername: username.String,
		FirstName:        firstName.String,
		LastName:         lastName.String,
	}
	name := u.DisplayName()
	return &name
}

func nameOrEmpty(name *string) string {
	if name == nil {
		return ""
	}
	return *name
}

func expectOneRow(result sql.Result, what string, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s with ID %d not found", what, id)
	}
	return nil
}
