package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/familygifts/internal/models"
	"github.com/Kerhoff/familygifts/internal/repository"
)

func TestInterest_AddIgnoresDuplicates(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInterestRepository(db)

	mock.ExpectExec(`INSERT INTO gift_interests .* ON CONFLICT \(gift_item_id, user_id\) DO NOTHING`).
		WithArgs(int64(5), int64(2), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Add(context.Background(), 5, 2))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInterest_RemoveMissingIsNoop(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInterestRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM gift_interests WHERE gift_item_id = $1 AND user_id = $2`)).
		WithArgs(int64(5), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Remove(context.Background(), 5, 2))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContribution_GetByItem(t *testing.T) {
	db, mock := newMock(t)
	repo := NewContributionRepository(db)
	now := time.Now()

	mock.ExpectQuery(`FROM gift_card_purchases c.*WHERE c\.gift_item_id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "gift_item_id", "purchaser_id", "u", "f", "l", "amount", "created_at", "updated_at"}).
			AddRow(1, 5, 2, "bob", "Bob", "", 1500, now, now).
			AddRow(2, 5, 3, "", "Carol", "King", 500, now, now))

	got, err := repo.GetByItem(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "@bob", got[0].PurchaserName)
	assert.Equal(t, "Carol King", got[1].PurchaserName)
	assert.Equal(t, int64(2000), got[0].Amount+got[1].Amount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSuggestion_UpdateRejectsTerminal(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSuggestionRepository(db)

	mock.ExpectExec(`UPDATE gift_suggestions .* WHERE id = \$1 AND status = 'pending'`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Update(context.Background(), &models.GiftSuggestion{ID: 4, Status: models.SuggestionStatusDenied})
	require.ErrorIs(t, err, repository.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSuggestion_CreateRequiresSuggester(t *testing.T) {
	db, _ := newMock(t)
	repo := NewSuggestionRepository(db)

	_, err := repo.Create(context.Background(), &models.GiftSuggestion{TargetUserID: 1, Name: "x"})
	assert.Error(t, err)
}

func TestUser_CreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`INSERT INTO users`).WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.User{TelegramID: 42})
	require.ErrorIs(t, err, repository.ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RethrowsPanic(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			panic("boom")
		})
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithTxCommits(t *testing.T) {
	db, mock := newMock(t)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM gift_item_comments WHERE id = $1`)).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.WithTx(context.Background(), func(ctx context.Context, tx repository.Store) error {
		return tx.Comments().Delete(ctx, 3)
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
