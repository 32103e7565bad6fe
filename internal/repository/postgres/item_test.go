package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/familygifts/internal/models"
)

var itemColumns = []string{
	"id", "list_id", "owner_id", "name", "url", "price", "notes",
	"purchased_by_id", "pu_username", "pu_first", "pu_last",
	"is_gift_card", "is_group_gift", "target_amount", "archived",
	"suggested_by_id", "su_username", "su_first", "su_last",
	"is_anonymous_suggestion", "created_at", "updated_at",
}

func TestGiftItem_GetByID_JoinsNames(t *testing.T) {
	db, mock := newMock(t)
	repo := NewGiftItemRepository(db)
	now := time.Now()

	mock.ExpectQuery(`FROM gift_items gi.*WHERE gi\.id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(itemColumns).AddRow(
			5, 1, 10, "Camera", "", "", "",
			20, "bob", "Bob", "",
			false, false, 0, false,
			nil, nil, nil, nil,
			false, now, now,
		))

	item, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, item)
	require.NotNil(t, item.PurchasedByID)
	assert.Equal(t, int64(20), *item.PurchasedByID)
	require.NotNil(t, item.PurchasedByName)
	assert.Equal(t, "@bob", *item.PurchasedByName)
	assert.Nil(t, item.SuggestedByID)
	assert.Nil(t, item.SuggestedByName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGiftItem_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewGiftItemRepository(db)

	mock.ExpectQuery(`FROM gift_items gi`).WithArgs(int64(5)).WillReturnRows(sqlmock.NewRows(itemColumns))

	item, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestGiftItem_MarkPurchased(t *testing.T) {
	db, mock := newMock(t)
	repo := NewGiftItemRepository(db)
	q := regexp.QuoteMeta(`WHERE id = $1 AND purchased_by_id IS NULL`)

	mock.ExpectExec(q).WithArgs(int64(5), int64(20), sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.MarkPurchased(context.Background(), 5, 20)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectExec(q).WithArgs(int64(5), int64(21), sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = repo.MarkPurchased(context.Background(), 5, 21)
	require.NoError(t, err)
	assert.False(t, ok, "already purchased items are left alone")

	mock.ExpectExec(q).WithArgs(int64(5), int64(21), sqlmock.AnyArg()).WillReturnError(errors.New("db is down"))
	_, err = repo.MarkPurchased(context.Background(), 5, 21)
	assert.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGiftItem_CreateClearsPurchase(t *testing.T) {
	db, mock := newMock(t)
	repo := NewGiftItemRepository(db)
	now := time.Now()
	purchaser := int64(3)

	mock.ExpectQuery(`INSERT INTO gift_items`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(11, now, now))

	item, err := repo.Create(context.Background(), &models.GiftItem{ListID: 1, OwnerID: 10, Name: "Book", PurchasedByID: &purchaser})
	require.NoError(t, err)
	assert.Equal(t, int64(11), item.ID)
	assert.Nil(t, item.PurchasedByID)
	require.NoError(t, mock.ExpectationsWereMet())
}
