package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/familygifts/internal/models"
	"github.com/Kerhoff/familygifts/internal/repository"
)

func seed(t *testing.T, s *Store) (owner *models.User, list *models.List, item *models.GiftItem) {
	t.Helper()
	ctx := context.Background()

	owner, err := s.Users().Create(ctx, &models.User{TelegramID: 100, TelegramUsername: "alice"})
	require.NoError(t, err)
	list, err = s.Lists().Create(ctx, &models.List{OwnerID: owner.ID, Name: "Birthday"})
	require.NoError(t, err)
	item, err = s.Items().Create(ctx, &models.GiftItem{ListID: list.ID, OwnerID: owner.ID, Name: "Card", IsGiftCard: true, TargetAmount: 10000})
	require.NoError(t, err)
	return owner, list, item
}

func TestUsers_DuplicateTelegramID(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.Users().Create(ctx, &models.User{TelegramID: 1})
	require.NoError(t, err)
	_, err = s.Users().Create(ctx, &models.User{TelegramID: 1})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	u, err := s.Users().GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestItems_MarkPurchasedOnce(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, _, item := seed(t, s)

	ok, err := s.Items().MarkPurchased(ctx, item.ID, 7)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Items().MarkPurchased(ctx, item.ID, 8)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Items().UnmarkPurchased(ctx, item.ID, 8)
	require.NoError(t, err)
	assert.False(t, ok, "only the purchaser can clear a purchase")

	ok, err = s.Items().UnmarkPurchased(ctx, item.ID, 7)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestItems_ReturnedValuesAreCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, _, item := seed(t, s)

	got, err := s.Items().GetByID(ctx, item.ID)
	require.NoError(t, err)
	got.Name = "changed"

	again, err := s.Items().GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Card", again.Name)
}

func TestInterests_AreASet(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, _, item := seed(t, s)

	require.NoError(t, s.Interests().Add(ctx, item.ID, 2))
	require.NoError(t, s.Interests().Add(ctx, item.ID, 2))
	require.NoError(t, s.Interests().Remove(ctx, item.ID, 3))

	rows, err := s.Interests().GetByItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSuggestions_TerminalAreImmutable(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	by := int64(2)

	sug, err := s.Suggestions().Create(ctx, &models.GiftSuggestion{SuggestedByID: &by, TargetUserID: 1, Name: "Kite"})
	require.NoError(t, err)

	sug.Status = models.SuggestionStatusDenied
	_, err = s.Suggestions().Update(ctx, sug)
	require.NoError(t, err)

	sug.Status = models.SuggestionStatusApproved
	_, err = s.Suggestions().Update(ctx, sug)
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.ErrorIs(t, s.Suggestions().Delete(ctx, sug.ID), repository.ErrConflict)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, list, _ := seed(t, s)
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		_, err := tx.Items().Create(ctx, &models.GiftItem{ListID: list.ID, Name: "Ghost"})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	items, err := s.Items().GetByList(ctx, list.ID, true)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestWithTx_Commits(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, list, _ := seed(t, s)

	err := s.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		_, err := tx.Items().Create(ctx, &models.GiftItem{ListID: list.ID, Name: "Kite"})
		if err != nil {
			return err
		}
		return tx.WithTx(ctx, func(ctx context.Context, inner repository.Store) error {
			_, err := inner.Items().Create(ctx, &models.GiftItem{ListID: list.ID, Name: "Yoyo"})
			return err
		})
	})
	require.NoError(t, err)

	items, err := s.Items().GetByList(ctx, list.ID, false)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestContributions_ConcurrentTotal(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, _, item := seed(t, s)

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(amount int64) {
			defer wg.Done()
			_, err := s.Contributions().Create(ctx, &models.GiftCardPurchase{GiftItemID: item.ID, PurchaserID: amount, Amount: amount})
			assert.NoError(t, err)
		}(int64(i))
	}
	wg.Wait()

	rows, err := s.Contributions().GetByItem(ctx, item.ID)
	require.NoError(t, err)
	var total int64
	for _, c := range rows {
		total += c.Amount
	}
	assert.Len(t, rows, 50)
	assert.Equal(t, int64(50*51/2), total)
}

func TestPermissions_ReplaceIsAtomicForReaders(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, list, _ := seed(t, s)

	deny := []models.ListPermission{{UserID: 2, CanView: false}, {UserID: 3, CanView: false}}
	require.NoError(t, s.Permissions().ReplaceExceptions(ctx, list.ID, deny))

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			rows, err := s.Permissions().GetExceptions(ctx, list.ID)
			assert.NoError(t, err)
			assert.Len(t, rows, 2, "a reader must never see a half-replaced set")
		}
	}()

	for i := 0; i < 200; i++ {
		next := []models.ListPermission{{UserID: 3, CanView: false}, {UserID: 2, CanView: false}}
		require.NoError(t, s.Permissions().ReplaceExceptions(ctx, list.ID, next))
	}
	close(stop)
	wg.Wait()
}

func TestPermissions_ForLists(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, list, _ := seed(t, s)

	require.NoError(t, s.Permissions().ReplaceExceptions(ctx, list.ID, []models.ListPermission{{UserID: 4, CanView: true}}))

	got, err := s.Permissions().GetExceptionsForLists(ctx, []int64{list.ID, 999})
	require.NoError(t, err)
	assert.Equal(t, []models.ListPermission{{ListID: list.ID, UserID: 4, CanView: true}}, got[list.ID])
	assert.NotContains(t, got, int64(999))

	require.NoError(t, s.Permissions().ReplaceExceptions(ctx, list.ID, nil))
	rows, err := s.Permissions().GetExceptions(ctx, list.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	assert.Error(t, s.Permissions().ReplaceExceptions(ctx, 999, nil))
}

func TestNamesFollowUsers(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, _, item := seed(t, s)

	bob, err := s.Users().Create(ctx, &models.User{TelegramID: 200, FirstName: "Bob"})
	require.NoError(t, err)
	_, err = s.Items().MarkPurchased(ctx, item.ID, bob.ID)
	require.NoError(t, err)

	got, err := s.Items().GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PurchasedByName)
	assert.Equal(t, "Bob", *got.PurchasedByName)
}

func TestLists_CarryOwner(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	owner, list, _ := seed(t, s)

	got, err := s.Lists().GetByID(ctx, list.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Owner)
	assert.Equal(t, owner.ID, got.Owner.ID)
	assert.Equal(t, "@alice", got.Owner.DisplayName())

	all, err := s.Lists().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].Owner)
	assert.Equal(t, "@alice", all[0].Owner.DisplayName())
}
