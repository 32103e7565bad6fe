package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/familygifts/internal/models"
)

const (
	alice int64 = 1
	bob   int64 = 2
	carol int64 = 3
	dave  int64 = 4
)

func ptr[T any](v T) *T { return &v }

func TestRedactPurchase(t *testing.T) {
	surprise := &models.List{ID: 1, OwnerID: alice, IsPublic: false}
	tracked := &models.List{ID: 2, OwnerID: alice, IsPublic: true}
	item := models.GiftItem{ID: 7, ListID: 1, OwnerID: alice, PurchasedByID: ptr(bob), PurchasedByName: ptr("@bob")}

	t.Run("owner on surprise list sees nothing", func(t *testing.T) {
		got := RedactPurchase(item, alice, surprise)
		assert.Nil(t, got.PurchasedByID)
		assert.Nil(t, got.PurchasedByName)
	})

	t.Run("purchaser sees themself", func(t *testing.T) {
		got := RedactPurchase(item, bob, surprise)
		require.NotNil(t, got.PurchasedByID)
		assert.Equal(t, bob, *got.PurchasedByID)
		assert.Equal(t, "@bob", *got.PurchasedByName)
	})

	t.Run("other member sees purchaser", func(t *testing.T) {
		got := RedactPurchase(item, carol, surprise)
		require.NotNil(t, got.PurchasedByID)
		assert.Equal(t, bob, *got.PurchasedByID)
	})

	t.Run("owner on tracked list sees purchaser", func(t *testing.T) {
		got := RedactPurchase(item, alice, tracked)
		require.NotNil(t, got.PurchasedByID)
		assert.Equal(t, bob, *got.PurchasedByID)
	})

	t.Run("input is not modified", func(t *testing.T) {
		_ = RedactPurchase(item, alice, surprise)
		require.NotNil(t, item.PurchasedByID)
	})
}

func TestRedactAttribution(t *testing.T) {
	item := models.GiftItem{ID: 1, OwnerID: alice, SuggestedByID: ptr(bob), SuggestedByName: ptr("@bob"), IsAnonymousSuggestion: true}

	got := RedactAttribution(item, alice)
	assert.Nil(t, got.SuggestedByID)
	assert.Nil(t, got.SuggestedByName)

	got = RedactAttribution(item, carol)
	require.NotNil(t, got.SuggestedByID)
	assert.Equal(t, bob, *got.SuggestedByID)

	item.IsAnonymousSuggestion = false
	got = RedactAttribution(item, alice)
	require.NotNil(t, got.SuggestedByID)
}

func TestRedactItem_AppliesBothRules(t *testing.T) {
	list := &models.List{ID: 1, OwnerID: alice}
	item := models.GiftItem{
		ID: 1, OwnerID: alice,
		PurchasedByID: ptr(carol),
		SuggestedByID: ptr(bob), IsAnonymousSuggestion: true,
	}

	got := RedactItem(item, alice, list)
	assert.Nil(t, got.PurchasedByID)
	assert.Nil(t, got.SuggestedByID)

	got = RedactItem(item, dave, list)
	assert.NotNil(t, got.PurchasedByID)
	assert.NotNil(t, got.SuggestedByID)
}

func contributions() []models.GiftCardPurchase {
	return []models.GiftCardPurchase{
		{ID: 1, PurchaserID: alice, Amount: 1000},
		{ID: 2, PurchaserID: bob, Amount: 2500},
		{ID: 3, PurchaserID: carol, Amount: 500},
		{ID: 4, PurchaserID: bob, Amount: 100},
	}
}

func ids(cs []models.GiftCardPurchase) []int64 {
	out := make([]int64, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func TestBuildContributionView(t *testing.T) {
	item := models.GiftItem{ID: 9, OwnerID: alice, IsGiftCard: true, TargetAmount: 5000}

	tests := []struct {
		name       string
		viewer     int64
		isOwner    bool
		public     bool
		wantIDs    []int64
		wantHidden bool
		wantCount  int
	}{
		{name: "owner on surprise list", viewer: alice, isOwner: true, public: false, wantIDs: []int64{2, 3, 4}, wantHidden: true},
		{name: "owner on tracked list", viewer: alice, isOwner: true, public: true, wantIDs: []int64{1, 2, 3, 4}, wantCount: 4},
		{name: "non-owner sees own lines", viewer: bob, isOwner: false, public: false, wantIDs: []int64{2, 4}},
		{name: "non-owner on tracked list sees own lines", viewer: carol, isOwner: false, public: true, wantIDs: []int64{3}},
		{name: "non-owner without contributions", viewer: dave, isOwner: false, public: false, wantIDs: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := BuildContributionView(item, contributions(), tt.viewer, tt.isOwner, tt.public)

			assert.Equal(t, int64(4100), view.Total, "total always counts every contribution")
			assert.Equal(t, int64(5000), view.Target)
			assert.Equal(t, tt.wantCount, view.Count)
			assert.Equal(t, tt.wantIDs, ids(view.Contributors))
			assert.Equal(t, tt.wantHidden, view.OwnContributionHidden)
			assert.Equal(t, int64(900), view.Remaining())
		})
	}
}

func TestBuildContributionView_OwnerWithoutOwnContribution(t *testing.T) {
	item := models.GiftItem{ID: 9, OwnerID: alice, TargetAmount: 100}
	cs := []models.GiftCardPurchase{{ID: 1, PurchaserID: bob, Amount: 300}}

	view := BuildContributionView(item, cs, alice, true, false)
	assert.False(t, view.OwnContributionHidden)
	assert.Len(t, view.Contributors, 1)
	assert.Equal(t, int64(0), view.Remaining())
}

func TestBuildContributionView_Empty(t *testing.T) {
	view := BuildContributionView(models.GiftItem{TargetAmount: 100}, nil, bob, false, false)
	assert.Equal(t, int64(0), view.Total)
	assert.NotNil(t, view.Contributors)
	assert.Empty(t, view.Contributors)
}

func interests() []models.GiftInterest {
	return []models.GiftInterest{
		{ID: 1, UserID: bob},
		{ID: 2, UserID: alice},
		{ID: 3, UserID: carol},
	}
}

func TestFilterInterest(t *testing.T) {
	t.Run("owner on surprise list sees nothing", func(t *testing.T) {
		got := FilterInterest(interests(), alice, true, false)
		assert.Empty(t, got)
		assert.NotNil(t, got)
	})

	t.Run("owner on tracked list sees everyone but themself", func(t *testing.T) {
		got := FilterInterest(interests(), alice, true, true)
		require.Len(t, got, 2)
		assert.Equal(t, bob, got[0].UserID)
		assert.Equal(t, carol, got[1].UserID)
	})

	t.Run("non-owner sees everyone", func(t *testing.T) {
		got := FilterInterest(interests(), dave, false, false)
		assert.Len(t, got, 3)
	})
}

func comments() []models.GiftItemComment {
	return []models.GiftItemComment{
		{ID: 1, UserID: bob, Content: "I'll get the blue one"},
		{ID: 2, UserID: alice, Content: "Size M please"},
		{ID: 3, UserID: carol, Content: "Split it?"},
	}
}

func TestFilterComments(t *testing.T) {
	t.Run("owner on surprise list reads own comments only", func(t *testing.T) {
		got := FilterComments(comments(), alice, true, false)
		require.Len(t, got, 1)
		assert.Equal(t, int64(2), got[0].ID)
	})

	t.Run("owner on tracked list reads everything", func(t *testing.T) {
		assert.Len(t, FilterComments(comments(), alice, true, true), 3)
	})

	t.Run("non-owner reads everything", func(t *testing.T) {
		assert.Len(t, FilterComments(comments(), dave, false, false), 3)
	})
}

func TestSurpriseRedaction_MatchesTypedFunctions(t *testing.T) {
	v := Viewer{ID: alice, IsOwner: true, ListIsPublic: false}

	got, err := SurpriseRedaction(KindComment, comments(), v)
	require.NoError(t, err)
	assert.Equal(t, FilterComments(comments(), alice, true, false), got)

	got, err = SurpriseRedaction(KindInterest, interests(), v)
	require.NoError(t, err)
	assert.Equal(t, FilterInterest(interests(), alice, true, false), got)

	got, err = SurpriseRedaction(KindContribution, contributions(), v)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 4}, ids(got.([]models.GiftCardPurchase)))

	item := models.GiftItem{OwnerID: alice, PurchasedByID: ptr(bob)}
	got, err = SurpriseRedaction(KindPurchase, item, v)
	require.NoError(t, err)
	assert.Nil(t, got.(models.GiftItem).PurchasedByID)
}

func TestSurpriseRedaction_Errors(t *testing.T) {
	_, err := SurpriseRedaction(KindComment, interests(), Viewer{})
	assert.Error(t, err)

	_, err = SurpriseRedaction(ResourceKind("photo"), nil, Viewer{})
	assert.Error(t, err)
}

func TestNewViewer(t *testing.T) {
	list := &models.List{OwnerID: alice, IsPublic: false}

	assert.True(t, NewViewer(list, alice).Surprise())
	assert.False(t, NewViewer(list, bob).Surprise())

	list.IsPublic = true
	assert.False(t, NewViewer(list, alice).Surprise())
	assert.False(t, NewViewer(nil, alice).IsOwner)
}

func TestCanEditContribution(t *testing.T) {
	c := models.GiftCardPurchase{ID: 5, PurchaserID: bob}

	assert.NoError(t, CanEditContribution(c, bob))
	assert.ErrorIs(t, CanEditContribution(c, alice), ErrForbidden)
}
