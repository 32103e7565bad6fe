package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/familygifts/internal/models"
)

func perm(listID, userID int64, canView bool) models.ListPermission {
	return models.ListPermission{ListID: listID, UserID: userID, CanView: canView}
}

func TestResolve_Modes(t *testing.T) {
	tests := []struct {
		name      string
		rows      []models.ListPermission
		wantMode  Mode
		wantMixed bool
	}{
		{name: "no rows", rows: nil, wantMode: ModeOpen},
		{name: "only approvals", rows: []models.ListPermission{perm(1, 2, true), perm(1, 3, true)}, wantMode: ModeAllowList},
		{name: "only denials", rows: []models.ListPermission{perm(1, 2, false)}, wantMode: ModeDenyList},
		{name: "mixed, approvals win", rows: []models.ListPermission{perm(1, 2, true), perm(1, 3, true), perm(1, 4, false)}, wantMode: ModeAllowList, wantMixed: true},
		{name: "mixed, tie goes to deny-list", rows: []models.ListPermission{perm(1, 2, true), perm(1, 3, false)}, wantMode: ModeDenyList, wantMixed: true},
		{name: "mixed, denials win", rows: []models.ListPermission{perm(1, 2, true), perm(1, 3, false), perm(1, 4, false)}, wantMode: ModeDenyList, wantMixed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Resolve(tt.rows)
			assert.Equal(t, tt.wantMode, a.Mode)
			assert.Equal(t, tt.wantMixed, a.Mixed)
		})
	}
}

func TestCanViewList_OpenListVisibleToEveryone(t *testing.T) {
	list := &models.List{ID: 1, OwnerID: 10}
	for viewer := int64(1); viewer <= 50; viewer++ {
		assert.True(t, CanViewList(list, nil, viewer), "viewer %d", viewer)
	}
}

func TestCanViewList_AllowListRequiresExplicitRow(t *testing.T) {
	list := &models.List{ID: 1, OwnerID: 10}
	rows := []models.ListPermission{perm(1, 2, true), perm(1, 5, true)}

	for viewer := int64(1); viewer <= 20; viewer++ {
		want := viewer == 2 || viewer == 5 || viewer == list.OwnerID
		assert.Equal(t, want, CanViewList(list, rows, viewer), "viewer %d", viewer)
	}
}

func TestCanViewList_DenyListExcludesOnlyListedUsers(t *testing.T) {
	list := &models.List{ID: 1, OwnerID: 10}
	rows := []models.ListPermission{perm(1, 3, false), perm(1, 7, false)}

	for viewer := int64(1); viewer <= 20; viewer++ {
		want := viewer != 3 && viewer != 7
		assert.Equal(t, want, CanViewList(list, rows, viewer), "viewer %d", viewer)
	}
}

func TestCanViewList_OwnerAlwaysPasses(t *testing.T) {
	list := &models.List{ID: 1, OwnerID: 10}

	assert.True(t, CanViewList(list, []models.ListPermission{perm(1, 2, true)}, 10))
	// A stray row denying the owner must not lock them out.
	assert.True(t, CanViewList(list, []models.ListPermission{perm(1, 10, false)}, 10))
}

func TestCanViewList_DenyListScenario(t *testing.T) {
	const carol, dave, eve = 1, 2, 3
	listB := &models.List{ID: 2, OwnerID: carol}
	rows := []models.ListPermission{perm(2, dave, false)}

	assert.False(t, CanViewList(listB, rows, dave))
	assert.True(t, CanViewList(listB, rows, eve))
}

func TestCanView_NilList(t *testing.T) {
	assert.False(t, CanView(nil, Open(), 1))
}

func TestAccess_MixedFallbackUsesWinningSet(t *testing.T) {
	a := Resolve([]models.ListPermission{perm(1, 2, true), perm(1, 3, true), perm(1, 4, false)})

	require.Equal(t, ModeAllowList, a.Mode)
	assert.True(t, a.Allows(2))
	assert.True(t, a.Allows(3))
	assert.False(t, a.Allows(4))
	assert.False(t, a.Allows(99))
	assert.Equal(t, 2, a.Approvals)
	assert.Equal(t, 1, a.Denials)
	assert.ElementsMatch(t, []int64{2, 3}, a.Users())
}

func TestValidateExceptions(t *testing.T) {
	tests := []struct {
		name    string
		rows    []models.ListPermission
		wantErr bool
		contain string
	}{
		{name: "empty set", rows: nil},
		{name: "allow-list", rows: []models.ListPermission{perm(1, 2, true), perm(1, 3, true)}},
		{name: "deny-list", rows: []models.ListPermission{perm(1, 2, false)}},
		{name: "mixed", rows: []models.ListPermission{perm(1, 2, true), perm(1, 3, false)}, wantErr: true, contain: "allow-list or a deny-list"},
		{name: "owner listed", rows: []models.ListPermission{perm(1, 10, false)}, wantErr: true, contain: "owns the list"},
		{name: "duplicate", rows: []models.ListPermission{perm(1, 2, true), perm(1, 2, true)}, wantErr: true, contain: "more than once"},
		{name: "bad id", rows: []models.ListPermission{perm(1, 0, true)}, wantErr: true, contain: "invalid user id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExceptions(10, tt.rows)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.Contains(t, err.Error(), tt.contain)
		})
	}
}

func TestValidateExceptions_ReportsEveryProblem(t *testing.T) {
	err := ValidateExceptions(10, []models.ListPermission{
		perm(1, 10, true),
		perm(1, 2, false),
		perm(1, 2, false),
	})

	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "owns the list")
	assert.Contains(t, err.Error(), "more than once")
	assert.Contains(t, err.Error(), "allow-list or a deny-list")
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "open", ModeOpen.String())
	assert.Equal(t, "allow_list", ModeAllowList.String())
	assert.Equal(t, "deny_list", ModeDenyList.String())
}
