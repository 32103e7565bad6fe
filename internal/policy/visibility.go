// Package policy decides who may see a wish list and which parts of its
// contents are disclosed to each viewer. Every function in this package is a
// pure computation over already loaded rows.
package policy

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/Kerhoff/familygifts/internal/models"
)

// Mode is the visibility mode inferred from a list's exception rows.
type Mode int

const (
	// ModeOpen means the list has no exceptions and everybody may see it.
	ModeOpen Mode = iota
	// ModeAllowList means only explicitly allowed users may see the list.
	ModeAllowList
	// ModeDenyList means everybody except explicitly denied users may see the list.
	ModeDenyList
)

func (m Mode) String() string {
	switch m {
	case ModeAllowList:
		return "allow_list"
	case ModeDenyList:
		return "deny_list"
	default:
		return "open"
	}
}

// Access is the resolved visibility of one list: Open, AllowList(users) or
// DenyList(users). It is computed once per list fetch.
type Access struct {
	Mode  Mode
	users map[int64]struct{}

	// Mixed is set when the stored rows carried both signs and the mode was
	// picked by majority. Approvals and Denials hold the raw counts.
	Mixed     bool
	Approvals int
	Denials   int
}

// Open returns the access value of a list without exceptions.
func Open() Access {
	return Access{Mode: ModeOpen}
}

// AllowList returns access restricted to the given users.
func AllowList(userIDs ...int64) Access {
	return Access{Mode: ModeAllowList, users: toSet(userIDs), Approvals: len(userIDs)}
}

// DenyList returns access for everybody except the given users.
func DenyList(userIDs ...int64) Access {
	return Access{Mode: ModeDenyList, users: toSet(userIDs), Denials: len(userIDs)}
}

// Resolve classifies a list's exception rows.
//
// Rows of both signs should never be stored; when they are, the larger group
// wins (approvals must strictly outnumber denials to yield an allow-list) and
// Mixed is set so the caller can report the anomaly.
func Resolve(exceptions []models.ListPermission) Access {
	if len(exceptions) == 0 {
		return Open()
	}

	var approved, denied []int64
	for _, e := range exceptions {
		if e.CanView {
			approved = append(approved, e.UserID)
		} else {
			denied = append(denied, e.UserID)
		}
	}

	var a Access
	switch {
	case len(denied) == 0:
		a = AllowList(approved...)
	case len(approved) == 0:
		a = DenyList(denied...)
	case len(approved) > len(denied):
		a = AllowList(approved...)
		a.Mixed = true
	default:
		a = DenyList(denied...)
		a.Mixed = true
	}
	a.Approvals = len(approved)
	a.Denials = len(denied)
	return a
}

// Allows reports whether a non-owner viewer passes this access value.
func (a Access) Allows(viewerID int64) bool {
	_, listed := a.users[viewerID]
	switch a.Mode {
	case ModeAllowList:
		return listed
	case ModeDenyList:
		return !listed
	default:
		return true
	}
}

// Users returns the user IDs named by the access value, in no particular order.
func (a Access) Users() []int64 {
	out := make([]int64, 0, len(a.users))
	for id := range a.users {
		out = append(out, id)
	}
	return out
}

// CanView reports whether viewerID may see the list. The owner always may.
func CanView(list *models.List, access Access, viewerID int64) bool {
	if list == nil {
		return false
	}
	if viewerID == list.OwnerID {
		return true
	}
	return access.Allows(viewerID)
}

// CanViewList resolves the exceptions and checks the viewer in one call.
func CanViewList(list *models.List, exceptions []models.ListPermission, viewerID int64) bool {
	return CanView(list, Resolve(exceptions), viewerID)
}

// ValidateExceptions checks a replacement permission set before it is
// written. All rows must share one sign, name each user at most once and
// never name the owner. Every problem found is reported.
func ValidateExceptions(ownerID int64, rows []models.ListPermission) error {
	var result *multierror.Error

	seen := make(map[int64]struct{}, len(rows))
	var approvals, denials int
	for _, r := range rows {
		if r.CanView {
			approvals++
		} else {
			denials++
		}
		if r.UserID == ownerID {
			result = multierror.Append(result, fmt.Errorf("user %d owns the list and cannot be listed", r.UserID))
		}
		if r.UserID <= 0 {
			result = multierror.Append(result, fmt.Errorf("invalid user id %d", r.UserID))
		}
		if _, dup := seen[r.UserID]; dup {
			result = multierror.Append(result, fmt.Errorf("user %d is listed more than once", r.UserID))
		}
		seen[r.UserID] = struct{}{}
	}
	if approvals > 0 && denials > 0 {
		result = multierror.Append(result,
			fmt.Errorf("permissions mix %d allowed and %d denied users; use either an allow-list or a deny-list", approvals, denials))
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
