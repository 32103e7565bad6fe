package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/familygifts/internal/models"
	"github.com/Kerhoff/familygifts/internal/policy"
)

const maxNameLength = 200

// ListView is a list with its active items as seen by one viewer.
type ListView struct {
	List  *models.List      `json:"list"`
	Items []models.GiftItem `json:"items"`
}

// ListUpdate holds the editable fields of a list; nil fields are left alone.
type ListUpdate struct {
	Name        *string
	Description *string
	IsPublic    *bool
}

// PermissionSet is the whole exception set of a list and its resolved mode.
type PermissionSet struct {
	Mode  string                  `json:"mode"`
	Users []int64                 `json:"users"`
	Rows  []models.ListPermission `json:"rows"`
}

func newPermissionSet(access policy.Access, rows []models.ListPermission) PermissionSet {
	if rows == nil {
		rows = []models.ListPermission{}
	}
	users := access.Users()
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return PermissionSet{Mode: access.Mode.String(), Users: users, Rows: rows}
}

// BrowseLists returns every list viewerID may see.
func (s *Service) BrowseLists(ctx context.Context, viewerID int64) ([]*models.List, error) {
	lists, err := s.store.Lists().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get lists: %w", err)
	}

	ids := make([]int64, 0, len(lists))
	for _, l := range lists {
		ids = append(ids, l.ID)
	}
	exceptions, err := s.store.Permissions().GetExceptionsForLists(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load list permissions: %w", err)
	}

	visible := make([]*models.List, 0, len(lists))
	for _, l := range lists {
		allowed := policy.CanView(l, s.resolve(l, exceptions[l.ID]), viewerID)
		s.metrics.Decision("list", allowed)
		if allowed {
			visible = append(visible, l)
		}
	}
	return visible, nil
}

// GetList returns a visible list with its active items redacted for viewerID.
func (s *Service) GetList(ctx context.Context, listID, viewerID int64) (*ListView, error) {
	list, err := s.visibleList(ctx, listID, viewerID)
	if err != nil {
		return nil, err
	}

	items, err := s.store.Items().GetByList(ctx, list.ID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get items of list %d: %w", list.ID, err)
	}

	view := &ListView{List: list, Items: make([]models.GiftItem, 0, len(items))}
	for _, item := range items {
		view.Items = append(view.Items, s.redactItem(*item, viewerID, list))
	}
	return view, nil
}

// CreateList creates a list owned by ownerID.
func (s *Service) CreateList(ctx context.Context, ownerID int64, name, description string, isPublic bool) (*models.List, error) {
	if _, err := s.GetUser(ctx, ownerID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLength {
		return nil, validationError("list name must be 1-%d characters", maxNameLength)
	}

	list, err := s.store.Lists().Create(ctx, &models.List{
		OwnerID:     ownerID,
		Name:        name,
		Description: strings.TrimSpace(description),
		IsPublic:    isPublic,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"list_id":  list.ID,
		"owner_id": ownerID,
		"public":   isPublic,
	}).Info("List created")
	return list, nil
}

// UpdateList edits a list. Only the owner may do so.
func (s *Service) UpdateList(ctx context.Context, listID, actorID int64, upd ListUpdate) (*models.List, error) {
	list, err := s.ownedList(ctx, listID, actorID)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" || len(name) > maxNameLength {
			return nil, validationError("list name must be 1-%d characters", maxNameLength)
		}
		list.Name = name
	}
	if upd.Description != nil {
		list.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.IsPublic != nil {
		list.IsPublic = *upd.IsPublic
	}

	list, err = s.store.Lists().Update(ctx, list)
	if err != nil {
		return nil, fmt.Errorf("failed to update list %d: %w", listID, err)
	}
	return list, nil
}

// GetListPermissions returns the exception set of a list to its owner.
func (s *Service) GetListPermissions(ctx context.Context, listID, actorID int64) (*PermissionSet, error) {
	list, err := s.ownedList(ctx, listID, actorID)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.Permissions().GetExceptions(ctx, list.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load permissions of list %d: %w", list.ID, err)
	}
	set := newPermissionSet(s.resolve(list, rows), rows)
	return &set, nil
}

// ReplaceListPermissions validates rows and swaps them in as the whole
// exception set of the list. Mixed sets, self-exceptions and duplicates are
// rejected with policy.ErrValidation.
func (s *Service) ReplaceListPermissions(ctx context.Context, listID, actorID int64, rows []models.ListPermission) (*PermissionSet, error) {
	list, err := s.ownedList(ctx, listID, actorID)
	if err != nil {
		return nil, err
	}

	normalized := make([]models.ListPermission, 0, len(rows))
	for _, r := range rows {
		normalized = append(normalized, models.ListPermission{ListID: list.ID, UserID: r.UserID, CanView: r.CanView})
	}
	if err := policy.ValidateExceptions(list.OwnerID, normalized); err != nil {
		return nil, err
	}

	if err := s.store.Permissions().ReplaceExceptions(ctx, list.ID, normalized); err != nil {
		return nil, fmt.Errorf("failed to replace permissions of list %d: %w", list.ID, err)
	}

	access := policy.Resolve(normalized)
	s.logger.WithFields(logrus.Fields{
		"list_id": list.ID,
		"mode":    access.Mode.String(),
		"users":   len(normalized),
	}).Info("List permissions replaced")

	set := newPermissionSet(access, normalized)
	return &set, nil
}
