package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Kerhoff/familygifts/internal/models"
	"github.com/Kerhoff/familygifts/internal/repository"
)

type userRepository struct{ s *Store }

func (r *userRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	err := r.s.write(func(d *data) error {
		for _, u := range d.users {
			if u.TelegramID == user.TelegramID {
				return fmt.Errorf("user with telegram ID %d already exists: %w", user.TelegramID, repository.ErrDuplicate)
			}
		}
		now := time.Now()
		user.ID = d.newID()
		user.CreatedAt = now
		user.UpdatedAt = now
		user.IsActive = true
		d.users[user.ID] = *user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) find(match func(models.User) bool) *models.User {
	var out *models.User
	r.s.read(func(d *data) {
		for _, u := range sortedValues(d.users, match) {
			out = &u
			return
		}
	})
	return out
}

func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.TelegramID == telegramID }), nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id }), nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool {
		return u.TelegramUsername != "" && strings.EqualFold(u.TelegramUsername, username)
	}), nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	err := r.s.write(func(d *data) error {
		if _, ok := d.users[user.ID]; !ok {
			return fmt.Errorf("failed to update user: user with ID %d not found", user.ID)
		}
		user.UpdatedAt = time.Now()
		d.users[user.ID] = *user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

type listRepository struct{ s *Store }

func (r *listRepository) Create(ctx context.Context, list *models.List) (*models.List, error) {
	_ = r.s.write(func(d *data) error {
		now := time.Now()
		list.ID = d.newID()
		list.CreatedAt = now
		list.UpdatedAt = now
		stored := *list
		stored.Owner = nil
		d.lists[list.ID] = stored
		return nil
	})
	return list, nil
}

func (r *listRepository) GetByID(ctx context.Context, id int64) (*models.List, error) {
	var out *models.List
	r.s.read(func(d *data) {
		if l, ok := d.lists[id]; ok {
			l.Owner = d.owner(l.OwnerID)
			out = &l
		}
	})
	return out, nil
}

func (r *listRepository) filter(keep func(models.List) bool) []*models.List {
	var out []*models.List
	r.s.read(func(d *data) {
		for _, l := range sortedValues(d.lists, keep) {
			l.Owner = d.owner(l.OwnerID)
			out = append(out, &l)
		}
	})
	return out
}

func (r *listRepository) GetAll(ctx context.Context) ([]*models.List, error) {
	return r.filter(func(models.List) bool { return true }), nil
}

func (r *listRepository) GetByOwner(ctx context.Context, ownerID int64) ([]*models.List, error) {
	return r.filter(func(l models.List) bool { return l.OwnerID == ownerID }), nil
}

func (r *listRepository) Update(ctx context.Context, list *models.List) (*models.List, error) {
	err := r.s.write(func(d *data) error {
		cur, ok := d.lists[list.ID]
		if !ok {
			return fmt.Errorf("failed to update list: list with ID %d not found", list.ID)
		}
		cur.Name = list.Name
		cur.Description = list.Description
		cur.IsPublic = list.IsPublic
		cur.UpdatedAt = time.Now()
		d.lists[list.ID] = cur
		list.UpdatedAt = cur.UpdatedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *listRepository) Delete(ctx context.Context, id int64) error {
	return r.s.write(func(d *data) error {
		if _, ok := d.lists[id]; !ok {
			return fmt.Errorf("list with ID %d not found", id)
		}
		delete(d.lists, id)
		delete(d.perms, id)
		for itemID, item := range d.items {
			if item.ListID == id {
				d.deleteItem(itemID)
			}
		}
		return nil
	})
}

type permissionRepository struct{ s *Store }

func (r *permissionRepository) GetExceptions(ctx context.Context, listID int64) ([]models.ListPermission, error) {
	var out []models.ListPermission
	r.s.read(func(d *data) {
		out = append(out, d.perms[listID]...)
	})
	return out, nil
}

func (r *permissionRepository) GetExceptionsForLists(ctx context.Context, listIDs []int64) (map[int64][]models.ListPermission, error) {
	out := make(map[int64][]models.ListPermission, len(listIDs))
	r.s.read(func(d *data) {
		for _, id := range listIDs {
			if rows := d.perms[id]; len(rows) > 0 {
				out[id] = append([]models.ListPermission(nil), rows...)
			}
		}
	})
	return out, nil
}

// ReplaceExceptions swaps the slice under the write lock, so a concurrent
// reader sees either the old set or the new one.
func (r *permissionRepository) ReplaceExceptions(ctx context.Context, listID int64, rows []models.ListPermission) error {
	return r.s.write(func(d *data) error {
		if _, ok := d.lists[listID]; !ok {
			return fmt.Errorf("list with ID %d not found", listID)
		}
		next := make([]models.ListPermission, 0, len(rows))
		for _, p := range rows {
			next = append(next, models.ListPermission{ListID: listID, UserID: p.UserID, CanView: p.CanView})
		}
		sort.Slice(next, func(i, j int) bool { return next[i].UserID < next[j].UserID })
		if len(next) == 0 {
			delete(d.perms, listID)
		} else {
			d.perms[listID] = next
		}
		return nil
	})
}

type giftItemRepository struct{ s *Store }

func (d *data) hydrateItem(item models.GiftItem) *models.GiftItem {
	item.PurchasedByName = d.userNamePtr(item.PurchasedByID)
	item.SuggestedByName = d.userNamePtr(item.SuggestedByID)
	return &item
}

func (d *data) deleteItem(id int64) {
	delete(d.items, id)
	for k, c := range d.contributions {
		if c.GiftItemID == id {
			delete(d.contributions, k)
		}
	}
	for k, in := range d.interests {
		if in.GiftItemID == id {
			delete(d.interests, k)
		}
	}
	for k, c := range d.comments {
		if c.GiftItemID == id {
			delete(d.comments, k)
		}
	}
}

func (r *giftItemRepository) Create(ctx context.Context, item *models.GiftItem) (*models.GiftItem, error) {
	err := r.s.write(func(d *data) error {
		if _, ok := d.lists[item.ListID]; !ok {
			return fmt.Errorf("failed to create gift item: list with ID %d not found", item.ListID)
		}
		now := time.Now()
		item.ID = d.newID()
		item.CreatedAt = now
		item.UpdatedAt = now
		item.Archived = false
		item.PurchasedByID = nil
		item.PurchasedByName = nil
		d.items[item.ID] = *item
		item.SuggestedByName = d.userNamePtr(item.SuggestedByID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *giftItemRepository) GetByID(ctx context.Context, id int64) (*models.GiftItem, error) {
	var out *models.GiftItem
	r.s.read(func(d *data) {
		if item, ok := d.items[id]; ok {
			out = d.hydrateItem(item)
		}
	})
	return out, nil
}

func (r *giftItemRepository) GetByList(ctx context.Context, listID int64, includeArchived bool) ([]*models.GiftItem, error) {
	var out []*models.GiftItem
	r.s.read(func(d *data) {
		for _, item := range sortedValues(d.items, func(i models.GiftItem) bool {
			return i.ListID == listID && (includeArchived || !i.Archived)
		}) {
			out = append(out, d.hydrateItem(item))
		}
	})
	return out, nil
}

func (r *giftItemRepository) Update(ctx context.Context, item *models.GiftItem) (*models.GiftItem, error) {
	err := r.s.write(func(d *data) error {
		cur, ok := d.items[item.ID]
		if !ok {
			return fmt.Errorf("failed to update gift item: gift item with ID %d not found", item.ID)
		}
		cur.Name = item.Name
		cur.URL = item.URL
		cur.Price = item.Price
		cur.Notes = item.Notes
		cur.IsGiftCard = item.IsGiftCard
		cur.IsGroupGift = item.IsGroupGift
		cur.TargetAmount = item.TargetAmount
		cur.Archived = item.Archived
		cur.UpdatedAt = time.Now()
		d.items[item.ID] = cur
		item.UpdatedAt = cur.UpdatedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *giftItemRepository) MarkPurchased(ctx context.Context, itemID, purchaserID int64) (bool, error) {
	var marked bool
	err := r.s.write(func(d *data) error {
		item, ok := d.items[itemID]
		if !ok || item.PurchasedByID != nil {
			return nil
		}
		id := purchaserID
		item.PurchasedByID = &id
		item.UpdatedAt = time.Now()
		d.items[itemID] = item
		marked = true
		return nil
	})
	return marked, err
}

func (r *giftItemRepository) UnmarkPurchased(ctx context.Context, itemID, purchaserID int64) (bool, error) {
	var cleared bool
	err := r.s.write(func(d *data) error {
		item, ok := d.items[itemID]
		if !ok || item.PurchasedByID == nil || *item.PurchasedByID != purchaserID {
			return nil
		}
		item.PurchasedByID = nil
		item.UpdatedAt = time.Now()
		d.items[itemID] = item
		cleared = true
		return nil
	})
	return cleared, err
}

func (r *giftItemRepository) Delete(ctx context.Context, id int64) error {
	return r.s.write(func(d *data) error {
		if _, ok := d.items[id]; !ok {
			return fmt.Errorf("gift item with ID %d not found", id)
		}
		d.deleteItem(id)
		return nil
	})
}

type contributionRepository struct{ s *Store }

func (r *contributionRepository) Create(ctx context.Context, c *models.GiftCardPurchase) (*models.GiftCardPurchase, error) {
	err := r.s.write(func(d *data) error {
		if _, ok := d.items[c.GiftItemID]; !ok {
			return fmt.Errorf("failed to create contribution: gift item with ID %d not found", c.GiftItemID)
		}
		now := time.Now()
		c.ID = d.newID()
		c.CreatedAt = now
		c.UpdatedAt = now
		d.contributions[c.ID] = *c
		c.PurchaserName = d.userName(c.PurchaserID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *contributionRepository) GetByID(ctx context.Context, id int64) (*models.GiftCardPurchase, error) {
	var out *models.GiftCardPurchase
	r.s.read(func(d *data) {
		if c, ok := d.contributions[id]; ok {
			c.PurchaserName = d.userName(c.PurchaserID)
			out = &c
		}
	})
	return out, nil
}

func (r *contributionRepository) GetByItem(ctx context.Context, itemID int64) ([]models.GiftCardPurchase, error) {
	var out []models.GiftCardPurchase
	r.s.read(func(d *data) {
		for _, c := range sortedValues(d.contributions, func(c models.GiftCardPurchase) bool { return c.GiftItemID == itemID }) {
			c.PurchaserName = d.userName(c.PurchaserID)
			out = append(out, c)
		}
	})
	return out, nil
}

func (r *contributionRepository) Update(ctx context.Context, c *models.GiftCardPurchase) (*models.GiftCardPurchase, error) {
	err := r.s.write(func(d *data) error {
		cur, ok := d.contributions[c.ID]
		if !ok {
			return fmt.Errorf("failed to update contribution: contribution with ID %d not found", c.ID)
		}
		cur.Amount = c.Amount
		cur.UpdatedAt = time.Now()
		d.contributions[c.ID] = cur
		c.UpdatedAt = cur.UpdatedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *contributionRepository) Delete(ctx context.Context, id int64) error {
	return r.s.write(func(d *data) error {
		if _, ok := d.contributions[id]; !ok {
			return fmt.Errorf("contribution with ID %d not found", id)
		}
		delete(d.contributions, id)
		return nil
	})
}

type interestRepository struct{ s *Store }

func (r *interestRepository) Add(ctx context.Context, itemID, userID int64) error {
	return r.s.write(func(d *data) error {
		for _, in := range d.interests {
			if in.GiftItemID == itemID && in.UserID == userID {
				return nil
			}
		}
		id := d.newID()
		d.interests[id] = models.GiftInterest{ID: id, GiftItemID: itemID, UserID: userID, CreatedAt: time.Now()}
		return nil
	})
}

func (r *interestRepository) Remove(ctx context.Context, itemID, userID int64) error {
	return r.s.write(func(d *data) error {
		for k, in := range d.interests {
			if in.GiftItemID == itemID && in.UserID == userID {
				delete(d.interests, k)
			}
		}
		return nil
	})
}

func (r *interestRepository) GetByItem(ctx context.Context, itemID int64) ([]models.GiftInterest, error) {
	var out []models.GiftInterest
	r.s.read(func(d *data) {
		for _, in := range sortedValues(d.interests, func(in models.GiftInterest) bool { return in.GiftItemID == itemID }) {
			in.UserName = d.userName(in.UserID)
			out = append(out, in)
		}
	})
	return out, nil
}

type commentRepository struct{ s *Store }

func (r *commentRepository) Create(ctx context.Context, comment *models.GiftItemComment) (*models.GiftItemComment, error) {
	err := r.s.write(func(d *data) error {
		if _, ok := d.items[comment.GiftItemID]; !ok {
			return fmt.Errorf("failed to create comment: gift item with ID %d not found", comment.GiftItemID)
		}
		now := time.Now()
		comment.ID = d.newID()
		comment.CreatedAt = now
		comment.UpdatedAt = now
		d.comments[comment.ID] = *comment
		comment.UserName = d.userName(comment.UserID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*models.GiftItemComment, error) {
	var out *models.GiftItemComment
	r.s.read(func(d *data) {
		if c, ok := d.comments[id]; ok {
			c.UserName = d.userName(c.UserID)
			out = &c
		}
	})
	return out, nil
}

func (r *commentRepository) GetByItem(ctx context.Context, itemID int64) ([]models.GiftItemComment, error) {
	var out []models.GiftItemComment
	r.s.read(func(d *data) {
		for _, c := range sortedValues(d.comments, func(c models.GiftItemComment) bool { return c.GiftItemID == itemID }) {
			c.UserName = d.userName(c.UserID)
			out = append(out, c)
		}
	})
	return out, nil
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	return r.s.write(func(d *data) error {
		if _, ok := d.comments[id]; !ok {
			return fmt.Errorf("comment %d not found", id)
		}
		delete(d.comments, id)
		return nil
	})
}

type suggestionRepository struct{ s *Store }

func (d *data) hydrateSuggestion(s models.GiftSuggestion) *models.GiftSuggestion {
	s.SuggestedByName = d.userNamePtr(s.SuggestedByID)
	return &s
}

func (r *suggestionRepository) Create(ctx context.Context, s *models.GiftSuggestion) (*models.GiftSuggestion, error) {
	if s.SuggestedByID == nil {
		return nil, fmt.Errorf("failed to create suggestion: suggester is required")
	}
	_ = r.s.write(func(d *data) error {
		now := time.Now()
		s.ID = d.newID()
		s.CreatedAt = now
		s.UpdatedAt = now
		s.Status = models.SuggestionStatusPending
		s.DenialReason = ""
		s.ApprovedItemID = nil
		d.suggestions[s.ID] = *s
		s.SuggestedByName = d.userNamePtr(s.SuggestedByID)
		return nil
	})
	return s, nil
}

func (r *suggestionRepository) GetByID(ctx context.Context, id int64) (*models.GiftSuggestion, error) {
	var out *models.GiftSuggestion
	r.s.read(func(d *data) {
		if s, ok := d.suggestions[id]; ok {
			out = d.hydrateSuggestion(s)
		}
	})
	return out, nil
}

// newestFirst matches the ordering of the SQL store.
func (r *suggestionRepository) newestFirst(keep func(models.GiftSuggestion) bool) []*models.GiftSuggestion {
	var out []*models.GiftSuggestion
	r.s.read(func(d *data) {
		rows := sortedValues(d.suggestions, keep)
		for i := len(rows) - 1; i >= 0; i-- {
			out = append(out, d.hydrateSuggestion(rows[i]))
		}
	})
	return out
}

func (r *suggestionRepository) GetByTarget(ctx context.Context, targetUserID int64, status *models.SuggestionStatus) ([]*models.GiftSuggestion, error) {
	return r.newestFirst(func(s models.GiftSuggestion) bool {
		return s.TargetUserID == targetUserID && (status == nil || s.Status == *status)
	}), nil
}

func (r *suggestionRepository) GetBySuggester(ctx context.Context, suggesterID int64) ([]*models.GiftSuggestion, error) {
	return r.newestFirst(func(s models.GiftSuggestion) bool {
		return s.SuggestedByID != nil && *s.SuggestedByID == suggesterID
	}), nil
}

func (r *suggestionRepository) Update(ctx context.Context, s *models.GiftSuggestion) (*models.GiftSuggestion, error) {
	err := r.s.write(func(d *data) error {
		cur, ok := d.suggestions[s.ID]
		if !ok || !cur.IsPending() {
			return fmt.Errorf("suggestion %d is no longer pending: %w", s.ID, repository.ErrConflict)
		}
		cur.Status = s.Status
		cur.DenialReason = s.DenialReason
		cur.ApprovedItemID = s.ApprovedItemID
		cur.UpdatedAt = time.Now()
		d.suggestions[s.ID] = cur
		s.UpdatedAt = cur.UpdatedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *suggestionRepository) Delete(ctx context.Context, id int64) error {
	return r.s.write(func(d *data) error {
		cur, ok := d.suggestions[id]
		if !ok || !cur.IsPending() {
			return fmt.Errorf("suggestion %d is no longer pending: %w", id, repository.ErrConflict)
		}
		delete(d.suggestions, id)
		return nil
	})
}
