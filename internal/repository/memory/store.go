// Package memory implements repository.Store in process memory. It backs the
// memory storage driver and the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Kerhoff/familygifts/internal/models"
	"github.com/Kerhoff/familygifts/internal/repository"
)

type data struct {
	nextID        int64
	users         map[int64]models.User
	lists         map[int64]models.List
	perms         map[int64][]models.ListPermission
	items         map[int64]models.GiftItem
	contributions map[int64]models.GiftCardPurchase
	interests     map[int64]models.GiftInterest
	comments      map[int64]models.GiftItemComment
	suggestions   map[int64]models.GiftSuggestion
}

func newData() *data {
	return &data{
		users:         make(map[int64]models.User),
		lists:         make(map[int64]models.List),
		perms:         make(map[int64][]models.ListPermission),
		items:         make(map[int64]models.GiftItem),
		contributions: make(map[int64]models.GiftCardPurchase),
		interests:     make(map[int64]models.GiftInterest),
		comments:      make(map[int64]models.GiftItemComment),
		suggestions:   make(map[int64]models.GiftSuggestion),
	}
}

func cloneMap[T any](m map[int64]T) map[int64]T {
	out := make(map[int64]T, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *data) clone() *data {
	perms := make(map[int64][]models.ListPermission, len(d.perms))
	for k, v := range d.perms {
		perms[k] = append([]models.ListPermission(nil), v...)
	}
	return &data{
		nextID:        d.nextID,
		users:         cloneMap(d.users),
		lists:         cloneMap(d.lists),
		perms:         perms,
		items:         cloneMap(d.items),
		contributions: cloneMap(d.contributions),
		interests:     cloneMap(d.interests),
		comments:      cloneMap(d.comments),
		suggestions:   cloneMap(d.suggestions),
	}
}

func (d *data) newID() int64 {
	d.nextID++
	return d.nextID
}

func (d *data) userName(id int64) string {
	u, ok := d.users[id]
	if !ok {
		return ""
	}
	return u.DisplayName()
}

func (d *data) owner(id int64) *models.User {
	u, ok := d.users[id]
	if !ok {
		return nil
	}
	return &u
}

func (d *data) userNamePtr(id *int64) *string {
	if id == nil {
		return nil
	}
	if _, ok := d.users[*id]; !ok {
		return nil
	}
	name := d.userName(*id)
	return &name
}

type state struct {
	// writeMu serialises writers with transactions so a commit never
	// overwrites a write made while the transaction ran.
	writeMu sync.Mutex
	mu      sync.RWMutex
	d       *data
}

// Store is an in-memory repository.Store.
type Store struct {
	st   *state
	inTx bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{st: &state{d: newData()}}
}

func (s *Store) read(fn func(d *data)) {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	fn(s.st.d)
}

func (s *Store) write(fn func(d *data) error) error {
	s.st.writeMu.Lock()
	defer s.st.writeMu.Unlock()
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return fn(s.st.d)
}

func (s *Store) Users() repository.UserRepository                 { return &userRepository{s} }
func (s *Store) Lists() repository.ListRepository                 { return &listRepository{s} }
func (s *Store) Permissions() repository.PermissionRepository     { return &permissionRepository{s} }
func (s *Store) Items() repository.GiftItemRepository             { return &giftItemRepository{s} }
func (s *Store) Contributions() repository.ContributionRepository { return &contributionRepository{s} }
func (s *Store) Interests() repository.InterestRepository         { return &interestRepository{s} }
func (s *Store) Comments() repository.CommentRepository           { return &commentRepository{s} }
func (s *Store) Suggestions() repository.SuggestionRepository     { return &suggestionRepository{s} }

// WithTx runs fn against a private copy of the data and publishes the copy
// when fn succeeds. Other writers wait until the transaction finishes; readers
// keep seeing the last committed state.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	s.st.writeMu.Lock()
	defer s.st.writeMu.Unlock()

	s.st.mu.RLock()
	snapshot := s.st.d.clone()
	s.st.mu.RUnlock()

	tx := &Store{st: &state{d: snapshot}, inTx: true}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.st.mu.Lock()
	s.st.d = tx.st.d
	s.st.mu.Unlock()
	return nil
}

func sortedValues[T any](m map[int64]T, keep func(T) bool) []T {
	keys := make([]int64, 0, len(m))
	for k, v := range m {
		if keep(v) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}
