package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/familygifts/internal/metrics"
	"github.com/Kerhoff/familygifts/internal/models"
	"github.com/Kerhoff/familygifts/internal/policy"
	"github.com/Kerhoff/familygifts/internal/repository"
)

// Service is the central business logic layer. Every read goes through the
// same steps: load, check list visibility, redact. Visibility is computed
// per call and never cached.
type Service struct {
	store   repository.Store
	logger  *logrus.Logger
	metrics *metrics.Metrics
}

// New creates a new Service with all required dependencies. m may be nil.
func New(store repository.Store, logger *logrus.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, logger: logger, metrics: m}
}

// EnsureUser retrieves an existing user by Telegram ID, or creates a new one
// if not found. If the user already exists but their profile information has
// changed, it updates the record.
func (s *Service) EnsureUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*models.User, error) {
	username = strings.TrimSpace(username)
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	user, err := s.store.Users().GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup user (telegram_id=%d): %w", telegramID, err)
	}
	if user == nil {
		created, err := s.store.Users().Create(ctx, &models.User{
			TelegramID:       telegramID,
			TelegramUsername: username,
			FirstName:        firstName,
			LastName:         lastName,
		})
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race with a concurrent update from the same account.
			return s.store.Users().GetByTelegramID(ctx, telegramID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create user (telegram_id=%d): %w", telegramID, err)
		}
		s.logger.Infof("Created new user: %s (telegram_id=%d)", created.DisplayName(), telegramID)
		return created, nil
	}

	if user.TelegramUsername == username && user.FirstName == firstName && user.LastName == lastName {
		return user, nil
	}

	user.TelegramUsername = username
	user.FirstName = firstName
	user.LastName = lastName
	user, err = s.store.Users().Update(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to update user (telegram_id=%d): %w", telegramID, err)
	}
	s.logger.Infof("Updated user profile: %s (telegram_id=%d)", user.DisplayName(), telegramID)
	return user, nil
}

// GetUser returns a member by ID.
func (s *Service) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", id, policy.ErrNotFound)
	}
	return user, nil
}

// resolveAccess loads the exceptions of list and resolves them. Mixed sets
// are tolerated but reported.
func (s *Service) resolveAccess(ctx context.Context, list *models.List) (policy.Access, error) {
	rows, err := s.store.Permissions().GetExceptions(ctx, list.ID)
	if err != nil {
		return policy.Access{}, fmt.Errorf("failed to load permissions of list %d: %w", list.ID, err)
	}
	return s.resolve(list, rows), nil
}

func (s *Service) resolve(list *models.List, rows []models.ListPermission) policy.Access {
	access := policy.Resolve(rows)
	if access.Mixed {
		s.logger.WithFields(logrus.Fields{
			"list_id":   list.ID,
			"approvals": access.Approvals,
			"denials":   access.Denials,
			"mode":      access.Mode.String(),
		}).Warn("List has mixed visibility exceptions")
		s.metrics.MixedExceptions()
	}
	return access
}

// visibleList returns the list if viewerID may see it. Missing and hidden
// lists both yield policy.ErrNotFound.
func (s *Service) visibleList(ctx context.Context, listID, viewerID int64) (*models.List, error) {
	list, err := s.store.Lists().GetByID(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to get list %d: %w", listID, err)
	}
	if list == nil {
		return nil, fmt.Errorf("list %d: %w", listID, policy.ErrNotFound)
	}

	access, err := s.resolveAccess(ctx, list)
	if err != nil {
		return nil, err
	}
	allowed := policy.CanView(list, access, viewerID)
	s.metrics.Decision("list", allowed)
	if !allowed {
		return nil, fmt.Errorf("list %d: %w", listID, policy.ErrNotFound)
	}
	return list, nil
}

// ownedList returns the list if actorID owns it. Viewers who can see the
// list get ErrForbidden, everyone else ErrNotFound.
func (s *Service) ownedList(ctx context.Context, listID, actorID int64) (*models.List, error) {
	list, err := s.visibleList(ctx, listID, actorID)
	if err != nil {
		return nil, err
	}
	if list.OwnerID != actorID {
		return nil, fmt.Errorf("list %d is owned by another member: %w", listID, policy.ErrForbidden)
	}
	return list, nil
}

// visibleItem returns the item and its list if viewerID may see the list.
func (s *Service) visibleItem(ctx context.Context, itemID, viewerID int64) (*models.GiftItem, *models.List, error) {
	item, err := s.store.Items().GetByID(ctx, itemID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get gift item %d: %w", itemID, err)
	}
	if item == nil {
		return nil, nil, fmt.Errorf("gift item %d: %w", itemID, policy.ErrNotFound)
	}
	list, err := s.visibleList(ctx, item.ListID, viewerID)
	if errors.Is(err, policy.ErrNotFound) {
		return nil, nil, fmt.Errorf("gift item %d: %w", itemID, policy.ErrNotFound)
	}
	if err != nil {
		return nil, nil, err
	}
	return item, list, nil
}

func (s *Service) redactItem(item models.GiftItem, viewerID int64, list *models.List) models.GiftItem {
	out := policy.RedactItem(item, viewerID, list)
	if item.PurchasedByID != nil && out.PurchasedByID == nil {
		s.metrics.Redacted(string(policy.KindPurchase), 1)
	}
	if item.SuggestedByID != nil && out.SuggestedByID == nil {
		s.metrics.Redacted("attribution", 1)
	}
	return out
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), policy.ErrValidation)
}

// conflictAsTransition turns a lost guarded update into ErrInvalidTransition.
func conflictAsTransition(id int64, err error) error {
	if errors.Is(err, repository.ErrConflict) {
		return fmt.Errorf("suggestion %d is no longer pending: %w", id, policy.ErrInvalidTransition)
	}
	return err
}
