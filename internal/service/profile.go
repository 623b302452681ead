package service

import (
	"context"
	"fmt"
	"time"

	"github.com/chefhut/storefront/internal/apiclient"
	"github.com/chefhut/storefront/internal/cache"
	"github.com/chefhut/storefront/internal/dto"
	"github.com/chefhut/storefront/internal/model"
	"github.com/chefhut/storefront/internal/repository"
	"github.com/chefhut/storefront/internal/session"
)

type ProfileService struct {
	users    repository.UserRepository
	requests repository.RoleRequestRepository
	cache    cache.Cache
	ttl      time.Duration
}

func NewProfileService(users repository.UserRepository, requests repository.RoleRequestRepository, c cache.Cache, ttl time.Duration) *ProfileService {
	return &ProfileService{users: users, requests: requests, cache: c, ttl: ttl}
}

func myRequestsKey(email string) string { return cache.Key("my-requests", email) }

func (s *ProfileService) Get(ctx context.Context, email string) (*dto.ProfilePage, error) {
	user, err := cache.Query(ctx, s.cache, cache.Key("user-doc", email), s.ttl, func(ctx context.Context) (*model.User, error) {
		return s.users.GetByEmail(ctx, email)
	})
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	pending, err := s.pending(ctx, email)
	if err != nil {
		return nil, err
	}

	page := &dto.ProfilePage{User: user, Pending: pending}
	for _, r := range pending {
		switch r.RequestType {
		case model.RoleChef:
			page.ChefPending = true
		case model.RoleAdmin:
			page.AdminPending = true
		}
	}
	role := model.ParseRole(string(user.Role))
	page.CanRequestChef = role == model.RoleUser && !page.ChefPending
	page.CanRequestAdmin = role != model.RoleAdmin && !page.AdminPending
	return page, nil
}

// RequestRole asks for a role upgrade. A request of the same type that is
// already pending yields ErrRequestPending.
func (s *ProfileService) RequestRole(ctx context.Context, sess *session.Session, userID string, role model.Role) error {
	pending, err := s.pending(ctx, sess.Email)
	if err != nil {
		return err
	}
	for _, r := range pending {
		if r.RequestType == role {
			return ErrRequestPending
		}
	}

	if userID == "" {
		userID = sess.UID
	}
	req := &model.RoleRequest{
		UserID:      userID,
		UserName:    sess.DisplayName,
		UserEmail:   sess.Email,
		RequestType: role,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		if apiclient.IsConflict(err) {
			return fmt.Errorf("%w: %s", ErrRequestPending, apiclient.Message(err))
		}
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, myRequestsKey(sess.Email), cache.Key("user-doc", sess.Email), "requests:all")
	}
	return nil
}

func (s *ProfileService) pending(ctx context.Context, email string) ([]model.RoleRequest, error) {
	reqs, err := cache.Query(ctx, s.cache, myRequestsKey(email), s.ttl, func(ctx context.Context) ([]model.RoleRequest, error) {
		return s.requests.ListPendingByEmail(ctx, email)
	})
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return reqs, nil
}
