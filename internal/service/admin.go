package service

import (
	"context"
	"fmt"
	"time"

	"github.com/chefhut/storefront/internal/cache"
	"github.com/chefhut/storefront/internal/model"
	"github.com/chefhut/storefront/internal/repository"
)

const (
	adminUserLimit    = 500
	adminRequestLimit = 100
)

type AdminService struct {
	users    repository.UserRepository
	requests repository.RoleRequestRepository
	stats    repository.StatsRepository
	roles    *RoleResolver
	cache    cache.Cache
	ttl      time.Duration
}

func NewAdminService(users repository.UserRepository, requests repository.RoleRequestRepository, stats repository.StatsRepository,
	roles *RoleResolver, c cache.Cache, ttl time.Duration) *AdminService {
	return &AdminService{users: users, requests: requests, stats: stats, roles: roles, cache: c, ttl: ttl}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]model.User, error) {
	return cache.Query(ctx, s.cache, "admin-users", s.ttl, func(ctx context.Context) ([]model.User, error) {
		return s.users.List(ctx, adminUserLimit)
	})
}

// FindUser looks id up in the managed user list.
func (s *AdminService) FindUser(ctx context.Context, id string) (*model.User, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

// MarkFraud restricts a user account. Admin accounts cannot be restricted.
func (s *AdminService) MarkFraud(ctx context.Context, id string) (*model.User, error) {
	user, err := s.FindUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if model.ParseRole(string(user.Role)) == model.RoleAdmin {
		return nil, ErrCannotRestrictAdmin
	}
	if err := s.users.UpdateStatus(ctx, id, model.StatusFraud); err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "admin-users")
	}
	s.roles.Invalidate(ctx, user.Email)
	user.Status = model.StatusFraud
	return user, nil
}

func (s *AdminService) ListRequests(ctx context.Context) ([]model.RoleRequest, error) {
	list, err := cache.Query(ctx, s.cache, cache.Key("requests", "all"), s.ttl, func(ctx context.Context) ([]model.RoleRequest, error) {
		l, err := s.requests.ListPending(ctx, adminRequestLimit)
		return l.Items, err
	})
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return list, nil
}

// ResolveRequest approves or rejects a role request and drops the affected
// user's cached role. The user is taken from the pending list, since the
// backend is not required to echo the request back.
func (s *AdminService) ResolveRequest(ctx context.Context, id string, action repository.RequestAction) (*model.RoleRequest, error) {
	pending, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	req, err := s.requests.Resolve(ctx, id, action)
	if err != nil {
		return nil, err
	}
	if req == nil && pending != nil {
		req = pending
		req.RequestStatus = model.RequestRejected
		if action == repository.ActionApprove {
			req.RequestStatus = model.RequestApproved
		}
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, cache.Key("requests", "all"), "admin-users")
	}
	if req != nil {
		s.roles.Invalidate(ctx, req.UserEmail)
		if s.cache != nil {
			_ = s.cache.Delete(ctx, myRequestsKey(req.UserEmail))
		}
	}
	return req, nil
}

// findRequest returns nil without error when id is not in the pending list.
func (s *AdminService) findRequest(ctx context.Context, id string) (*model.RoleRequest, error) {
	list, err := s.ListRequests(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			r := list[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (s *AdminService) Stats(ctx context.Context) (*model.PlatformStats, error) {
	return cache.Query(ctx, s.cache, "platform-stats", s.ttl, s.stats.Platform)
}
