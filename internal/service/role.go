package service

import (
	"context"
	"fmt"
	"time"

	"github.com/chefhut/storefront/internal/cache"
	"github.com/chefhut/storefront/internal/model"
	"github.com/chefhut/storefront/internal/repository"
	"github.com/chefhut/storefront/internal/session"
)

const noChefID = "N/A"

// Profile is the slice of the user record that gates navigation and actions.
type Profile struct {
	Role        model.Role          `json:"role"`
	Status      model.AccountStatus `json:"status"`
	Address     string              `json:"address"`
	PhotoURL    string              `json:"photoURL"`
	DisplayName string              `json:"displayName"`
	ChefID      string              `json:"chefId"`
}

func (p Profile) IsFraud() bool { return p.Status == model.StatusFraud }

func defaultProfile() Profile {
	return Profile{Role: model.RoleUser, Status: model.StatusActive, ChefID: noChefID}
}

// RoleResolver looks up the signed-in user's role and status, cached per email.
type RoleResolver struct {
	users repository.UserRepository
	cache cache.Cache
	ttl   time.Duration
}

func NewRoleResolver(users repository.UserRepository, c cache.Cache, ttl time.Duration) *RoleResolver {
	return &RoleResolver{users: users, cache: c, ttl: ttl}
}

func roleKey(email string) string { return cache.Key("user-role", email) }

// Resolve returns the profile for email. An empty email resolves to the user
// role without contacting the backend.
func (r *RoleResolver) Resolve(ctx context.Context, email string) (Profile, error) {
	if email == "" {
		return Profile{Role: model.RoleUser}, nil
	}
	return cache.Query(ctx, r.cache, roleKey(email), r.ttl, func(ctx context.Context) (Profile, error) {
		user, err := r.users.GetByEmail(ctx, email)
		if err != nil {
			return Profile{}, fmt.Errorf("resolve role: %w", err)
		}
		p := defaultProfile()
		if user == nil {
			return p, nil
		}
		if user.Role != "" {
			p.Role = model.ParseRole(string(user.Role))
		}
		if user.Status != "" {
			p.Status = user.Status
		}
		if user.ChefID != "" {
			p.ChefID = user.ChefID
		}
		p.Address = user.Address
		p.PhotoURL = user.PhotoURL
		p.DisplayName = user.DisplayName
		return p, nil
	})
}

func (r *RoleResolver) Refetch(ctx context.Context, email string) (Profile, error) {
	r.Invalidate(ctx, email)
	return r.Resolve(ctx, email)
}

func (r *RoleResolver) Invalidate(ctx context.Context, email string) {
	if r.cache != nil && email != "" {
		_ = r.cache.Delete(ctx, roleKey(email), cache.Key("user-doc", email))
	}
}

// OnSessionEvent drops the cached profile when the account changes or signs out.
func (r *RoleResolver) OnSessionEvent(ctx context.Context, e session.Event) {
	switch e.Type {
	case session.EventProfileUpdated, session.EventSignedOut:
		r.Invalidate(ctx, e.Email)
	}
}
