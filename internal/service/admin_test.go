package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chefhut/storefront/internal/cache"
	"github.com/chefhut/storefront/internal/model"
	"github.com/chefhut/storefront/internal/repository"
)

func newTestAdmin(users *mockUserRepo, requests *mockRequestRepo, c cache.Cache) (*AdminService, *RoleResolver) {
	roles := NewRoleResolver(users, c, time.Minute)
	return NewAdminService(users, requests, nil, roles, c, time.Minute), roles
}

func TestAdminService_MarkFraud(t *testing.T) {
	users := newMockUserRepo()
	users.users["a@example.com"] = &model.User{ID: "u1", Email: "a@example.com", Role: model.RoleUser}
	users.users["boss@example.com"] = &model.User{ID: "u2", Email: "boss@example.com", Role: model.RoleAdmin}
	svc, roles := newTestAdmin(users, newMockRequestRepo(), cache.NewMemory())
	ctx := context.Background()

	_, err := svc.MarkFraud(ctx, "u2")
	assert.ErrorIs(t, err, ErrCannotRestrictAdmin)
	assert.Empty(t, users.statuses)

	p, _ := roles.Resolve(ctx, "a@example.com")
	assert.False(t, p.IsFraud())

	user, err := svc.MarkFraud(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusFraud, user.Status)

	p, _ = roles.Resolve(ctx, "a@example.com")
	assert.True(t, p.IsFraud(), "the role cache is dropped for the user")
}

func TestAdminService_ResolveRequestInvalidatesRole(t *testing.T) {
	users, requests := newMockUserRepo(), newMockRequestRepo()
	users.users["cook@example.com"] = &model.User{ID: "u1", Email: "cook@example.com", Role: model.RoleUser}
	requests.requests["r1"] = &model.RoleRequest{ID: "r1", UserEmail: "cook@example.com", RequestType: model.RoleChef, RequestStatus: model.RequestPending}
	svc, roles := newTestAdmin(users, requests, cache.NewMemory())
	ctx := context.Background()

	pending, err := svc.ListRequests(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	_, _ = roles.Resolve(ctx, "cook@example.com")

	users.users["cook@example.com"].Role = model.RoleChef
	req, err := svc.ResolveRequest(ctx, "r1", repository.ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, req.RequestStatus)

	p, _ := roles.Resolve(ctx, "cook@example.com")
	assert.Equal(t, model.RoleChef, p.Role)

	pending, _ = svc.ListRequests(ctx)
	assert.Empty(t, pending)
}

func TestAdminService_ResolveRequestWithoutEcho(t *testing.T) {
	users, requests := newMockUserRepo(), newMockRequestRepo()
	requests.silent = true
	users.users["cook@example.com"] = &model.User{ID: "u1", Email: "cook@example.com", Role: model.RoleUser}
	requests.requests["r1"] = &model.RoleRequest{ID: "r1", UserEmail: "cook@example.com", RequestType: model.RoleChef, RequestStatus: model.RequestPending}
	svc, roles := newTestAdmin(users, requests, cache.NewMemory())
	ctx := context.Background()

	p, _ := roles.Resolve(ctx, "cook@example.com")
	require.Equal(t, model.RoleUser, p.Role)

	users.users["cook@example.com"].Role = model.RoleChef
	req, err := svc.ResolveRequest(ctx, "r1", repository.ActionApprove)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, "cook@example.com", req.UserEmail)
	assert.Equal(t, model.RequestApproved, req.RequestStatus)

	p, _ = roles.Resolve(ctx, "cook@example.com")
	assert.Equal(t, model.RoleChef, p.Role)
}
