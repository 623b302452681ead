package repository

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/chefhut/storefront/internal/apiclient"
	"github.com/chefhut/storefront/internal/model"
)

type RequestAction string

const (
	ActionApprove RequestAction = "approve"
	ActionReject  RequestAction = "reject"
)

type RoleRequestRepository interface {
	ListPendingByEmail(ctx context.Context, email string) ([]model.RoleRequest, error)
	ListPending(ctx context.Context, limit int) (apiclient.List[model.RoleRequest], error)
	Create(ctx context.Context, req *model.RoleRequest) error
	Resolve(ctx context.Context, id string, action RequestAction) (*model.RoleRequest, error)
}

type apiRoleRequestRepo struct{ client *apiclient.Client }

func NewRoleRequestRepository(client *apiclient.Client) RoleRequestRepository {
	return &apiRoleRequestRepo{client: client}
}

func (r *apiRoleRequestRepo) ListPendingByEmail(ctx context.Context, email string) ([]model.RoleRequest, error) {
	q := url.Values{"userEmail": {email}, "status": {string(model.RequestPending)}}
	list, err := apiclient.GetList[model.RoleRequest](ctx, r.client, "/requests?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("list user requests: %w", err)
	}
	return list.Items, nil
}

func (r *apiRoleRequestRepo) ListPending(ctx context.Context, limit int) (apiclient.List[model.RoleRequest], error) {
	q := url.Values{"status": {string(model.RequestPending)}, "limit": {strconv.Itoa(limit)}}
	list, err := apiclient.GetList[model.RoleRequest](ctx, r.client, "/requests?"+q.Encode())
	if err != nil {
		return list, fmt.Errorf("list pending requests: %w", err)
	}
	return list, nil
}

func (r *apiRoleRequestRepo) Create(ctx context.Context, req *model.RoleRequest) error {
	var res insertResult
	if err := r.client.Post(ctx, "/requests", req, &res); err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.ID = res.InsertedID
	return nil
}

func (r *apiRoleRequestRepo) Resolve(ctx context.Context, id string, action RequestAction) (*model.RoleRequest, error) {
	var res struct {
		Request *model.RoleRequest `json:"request"`
	}
	body := map[string]RequestAction{"action": action}
	if err := r.client.Patch(ctx, "/requests/"+url.PathEscape(id), body, &res); err != nil {
		return nil, fmt.Errorf("resolve request: %w", err)
	}
	return res.Request, nil
}
