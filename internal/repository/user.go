package repository

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/chefhut/storefront/internal/apiclient"
	"github.com/chefhut/storefront/internal/model"
)

type UserUpdate struct {
	DisplayName *string `json:"displayName,omitempty"`
	PhotoURL    *string `json:"photoURL,omitempty"`
	Address     *string `json:"address,omitempty"`
}

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, email string, upd UserUpdate) error
	List(ctx context.Context, limit int) ([]model.User, error)
	UpdateStatus(ctx context.Context, id string, status model.AccountStatus) error
}

type apiUserRepo struct{ client *apiclient.Client }

// NewUserRepository expects the secure client.
func NewUserRepository(client *apiclient.Client) UserRepository {
	return &apiUserRepo{client: client}
}

func (r *apiUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	if err := r.client.Get(ctx, "/users/"+url.PathEscape(email), user); err != nil {
		if apiclient.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if user.Email == "" {
		return nil, nil
	}
	return user, nil
}

func (r *apiUserRepo) Create(ctx context.Context, user *model.User) error {
	var res insertResult
	if err := r.client.Post(ctx, "/users", user, &res); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if user.ID == "" {
		user.ID = res.InsertedID
	}
	return nil
}

func (r *apiUserRepo) Update(ctx context.Context, email string, upd UserUpdate) error {
	if err := r.client.Patch(ctx, "/users/"+url.PathEscape(email), upd, nil); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *apiUserRepo) List(ctx context.Context, limit int) ([]model.User, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	list, err := apiclient.GetList[model.User](ctx, r.client, "/users?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return list.Items, nil
}

func (r *apiUserRepo) UpdateStatus(ctx context.Context, id string, status model.AccountStatus) error {
	body := map[string]model.AccountStatus{"status": status}
	if err := r.client.Patch(ctx, "/users/"+url.PathEscape(id)+"/status", body, nil); err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	return nil
}

// insertResult is the backend's acknowledgement of a created document.
type insertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}
