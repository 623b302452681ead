package repository

import (
	"context"
	"fmt"
	"net/url"

	"github.com/chefhut/storefront/internal/apiclient"
	"github.com/chefhut/storefront/internal/model"
)

type FavoriteRepository interface {
	ListByEmail(ctx context.Context, email string) ([]model.Favorite, error)
	Create(ctx context.Context, fav *model.Favorite) error
	Delete(ctx context.Context, id string) error
}

type apiFavoriteRepo struct{ client *apiclient.Client }

func NewFavoriteRepository(client *apiclient.Client) FavoriteRepository {
	return &apiFavoriteRepo{client: client}
}

func (r *apiFavoriteRepo) ListByEmail(ctx context.Context, email string) ([]model.Favorite, error) {
	q := url.Values{"email": {email}}
	list, err := apiclient.GetList[model.Favorite](ctx, r.client, "/favorites?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return list.Items, nil
}

// Create returns an *apiclient.Error with status 409 when the pair already exists.
func (r *apiFavoriteRepo) Create(ctx context.Context, fav *model.Favorite) error {
	var res insertResult
	if err := r.client.Post(ctx, "/favorites", fav, &res); err != nil {
		return fmt.Errorf("create favorite: %w", err)
	}
	fav.ID = res.InsertedID
	return nil
}

func (r *apiFavoriteRepo) Delete(ctx context.Context, id string) error {
	if err := r.client.Delete(ctx, "/favorites/"+url.PathEscape(id), nil); err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return nil
}
