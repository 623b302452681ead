package repository

import (
	"context"
	"fmt"
	"net/url"

	"github.com/chefhut/storefront/internal/apiclient"
	"github.com/chefhut/storefront/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	ListByEmail(ctx context.Context, email string) ([]model.Order, error)
	ListByChef(ctx context.Context, chefID string) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type apiOrderRepo struct{ client *apiclient.Client }

func NewOrderRepository(client *apiclient.Client) OrderRepository {
	return &apiOrderRepo{client: client}
}

func (r *apiOrderRepo) Create(ctx context.Context, order *model.Order) error {
	var res insertResult
	if err := r.client.Post(ctx, "/orders", order, &res); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	order.ID = res.InsertedID
	return nil
}

func (r *apiOrderRepo) ListByEmail(ctx context.Context, email string) ([]model.Order, error) {
	q := url.Values{"email": {email}}
	list, err := apiclient.GetList[model.Order](ctx, r.client, "/orders?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return list.Items, nil
}

func (r *apiOrderRepo) ListByChef(ctx context.Context, chefID string) ([]model.Order, error) {
	q := url.Values{"chefId": {chefID}}
	list, err := apiclient.GetList[model.Order](ctx, r.client, "/orders/chef?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("list chef orders: %w", err)
	}
	return list.Items, nil
}

func (r *apiOrderRepo) UpdateStatus(ctx context.Context, id, status string) error {
	body := map[string]string{"orderStatus": status}
	if err := r.client.Patch(ctx, "/orders/"+url.PathEscape(id), body, nil); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}
