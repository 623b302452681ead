package repository

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/chefhut/storefront/internal/apiclient"
	"github.com/chefhut/storefront/internal/model"
)

type ReviewRepository interface {
	ListByMeal(ctx context.Context, foodID string) ([]model.Review, error)
	ListByUser(ctx context.Context, email string) ([]model.Review, error)
	ListHome(ctx context.Context, limit int) ([]model.Review, error)
	Create(ctx context.Context, review *model.Review) error
	Update(ctx context.Context, id string, rating float64, comment string) error
	Delete(ctx context.Context, id string) error
}

type apiReviewRepo struct {
	public *apiclient.Client
	secure *apiclient.Client
}

func NewReviewRepository(public, secure *apiclient.Client) ReviewRepository {
	return &apiReviewRepo{public: public, secure: secure}
}

func (r *apiReviewRepo) ListByMeal(ctx context.Context, foodID string) ([]model.Review, error) {
	q := url.Values{"foodId": {foodID}}
	list, err := apiclient.GetList[model.Review](ctx, r.public, "/reviews?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("list meal reviews: %w", err)
	}
	return list.Items, nil
}

func (r *apiReviewRepo) ListByUser(ctx context.Context, email string) ([]model.Review, error) {
	q := url.Values{"email": {email}}
	list, err := apiclient.GetList[model.Review](ctx, r.secure, "/reviews/user?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("list user reviews: %w", err)
	}
	return list.Items, nil
}

func (r *apiReviewRepo) ListHome(ctx context.Context, limit int) ([]model.Review, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	list, err := apiclient.GetList[model.Review](ctx, r.public, "/reviews/home?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("list home reviews: %w", err)
	}
	return list.Items, nil
}

func (r *apiReviewRepo) Create(ctx context.Context, review *model.Review) error {
	var res insertResult
	if err := r.secure.Post(ctx, "/reviews", review, &res); err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	review.ID = res.InsertedID
	return nil
}

func (r *apiReviewRepo) Update(ctx context.Context, id string, rating float64, comment string) error {
	body := struct {
		Rating  float64 `json:"rating"`
		Comment string  `json:"comment"`
	}{rating, comment}
	if err := r.secure.Patch(ctx, "/reviews/"+url.PathEscape(id), body, nil); err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

func (r *apiReviewRepo) Delete(ctx context.Context, id string) error {
	if err := r.secure.Delete(ctx, "/reviews/"+url.PathEscape(id), nil); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}
