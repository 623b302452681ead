package repository

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/chefhut/storefront/internal/apiclient"
	"github.com/chefhut/storefront/internal/model"
)

type MealUpdate struct {
	FoodName              *string          `json:"foodName,omitempty"`
	Price                 *decimal.Decimal `json:"price,omitempty"`
	Ingredients           []string         `json:"ingredients,omitempty"`
	DeliveryArea          *string          `json:"deliveryArea,omitempty"`
	EstimatedDeliveryTime *string          `json:"estimatedDeliveryTime,omitempty"`
	FoodImage             *string          `json:"foodImage,omitempty"`
}

type MealRepository interface {
	List(ctx context.Context, limit, skip int, search, sort, order string) (apiclient.List[model.Meal], error)
	GetByID(ctx context.Context, id string) (*model.Meal, error)
	Featured(ctx context.Context) ([]model.Meal, error)
	ListByChef(ctx context.Context, email string) ([]model.Meal, error)
	Create(ctx context.Context, meal *model.Meal) error
	Update(ctx context.Context, id string, upd MealUpdate) error
	Delete(ctx context.Context, id string) error
}

type apiMealRepo struct {
	public *apiclient.Client
	secure *apiclient.Client
}

func NewMealRepository(public, secure *apiclient.Client) MealRepository {
	return &apiMealRepo{public: public, secure: secure}
}

func (r *apiMealRepo) List(ctx context.Context, limit, skip int, search, sort, order string) (apiclient.List[model.Meal], error) {
	q := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"skip":   {strconv.Itoa(skip)},
		"sort":   {sort},
		"order":  {order},
		"search": {search},
	}
	list, err := apiclient.GetList[model.Meal](ctx, r.public, "/meals?"+q.Encode())
	if err != nil {
		return list, fmt.Errorf("list meals: %w", err)
	}
	return list, nil
}

func (r *apiMealRepo) GetByID(ctx context.Context, id string) (*model.Meal, error) {
	meal := &model.Meal{}
	if err := r.public.Get(ctx, "/meals/"+url.PathEscape(id), meal); err != nil {
		if apiclient.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get meal: %w", err)
	}
	if meal.ID == "" && meal.FoodName == "" {
		return nil, nil
	}
	return meal, nil
}

func (r *apiMealRepo) Featured(ctx context.Context) ([]model.Meal, error) {
	list, err := apiclient.GetList[model.Meal](ctx, r.public, "/featured-meals")
	if err != nil {
		return nil, fmt.Errorf("list featured meals: %w", err)
	}
	return list.Items, nil
}

func (r *apiMealRepo) ListByChef(ctx context.Context, email string) ([]model.Meal, error) {
	q := url.Values{"email": {email}}
	list, err := apiclient.GetList[model.Meal](ctx, r.secure, "/meals/chef?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("list chef meals: %w", err)
	}
	return list.Items, nil
}

func (r *apiMealRepo) Create(ctx context.Context, meal *model.Meal) error {
	var res insertResult
	if err := r.secure.Post(ctx, "/meals", meal, &res); err != nil {
		return fmt.Errorf("create meal: %w", err)
	}
	meal.ID = res.InsertedID
	return nil
}

func (r *apiMealRepo) Update(ctx context.Context, id string, upd MealUpdate) error {
	if err := r.secure.Patch(ctx, "/meals/"+url.PathEscape(id), upd, nil); err != nil {
		return fmt.Errorf("update meal: %w", err)
	}
	return nil
}

func (r *apiMealRepo) Delete(ctx context.Context, id string) error {
	if err := r.secure.Delete(ctx, "/meals/"+url.PathEscape(id), nil); err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}
	return nil
}
