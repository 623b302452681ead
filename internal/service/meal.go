package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chefhut/storefront/internal/apiclient"
	"github.com/chefhut/storefront/internal/cache"
	"github.com/chefhut/storefront/internal/dto"
	"github.com/chefhut/storefront/internal/model"
	"github.com/chefhut/storefront/internal/repository"
)

const MealsPageSize = 9

type MealService struct {
	meals   repository.MealRepository
	reviews repository.ReviewRepository
	cache   cache.Cache
	ttl     time.Duration
}

func NewMealService(meals repository.MealRepository, reviews repository.ReviewRepository, c cache.Cache, ttl time.Duration) *MealService {
	return &MealService{meals: meals, reviews: reviews, cache: c, ttl: ttl}
}

func (s *MealService) List(ctx context.Context, q dto.MealsQuery) (*dto.MealsPage, error) {
	q = q.Normalize()
	key := cache.Key("meals", strconv.Itoa(q.Page), q.Sort, q.Order, q.Search)
	list, err := cache.Query(ctx, s.cache, key, s.ttl, func(ctx context.Context) (apiclient.List[model.Meal], error) {
		return s.meals.List(ctx, MealsPageSize, q.Page*MealsPageSize, q.Search, q.Sort, q.Order)
	})
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}

	totalPages := (list.Total + MealsPageSize - 1) / MealsPageSize
	pages := make([]int, totalPages)
	for i := range pages {
		pages[i] = i
	}
	return &dto.MealsPage{Query: q, Meals: list.Items, Total: list.Total, TotalPages: totalPages, Pages: pages}, nil
}

func (s *MealService) Get(ctx context.Context, id string) (*model.Meal, error) {
	meal, err := cache.Query(ctx, s.cache, cache.Key("meal", id), s.ttl, func(ctx context.Context) (*model.Meal, error) {
		return s.meals.GetByID(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("get meal: %w", err)
	}
	if meal == nil {
		return nil, ErrMealNotFound
	}
	return meal, nil
}

func (s *MealService) Details(ctx context.Context, id string) (*dto.MealDetails, error) {
	meal, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, err := cache.Query(ctx, s.cache, cache.Key("reviews", id), s.ttl, func(ctx context.Context) ([]model.Review, error) {
		return s.reviews.ListByMeal(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("list meal reviews: %w", err)
	}
	return &dto.MealDetails{Meal: meal, Reviews: reviews}, nil
}

func (s *MealService) Featured(ctx context.Context) ([]model.Meal, error) {
	return cache.Query(ctx, s.cache, "featured-meals", s.ttl, s.meals.Featured)
}

// Create adds a meal for the signed-in chef. Fraud accounts are refused.
func (s *MealService) Create(ctx context.Context, email string, chef Profile, form dto.MealForm) (*model.Meal, error) {
	if chef.IsFraud() {
		return nil, ErrAccountRestricted
	}
	price, err := form.PriceValue()
	if err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}
	meal := &model.Meal{
		FoodName:              strings.TrimSpace(form.FoodName),
		ChefName:              strings.TrimSpace(form.ChefName),
		ChefID:                chef.ChefID,
		FoodImage:             strings.TrimSpace(form.FoodImage),
		Price:                 price,
		Rating:                form.Rating,
		Ingredients:           dto.SplitIngredients(form.Ingredients),
		DeliveryArea:          strings.TrimSpace(form.DeliveryArea),
		EstimatedDeliveryTime: strings.TrimSpace(form.EstimatedDeliveryTime),
		ChefExperience:        strings.TrimSpace(form.ChefExperience),
		UserEmail:             email,
		CreatedAt:             time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.meals.Create(ctx, meal); err != nil {
		return nil, err
	}
	s.invalidateChef(ctx, email, "")
	return meal, nil
}

func (s *MealService) ListByChef(ctx context.Context, email string) ([]model.Meal, error) {
	return cache.Query(ctx, s.cache, cache.Key("chef-meals", email), s.ttl, func(ctx context.Context) ([]model.Meal, error) {
		return s.meals.ListByChef(ctx, email)
	})
}

func (s *MealService) Update(ctx context.Context, email, id string, form dto.MealUpdateForm) error {
	price, err := decimal.NewFromString(strings.TrimSpace(form.Price))
	if err != nil {
		return fmt.Errorf("parse price: %w", err)
	}
	upd := repository.MealUpdate{
		FoodName:              optional(form.FoodName),
		Price:                 &price,
		Ingredients:           dto.SplitIngredients(form.Ingredients),
		DeliveryArea:          optional(form.DeliveryArea),
		EstimatedDeliveryTime: optional(form.EstimatedDeliveryTime),
		FoodImage:             optional(form.FoodImage),
	}
	if err := s.meals.Update(ctx, id, upd); err != nil {
		return err
	}
	s.invalidateChef(ctx, email, id)
	return nil
}

func (s *MealService) Delete(ctx context.Context, email, id string) error {
	if err := s.meals.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateChef(ctx, email, id)
	return nil
}

func (s *MealService) invalidateChef(ctx context.Context, email, id string) {
	if s.cache == nil {
		return
	}
	keys := []string{cache.Key("chef-meals", email), "featured-meals"}
	if id != "" {
		keys = append(keys, cache.Key("meal", id))
	}
	_ = s.cache.Delete(ctx, keys...)
	_ = s.cache.DeletePrefix(ctx, "meals:")
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
