package service

import (
	"context"
	"fmt"
	"time"

	"github.com/chefhut/storefront/internal/apiclient"
	"github.com/chefhut/storefront/internal/cache"
	"github.com/chefhut/storefront/internal/model"
	"github.com/chefhut/storefront/internal/repository"
)

type FavoriteService struct {
	favorites repository.FavoriteRepository
	cache     cache.Cache
	ttl       time.Duration
	metrics   Metrics
}

func NewFavoriteService(favorites repository.FavoriteRepository, c cache.Cache, ttl time.Duration, m Metrics) *FavoriteService {
	return &FavoriteService{favorites: favorites, cache: c, ttl: ttl, metrics: orNop(m)}
}

func favoritesKey(email string) string { return cache.Key("favorites", email) }

func (s *FavoriteService) List(ctx context.Context, email string) ([]model.Favorite, error) {
	return cache.Query(ctx, s.cache, favoritesKey(email), s.ttl, s.fetch(email))
}

// Add bookmarks meal for email. A duplicate maps to ErrAlreadyFavorite.
func (s *FavoriteService) Add(ctx context.Context, email string, meal *model.Meal) error {
	fav := &model.Favorite{
		UserEmail: email,
		MealID:    meal.ID,
		MealName:  meal.FoodName,
		ChefID:    meal.ChefID,
		ChefName:  meal.ChefName,
		Price:     meal.Price,
	}
	if err := s.favorites.Create(ctx, fav); err != nil {
		if apiclient.IsConflict(err) {
			return ErrAlreadyFavorite
		}
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, favoritesKey(email))
	}
	return nil
}

// Remove drops the favorite from the cached list before the backend confirms.
// On failure the previous list is restored and returned with the error.
func (s *FavoriteService) Remove(ctx context.Context, email, id string) ([]model.Favorite, error) {
	list, err := cache.Optimistic(ctx, s.cache, favoritesKey(email), s.ttl, s.fetch(email),
		func(in []model.Favorite) []model.Favorite {
			out := make([]model.Favorite, 0, len(in))
			for _, f := range in {
				if f.ID != id {
					out = append(out, f)
				}
			}
			return out
		},
		func(ctx context.Context) error { return s.favorites.Delete(ctx, id) },
	)
	if err != nil {
		s.metrics.OptimisticRollback(ctx, "favorites")
		return list, fmt.Errorf("remove favorite: %w", err)
	}
	return list, nil
}

func (s *FavoriteService) fetch(email string) func(context.Context) ([]model.Favorite, error) {
	return func(ctx context.Context) ([]model.Favorite, error) {
		return s.favorites.ListByEmail(ctx, email)
	}
}
