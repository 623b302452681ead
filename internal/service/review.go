package service

import (
	"context"
	"strings"
	"time"

	"github.com/chefhut/storefront/internal/cache"
	"github.com/chefhut/storefront/internal/dto"
	"github.com/chefhut/storefront/internal/model"
	"github.com/chefhut/storefront/internal/repository"
	"github.com/chefhut/storefront/internal/session"
)

const homeReviewLimit = 8

type ReviewService struct {
	reviews repository.ReviewRepository
	cache   cache.Cache
	ttl     time.Duration
}

func NewReviewService(reviews repository.ReviewRepository, c cache.Cache, ttl time.Duration) *ReviewService {
	return &ReviewService{reviews: reviews, cache: c, ttl: ttl}
}

func myReviewsKey(email string) string { return cache.Key("my-reviews", email) }

func (s *ReviewService) Home(ctx context.Context) ([]model.Review, error) {
	return cache.Query(ctx, s.cache, "home-reviews", s.ttl, func(ctx context.Context) ([]model.Review, error) {
		return s.reviews.ListHome(ctx, homeReviewLimit)
	})
}

func (s *ReviewService) ListMine(ctx context.Context, email string) ([]model.Review, error) {
	return cache.Query(ctx, s.cache, myReviewsKey(email), s.ttl, func(ctx context.Context) ([]model.Review, error) {
		return s.reviews.ListByUser(ctx, email)
	})
}

// Submit posts a review of meal by the session's user.
func (s *ReviewService) Submit(ctx context.Context, sess *session.Session, meal *model.Meal, form dto.ReviewForm) error {
	name := strings.TrimSpace(sess.DisplayName)
	if name == "" {
		name = "Anonymous"
	}
	review := &model.Review{
		FoodID:        meal.ID,
		MealName:      meal.FoodName,
		ReviewerName:  name,
		ReviewerImage: sess.PhotoURL,
		ReviewerEmail: sess.Email,
		Rating:        form.Rating,
		Comment:       strings.TrimSpace(form.Comment),
		Date:          time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return err
	}
	s.invalidate(ctx, sess.Email, meal.ID)
	return nil
}

// Update edits one of email's own reviews.
func (s *ReviewService) Update(ctx context.Context, email, id string, form dto.ReviewForm) error {
	review, err := s.own(ctx, email, id)
	if err != nil {
		return err
	}
	if err := s.reviews.Update(ctx, id, form.Rating, strings.TrimSpace(form.Comment)); err != nil {
		return err
	}
	s.invalidate(ctx, email, review.FoodID)
	return nil
}

func (s *ReviewService) Delete(ctx context.Context, email, id string) error {
	review, err := s.own(ctx, email, id)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, email, review.FoodID)
	return nil
}

// own finds id among email's reviews; reviews of others are not found.
func (s *ReviewService) own(ctx context.Context, email, id string) (*model.Review, error) {
	reviews, err := s.ListMine(ctx, email)
	if err != nil {
		return nil, err
	}
	for i := range reviews {
		if reviews[i].ID == id {
			return &reviews[i], nil
		}
	}
	return nil, ErrReviewNotFound
}

func (s *ReviewService) invalidate(ctx context.Context, email, foodID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, myReviewsKey(email), cache.Key("reviews", foodID), "home-reviews")
}
