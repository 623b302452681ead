package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chefhut/storefront/internal/dialog"
	"github.com/chefhut/storefront/internal/dto"
	"github.com/chefhut/storefront/internal/middleware"
	"github.com/chefhut/storefront/internal/service"
)

var reviewRatings = []int{5, 4, 3, 2, 1}

type MealHandler struct {
	meals     *service.MealService
	reviews   *service.ReviewService
	favorites *service.FavoriteService
	render    *Renderer
	log       *slog.Logger
}

func NewMealHandler(meals *service.MealService, reviews *service.ReviewService, favorites *service.FavoriteService, render *Renderer, log *slog.Logger) *MealHandler {
	return &MealHandler{meals: meals, reviews: reviews, favorites: favorites, render: render, log: log}
}

func (h *MealHandler) Home(c *gin.Context) {
	ctx := c.Request.Context()
	data := gin.H{}

	featured, err := h.meals.Featured(ctx)
	if err != nil {
		h.log.Warn("load featured meals", "error", err)
		data["FeaturedError"] = "Could not load featured meals."
	}
	data["Featured"] = featured

	reviews, err := h.reviews.Home(ctx)
	if err != nil {
		h.log.Warn("load home reviews", "error", err)
	}
	data["Reviews"] = reviews

	h.render.HTML(c, http.StatusOK, "home.html", "Home", data)
}

func (h *MealHandler) List(c *gin.Context) {
	var q dto.MealsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		q = dto.MealsQuery{Search: c.Query("search"), Prev: c.Query("prev"), Sort: c.Query("sort"), Order: c.Query("order")}
	}

	page, err := h.meals.List(c.Request.Context(), q)
	if err != nil {
		h.log.Error("list meals", "error", err)
		h.render.HTML(c, http.StatusBadGateway, "meals.html", "Meals", gin.H{
			"Page":  &dto.MealsPage{Query: q.Normalize()},
			"Error": service.UserMessage(err, "Could not load meals."),
		})
		return
	}
	h.render.HTML(c, http.StatusOK, "meals.html", "Meals", gin.H{"Page": page})
}

func (h *MealHandler) Details(c *gin.Context) {
	h.details(c, http.StatusOK, dto.ReviewForm{}, nil)
}

func (h *MealHandler) details(c *gin.Context, status int, form dto.ReviewForm, errs dto.FieldErrors) {
	details, err := h.meals.Details(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrMealNotFound) {
			h.render.NotFound(c)
			return
		}
		h.render.Fail(c, err, c.Request.URL.Path)
		return
	}
	if errs == nil {
		errs = dto.FieldErrors{}
	}
	h.render.HTML(c, status, "meal_details.html", details.Meal.FoodName, gin.H{
		"Details": details,
		"Ratings": reviewRatings,
		"Form":    form,
		"Errors":  errs,
	})
}

// AddFavorite bookmarks the meal; a duplicate is reported, not treated as a failure.
func (h *MealHandler) AddFavorite(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	back := "/mealDetails/" + id

	meal, err := h.meals.Get(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrMealNotFound) {
			h.render.NotFound(c)
			return
		}
		h.render.Fail(c, err, back)
		return
	}

	sess := middleware.GetSession(c)
	switch err := h.favorites.Add(ctx, sess.Email, meal); {
	case err == nil:
		h.render.Flash(c, dialog.Success("Added to favorites", meal.FoodName+" is now in your favorites."))
	case errors.Is(err, service.ErrAlreadyFavorite):
		h.render.Flash(c, dialog.Info("Already saved", "This meal is already in your favorites."))
	default:
		h.log.Error("add favorite", "meal_id", id, "error", err)
		h.render.Flash(c, dialog.Error("Could not add favorite", service.UserMessage(err, "")))
	}
	seeOther(c, back)
}

func (h *MealHandler) SubmitReview(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var form dto.ReviewForm
	bindErr := c.ShouldBind(&form)
	if errs := form.Validate(bindErr); errs.Any() {
		h.details(c, http.StatusUnprocessableEntity, form, errs)
		return
	}

	meal, err := h.meals.Get(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrMealNotFound) {
			h.render.NotFound(c)
			return
		}
		h.render.Fail(c, err, "/mealDetails/"+id)
		return
	}

	if err := h.reviews.Submit(ctx, middleware.GetSession(c), meal, form); err != nil {
		h.log.Error("submit review", "meal_id", id, "error", err)
		h.render.Flash(c, dialog.Error("Review not saved", service.UserMessage(err, "")))
	} else {
		h.render.Flash(c, dialog.Success("Thank you!", "Your review has been posted."))
	}
	seeOther(c, "/mealDetails/"+id)
}
