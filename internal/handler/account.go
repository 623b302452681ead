package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chefhut/storefront/internal/dialog"
	"github.com/chefhut/storefront/internal/dto"
	"github.com/chefhut/storefront/internal/middleware"
	"github.com/chefhut/storefront/internal/model"
	"github.com/chefhut/storefront/internal/service"
)

// AccountHandler serves the dashboard pages every signed-in user has:
// profile, favorites and reviews.
type AccountHandler struct {
	auth      *service.AuthService
	profiles  *service.ProfileService
	favorites *service.FavoriteService
	reviews   *service.ReviewService
	render    *Renderer
	log       *slog.Logger
}

func NewAccountHandler(
	auth *service.AuthService,
	profiles *service.ProfileService,
	favorites *service.FavoriteService,
	reviews *service.ReviewService,
	render *Renderer,
	log *slog.Logger,
) *AccountHandler {
	return &AccountHandler{
		auth:      auth,
		profiles:  profiles,
		favorites: favorites,
		reviews:   reviews,
		render:    render,
		log:       log,
	}
}

func (h *AccountHandler) Home(c *gin.Context) {
	h.render.Dashboard(c, http.StatusOK, "dashboard_home.html", "Dashboard", nil)
}

func (h *AccountHandler) Profile(c *gin.Context) {
	sess := middleware.GetSession(c)
	page, err := h.profiles.Get(c.Request.Context(), sess.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			h.render.NotFound(c)
			return
		}
		h.render.Fail(c, err, "/dashboard/profile")
		return
	}
	h.render.Dashboard(c, http.StatusOK, "profile.html", "My Profile", gin.H{"Page": page})
}

func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	sess := middleware.GetSession(c)
	name := c.PostForm("displayName")
	if name == "" {
		h.render.Flash(c, dialog.Error("Profile not updated", "Display name is required."))
		seeOther(c, "/dashboard/profile")
		return
	}
	if err := h.auth.UpdateProfile(c.Request.Context(), sess, name, c.PostForm("photoURL")); err != nil {
		h.log.Error("update profile", "error", err)
		h.render.Flash(c, dialog.Error("Profile not updated", service.UserMessage(err, "")))
	} else {
		h.render.Flash(c, dialog.Success("Profile updated", ""))
	}
	seeOther(c, "/dashboard/profile")
}

func roleRequestDialog(role model.Role) dialog.Confirm {
	title := "Become a Chef?"
	if role == model.RoleAdmin {
		title = "Become an Admin?"
	}
	return dialog.NewConfirm(title, "An admin will review your request.", "/dashboard/profile/request").
		Labels("Send request", "").
		CancelTo("/dashboard/profile").
		With("requestType", string(role))
}

// RequestRole asks for a chef or admin role after a confirmation step.
func (h *AccountHandler) RequestRole(c *gin.Context) {
	var form dto.RoleRequestForm
	if err := c.ShouldBind(&form); err != nil {
		h.render.NotFound(c)
		return
	}
	role := model.ParseRole(form.Type)
	confirm := roleRequestDialog(role)
	if c.Request.Method == http.MethodGet {
		h.render.Confirm(c, confirm)
		return
	}
	if !resolve(c, confirm).IsConfirmed() {
		seeOther(c, confirm.CancelURL)
		return
	}

	ctx := c.Request.Context()
	sess := middleware.GetSession(c)
	var userID string
	if page, err := h.profiles.Get(ctx, sess.Email); err == nil && page.User != nil {
		userID = page.User.ID
	}

	switch err := h.profiles.RequestRole(ctx, sess, userID, role); {
	case err == nil:
		h.render.Flash(c, dialog.Success("Request sent", "Your "+string(role)+" request is pending review."))
	case errors.Is(err, service.ErrRequestPending):
		h.render.Flash(c, dialog.Info("Already pending", "You already have a pending "+string(role)+" request."))
	default:
		h.log.Error("request role", "role", role, "error", err)
		h.render.Flash(c, dialog.Error("Request failed", service.UserMessage(err, "")))
	}
	seeOther(c, "/dashboard/profile")
}

func (h *AccountHandler) Favorites(c *gin.Context) {
	sess := middleware.GetSession(c)
	favs, err := h.favorites.List(c.Request.Context(), sess.Email)
	data := gin.H{"Favorites": favs}
	status := http.StatusOK
	if err != nil {
		h.log.Error("list favorites", "error", err)
		status = http.StatusBadGateway
		data["Error"] = service.UserMessage(err, "Could not load your favorites.")
	}
	h.render.Dashboard(c, status, "favorites.html", "Favorite Meals", data)
}

// RemoveFavorite deletes a favorite after confirmation. The list drops the
// entry at once and gets it back if the backend refuses.
func (h *AccountHandler) RemoveFavorite(c *gin.Context) {
	id := c.Param("id")
	confirm := dialog.NewConfirm("Remove favorite?", "This meal will be removed from your favorites.",
		"/dashboard/favorites/"+id+"/delete").
		Labels("Yes, remove it", "").
		CancelTo("/dashboard/favorites")
	if c.Request.Method == http.MethodGet {
		h.render.Confirm(c, confirm)
		return
	}
	if !resolve(c, confirm).IsConfirmed() {
		seeOther(c, confirm.CancelURL)
		return
	}

	sess := middleware.GetSession(c)
	if _, err := h.favorites.Remove(c.Request.Context(), sess.Email, id); err != nil {
		h.log.Error("remove favorite", "favorite_id", id, "error", err)
		h.render.Flash(c, dialog.Error("Could not remove favorite", service.UserMessage(err, "")))
	} else {
		h.render.Flash(c, dialog.Success("Removed", "The meal was removed from your favorites."))
	}
	seeOther(c, "/dashboard/favorites")
}

func (h *AccountHandler) Reviews(c *gin.Context) {
	sess := middleware.GetSession(c)
	reviews, err := h.reviews.ListMine(c.Request.Context(), sess.Email)
	data := gin.H{"Reviews": reviews}
	status := http.StatusOK
	if err != nil {
		h.log.Error("list my reviews", "error", err)
		status = http.StatusBadGateway
		data["Error"] = service.UserMessage(err, "Could not load your reviews.")
	}
	h.render.Dashboard(c, status, "my_reviews.html", "My Reviews", data)
}

func (h *AccountHandler) EditReview(c *gin.Context) {
	review, ok := h.ownReview(c)
	if !ok {
		return
	}
	h.render.Dashboard(c, http.StatusOK, "review_edit.html", "Edit review", gin.H{
		"Review": review,
		"Form":   dto.ReviewForm{Rating: review.Rating, Comment: review.Comment},
	})
}

func (h *AccountHandler) UpdateReview(c *gin.Context) {
	review, ok := h.ownReview(c)
	if !ok {
		return
	}
	var form dto.ReviewForm
	bindErr := c.ShouldBind(&form)
	if errs := form.Validate(bindErr); errs.Any() {
		h.render.Dashboard(c, http.StatusUnprocessableEntity, "review_edit.html", "Edit review", gin.H{
			"Review": review,
			"Form":   form,
			"Errors": errs,
		})
		return
	}

	sess := middleware.GetSession(c)
	if err := h.reviews.Update(c.Request.Context(), sess.Email, review.ID, form); err != nil {
		h.log.Error("update review", "review_id", review.ID, "error", err)
		h.render.Flash(c, dialog.Error("Review not updated", service.UserMessage(err, "")))
	} else {
		h.render.Flash(c, dialog.Success("Review updated", ""))
	}
	seeOther(c, "/dashboard/reviews")
}

func (h *AccountHandler) DeleteReview(c *gin.Context) {
	id := c.Param("id")
	confirm := dialog.NewConfirm("Delete review?", "This cannot be undone.", "/dashboard/reviews/"+id+"/delete").
		Labels("Yes, delete it", "").
		CancelTo("/dashboard/reviews")
	if c.Request.Method == http.MethodGet {
		h.render.Confirm(c, confirm)
		return
	}
	if !resolve(c, confirm).IsConfirmed() {
		seeOther(c, confirm.CancelURL)
		return
	}

	sess := middleware.GetSession(c)
	switch err := h.reviews.Delete(c.Request.Context(), sess.Email, id); {
	case err == nil:
		h.render.Flash(c, dialog.Success("Review deleted", ""))
	case errors.Is(err, service.ErrReviewNotFound):
		h.render.NotFound(c)
		return
	default:
		h.log.Error("delete review", "review_id", id, "error", err)
		h.render.Flash(c, dialog.Error("Review not deleted", service.UserMessage(err, "")))
	}
	seeOther(c, "/dashboard/reviews")
}

func (h *AccountHandler) ownReview(c *gin.Context) (*model.Review, bool) {
	sess := middleware.GetSession(c)
	id := c.Param("id")
	reviews, err := h.reviews.ListMine(c.Request.Context(), sess.Email)
	if err != nil {
		h.render.Fail(c, err, "/dashboard/reviews")
		return nil, false
	}
	for i := range reviews {
		if reviews[i].ID == id {
			return &reviews[i], true
		}
	}
	h.render.NotFound(c)
	return nil, false
}
