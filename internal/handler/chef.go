package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chefhut/storefront/internal/dialog"
	"github.com/chefhut/storefront/internal/dto"
	"github.com/chefhut/storefront/internal/middleware"
	"github.com/chefhut/storefront/internal/model"
	"github.com/chefhut/storefront/internal/service"
	"github.com/chefhut/storefront/internal/statemachine"
)

type ChefHandler struct {
	meals  *service.MealService
	orders *service.OrderService
	render *Renderer
	log    *slog.Logger
}

func NewChefHandler(meals *service.MealService, orders *service.OrderService, render *Renderer, log *slog.Logger) *ChefHandler {
	return &ChefHandler{meals: meals, orders: orders, render: render, log: log}
}

type chefOrderRow struct {
	Order   model.Order
	Actions []statemachine.Transition
}

func (h *ChefHandler) AddMealPage(c *gin.Context) {
	data := gin.H{"Form": dto.MealForm{}}
	if p, _ := middleware.GetProfile(c); p.IsFraud() {
		data["Error"] = msgRestricted
	}
	h.render.Dashboard(c, http.StatusOK, "add_meal.html", "Create Meal", data)
}

func (h *ChefHandler) AddMeal(c *gin.Context) {
	var form dto.MealForm
	bindErr := c.ShouldBind(&form)
	if errs := form.Validate(bindErr); errs.Any() {
		h.render.Dashboard(c, http.StatusUnprocessableEntity, "add_meal.html", "Create Meal", gin.H{"Form": form, "Errors": errs})
		return
	}

	sess := middleware.GetSession(c)
	chef, _ := middleware.GetProfile(c)
	meal, err := h.meals.Create(c.Request.Context(), sess.Email, chef, form)
	if err != nil {
		status := http.StatusBadGateway
		msg := service.UserMessage(err, "")
		if errors.Is(err, service.ErrAccountRestricted) {
			status = http.StatusForbidden
			msg = msgRestricted
		} else {
			h.log.Error("create meal", "error", err)
		}
		h.render.Dashboard(c, status, "add_meal.html", "Create Meal", gin.H{"Form": form, "Error": msg})
		return
	}

	h.render.Flash(c, dialog.Success("Meal created", meal.FoodName+" is now on the menu."))
	seeOther(c, "/dashboard/my-meals")
}

func (h *ChefHandler) MyMeals(c *gin.Context) {
	sess := middleware.GetSession(c)
	meals, err := h.meals.ListByChef(c.Request.Context(), sess.Email)
	data := gin.H{"Meals": meals}
	status := http.StatusOK
	if err != nil {
		h.log.Error("list chef meals", "error", err)
		status = http.StatusBadGateway
		data["Error"] = service.UserMessage(err, "Could not load your meals.")
	}
	h.render.Dashboard(c, status, "my_meals.html", "My Meals", data)
}

func (h *ChefHandler) EditMeal(c *gin.Context) {
	meal, ok := h.ownMeal(c)
	if !ok {
		return
	}
	h.render.Dashboard(c, http.StatusOK, "meal_edit.html", "Update "+meal.FoodName, gin.H{
		"Meal": meal,
		"Form": dto.MealUpdateForm{
			FoodName:              meal.FoodName,
			Price:                 meal.Price.String(),
			Ingredients:           strings.Join(meal.Ingredients, ", "),
			DeliveryArea:          meal.DeliveryArea,
			EstimatedDeliveryTime: meal.EstimatedDeliveryTime,
			FoodImage:             meal.FoodImage,
		},
	})
}

func (h *ChefHandler) UpdateMeal(c *gin.Context) {
	meal, ok := h.ownMeal(c)
	if !ok {
		return
	}
	var form dto.MealUpdateForm
	bindErr := c.ShouldBind(&form)
	if errs := form.Validate(bindErr); errs.Any() {
		h.render.Dashboard(c, http.StatusUnprocessableEntity, "meal_edit.html", "Update "+meal.FoodName, gin.H{
			"Meal":   meal,
			"Form":   form,
			"Errors": errs,
		})
		return
	}

	sess := middleware.GetSession(c)
	if err := h.meals.Update(c.Request.Context(), sess.Email, meal.ID, form); err != nil {
		h.log.Error("update meal", "meal_id", meal.ID, "error", err)
		h.render.Dashboard(c, http.StatusBadGateway, "meal_edit.html", "Update "+meal.FoodName, gin.H{
			"Meal":  meal,
			"Form":  form,
			"Error": service.UserMessage(err, ""),
		})
		return
	}
	h.render.Flash(c, dialog.Success("Meal updated", ""))
	seeOther(c, "/dashboard/my-meals")
}

func (h *ChefHandler) DeleteMeal(c *gin.Context) {
	meal, ok := h.ownMeal(c)
	if !ok {
		return
	}
	confirm := dialog.NewConfirm("Delete "+meal.FoodName+"?", "The meal will be removed from the menu.",
		"/dashboard/my-meals/"+meal.ID+"/delete").
		Labels("Yes, delete it", "").
		CancelTo("/dashboard/my-meals")
	if c.Request.Method == http.MethodGet {
		h.render.Confirm(c, confirm)
		return
	}
	if !resolve(c, confirm).IsConfirmed() {
		seeOther(c, confirm.CancelURL)
		return
	}

	sess := middleware.GetSession(c)
	if err := h.meals.Delete(c.Request.Context(), sess.Email, meal.ID); err != nil {
		h.log.Error("delete meal", "meal_id", meal.ID, "error", err)
		h.render.Flash(c, dialog.Error("Meal not deleted", service.UserMessage(err, "")))
	} else {
		h.render.Flash(c, dialog.Success("Meal deleted", ""))
	}
	seeOther(c, "/dashboard/my-meals")
}

// Orders lists the orders placed for the chef's meals with the status
// changes still open for each.
func (h *ChefHandler) Orders(c *gin.Context) {
	chef, _ := middleware.GetProfile(c)
	orders, err := h.orders.ListForChef(c.Request.Context(), chef.ChefID)
	if err != nil {
		h.log.Error("list chef orders", "chef_id", chef.ChefID, "error", err)
		h.render.Dashboard(c, http.StatusBadGateway, "meal_orders.html", "Order Requests", gin.H{
			"Error": service.UserMessage(err, "Could not load orders."),
		})
		return
	}
	rows := make([]chefOrderRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, chefOrderRow{Order: o, Actions: h.orders.Actions(o)})
	}
	h.render.Dashboard(c, http.StatusOK, "meal_orders.html", "Order Requests", gin.H{"Orders": rows})
}

func (h *ChefHandler) ChangeStatus(c *gin.Context) {
	id, status := c.Param("id"), c.Param("status")
	confirm := dialog.NewConfirm("Mark order as "+status+"?", "The customer will see the new status.",
		"/dashboard/meal-orders/"+id+"/"+status).
		Labels("Yes, update", "").
		CancelTo("/dashboard/meal-orders")
	if c.Request.Method == http.MethodGet {
		h.render.Confirm(c, confirm)
		return
	}
	if !resolve(c, confirm).IsConfirmed() {
		seeOther(c, confirm.CancelURL)
		return
	}

	chef, _ := middleware.GetProfile(c)
	switch err := h.orders.UpdateStatus(c.Request.Context(), chef.ChefID, id, status); {
	case err == nil:
		h.render.Flash(c, dialog.Success("Order updated", "The order is now "+status+"."))
	case errors.Is(err, service.ErrOrderNotFound):
		h.render.NotFound(c)
		return
	case errors.Is(err, statemachine.ErrInvalidTransition):
		h.render.Flash(c, dialog.Warning("Not allowed", "This order cannot be marked as "+status+"."))
	default:
		h.log.Error("update order status", "order_id", id, "status", status, "error", err)
		h.render.Flash(c, dialog.Error("Order not updated", service.UserMessage(err, "")))
	}
	seeOther(c, "/dashboard/meal-orders")
}

// ownMeal loads :id and refuses meals that belong to another chef.
func (h *ChefHandler) ownMeal(c *gin.Context) (*model.Meal, bool) {
	meal, err := h.meals.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrMealNotFound) {
			h.render.NotFound(c)
			return nil, false
		}
		h.render.Fail(c, err, "/dashboard/my-meals")
		return nil, false
	}
	chef, _ := middleware.GetProfile(c)
	if !ownsMeal(meal, middleware.GetSession(c).Email, chef.ChefID) {
		h.render.Forbidden(c)
		return nil, false
	}
	return meal, true
}

// ownsMeal matches on the chef's email, or on the chef id for meals saved
// without one.
func ownsMeal(meal *model.Meal, email, chefID string) bool {
	if meal.UserEmail != "" {
		return meal.UserEmail == email
	}
	return meal.ChefID != "" && meal.ChefID == chefID
}
