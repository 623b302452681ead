package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chefhut/storefront/internal/dialog"
	"github.com/chefhut/storefront/internal/dto"
	"github.com/chefhut/storefront/internal/middleware"
	"github.com/chefhut/storefront/internal/model"
	"github.com/chefhut/storefront/internal/service"
	"github.com/chefhut/storefront/internal/view"
)

const msgRestricted = "Your account has been restricted. You cannot place orders or add meals."

type OrderHandler struct {
	orders *service.OrderService
	meals  *service.MealService
	roles  *middleware.Roles
	render *Renderer
	log    *slog.Logger
}

func NewOrderHandler(orders *service.OrderService, meals *service.MealService, roles *middleware.Roles, render *Renderer, log *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, meals: meals, roles: roles, render: render, log: log}
}

type orderRow struct {
	Order   model.Order
	Payment dto.PaymentOption
}

// New shows the order form for ?mealId=, prefilled with the meal and the
// buyer's saved address.
func (h *OrderHandler) New(c *gin.Context) {
	meal, ok := h.meal(c, c.Query("mealId"))
	if !ok {
		return
	}
	profile := h.profile(c)
	data := gin.H{
		"Meal": meal,
		"Form": dto.OrderForm{MealID: meal.ID, Quantity: 1, Address: profile.Address},
	}
	if profile.IsFraud() {
		data["Error"] = msgRestricted
	}
	h.render.HTML(c, http.StatusOK, "order.html", "Order "+meal.FoodName, data)
}

// Place validates the order form, asks for confirmation with the total and
// submits the order once confirmed.
func (h *OrderHandler) Place(c *gin.Context) {
	var form dto.OrderForm
	bindErr := c.ShouldBind(&form)

	meal, ok := h.meal(c, form.MealID)
	if !ok {
		return
	}
	page := gin.H{"Meal": meal, "Form": form}
	if errs := form.Validate(bindErr); errs.Any() {
		page["Errors"] = errs
		h.render.HTML(c, http.StatusUnprocessableEntity, "order.html", "Order "+meal.FoodName, page)
		return
	}

	sess := middleware.GetSession(c)
	draft := h.orders.Draft(sess.Email, meal, form)
	confirm := dialog.NewConfirm("Confirm your order",
		fmt.Sprintf("%d × %s for %s. Deliver to %s?", draft.Qty(), meal.FoodName, view.Money(draft.Total()), draft.UserAddress),
		"/order").
		Labels("Place order", "").
		CancelTo("/mealDetails/"+meal.ID).
		With("mealId", meal.ID).
		With("quantity", strconv.Itoa(form.Quantity)).
		With("userAddress", form.Address)

	if c.PostForm(dialog.Field) == "" {
		h.render.Confirm(c, confirm)
		return
	}
	if !resolve(c, confirm).IsConfirmed() {
		seeOther(c, confirm.CancelURL)
		return
	}

	order, err := h.orders.Place(c.Request.Context(), sess.Email, h.profile(c), meal, form)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, service.ErrAccountRestricted):
			status = http.StatusForbidden
			page["Error"] = msgRestricted
		case errors.Is(err, service.ErrInvalidOrder):
			status = http.StatusUnprocessableEntity
			page["Error"] = "Check the quantity and delivery address."
		default:
			h.log.Error("place order", "meal_id", meal.ID, "error", err)
			page["Error"] = service.UserMessage(err, "")
		}
		h.render.HTML(c, status, "order.html", "Order "+meal.FoodName, page)
		return
	}

	h.render.Flash(c, dialog.Success("Order placed", "Order "+order.ID+" has been sent to the chef."))
	seeOther(c, "/dashboard/my-orders")
}

func (h *OrderHandler) Mine(c *gin.Context) {
	sess := middleware.GetSession(c)
	orders, err := h.orders.ListMine(c.Request.Context(), sess.Email)
	if err != nil {
		h.log.Error("list my orders", "error", err)
		h.render.Dashboard(c, http.StatusBadGateway, "my_orders.html", "My Orders", gin.H{
			"Error": service.UserMessage(err, "Could not load your orders."),
		})
		return
	}
	rows := make([]orderRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, orderRow{Order: o, Payment: h.orders.PaymentOption(o)})
	}
	h.render.Dashboard(c, http.StatusOK, "my_orders.html", "My Orders", gin.H{"Orders": rows})
}

// Pay asks the user to confirm the order total, then starts checkout and
// sends the browser to the hosted payment page.
func (h *OrderHandler) Pay(c *gin.Context) {
	ctx := c.Request.Context()
	sess := middleware.GetSession(c)

	order, err := h.orders.Find(ctx, sess.Email, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			h.render.NotFound(c)
			return
		}
		h.render.Fail(c, err, "/dashboard/my-orders")
		return
	}

	opt := h.orders.PaymentOption(*order)
	if !opt.Enabled {
		h.render.Flash(c, dialog.Warning("Payment unavailable", "This order can be paid once the chef accepts it."))
		seeOther(c, "/dashboard/my-orders")
		return
	}
	confirm := dialog.NewConfirm("Proceed to payment?",
		fmt.Sprintf("Your total price is %s for %s.", view.Money(opt.Total), order.MealName),
		"/dashboard/my-orders/"+order.ID+"/pay").
		Labels("Pay now", "").
		CancelTo("/dashboard/my-orders")
	if c.PostForm(dialog.Field) == "" {
		h.render.Confirm(c, confirm)
		return
	}
	if !resolve(c, confirm).IsConfirmed() {
		seeOther(c, confirm.CancelURL)
		return
	}

	url, err := h.orders.Checkout(ctx, sess.Email, order)
	switch {
	case errors.Is(err, service.ErrPaymentUnavailable):
		h.render.Flash(c, dialog.Warning("Payment unavailable", "This order can be paid once the chef accepts it."))
		seeOther(c, "/dashboard/my-orders")
	case err != nil:
		h.log.Error("start checkout", "order_id", order.ID, "error", err)
		h.render.Flash(c, dialog.Error("Payment failed", service.UserMessage(err, "")))
		seeOther(c, "/dashboard/my-orders")
	default:
		seeOther(c, url)
	}
}

// PaymentSuccess confirms the checkout named by ?session_id=. Without it the
// page is forbidden and nothing is confirmed.
func (h *OrderHandler) PaymentSuccess(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		h.render.Forbidden(c)
		return
	}
	sess := middleware.GetSession(c)
	if err := h.orders.ConfirmPayment(c.Request.Context(), sess.Email, sessionID); err != nil {
		h.render.Fail(c, err, "/dashboard/my-orders")
		return
	}
	h.render.Dashboard(c, http.StatusOK, "payment_success.html", "Payment successful", nil)
}

func (h *OrderHandler) PaymentCancel(c *gin.Context) {
	h.render.Dashboard(c, http.StatusOK, "payment_cancel.html", "Payment cancelled", nil)
}

func (h *OrderHandler) meal(c *gin.Context, id string) (*model.Meal, bool) {
	if id == "" {
		h.render.NotFound(c)
		return nil, false
	}
	meal, err := h.meals.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrMealNotFound) {
			h.render.NotFound(c)
			return nil, false
		}
		h.render.Fail(c, err, "/meals")
		return nil, false
	}
	return meal, true
}

func (h *OrderHandler) profile(c *gin.Context) service.Profile {
	h.roles.Load(c)
	p, _ := middleware.GetProfile(c)
	return p
}
