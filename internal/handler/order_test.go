package handler

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chefhut/storefront/internal/model"
)

const buyer = "buyer@example.com"

func seedOrders(h *harness) {
	h.backend.orders = []model.Order{
		{ID: "o-accepted", MealName: "Beef Tehari", Price: decimal.NewFromInt(250), Quantity: 2, OrderStatus: "Accepted", PaymentStatus: "pending", UserEmail: buyer},
		{ID: "o-waiting", MealName: "Chicken Khichuri", Price: decimal.NewFromInt(180), Quantity: 1, OrderStatus: "pending", PaymentStatus: "Pending", UserEmail: buyer},
		{ID: "o-paid", MealName: "Shorshe Ilish", Price: decimal.NewFromInt(400), Quantity: 1, OrderStatus: "accepted", PaymentStatus: "Paid", UserEmail: buyer},
	}
}

func TestMyOrders_PayOnlyForAcceptedUnpaidOrders(t *testing.T) {
	h := newHarness(t)
	seedOrders(h)
	cookie := h.signIn(t, buyer, model.RoleUser)

	w := h.get("/dashboard/my-orders", cookie)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `action="/dashboard/my-orders/o-accepted/pay"`)
	assert.Contains(t, body, "Pay ৳500.00")
	assert.NotContains(t, body, "/dashboard/my-orders/o-waiting/pay")
	assert.NotContains(t, body, "/dashboard/my-orders/o-paid/pay")
	assert.Contains(t, body, "Awaiting chef")
	assert.Zero(t, h.backend.count("POST /create-checkout-session"))
}

func TestPay_AsksForConfirmationFirst(t *testing.T) {
	h := newHarness(t)
	seedOrders(h)
	cookie := h.signIn(t, buyer, model.RoleUser)

	w := h.post("/dashboard/my-orders/o-accepted/pay", nil, cookie)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Proceed to payment?")
	assert.Contains(t, body, "Your total price is ৳500.00 for Beef Tehari.")
	assert.Contains(t, body, `action="/dashboard/my-orders/o-accepted/pay"`)
	assert.Zero(t, h.backend.count("POST /create-checkout-session"))
}

func TestPay_CancelledMakesNoCheckoutCall(t *testing.T) {
	h := newHarness(t)
	seedOrders(h)
	cookie := h.signIn(t, buyer, model.RoleUser)

	w := h.post("/dashboard/my-orders/o-accepted/pay", url.Values{"confirm": {"no"}}, cookie)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard/my-orders", w.Header().Get("Location"))
	assert.Zero(t, h.backend.count("POST /create-checkout-session"))
}

func TestPay_ConfirmedRedirectsToCheckoutWithTotal(t *testing.T) {
	h := newHarness(t)
	seedOrders(h)
	cookie := h.signIn(t, buyer, model.RoleUser)

	w := h.post("/dashboard/my-orders/o-accepted/pay", url.Values{"confirm": {"yes"}}, cookie)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "https://checkout.example/pay/cs_1", w.Header().Get("Location"))
	assert.Equal(t, 1, h.backend.count("POST /create-checkout-session"))
	assert.True(t, decimal.NewFromInt(500).Equal(h.backend.lastCheckout.Price))
	assert.Equal(t, "o-accepted", h.backend.lastCheckout.FoodID)
	assert.Equal(t, buyer, h.backend.lastCheckout.Email)
	assert.Equal(t, "Bearer tok", h.backend.lastAuth)
}

func TestPay_NotPayableMakesNoCheckoutCall(t *testing.T) {
	for _, id := range []string{"o-waiting", "o-paid"} {
		t.Run(id, func(t *testing.T) {
			h := newHarness(t)
			seedOrders(h)
			cookie := h.signIn(t, buyer, model.RoleUser)

			w := h.post("/dashboard/my-orders/"+id+"/pay", url.Values{"confirm": {"yes"}}, cookie)

			require.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, "/dashboard/my-orders", w.Header().Get("Location"))
			assert.Zero(t, h.backend.count("POST /create-checkout-session"))

			page := h.get("/dashboard/my-orders", cookie)
			assert.Contains(t, page.Body.String(), "Payment unavailable")
		})
	}
}

func TestPay_UnknownOrder(t *testing.T) {
	h := newHarness(t)
	seedOrders(h)
	cookie := h.signIn(t, buyer, model.RoleUser)

	w := h.post("/dashboard/my-orders/o-missing/pay", nil, cookie)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, h.backend.count("POST /create-checkout-session"))
}

func TestPaymentSuccess_WithoutSessionIDIsForbidden(t *testing.T) {
	h := newHarness(t)
	cookie := h.signIn(t, buyer, model.RoleUser)

	w := h.get("/dashboard/payment-success", cookie)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, h.backend.count("PATCH /payment-success"))
}

func TestPaymentSuccess_ConfirmsOncePerVisit(t *testing.T) {
	h := newHarness(t)
	cookie := h.signIn(t, buyer, model.RoleUser)

	w := h.get("/dashboard/payment-success?session_id=cs_1", cookie)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, h.backend.count("PATCH /payment-success"))
	assert.Equal(t, "cs_1", h.backend.lastPaymentSession)

	h.get("/dashboard/payment-success?session_id=cs_1", cookie)
	assert.Equal(t, 2, h.backend.count("PATCH /payment-success"))
}

func TestPaymentSuccess_RequiresSignIn(t *testing.T) {
	h := newHarness(t)

	w := h.get("/dashboard/payment-success?session_id=cs_1")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?redirect=%2Fdashboard%2Fpayment-success%3Fsession_id%3Dcs_1", w.Header().Get("Location"))
	assert.Zero(t, h.backend.count("PATCH /payment-success"))
}

func seedMeal(h *harness) {
	h.backend.meals["m1"] = model.Meal{ID: "m1", FoodName: "Chicken Khichuri", ChefName: "Ayesha", ChefID: "chef-7", Price: decimal.NewFromInt(180), EstimatedDeliveryTime: "45 min"}
}

func orderForm(confirm string) url.Values {
	form := url.Values{
		"mealId":      {"m1"},
		"quantity":    {"2"},
		"userAddress": {"12 Lake Road, Dhaka"},
	}
	if confirm != "" {
		form.Set("confirm", confirm)
	}
	return form
}

func TestPlaceOrder_AsksForConfirmationFirst(t *testing.T) {
	h := newHarness(t)
	seedMeal(h)
	cookie := h.signIn(t, buyer, model.RoleUser)

	w := h.post("/order", orderForm(""), cookie)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Confirm your order")
	assert.Contains(t, body, "2 × Chicken Khichuri for ৳360.00")
	assert.Contains(t, body, `name="userAddress" value="12 Lake Road, Dhaka"`)
	assert.Zero(t, h.backend.count("POST /orders"))
}

func TestPlaceOrder_Confirmed(t *testing.T) {
	h := newHarness(t)
	seedMeal(h)
	cookie := h.signIn(t, buyer, model.RoleUser)

	w := h.post("/order", orderForm("yes"), cookie)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard/my-orders", w.Header().Get("Location"))
	assert.Equal(t, 1, h.backend.count("POST /orders"))

	page := h.get("/dashboard/my-orders", cookie)
	assert.Contains(t, page.Body.String(), "Order o-new has been sent to the chef.")
}

func TestPlaceOrder_Cancelled(t *testing.T) {
	h := newHarness(t)
	seedMeal(h)
	cookie := h.signIn(t, buyer, model.RoleUser)

	w := h.post("/order", orderForm("no"), cookie)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/mealDetails/m1", w.Header().Get("Location"))
	assert.Zero(t, h.backend.count("POST /orders"))
}

func TestPlaceOrder_ShortAddress(t *testing.T) {
	h := newHarness(t)
	seedMeal(h)
	cookie := h.signIn(t, buyer, model.RoleUser)

	form := orderForm("yes")
	form.Set("userAddress", "Dhk")
	w := h.post("/order", form, cookie)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Address should be at least 5 characters")
	assert.Zero(t, h.backend.count("POST /orders"))
}

func TestPlaceOrder_FraudAccountRestricted(t *testing.T) {
	h := newHarness(t)
	seedMeal(h)
	cookie := h.signIn(t, buyer, model.RoleUser)
	u := h.backend.users[buyer]
	u.Status = model.StatusFraud
	h.backend.users[buyer] = u

	w := h.post("/order", orderForm("yes"), cookie)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Your account has been restricted.")
	assert.Zero(t, h.backend.count("POST /orders"))
}
