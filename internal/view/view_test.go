package view

import (
	"io/fs"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chefhut/storefront/internal/model"
)

func TestTemplates_ParseEveryPage(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	for _, name := range []string{
		"home.html", "meals.html", "meal_details.html", "login.html", "register.html", "order.html",
		"confirm.html", "loading.html", "forbidden.html", "not_found.html", "error.html",
		"dashboard_home.html", "profile.html", "my_orders.html", "favorites.html", "my_reviews.html",
		"add_meal.html", "my_meals.html", "meal_orders.html", "manage_users.html", "manage_requests.html",
		"statistics.html", "payment_success.html", "payment_cancel.html",
	} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
	for _, partial := range []string{"header", "footer", "notices", "sidebar", "field-error", "meal-card"} {
		assert.NotNil(t, tmpl.Lookup(partial), partial)
	}
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "৳500.00", Money(decimal.NewFromInt(500)))
	assert.Equal(t, "৳320.50", Money(decimal.RequireFromString("320.5")))
}

func TestDate(t *testing.T) {
	assert.Equal(t, "Mar 5, 2025", Date("2025-03-05T10:20:00Z"))
	assert.Equal(t, "Mar 5, 2025", Date("2025-03-05"))
	assert.Equal(t, "yesterday", Date("yesterday"))
	assert.Equal(t, "—", Date(""))
}

func TestStars(t *testing.T) {
	assert.Equal(t, "★★★★☆", stars(4.4))
	assert.Equal(t, "★★★★★", stars(9))
	assert.Equal(t, "☆☆☆☆☆", stars(-1))
}

func TestMenu_For(t *testing.T) {
	menu, err := LoadMenu()
	require.NoError(t, err)

	titles := func(role model.Role) []string {
		var out []string
		for _, s := range menu.For(role) {
			out = append(out, s.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Account", "Customer"}, titles(model.RoleUser))
	assert.Equal(t, []string{"Account", "Chef"}, titles(model.RoleChef))
	assert.Equal(t, []string{"Account", "Admin"}, titles(model.RoleAdmin))
}

func TestStatic(t *testing.T) {
	_, err := fs.Stat(Static(), "app.css")
	assert.NoError(t, err)
}
