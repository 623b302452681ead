package dto

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

func TestRegisterForm_PasswordMismatch(t *testing.T) {
	f := RegisterForm{
		Name: "Amina Rahman", Email: "amina@example.com", Address: "Dhaka",
		PhotoURL: "https://img.example/a.png", Password: "secret1", ConfirmPassword: "secret2",
	}
	errs := f.Validate(binding.Validator.ValidateStruct(f))
	assert.Equal(t, MsgPasswordMismatch, errs["ConfirmPassword"])
	assert.Len(t, errs, 1)
}

func TestRegisterForm_FieldMessages(t *testing.T) {
	f := RegisterForm{Name: "A", Email: "nope", Password: "123"}
	errs := f.Validate(binding.Validator.ValidateStruct(f))
	assert.Equal(t, "Enter your full name", errs["Name"])
	assert.Equal(t, "Enter a valid email", errs["Email"])
	assert.Equal(t, "Minimum 6 characters", errs["Password"])
	assert.Equal(t, "Confirm your password", errs["ConfirmPassword"])
}

func TestOrderForm_Validate(t *testing.T) {
	f := OrderForm{MealID: "m1", Quantity: 0, Address: "abc"}
	errs := f.Validate(binding.Validator.ValidateStruct(f))
	assert.Equal(t, "Quantity must be at least 1", errs["Quantity"])
	assert.Equal(t, "Address should be at least 5 characters", errs["Address"])

	ok := OrderForm{MealID: "m1", Quantity: 2, Address: "House 4, Road 7"}
	assert.False(t, ok.Validate(binding.Validator.ValidateStruct(ok)).Any())
}

func TestMealsQuery_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   MealsQuery
		want MealsQuery
	}{
		{"defaults", MealsQuery{}, MealsQuery{Sort: SortCreatedAt, Order: "desc"}},
		{"keeps page for same term", MealsQuery{Search: "curry", Prev: "curry", Page: 3, Sort: SortPrice, Order: "asc"},
			MealsQuery{Search: "curry", Prev: "curry", Page: 3, Sort: SortPrice, Order: "asc"}},
		{"new term resets page", MealsQuery{Search: "biryani", Prev: "curry", Page: 3},
			MealsQuery{Search: "biryani", Prev: "biryani", Page: 0, Sort: SortCreatedAt, Order: "desc"}},
		{"unknown sort", MealsQuery{Sort: "name; drop", Order: "sideways"},
			MealsQuery{Sort: SortCreatedAt, Order: "desc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestSplitIngredients(t *testing.T) {
	assert.Equal(t, []string{"rice", "chicken", "ghee"}, SplitIngredients(" rice, chicken,, ghee ,"))
	assert.Nil(t, SplitIngredients(" "))
}
