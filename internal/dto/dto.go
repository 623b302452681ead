package dto

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/chefhut/storefront/internal/model"
)

// FieldErrors maps a form field name to the message shown under it.
type FieldErrors map[string]string

func (e FieldErrors) Any() bool { return len(e) > 0 }

// Translate turns a gin binding error into per-field messages, keyed by the
// struct field name and looked up as "Field.tag" in messages.
func Translate(err error, messages map[string]string) FieldErrors {
	out := FieldErrors{}
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_form"] = "Please check the form and try again."
		return out
	}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
			out[fe.Field()] = msg
			continue
		}
		out[fe.Field()] = "Invalid value"
	}
	return out
}

// --- Auth ---

type RegisterForm struct {
	Name            string `form:"name" binding:"required,min=2"`
	Email           string `form:"email" binding:"required,email"`
	Address         string `form:"address" binding:"required,min=3"`
	PhotoURL        string `form:"photoURL" binding:"required"`
	Password        string `form:"password" binding:"required,min=6"`
	ConfirmPassword string `form:"confirmPassword" binding:"required"`
	Redirect        string `form:"redirect"`
}

var registerMessages = map[string]string{
	"Name.required":            "Name is required",
	"Name.min":                 "Enter your full name",
	"Email.required":           "Email is required",
	"Email.email":              "Enter a valid email",
	"Address.required":         "Address is required",
	"Address.min":              "Enter a valid address",
	"PhotoURL.required":        "Profile image URL is required",
	"Password.required":        "Password is required",
	"Password.min":             "Minimum 6 characters",
	"ConfirmPassword.required": "Confirm your password",
}

const MsgPasswordMismatch = "Passwords do not match"

// Validate combines the binding error with the password confirmation check.
func (f RegisterForm) Validate(bindErr error) FieldErrors {
	errs := Translate(bindErr, registerMessages)
	if _, ok := errs["ConfirmPassword"]; !ok && f.Password != f.ConfirmPassword {
		errs["ConfirmPassword"] = MsgPasswordMismatch
	}
	return errs
}

type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
	Redirect string `form:"redirect"`
}

var loginMessages = map[string]string{
	"Email.required":    "Email is required",
	"Email.email":       "Enter a valid email",
	"Password.required": "Password is required",
}

func (f LoginForm) Validate(bindErr error) FieldErrors {
	return Translate(bindErr, loginMessages)
}

// --- Meals ---

const (
	SortCreatedAt = "createdAt"
	SortPrice     = "price"
	SortRating    = "rating"
)

// MealsQuery is the meals page state. Prev carries the search term the page
// number belongs to, so a new term starts over at page 0.
type MealsQuery struct {
	Search string `form:"search"`
	Prev   string `form:"prev"`
	Sort   string `form:"sort"`
	Order  string `form:"order"`
	Page   int    `form:"page"`
}

func (q MealsQuery) Normalize() MealsQuery {
	q.Search = strings.TrimSpace(q.Search)
	q.Prev = strings.TrimSpace(q.Prev)
	switch q.Sort {
	case SortCreatedAt, SortPrice, SortRating:
	default:
		q.Sort = SortCreatedAt
	}
	if q.Order != "asc" {
		q.Order = "desc"
	}
	if q.Page < 0 || q.Search != q.Prev {
		q.Page = 0
	}
	q.Prev = q.Search
	return q
}

type MealsPage struct {
	Query      MealsQuery
	Meals      []model.Meal
	Total      int
	TotalPages int
	Pages      []int
}

type MealDetails struct {
	Meal    *model.Meal
	Reviews []model.Review
}

type MealForm struct {
	FoodName              string  `form:"foodName" binding:"required"`
	ChefName              string  `form:"chefName" binding:"required"`
	FoodImage             string  `form:"foodImage" binding:"required"`
	Price                 string  `form:"price" binding:"required,numeric"`
	Rating                float64 `form:"rating" binding:"omitempty,min=0,max=5"`
	Ingredients           string  `form:"ingredients" binding:"required"`
	DeliveryArea          string  `form:"deliveryArea"`
	EstimatedDeliveryTime string  `form:"estimatedDeliveryTime" binding:"required"`
	ChefExperience        string  `form:"chefExperience"`
}

var mealMessages = map[string]string{
	"FoodName.required":              "Food name is required",
	"ChefName.required":              "Chef name is required",
	"FoodImage.required":             "Food image URL is required",
	"Price.required":                 "Price is required",
	"Price.numeric":                  "Price must be a number",
	"Rating.min":                     "Rating must be between 0 and 5",
	"Rating.max":                     "Rating must be between 0 and 5",
	"Ingredients.required":           "Ingredients are required",
	"EstimatedDeliveryTime.required": "Estimated delivery time is required",
}

func (f MealForm) Validate(bindErr error) FieldErrors {
	return Translate(bindErr, mealMessages)
}

func (f MealForm) PriceValue() (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(f.Price))
}

// SplitIngredients splits a comma separated list, dropping blanks.
func SplitIngredients(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type MealUpdateForm struct {
	FoodName              string `form:"foodName" binding:"required"`
	Price                 string `form:"price" binding:"required,numeric"`
	Ingredients           string `form:"ingredients"`
	DeliveryArea          string `form:"deliveryArea"`
	EstimatedDeliveryTime string `form:"estimatedDeliveryTime"`
	FoodImage             string `form:"foodImage"`
}

func (f MealUpdateForm) Validate(bindErr error) FieldErrors {
	return Translate(bindErr, mealMessages)
}

// --- Orders ---

const MinAddressLength = 5

type OrderForm struct {
	MealID   string `form:"mealId" binding:"required"`
	Quantity int    `form:"quantity" binding:"required,min=1"`
	Address  string `form:"userAddress" binding:"required,min=5"`
}

var orderMessages = map[string]string{
	"MealID.required":   "Meal is required",
	"Quantity.required": "Quantity must be at least 1",
	"Quantity.min":      "Quantity must be at least 1",
	"Address.required":  "Delivery address is required",
	"Address.min":       "Address should be at least 5 characters",
}

func (f OrderForm) Validate(bindErr error) FieldErrors {
	return Translate(bindErr, orderMessages)
}

type OrderStatusForm struct {
	Status string `form:"orderStatus" binding:"required,oneof=accepted cancelled delivered"`
}

// PaymentOption is what the orders table shows in the payment column.
type PaymentOption struct {
	Enabled bool
	Total   decimal.Decimal
	Label   string
}

// --- Reviews ---

type ReviewForm struct {
	Rating  float64 `form:"rating" binding:"required,min=1,max=5"`
	Comment string  `form:"comment" binding:"required"`
}

var reviewMessages = map[string]string{
	"Rating.required":  "Pick a rating",
	"Rating.min":       "Rating must be between 1 and 5",
	"Rating.max":       "Rating must be between 1 and 5",
	"Comment.required": "Write a comment",
}

func (f ReviewForm) Validate(bindErr error) FieldErrors {
	return Translate(bindErr, reviewMessages)
}

// --- Profile / admin ---

type RoleRequestForm struct {
	Type string `form:"requestType" binding:"required,oneof=chef admin"`
}

type ProfilePage struct {
	User            *model.User
	Pending         []model.RoleRequest
	ChefPending     bool
	AdminPending    bool
	CanRequestChef  bool
	CanRequestAdmin bool
}

// --- JSON ---

type SessionUser struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

type SessionResponse struct {
	User   *SessionUser `json:"user"`
	Role   model.Role   `json:"role"`
	Status string       `json:"status,omitempty"`
}
