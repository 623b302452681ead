package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// The backend stores prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type Role string

const (
	RoleUser  Role = "user"
	RoleChef  Role = "chef"
	RoleAdmin Role = "admin"
)

// ParseRole falls back to RoleUser for anything unknown.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleChef:
		return RoleChef
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

type AccountStatus string

const (
	StatusActive AccountStatus = "active"
	StatusFraud  AccountStatus = "fraud"
)

type User struct {
	ID          string        `json:"_id,omitempty"`
	Email       string        `json:"email"`
	DisplayName string        `json:"displayName"`
	PhotoURL    string        `json:"photoURL"`
	Address     string        `json:"address"`
	Role        Role          `json:"role"`
	Status      AccountStatus `json:"status"`
	ChefID      string        `json:"chefId,omitempty"`
}

func (u User) IsFraud() bool { return u.Status == StatusFraud }

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

type RoleRequest struct {
	ID            string        `json:"_id,omitempty"`
	UserID        string        `json:"userId,omitempty"`
	UserName      string        `json:"userName"`
	UserEmail     string        `json:"userEmail"`
	RequestType   Role          `json:"requestType"`
	RequestStatus RequestStatus `json:"requestStatus,omitempty"`
	RequestTime   string        `json:"requestTime,omitempty"`
}

type Meal struct {
	ID                    string          `json:"_id,omitempty"`
	FoodName              string          `json:"foodName"`
	ChefName              string          `json:"chefName"`
	ChefID                string          `json:"chefId"`
	FoodImage             string          `json:"foodImage"`
	Price                 decimal.Decimal `json:"price"`
	Rating                float64         `json:"rating"`
	Ingredients           []string        `json:"ingredients"`
	DeliveryArea          string          `json:"deliveryArea"`
	EstimatedDeliveryTime string          `json:"estimatedDeliveryTime"`
	ChefExperience        string          `json:"chefExperience,omitempty"`
	UserEmail             string          `json:"userEmail,omitempty"`
	CreatedAt             string          `json:"createdAt,omitempty"`
}

const (
	OrderPending   = "pending"
	OrderAccepted  = "accepted"
	OrderCancelled = "cancelled"
	OrderDelivered = "delivered"

	PaymentPending = "Pending"
	PaymentPaid    = "Paid"
)

type Order struct {
	ID                    string          `json:"_id,omitempty"`
	FoodID                string          `json:"foodId"`
	MealName              string          `json:"mealName"`
	Price                 decimal.Decimal `json:"price"`
	Quantity              int             `json:"quantity"`
	ChefName              string          `json:"chefName"`
	ChefID                string          `json:"chefId"`
	EstimatedDeliveryTime string          `json:"estimatedDeliveryTime"`
	PaymentStatus         string          `json:"paymentStatus"`
	UserEmail             string          `json:"userEmail"`
	UserAddress           string          `json:"userAddress"`
	OrderStatus           string          `json:"orderStatus"`
	OrderTime             string          `json:"orderTime,omitempty"`
}

// Status is the lower-cased order status; an empty status reads as pending.
func (o Order) Status() string {
	s := strings.ToLower(strings.TrimSpace(o.OrderStatus))
	if s == "" {
		return OrderPending
	}
	return s
}

func (o Order) Qty() int {
	if o.Quantity < 1 {
		return 1
	}
	return o.Quantity
}

func (o Order) Total() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(int64(o.Qty())))
}

// Payable reports whether checkout may start: accepted by the chef and not yet paid.
func (o Order) Payable() bool {
	return o.Status() == OrderAccepted && strings.EqualFold(o.PaymentStatus, PaymentPending)
}

func (o Order) Paid() bool { return strings.EqualFold(o.PaymentStatus, PaymentPaid) }

type Review struct {
	ID            string  `json:"_id,omitempty"`
	FoodID        string  `json:"foodId"`
	MealName      string  `json:"mealName,omitempty"`
	ReviewerName  string  `json:"reviewerName"`
	ReviewerImage string  `json:"reviewerImage"`
	ReviewerEmail string  `json:"reviewerEmail,omitempty"`
	Rating        float64 `json:"rating"`
	Comment       string  `json:"comment"`
	Date          string  `json:"date,omitempty"`
}

type Favorite struct {
	ID        string          `json:"_id,omitempty"`
	UserEmail string          `json:"userEmail"`
	MealID    string          `json:"mealId"`
	MealName  string          `json:"mealName"`
	ChefID    string          `json:"chefId"`
	ChefName  string          `json:"chefName"`
	Price     decimal.Decimal `json:"price"`
	AddedTime string          `json:"addedTime,omitempty"`
}

type PlatformStats struct {
	TotalPayments   decimal.Decimal `json:"totalPayments"`
	TotalUsers      int             `json:"totalUsers"`
	PendingOrders   int             `json:"pendingOrders"`
	DeliveredOrders int             `json:"deliveredOrders"`
}
