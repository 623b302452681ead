package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chefhut/storefront/internal/cache"
	"github.com/chefhut/storefront/internal/dto"
	"github.com/chefhut/storefront/internal/model"
	"github.com/chefhut/storefront/internal/repository"
	"github.com/chefhut/storefront/internal/statemachine"
)

type OrderService struct {
	orders   repository.OrderRepository
	payments repository.PaymentRepository
	cache    cache.Cache
	ttl      time.Duration
	metrics  Metrics
}

func NewOrderService(orders repository.OrderRepository, payments repository.PaymentRepository, c cache.Cache, ttl time.Duration, m Metrics) *OrderService {
	return &OrderService{orders: orders, payments: payments, cache: c, ttl: ttl, metrics: orNop(m)}
}

func myOrdersKey(email string) string { return cache.Key("my-orders", email) }
func chefOrdersKey(chefID string) string { return cache.Key("chef-orders", chefID) }

// Draft builds the order that Place would submit, so the confirmation step
// can show its total.
func (s *OrderService) Draft(email string, meal *model.Meal, form dto.OrderForm) model.Order {
	return model.Order{
		FoodID:                meal.ID,
		MealName:              meal.FoodName,
		Price:                 meal.Price,
		Quantity:              form.Quantity,
		ChefName:              meal.ChefName,
		ChefID:                meal.ChefID,
		EstimatedDeliveryTime: meal.EstimatedDeliveryTime,
		PaymentStatus:         model.PaymentPending,
		UserEmail:             email,
		UserAddress:           strings.TrimSpace(form.Address),
		OrderStatus:           model.OrderPending,
	}
}

// Place submits a new order. Fraud accounts are refused.
func (s *OrderService) Place(ctx context.Context, email string, buyer Profile, meal *model.Meal, form dto.OrderForm) (*model.Order, error) {
	if buyer.IsFraud() {
		return nil, ErrAccountRestricted
	}
	if form.Quantity < 1 || len(strings.TrimSpace(form.Address)) < dto.MinAddressLength {
		return nil, ErrInvalidOrder
	}
	order := s.Draft(email, meal, form)
	if err := s.orders.Create(ctx, &order); err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, myOrdersKey(email), chefOrdersKey(order.ChefID))
	}
	return &order, nil
}

func (s *OrderService) ListMine(ctx context.Context, email string) ([]model.Order, error) {
	return cache.Query(ctx, s.cache, myOrdersKey(email), s.ttl, func(ctx context.Context) ([]model.Order, error) {
		return s.orders.ListByEmail(ctx, email)
	})
}

func (s *OrderService) PaymentOption(o model.Order) dto.PaymentOption {
	opt := dto.PaymentOption{Enabled: o.Payable(), Total: o.Total()}
	switch {
	case o.Paid():
		opt.Label = "Paid"
	case opt.Enabled:
		opt.Label = "Pay"
	case o.Status() == model.OrderCancelled:
		opt.Label = "Cancelled"
	default:
		opt.Label = "Awaiting chef"
	}
	return opt
}

// Find returns the signed-in user's order by id, read fresh from the backend.
func (s *OrderService) Find(ctx context.Context, email, id string) (*model.Order, error) {
	orders, err := s.orders.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, ErrOrderNotFound
}

// Checkout opens a hosted checkout session for a payable order and returns its
// URL. Orders that are not payable return ErrPaymentUnavailable without any
// backend call.
func (s *OrderService) Checkout(ctx context.Context, email string, o *model.Order) (string, error) {
	if !o.Payable() {
		return "", ErrPaymentUnavailable
	}
	url, err := s.payments.CreateCheckoutSession(ctx, repository.CheckoutRequest{
		FoodID:   o.ID,
		MealName: o.MealName,
		Price:    o.Total(),
		Email:    email,
	})
	if err != nil {
		return "", err
	}
	s.metrics.CheckoutRedirect(ctx)
	return url, nil
}

func (s *OrderService) ConfirmPayment(ctx context.Context, email, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrMissingPaymentID
	}
	if err := s.payments.ConfirmPayment(ctx, sessionID); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, myOrdersKey(email))
	}
	return nil
}

func (s *OrderService) ListForChef(ctx context.Context, chefID string) ([]model.Order, error) {
	return cache.Query(ctx, s.cache, chefOrdersKey(chefID), s.ttl, func(ctx context.Context) ([]model.Order, error) {
		return s.orders.ListByChef(ctx, chefID)
	})
}

// Actions lists the status changes the chef may make on o.
func (s *OrderService) Actions(o model.Order) []statemachine.Transition {
	return statemachine.ValidTransitionsFrom(o.Status(), statemachine.ActorChef)
}

// UpdateStatus moves one of the chef's orders to status. Illegal transitions
// fail before the backend is called.
func (s *OrderService) UpdateStatus(ctx context.Context, chefID, orderID, status string) error {
	orders, err := s.orders.ListByChef(ctx, chefID)
	if err != nil {
		return fmt.Errorf("list chef orders: %w", err)
	}
	var order *model.Order
	for i := range orders {
		if orders[i].ID == orderID {
			order = &orders[i]
			break
		}
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if err := statemachine.CanTransition(order.Status(), status, statemachine.ActorChef); err != nil {
		return err
	}
	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, chefOrdersKey(chefID), myOrdersKey(order.UserEmail))
	}
	return nil
}
