package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/chefhut/storefront/internal/apiclient"
)

var errNoCheckoutURL = errors.New("checkout session without url")

type CheckoutRequest struct {
	FoodID   string          `json:"foodId"`
	MealName string          `json:"mealName"`
	Price    decimal.Decimal `json:"price"`
	Email    string          `json:"email"`
}

type PaymentRepository interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error)
	ConfirmPayment(ctx context.Context, sessionID string) error
}

type apiPaymentRepo struct{ client *apiclient.Client }

func NewPaymentRepository(client *apiclient.Client) PaymentRepository {
	return &apiPaymentRepo{client: client}
}

// CreateCheckoutSession returns the hosted checkout URL issued by the backend.
func (r *apiPaymentRepo) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	var res struct {
		URL string `json:"url"`
	}
	if err := r.client.Post(ctx, "/create-checkout-session", req, &res); err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	if res.URL == "" {
		return "", errNoCheckoutURL
	}
	return res.URL, nil
}

func (r *apiPaymentRepo) ConfirmPayment(ctx context.Context, sessionID string) error {
	q := url.Values{"session_id": {sessionID}}
	if err := r.client.Patch(ctx, "/payment-success?"+q.Encode(), nil, nil); err != nil {
		return fmt.Errorf("confirm payment: %w", err)
	}
	return nil
}
