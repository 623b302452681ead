package service

import (
	"errors"

	"github.com/chefhut/storefront/internal/apiclient"
)

var (
	ErrMealNotFound        = errors.New("meal not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrReviewNotFound      = errors.New("review not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrAlreadyFavorite     = errors.New("meal already in favorites")
	ErrRequestPending      = errors.New("role request already pending")
	ErrPaymentUnavailable  = errors.New("payment not available for order")
	ErrMissingPaymentID    = errors.New("missing payment session id")
	ErrAccountRestricted   = errors.New("account restricted")
	ErrCannotRestrictAdmin = errors.New("cannot mark an admin as fraud")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrSessionExpired      = errors.New("session expired")
	ErrInvalidOrder        = errors.New("invalid order")
)

const MsgGeneric = "Something went wrong. Please try again later."

// UserMessage is the text shown for a failed action: the backend's own
// message when it sent one, otherwise fallback, otherwise MsgGeneric.
func UserMessage(err error, fallback string) string {
	if msg := apiclient.Message(err); msg != "" {
		return msg
	}
	if fallback != "" {
		return fallback
	}
	return MsgGeneric
}
