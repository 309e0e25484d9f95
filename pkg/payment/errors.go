package payment

import (
	"context"
	"errors"

	"solpay/pkg/types"
)

// PayError is what callers of this package see on failure: one short
// human-readable message, with the underlying cause preserved for
// errors.Is checks. Raw network error bodies never reach the caller.
type PayError struct {
	Message string
	cause   error
}

func (e *PayError) Error() string { return e.Message }

func (e *PayError) Unwrap() error { return e.cause }

// wrapUserError maps a pipeline failure onto a single user-facing message.
func wrapUserError(err error) error {
	return &PayError{Message: userMessage(err), cause: err}
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, types.ErrInvalidAmount):
		return "Enter a valid amount greater than zero."
	case errors.Is(err, types.ErrInvalidDestination):
		return "The merchant account address is not valid."
	case errors.Is(err, types.ErrQuoteUnavailable):
		return "No quote available right now. Please try again."
	case errors.Is(err, types.ErrRouteExpired):
		return "The price moved before the payment could be built. Please try again."
	case errors.Is(err, types.ErrSignerUnavailable):
		return "Connect your wallet first."
	case errors.Is(err, types.ErrUserRejected):
		return "Signing was declined."
	case errors.Is(err, types.ErrBroadcastFailed):
		return "The network did not accept the transaction. Please try again."
	case errors.Is(err, types.ErrExpired):
		return "The transaction expired before it was confirmed. Please retry the payment."
	case errors.Is(err, types.ErrExecutionFailed):
		return "The transaction failed on chain. Please try again."
	case errors.Is(err, types.ErrPaymentInFlight):
		return "A payment is already in progress."
	case errors.Is(err, context.Canceled):
		return "The payment was cancelled."
	case errors.Is(err, context.DeadlineExceeded):
		return "The operation timed out. Please try again."
	default:
		return "Payment failed. Please try again."
	}
}
