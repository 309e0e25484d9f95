package types

import "errors"

// Failure taxonomy for the payment pipeline. Every component returns one of
// these (wrapped with context); the orchestrator is the only place they are
// turned into user-facing messages. All of them are recoverable by retrying
// the whole payment from the start.
var (
	// ErrInvalidAmount: the requested output amount is not a positive
	// atomic integer. Detected before any network call.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidDestination: the merchant account is not a well-formed
	// address. Detected before any network call.
	ErrInvalidDestination = errors.New("invalid destination account")

	// ErrQuoteUnavailable: the aggregator could not produce a quote.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrRouteExpired: the quoted route is no longer executable; the price
	// moved and a fresh quote is required.
	ErrRouteExpired = errors.New("route expired")

	// ErrSignerUnavailable: no signer capability is attached.
	ErrSignerUnavailable = errors.New("signer unavailable")

	// ErrUserRejected: the signer capability declined to sign.
	ErrUserRejected = errors.New("signing rejected")

	// ErrBroadcastFailed: delivery to the network failed after exhausting
	// the bounded retry budget.
	ErrBroadcastFailed = errors.New("broadcast failed")

	// ErrExpired: the transaction's blockhash validity window lapsed
	// before the network reported finality.
	ErrExpired = errors.New("transaction expired")

	// ErrExecutionFailed: the network executed the transaction and it
	// failed on chain.
	ErrExecutionFailed = errors.New("transaction failed on chain")

	// ErrPaymentInFlight: a pay run is already active for this session.
	ErrPaymentInFlight = errors.New("payment already in progress")
)
