package domain

import "errors"

var (
	// ErrNotFound is returned when a record does not exist. Gateway events
	// carrying an unrecognized tx_ref are logged and dropped, never created.
	ErrNotFound = errors.New("record not found")

	// ErrBadSignature is returned when a webhook signature is missing or does
	// not match. No state is read or written in that case.
	ErrBadSignature = errors.New("invalid webhook signature")

	// ErrGatewayUnavailable is returned on gateway timeouts or 5xx responses.
	// It is retryable: reconciliation is idempotent, so the triggering source
	// may simply re-deliver later.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrDuplicateGatewayID is returned when a verified gateway transaction id
	// is already recorded against a different tx_ref. Replays are rejected,
	// never merged.
	ErrDuplicateGatewayID = errors.New("gateway transaction id already recorded")

	ErrCarUnavailable   = errors.New("car is not available")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrEmailTaken       = errors.New("email already registered")
	ErrWrongCredentials = errors.New("wrong email or password")
)
