package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrBudgetExhausted is a control signal, not a failure: the run stops
	// cleanly and records the fact.
	ErrBudgetExhausted = errors.New("request budget exhausted")
	// ErrAmbiguousIdentity routes a record to the review queue instead of
	// failing the item.
	ErrAmbiguousIdentity = errors.New("ambiguous identity")
)
