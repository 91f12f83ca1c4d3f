package contract

import "errors"

var (
	// ErrNotFound is returned by the customer directory for an unknown CPF.
	ErrNotFound = errors.New("customer not found")

	// ErrQuotaExhausted marks a backend that reported a quota limit; the
	// gateway retires it for the remaining process lifetime.
	ErrQuotaExhausted = errors.New("backend quota exhausted")

	// ErrAllBackendsExhausted means no eligible backend remains. Handlers
	// must degrade gracefully, never terminate the session.
	ErrAllBackendsExhausted = errors.New("all inference backends exhausted")

	// ErrTransient is a call failure that does not retire the backend.
	ErrTransient = errors.New("transient inference failure")

	// ErrProvider is an exchange quote-provider failure.
	ErrProvider = errors.New("quote provider failure")

	// ErrValidation marks malformed numeric/enum input; the caller re-prompts.
	ErrValidation = errors.New("validation failed")
)
