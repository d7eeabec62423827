package omdb

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrMissingAPIKey is returned by New when no API key is configured.
	ErrMissingAPIKey = errors.New("omdb api key is required")

	// ErrNetwork marks transport failures and exhausted retry budgets.
	ErrNetwork = errors.New("omdb network failure")

	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	// It matches ErrNetwork.
	ErrRetryExhausted = fmt.Errorf("%w: retry attempts exhausted", ErrNetwork)

	// ErrContextCancelled is returned when the caller's context ends before a
	// response is obtained. It does not match ErrNetwork.
	ErrContextCancelled = errors.New("context cancelled")

	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("omdb: not found")

	// ErrUnexpectedStatus matches every *StatusError.
	ErrUnexpectedStatus = errors.New("omdb: unexpected status")

	// ErrMalformedResponse is returned when the body is not a JSON object.
	ErrMalformedResponse = errors.New("omdb: malformed response")
)

// NotFoundError is the provider's own "Response":"False" envelope.
type NotFoundError struct {
	// Message is the provider's Error field, verbatim.
	Message string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Message == "" {
		return "omdb: not found"
	}
	return "omdb: not found: " + e.Message
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StatusError represents a non-2xx OMDB response with additional context.
type StatusError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string

	// Err is why the body could not be decoded, nil for a JSON body.
	Err error
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("OMDB %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("OMDB %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *StatusError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrUnexpectedStatus.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassServer, ErrorClassNetwork:
		return true
	default:
		// client errors, provider not-found and cancellation are final
		return false
	}
}
