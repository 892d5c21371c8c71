package core

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for comparison using errors.Is()
// These are generic errors that can be wrapped with additional context
var (
	// Session errors
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrAuthenticationFailed = errors.New("authentication failed")

	// Input and precondition errors
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 10")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrOrderTerminal   = errors.New("order is in a terminal status")

	// Lookup errors
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")

	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrMissingConfiguration = errors.New("missing required configuration")

	// Network errors
	ErrConnectionFailed = errors.New("connection failed")
	ErrRequestFailed    = errors.New("request failed")
)

// ErrorKind classifies a failure the way the caller must react to it.
type ErrorKind string

const (
	// KindAuthentication marks an invalid or expired session. The
	// session is torn down centrally; callers must re-authenticate
	// before retrying.
	KindAuthentication ErrorKind = "authentication"
	// KindValidation marks bad input, rejected either locally before
	// any request or by the server. Retrying unchanged will not help.
	KindValidation ErrorKind = "validation"
	// KindNotFound marks a referenced product or order that does not
	// exist.
	KindNotFound ErrorKind = "not_found"
	// KindTransport marks network unreachability, timeouts, server
	// errors and malformed responses. Generically retryable by the
	// caller; this client never retries on its own.
	KindTransport ErrorKind = "transport"
)

// APIError provides structured error information with context.
// It implements the error interface and supports error wrapping.
type APIError struct {
	Op      string    // Operation that failed (e.g., "cart.AddItem")
	Kind    ErrorKind // Failure classification
	Status  int       // HTTP status code, 0 for local failures
	Message string    // Server-provided or human-readable message
	Err     error     // Underlying error for wrapping
}

// Error returns the string representation of the error
func (e *APIError) Error() string {
	switch {
	case e.Op != "" && e.Message != "":
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return fmt.Sprintf("%s error", e.Kind)
}

// Unwrap returns the underlying error for use with errors.Is/As
func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new APIError wrapping err.
func NewAPIError(op string, kind ErrorKind, err error) *APIError {
	return &APIError{Op: op, Kind: kind, Err: err}
}

// KindOf extracts the classification from err. Errors that are not
// APIErrors are treated as transport failures.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindTransport
}

// IsAuthFailure checks if an error means the session is no longer valid
func IsAuthFailure(err error) bool {
	if errors.Is(err, ErrNotAuthenticated) || errors.Is(err, ErrAuthenticationFailed) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindAuthentication
}

// IsValidation checks if an error represents rejected input
func IsValidation(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindValidation
}

// IsNotFound checks if an error represents a "not found" condition
func IsNotFound(err error) bool {
	if errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrOrderNotFound) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindNotFound
}

// IsRetryable checks if an error is a transient transport failure.
// The client itself never retries; this is a hint for callers.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrConnectionFailed) || errors.Is(err, ErrRequestFailed) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindTransport
}

// IsConfigurationError checks if an error is configuration-related
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrMissingConfiguration)
}
