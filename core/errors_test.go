package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIErrorMessage(t *testing.T) {
	t.Run("OpAndMessage", func(t *testing.T) {
		err := &APIError{Op: "cart.AddItem", Kind: KindValidation, Message: "quantity out of range"}
		assert.Equal(t, "cart.AddItem: validation: quantity out of range", err.Error())
	})

	t.Run("OpAndWrapped", func(t *testing.T) {
		err := &APIError{Op: "order.Checkout", Kind: KindTransport, Err: ErrConnectionFailed}
		assert.Equal(t, "order.Checkout: transport: connection failed", err.Error())
	})

	t.Run("KindOnly", func(t *testing.T) {
		err := &APIError{Kind: KindNotFound}
		assert.Equal(t, "not_found error", err.Error())
	})
}

func TestAPIErrorUnwrap(t *testing.T) {
	err := &APIError{Op: "auth.Login", Kind: KindAuthentication, Err: ErrAuthenticationFailed}

	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Error("wrapped sentinel should be reachable via errors.Is")
	}

	wrapped := fmt.Errorf("request context: %w", err)
	var apiErr *APIError
	if !errors.As(wrapped, &apiErr) {
		t.Fatal("APIError should be reachable via errors.As through wrapping")
	}
	assert.Equal(t, KindAuthentication, apiErr.Kind)
}

func TestKindPredicates(t *testing.T) {
	authErr := &APIError{Kind: KindAuthentication, Err: ErrAuthenticationFailed}
	validationErr := &APIError{Kind: KindValidation, Message: "bad input"}
	notFoundErr := &APIError{Kind: KindNotFound}
	transportErr := &APIError{Kind: KindTransport, Err: ErrRequestFailed}

	t.Run("IsAuthFailure", func(t *testing.T) {
		assert.True(t, IsAuthFailure(authErr))
		assert.True(t, IsAuthFailure(ErrNotAuthenticated))
		assert.False(t, IsAuthFailure(validationErr))
		assert.False(t, IsAuthFailure(nil))
	})

	t.Run("IsValidation", func(t *testing.T) {
		assert.True(t, IsValidation(validationErr))
		assert.False(t, IsValidation(authErr))
		assert.False(t, IsValidation(errors.New("plain")))
	})

	t.Run("IsNotFound", func(t *testing.T) {
		assert.True(t, IsNotFound(notFoundErr))
		assert.True(t, IsNotFound(ErrProductNotFound))
		assert.False(t, IsNotFound(transportErr))
	})

	t.Run("IsRetryable", func(t *testing.T) {
		assert.True(t, IsRetryable(transportErr))
		assert.True(t, IsRetryable(ErrConnectionFailed))
		assert.False(t, IsRetryable(validationErr))
		assert.False(t, IsRetryable(authErr))
	})
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(&APIError{Kind: KindValidation}))
	assert.Equal(t, KindTransport, KindOf(errors.New("opaque")))

	wrapped := fmt.Errorf("outer: %w", &APIError{Kind: KindNotFound})
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}
