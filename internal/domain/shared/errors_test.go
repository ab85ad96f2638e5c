package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	t.Run("matches sentinel with a specific message", func(t *testing.T) {
		err := NewDomainError("NOT_FOUND", "Product not found")
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.Equal(t, "Product not found", err.Error())
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		err := fmt.Errorf("lookup: %w", NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock"))
		assert.True(t, errors.Is(err, ErrInsufficientStock))
		assert.False(t, errors.Is(err, ErrNotFound))
	})

	t.Run("does not match plain errors", func(t *testing.T) {
		assert.False(t, errors.Is(errors.New("NOT_FOUND"), ErrNotFound))
	})

	t.Run("errors.As exposes the code", func(t *testing.T) {
		var domainErr *DomainError
		err := fmt.Errorf("wrapped: %w", ErrEnqueueFailed)
		assert.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "ENQUEUE_FAILED", domainErr.Code)
	})
}
