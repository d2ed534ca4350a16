package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	notFound := Clone(ErrNotFound, "class not found")
	wrapped := fmt.Errorf("lookup: %w", notFound)

	got := FromError(wrapped)

	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "class not found", got.Message)
	assert.True(t, IsCode(wrapped, ErrNotFound.Code))
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Nil(t, FromError(nil))
}

func TestStorePassesMessageThrough(t *testing.T) {
	err := Store(errors.New("connection refused"), "failed to list classes")

	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, "failed to list classes: connection refused", err.Message)
	assert.Nil(t, Store(nil, "ignored"))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrValidation, "date is required")

	assert.Equal(t, "date is required", clone.Message)
	assert.Equal(t, "validation failed", ErrValidation.Message)
}
