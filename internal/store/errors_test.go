package store_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gbakws/testimonial-server/internal/store"
)

func TestError_ErrorWithCause(t *testing.T) {
	err := store.ErrNotFound.WithCause(errors.New("no rows"))

	assert.Equal(t, "resource not found: no rows", err.Error())
	assert.Equal(t, http.StatusNotFound, err.HTTPCode())
}

func TestError_IsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("redeem link: %w", store.ErrLinkUsed.WithCause(errors.New("conflict")))

	assert.True(t, errors.Is(wrapped, store.ErrLinkUsed))
	assert.False(t, errors.Is(wrapped, store.ErrAlreadyExists))
	assert.False(t, errors.Is(wrapped, store.ErrLinkExpired))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := store.ErrLinkExpired.WithCause(cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestError_ConflictKeepsCause(t *testing.T) {
	cause := errors.New("Transaction Conflict. Please retry")
	err := fmt.Errorf("update status: %w", store.ErrConflict.WithCause(cause))

	assert.True(t, errors.Is(err, store.ErrConflict))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, store.ErrAlreadyExists))
}
