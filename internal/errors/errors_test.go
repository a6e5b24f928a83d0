package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/valentine/internal/errors"
)

func TestAppError_Error(t *testing.T) {
	err := errors.NewNotFoundError("reason", 4)
	assert.Equal(t, "NOT_FOUND: reason not found: 4", err.Error())
	assert.Equal(t, http.StatusNotFound, err.Status)

	wrapped := errors.NewInternalError(stderrors.New("disk full"))
	assert.Contains(t, wrapped.Error(), "disk full")
}

func TestAs_FindsWrappedAppError(t *testing.T) {
	inner := errors.NewConflictError("score already submitted")
	err := fmt.Errorf("submit: %w", inner)

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConflict))
	assert.False(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestUnavailableUnwraps(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := errors.NewUnavailableError(cause)
	assert.ErrorIs(t, err, cause)
}
