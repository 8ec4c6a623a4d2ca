package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	err := NewAppError(CodeBadRequest, "bad", "")
	assert.Equal(t, "BAD_REQUEST: bad", err.Error())

	err = NewAppError(CodeBadRequest, "bad", "missing id")
	assert.Equal(t, "BAD_REQUEST: bad (missing id)", err.Error())
}

func TestAppError_StatusCode(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NewBadRequestError("x"), http.StatusBadRequest},
		{NewValidationError("x"), http.StatusBadRequest},
		{NewNotAuthenticatedError("like"), http.StatusUnauthorized},
		{NewNotFoundError("recipe"), http.StatusNotFound},
		{NewNetworkError("/like", nil), http.StatusBadGateway},
		{NewCircuitOpenError("/like", nil), http.StatusBadGateway},
		{NewPersistenceWriteError("userLikes", "set", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestIsAndGetCode_ThroughWrapping(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := fmt.Errorf("search: %w", NewNetworkError("/api/recherche", cause))

	assert.True(t, Is(err, CodeNetwork))
	assert.False(t, Is(err, CodeCircuitOpen))
	assert.Equal(t, CodeNetwork, GetCode(err))
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, CodeInternal, GetCode(cause))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))

	appErr := NewNotFoundError("recipe")
	assert.Same(t, appErr, Wrap(fmt.Errorf("ctx: %w", appErr), "ignored"))

	cause := stderrors.New("boom")
	wrapped := Wrap(cause, "encode failed")
	assert.Equal(t, CodeInternal, wrapped.Code)
	assert.Equal(t, "encode failed", wrapped.Message)
	assert.ErrorIs(t, wrapped, cause)
}

func TestNewValidationErrors(t *testing.T) {
	err := NewValidationErrors([]ValidationError{
		{Field: "IDUser", Tag: "required", Message: "IDUser is required"},
		{Field: "Email", Tag: "email", Message: "Email is invalid"},
	})

	assert.Equal(t, CodeValidationFailed, err.Code)
	assert.Equal(t, "IDUser is required; Email is invalid", err.Details)
	require.Contains(t, err.Metadata, "validation_errors")
}

func TestToErrorResponse(t *testing.T) {
	err := NewResolutionGapError(3).WithMetadata("kind", "search")

	resp := ToErrorResponse(err, "req-9")

	assert.Equal(t, CodeResolutionGap, resp.Error.Code)
	assert.Equal(t, "req-9", resp.Error.RequestID)
	assert.Equal(t, "search", resp.Error.Metadata["kind"])
	assert.NotEmpty(t, resp.Error.Timestamp)
}
