package errorbank

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestStatusAndGRPCMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err    *AppError
		status int
		code   codes.Code
	}{
		{BadRequest("bad"), http.StatusBadRequest, codes.InvalidArgument},
		{Conflict("dup"), http.StatusConflict, codes.AlreadyExists},
		{NotFound("missing"), http.StatusNotFound, codes.NotFound},
		{Internal("boom"), http.StatusInternalServerError, codes.Internal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.StatusCode(), tt.err.Kind())
		assert.Equal(t, tt.code, tt.err.GRPCCode(), tt.err.Kind())
	}
}

func TestFromWrapsForeignErrors(t *testing.T) {
	t.Parallel()

	cause := errors.New("database is locked")
	appErr := From(cause)

	require.NotNil(t, appErr)
	assert.Equal(t, KindInternal, appErr.Kind())
	assert.Equal(t, "internal error", appErr.Message())
	assert.ErrorIs(t, appErr, cause)
	assert.Nil(t, From(nil))
}

func TestFromKeepsWrappedAppError(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("handler: %w", NotFound("order not found"))

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, "order not found", From(wrapped).Message())
	assert.True(t, errors.Is(wrapped, NotFound("")))
	assert.False(t, errors.Is(wrapped, Conflict("")))
}

func TestMessageHidesCause(t *testing.T) {
	t.Parallel()

	err := Internal("failed to list orders", WithCause(errors.New("no such table: orders")))

	assert.Equal(t, "failed to list orders", err.Message())
	assert.Contains(t, err.Error(), "no such table")
}

func TestDetails(t *testing.T) {
	t.Parallel()

	err := BadRequest("invalid order",
		WithDetail("quantity", "must be at least 1"),
		WithDetails(map[string]any{"status": "must be one of Pending Completed"}),
	)

	assert.Equal(t, map[string]any{
		"quantity": "must be at least 1",
		"status":   "must be one of Pending Completed",
	}, err.Details())
}
