package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("bad"), http.StatusBadRequest},
		{"not found", NotFound("missing"), http.StatusNotFound},
		{"not authorized", NotAuthorized("nope"), http.StatusForbidden},
		{"invalid state", InvalidState("late"), http.StatusBadRequest},
		{"conflict", Conflict("dup"), http.StatusBadRequest},
		{"invalid target", InvalidTarget("self"), http.StatusBadRequest},
		{"invalid target override", InvalidTarget("gone").WithStatus(http.StatusNotFound), http.StatusNotFound},
		{"invalid status", InvalidStatus("done"), http.StatusBadRequest},
		{"unauthenticated", Unauthenticated("token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("banned"), http.StatusForbidden},
		{"internal", Internal("db", errors.New("boom")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("handler: %w", NotFound("gone")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestKindOfAndIs(t *testing.T) {
	err := fmt.Errorf("outer: %w", InvalidState("request is no longer pending"))

	assert.Equal(t, KindInvalidState, KindOf(err))
	assert.True(t, Is(err, KindInvalidState))
	assert.False(t, Is(err, KindConflict))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestPublicMessageHidesInternalCause(t *testing.T) {
	cause := errors.New("connection refused")

	assert.Equal(t, "internal server error", PublicMessage(Internal("failed to load swap", cause)))
	assert.Equal(t, "internal server error", PublicMessage(cause))
	assert.Equal(t, "swap not found", PublicMessage(NotFound("swap not found")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("no rows")
	err := Wrap(KindNotFound, "user not found", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "user not found: no rows", err.Error())
}
