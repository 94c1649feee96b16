package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{Conflict("already there"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{Unauthorized("who are you"), http.StatusUnauthorized},
		{Forbidden("not yours"), http.StatusForbidden},
		{Upstream("down", nil), http.StatusServiceUnavailable},
		{Encoding("garbled", nil), http.StatusInternalServerError},
		{Internal("broke", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(Upstream("db down", nil)))
	assert.True(t, IsRetryable(errors.New("unclassified failure")))

	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(Validation("bad")))
	assert.False(t, IsRetryable(NotFound("gone")))
	assert.False(t, IsRetryable(Conflict("dup")))
	assert.False(t, IsRetryable(Unauthorized("no")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream("db down", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsKind(err, KindUpstream))
	assert.True(t, IsKind(fmt.Errorf("wrapped: %w", err), KindUpstream))
	assert.False(t, IsKind(err, KindValidation))
	assert.False(t, IsKind(cause, KindUpstream))
}

func TestErrorMessage(t *testing.T) {
	// Error() is the log-facing form and always carries the kind; the HTTP
	// layer exposes Message on its own.
	assert.Equal(t, "validation_error: bad input", Validation("bad input").Error())
	assert.Equal(t, "bad input", Validation("bad input").Message)

	withCause := Upstream("db down", errors.New("connection refused"))
	assert.Contains(t, withCause.Error(), "db down")
	assert.Contains(t, withCause.Error(), "connection refused")
}
