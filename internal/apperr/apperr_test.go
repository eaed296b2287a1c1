package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	err := E(KindQuotaExceeded, "cap reached")
	assert.Equal(t, KindQuotaExceeded, KindOf(err))

	wrapped := fmt.Errorf("handler: %w", Wrap(KindUpstreamFailure, "provider down", errors.New("dial tcp")))
	assert.Equal(t, KindUpstreamFailure, KindOf(wrapped))

	assert.Equal(t, KindInternal, KindOf(errors.New("something else")))
}

func TestMessageOfHidesInternalDetail(t *testing.T) {
	t.Parallel()

	err := Wrap(KindUpstreamFailure, "completion provider failed", errors.New("api key sk-123 rejected"))
	assert.Equal(t, "completion provider failed", MessageOf(err))

	assert.Equal(t, "internal server error", MessageOf(errors.New("panic: nil deref at db.go:42")))
}

func TestIsMatchesOnKind(t *testing.T) {
	t.Parallel()

	a := E(KindQuotaExceeded, "cap reached")
	b := E(KindQuotaExceeded, "different message")
	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, E(KindInvalidRequest, "cap reached")))
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindInvalidRequest))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindInvalidCredentials))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(KindUnauthenticated))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(KindQuotaExceeded))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindUpstreamFailure))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindInternal))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Kind("unknown")))
}
