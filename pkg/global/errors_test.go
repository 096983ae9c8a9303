package global

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(nil))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindNotFound, KindOf(NotFound("product %s not found", "P001")))

	wrapped := fmt.Errorf("checkout: %w", Conflict("order 3 already exists"))
	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindConflict))
	assert.False(t, IsKind(nil, KindConflict))
}

func TestHTTPStatus(t *testing.T) {
	tests := map[ErrorKind]int{
		KindNotFound:        http.StatusNotFound,
		KindInvalidArgument: http.StatusBadRequest,
		KindInvalidState:    http.StatusBadRequest,
		KindForbidden:       http.StatusForbidden,
		KindConflict:        http.StatusConflict,
		KindInternal:        http.StatusInternalServerError,
	}
	for kind, want := range tests {
		assert.Equal(t, want, kind.HTTPStatus(), string(kind))
	}
}

func TestInternalUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal(cause, "failed to save cart")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "internal: failed to save cart: connection refused", err.Error())
}
