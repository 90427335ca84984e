package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Code]int{
		CodeUnauthorized:      http.StatusUnauthorized,
		CodeForbidden:         http.StatusForbidden,
		CodeNotFound:          http.StatusNotFound,
		CodeConflict:          http.StatusConflict,
		CodeAlreadyOwned:      http.StatusConflict,
		CodeAlreadyClaimed:    http.StatusForbidden,
		CodeInsufficientFunds: http.StatusBadRequest,
		CodeLevelTooLow:       http.StatusBadRequest,
		CodeValidation:        http.StatusBadRequest,
		CodeInternal:          http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, New(code, "x").HTTPStatus(), string(code))
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(CodeInternal, cause, "something failed")

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "something failed", err.Message())
}

func TestAsFindsNestedError(t *testing.T) {
	inner := New(CodeInsufficientFunds, "No tienes suficientes monedas.")
	wrapped := fmt.Errorf("purchase: %w", inner)

	typed := As(wrapped)
	require.NotNil(t, typed)
	assert.Equal(t, CodeInsufficientFunds, typed.Code())

	assert.Nil(t, As(errors.New("plain")))
	assert.Nil(t, As(nil))
}

func TestIsCode(t *testing.T) {
	err := New(CodeAlreadyClaimed, "Ya reclamaste el pase de hoy.")

	assert.True(t, IsCode(err, CodeAlreadyClaimed))
	assert.False(t, IsCode(err, CodeConflict))
	assert.False(t, IsCode(errors.New("plain"), CodeConflict))
	assert.False(t, IsCode(nil, CodeConflict))
}
