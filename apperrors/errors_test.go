package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsCarryStatus(t *testing.T) {
	cases := []struct {
		err    *AppError
		code   ErrorCode
		status int
	}{
		{Validation("minPrice %d exceeds maxPrice %d", 5, 1), CodeValidation, http.StatusBadRequest},
		{Authentication("missing token"), CodeAuthentication, http.StatusUnauthorized},
		{Authorization("not the owner"), CodeAuthorization, http.StatusForbidden},
		{NotFound("Property"), CodeNotFound, http.StatusNotFound},
		{Store(errors.New("boom"), "insert failed"), CodeStore, http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.code, c.err.Code)
		assert.Equal(t, c.status, c.err.HTTPCode)
	}
	assert.Equal(t, "Property not found", NotFound("Property").Message)
	assert.Equal(t, "minPrice 5 exceeds maxPrice 1", Validation("minPrice %d exceeds maxPrice %d", 5, 1).Message)
}

func TestFromUnwrapsAndFallsBack(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", Authorization("nope"))
	assert.Equal(t, CodeAuthorization, From(wrapped).Code)
	assert.True(t, HasCode(wrapped, CodeAuthorization))
	assert.False(t, HasCode(wrapped, CodeNotFound))

	plain := errors.New("socket closed")
	got := From(plain)
	assert.Equal(t, CodeStore, got.Code)
	assert.ErrorIs(t, got, plain)
}
