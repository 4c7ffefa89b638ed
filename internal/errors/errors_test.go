package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"duplicate username", ErrDuplicateUsername, http.StatusConflict, "DUPLICATE_USERNAME"},
		{"duplicate email wrapped", fmt.Errorf("create user: %w", ErrDuplicateEmail), http.StatusConflict, "DUPLICATE_EMAIL"},
		{"invalid credentials", ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"already authenticated", ErrAlreadyAuthenticated, http.StatusConflict, "ALREADY_AUTHENTICATED"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"post not found", ErrPostNotFound, http.StatusNotFound, "POST_NOT_FOUND"},
		{"user not found", ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
		{"unknown", errors.New("connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestMapErrorToHTTP_HidesInternalDetail(t *testing.T) {
	httpErr := MapErrorToHTTP(errors.New("dial tcp 10.0.0.3:3306: refused"))
	assert.Equal(t, "internal server error", httpErr.Message)
}

func TestNewValidationError(t *testing.T) {
	type form struct {
		Username string `validate:"required,min=2,max=20"`
		Email    string `validate:"required,email"`
	}

	err := validator.New().Struct(form{Username: "a", Email: "nope"})
	require.Error(t, err)

	verr := NewValidationError(err)
	assert.Equal(t, "must be at least 2 characters long", verr.Fields["Username"])
	assert.Equal(t, "invalid email address", verr.Fields["Email"])

	httpErr := MapErrorToHTTP(verr)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", httpErr.Code)
	assert.Equal(t, verr.Fields, httpErr.ToErrorResponse().Fields)
}

func TestNewValidationError_NonValidatorError(t *testing.T) {
	verr := NewValidationError(errors.New("bad input"))
	assert.Equal(t, map[string]string{"request": "bad input"}, verr.Fields)
	assert.Contains(t, verr.Error(), "request: bad input")
}
