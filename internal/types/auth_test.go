//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request CreateUserRequest
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid request",
			request: CreateUserRequest{Name: "Ada Lovelace", Email: "ada@example.com", Password: "password123"},
		},
		{
			name:    "missing name",
			request: CreateUserRequest{Email: "ada@example.com", Password: "password123"},
			wantErr: true,
			errMsg:  "required",
		},
		{
			name:    "invalid email format",
			request: CreateUserRequest{Name: "Ada", Email: "not-an-email", Password: "password123"},
			wantErr: true,
			errMsg:  "email",
		},
		{
			name:    "password too short",
			request: CreateUserRequest{Name: "Ada", Email: "ada@example.com", Password: "short"},
			wantErr: true,
			errMsg:  "min",
		},
		{
			name:    "whitespace name",
			request: CreateUserRequest{Name: "   ", Email: "ada@example.com", Password: "password123"},
			wantErr: true,
			errMsg:  "notblank",
		},
		{
			name:    "password exactly 8 characters",
			request: CreateUserRequest{Name: "Ada", Email: "ada@example.com", Password: "12345678"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validator().Struct(tt.request)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidator_Shared(t *testing.T) {
	assert.Same(t, Validator(), Validator())

	require.NoError(t, Validator().Struct(LoginRequest{Email: "ada@example.com", Password: "x"}))

	err := Validator().Struct(LoginRequest{Email: "ada@example.com"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "password", verrs[0].Field())

	err = Validator().Struct(UpdatePasswordRequest{CurrentPassword: "password123", NewPassword: "password123"})
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "new_password", verrs[0].Field())
	assert.Equal(t, "nefield", verrs[0].Tag())
}

func TestLoginResponse_JSON(t *testing.T) {
	resp := LoginResponse{User: &User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com"}, Token: "tok"}
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"token":"tok"`)
	assert.NotContains(t, string(data), "password_hash")
}
