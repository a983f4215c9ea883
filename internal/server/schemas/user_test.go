package schemas

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/userkeeper/internal/server/auth"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
)

func strp(s string) *string { return &s }

func fieldErrors(t *testing.T, err error) validation.Errors {
	t.Helper()
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	return verrs
}

func validCreate() CreateUserRequest {
	return CreateUserRequest{Username: "alice_01", Email: "alice@example.com", Password: "Secret123"}
}

func TestCreateUserRequest_Valid(t *testing.T) {
	r := validCreate()
	r.FirstName = strp("Alice")
	assert.NoError(t, r.Validate())
}

func TestCreateUserRequest_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *CreateUserRequest)
		field  string
		msg    string
	}{
		{"short username", func(r *CreateUserRequest) { r.Username = "ab" }, "username", "Username must be 3-50 characters long"},
		{"long username", func(r *CreateUserRequest) { r.Username = strings.Repeat("a", 51) }, "username", "Username must be 3-50 characters long"},
		{"username chars", func(r *CreateUserRequest) { r.Username = "al ice" }, "username", "Username can only contain letters, numbers, underscores, and hyphens"},
		{"missing username", func(r *CreateUserRequest) { r.Username = "" }, "username", ""},
		{"bad email", func(r *CreateUserRequest) { r.Email = "not-an-email" }, "email", ""},
		{"short password", func(r *CreateUserRequest) { r.Password = "Ab1" }, "password", "Password must be 8-128 characters long"},
		{"long password", func(r *CreateUserRequest) { r.Password = "Ab1" + strings.Repeat("x", 126) }, "password", "Password must be 8-128 characters long"},
		{"no upper", func(r *CreateUserRequest) { r.Password = "secret123" }, "password", "Password must contain at least one uppercase letter"},
		{"no lower", func(r *CreateUserRequest) { r.Password = "SECRET123" }, "password", "Password must contain at least one lowercase letter"},
		{"no digit", func(r *CreateUserRequest) { r.Password = "SecretPass" }, "password", "Password must contain at least one digit"},
		{"long first name", func(r *CreateUserRequest) { r.FirstName = strp(strings.Repeat("n", 101)) }, "first_name", ""},
		{"long last name", func(r *CreateUserRequest) { r.LastName = strp(strings.Repeat("n", 101)) }, "last_name", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validCreate()
			tt.mutate(&r)

			verrs := fieldErrors(t, r.Validate())
			require.Contains(t, verrs, tt.field)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, verrs[tt.field].Error())
			}
		})
	}
}

func TestCreateUserRequest_ToModel(t *testing.T) {
	r := validCreate()
	r.LastName = strp("Smith")

	m := r.ToModel()
	assert.Equal(t, "alice_01", m.Username)
	assert.Equal(t, "Secret123", m.Password)
	assert.Nil(t, m.FirstName)
	assert.Equal(t, "Smith", *m.LastName)
}

func TestUpdateUserRequest_AbsentVersusNull(t *testing.T) {
	var r UpdateUserRequest
	require.NoError(t, json.Unmarshal([]byte(`{"first_name":null}`), &r))
	require.NoError(t, r.Validate())

	upd := r.ToModel()
	assert.True(t, upd.FirstName.Set)
	assert.Nil(t, upd.FirstName.Value)
	assert.False(t, upd.LastName.Set)
	assert.Nil(t, upd.Username)
	assert.False(t, upd.Empty())

	var empty UpdateUserRequest
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.True(t, empty.ToModel().Empty())
}

func TestUpdateUserRequest_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"empty username", `{"username":""}`, "username"},
		{"short username", `{"username":"ab"}`, "username"},
		{"bad username", `{"username":"a/b/c"}`, "username"},
		{"empty email", `{"email":""}`, "email"},
		{"bad email", `{"email":"nope"}`, "email"},
		{"long last name", `{"last_name":"` + strings.Repeat("x", 101) + `"}`, "last_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r UpdateUserRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &r))
			verrs := fieldErrors(t, r.Validate())
			assert.Contains(t, verrs, tt.field)
		})
	}
}

func TestUpdateUserRequest_Valid(t *testing.T) {
	var r UpdateUserRequest
	require.NoError(t, json.Unmarshal([]byte(`{"username":"Bob-2","email":"b@example.com","last_name":"B","is_active":true}`), &r))
	require.NoError(t, r.Validate())

	upd := r.ToModel()
	assert.Equal(t, "Bob-2", *upd.Username)
	assert.Equal(t, "B", *upd.LastName.Value)
	assert.True(t, *upd.IsActive)
}

func TestLoginRequest(t *testing.T) {
	assert.NoError(t, LoginRequest{Username: "alice", Password: "x"}.Validate())

	verrs := fieldErrors(t, LoginRequest{}.Validate())
	assert.Contains(t, verrs, "username")
	assert.Contains(t, verrs, "password")
}

func TestChangePasswordRequest(t *testing.T) {
	assert.NoError(t, ChangePasswordRequest{CurrentPassword: "old", NewPassword: "NewSecret1"}.Validate())

	verrs := fieldErrors(t, ChangePasswordRequest{CurrentPassword: "old", NewPassword: "weakpass"}.Validate())
	assert.Contains(t, verrs, "new_password")

	verrs = fieldErrors(t, ChangePasswordRequest{NewPassword: "NewSecret1"}.Validate())
	assert.Contains(t, verrs, "current_password")
}

func TestNewUserResponse_NoPassword(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	u := &models.User{ID: 7, Username: "alice", Email: "a@example.com", PasswordHash: "$2a$secret",
		IsActive: true, CreatedAt: now, UpdatedAt: now}

	b, err := json.Marshal(NewUserResponse(u))
	require.NoError(t, err)
	assert.NotContains(t, string(b), "password")
	assert.NotContains(t, string(b), "$2a$secret")
	assert.Contains(t, string(b), `"first_name":null`)
	assert.Contains(t, string(b), `"id":7`)
}

func TestNewUserListResponse(t *testing.T) {
	resp := NewUserListResponse(&models.UserPage{Total: 0, Page: 1, Size: 20, Pages: 0})
	b, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"users":[],"total":0,"page":1,"size":20,"pages":0}`, string(b))
}

func TestNewTokenResponse(t *testing.T) {
	b, err := json.Marshal(NewTokenResponse(&auth.AccessToken{Token: "t", TokenType: "bearer", ExpiresIn: 1800}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"access_token":"t","token_type":"bearer","expires_in":1800}`, string(b))
}
