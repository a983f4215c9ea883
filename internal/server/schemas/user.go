// Package schemas defines the JSON request and response bodies of the REST
// API together with their validation rules.
package schemas

import (
	"errors"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/dmitrijs2005/userkeeper/internal/server/auth"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxNameLength     = 100
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

var (
	errUsernameChars = errors.New("Username can only contain letters, numbers, underscores, and hyphens")
	errNoUpper       = errors.New("Password must contain at least one uppercase letter")
	errNoLower       = errors.New("Password must contain at least one lowercase letter")
	errNoDigit       = errors.New("Password must contain at least one digit")
)

func usernameRules() []validation.Rule {
	return []validation.Rule{
		validation.Length(MinUsernameLength, MaxUsernameLength).
			Error("Username must be 3-50 characters long"),
		validation.Match(usernamePattern).Error(errUsernameChars.Error()),
	}
}

func passwordRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.RuneLength(MinPasswordLength, MaxPasswordLength).
			Error("Password must be 8-128 characters long"),
		validation.By(passwordStrength),
	}
}

var nameLength = validation.RuneLength(0, MaxNameLength).Error("must be at most 100 characters long")

// passwordStrength requires at least one upper-case letter, one lower-case
// letter and one digit.
func passwordStrength(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}

	switch {
	case !upper:
		return errNoUpper
	case !lower:
		return errNoLower
	case !digit:
		return errNoDigit
	}
	return nil
}

// optionalName validates a present, non-null name of an update payload.
func optionalName(value interface{}) error {
	o, _ := value.(models.Optional[*string])
	if !o.Set || o.Value == nil {
		return nil
	}
	return validation.Validate(*o.Value, nameLength)
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, append([]validation.Rule{validation.Required}, usernameRules()...)...),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, passwordRules()...),
		validation.Field(&r.FirstName, nameLength),
		validation.Field(&r.LastName, nameLength),
	)
}

func (r CreateUserRequest) ToModel() models.NewUser {
	return models.NewUser{
		Username:  r.Username,
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}

// UpdateUserRequest is the body of PUT /users/{id}. Omitted fields are left
// unchanged; first_name and last_name may be null to clear them.
type UpdateUserRequest struct {
	Username  *string                  `json:"username"`
	Email     *string                  `json:"email"`
	FirstName models.Optional[*string] `json:"first_name"`
	LastName  models.Optional[*string] `json:"last_name"`
	IsActive  *bool                    `json:"is_active"`
}

func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, append([]validation.Rule{validation.NilOrNotEmpty}, usernameRules()...)...),
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.Email),
		validation.Field(&r.FirstName, validation.By(optionalName)),
		validation.Field(&r.LastName, validation.By(optionalName)),
	)
}

func (r UpdateUserRequest) ToModel() models.UserUpdate {
	return models.UserUpdate{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		IsActive:  r.IsActive,
	}
}

// LoginRequest is the body of POST /users/login. Username holds either the
// username or the email.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// ChangePasswordRequest is the body of PUT /users/me/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, passwordRules()...),
	)
}

// UserResponse never carries the password digest.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName *string   `json:"first_name"`
	LastName  *string   `json:"last_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
	Pages int            `json:"pages"`
}

func NewUserListResponse(p *models.UserPage) UserListResponse {
	out := make([]UserResponse, 0, len(p.Users))
	for _, u := range p.Users {
		out = append(out, NewUserResponse(u))
	}
	return UserListResponse{Users: out, Total: p.Total, Page: p.Page, Size: p.Size, Pages: p.Pages}
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func NewTokenResponse(t *auth.AccessToken) TokenResponse {
	return TokenResponse{AccessToken: t.Token, TokenType: t.TokenType, ExpiresIn: t.ExpiresIn}
}

// ErrorResponse is returned for every failed request. Errors maps field
// names to validation messages.
type ErrorResponse struct {
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type InfoResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Health  string `json:"health"`
}
