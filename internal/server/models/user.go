// Package models holds the persistent and transient domain types of the
// user service.
package models

import (
	"encoding/json"
	"strings"
	"time"
)

// User is a stored account. PasswordHash is a bcrypt digest; plaintext
// passwords never reach this type. IsActive=false marks a soft-deleted row.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FirstName    *string
	LastName     *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser is the input for account creation.
type NewUser struct {
	Username  string
	Email     string
	Password  string
	FirstName *string
	LastName  *string
}

// UserUpdate is a partial update: nil pointers and unset Optionals are left
// untouched. FirstName/LastName may be set to nil to clear the column.
type UserUpdate struct {
	Username  *string
	Email     *string
	FirstName Optional[*string]
	LastName  Optional[*string]
	IsActive  *bool
}

// Empty reports whether the update carries no field at all.
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && !u.FirstName.Set && !u.LastName.Set && u.IsActive == nil
}

// Optional tells a field that was sent, possibly as JSON null, from one
// that was omitted.
type Optional[T any] struct {
	Set   bool
	Value T
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// UnmarshalJSON is only invoked for keys present in the document.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	return json.Unmarshal(b, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value)
}

// UserPage is one window of active users plus pagination metadata.
type UserPage struct {
	Users []*User
	Total int64
	Page  int
	Size  int
	Pages int
}

// NormalizeIdentity lower-cases and trims a username or an email. It is the
// single place where case-insensitive identity is defined.
func NormalizeIdentity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
