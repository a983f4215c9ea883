package client

import (
	"context"

	"github.com/dmitrijs2005/userkeeper/internal/server/schemas"
)

// Client is the API contract the CLI needs from the server.
type Client interface {
	Health(ctx context.Context) (*schemas.HealthResponse, error)

	Register(ctx context.Context, req schemas.CreateUserRequest) (*schemas.UserResponse, error)
	Login(ctx context.Context, login, password string) error
	Logout()
	LoggedIn() bool

	Me(ctx context.Context) (*schemas.UserResponse, error)
	ChangePassword(ctx context.Context, current, next string) error

	ListUsers(ctx context.Context, page, size int) (*schemas.UserListResponse, error)
	GetUser(ctx context.Context, id int64) (*schemas.UserResponse, error)
	UpdateUser(ctx context.Context, id int64, fields map[string]any) (*schemas.UserResponse, error)
	DeleteUser(ctx context.Context, id int64) error
}
