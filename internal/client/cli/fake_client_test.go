package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/userkeeper/internal/client/client"
	"github.com/dmitrijs2005/userkeeper/internal/client/config"
	"github.com/dmitrijs2005/userkeeper/internal/logging"
	"github.com/dmitrijs2005/userkeeper/internal/server/schemas"
)

type fakeClient struct {
	token string

	registered  *schemas.CreateUserRequest
	loginUser   string
	loginPass   string
	loginErr    error
	me          *schemas.UserResponse
	meErr       error
	pwCurrent   string
	pwNext      string
	pwErr       error
	listPage    int
	listSize    int
	list        *schemas.UserListResponse
	user        *schemas.UserResponse
	getErr      error
	updateID    int64
	updateBody  map[string]any
	updateErr   error
	deletedID   int64
	deleteErr   error
	healthErr   error
	updateCalls int
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Health(context.Context) (*schemas.HealthResponse, error) {
	if f.healthErr != nil {
		return nil, f.healthErr
	}
	return &schemas.HealthResponse{Status: "healthy", Version: "1.0.0"}, nil
}

func (f *fakeClient) Register(_ context.Context, req schemas.CreateUserRequest) (*schemas.UserResponse, error) {
	f.registered = &req
	return &schemas.UserResponse{ID: 1, Username: req.Username, Email: req.Email}, nil
}

func (f *fakeClient) Login(_ context.Context, login, password string) error {
	f.loginUser, f.loginPass = login, password
	if f.loginErr != nil {
		return f.loginErr
	}
	f.token = "tok"
	return nil
}

func (f *fakeClient) Logout()        { f.token = "" }
func (f *fakeClient) LoggedIn() bool { return f.token != "" }

func (f *fakeClient) Me(context.Context) (*schemas.UserResponse, error) {
	if f.token == "" {
		return nil, client.ErrNotLoggedIn
	}
	return f.me, f.meErr
}

func (f *fakeClient) ChangePassword(_ context.Context, current, next string) error {
	f.pwCurrent, f.pwNext = current, next
	return f.pwErr
}

func (f *fakeClient) ListUsers(_ context.Context, page, size int) (*schemas.UserListResponse, error) {
	f.listPage, f.listSize = page, size
	return f.list, nil
}

func (f *fakeClient) GetUser(context.Context, int64) (*schemas.UserResponse, error) {
	return f.user, f.getErr
}

func (f *fakeClient) UpdateUser(_ context.Context, id int64, fields map[string]any) (*schemas.UserResponse, error) {
	f.updateCalls++
	f.updateID, f.updateBody = id, fields
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.user, nil
}

func (f *fakeClient) DeleteUser(_ context.Context, id int64) error {
	f.deletedID = id
	return f.deleteErr
}

// newTestApp builds an App on a fake client whose prompts are answered from
// input and whose password prompts return passwords in order.
func newTestApp(t *testing.T, fc *fakeClient, input string, passwords ...string) (*App, *bytes.Buffer) {
	t.Helper()

	origPW := getPassword
	getPassword = func(io.Writer, string) (string, error) {
		if len(passwords) == 0 {
			return "", io.EOF
		}
		pw := passwords[0]
		passwords = passwords[1:]
		return pw, nil
	}
	t.Cleanup(func() { getPassword = origPW })

	cfg := &config.Config{}
	cfg.LoadDefaults()

	var out bytes.Buffer
	return &App{
		config: cfg,
		api:    fc,
		logger: logging.NewTextSlogLogger(io.Discard, false),
		reader: bufio.NewReader(strings.NewReader(input)),
		out:    &out,
	}, &out
}

func strPtr(s string) *string { return &s }
