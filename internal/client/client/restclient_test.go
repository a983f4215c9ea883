package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/dmitrijs2005/userkeeper/internal/server/schemas"
)

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	body   map[string]any
}

func newTestServer(t *testing.T, status int, resp any, rec *recorded) *RESTClient {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rec != nil {
			rec.method = r.Method
			rec.path = r.URL.Path
			rec.query = r.URL.RawQuery
			rec.auth = r.Header.Get("Authorization")
			raw, _ := io.ReadAll(r.Body)
			if len(raw) > 0 {
				_ = json.Unmarshal(raw, &rec.body)
			}
		}
		if resp == nil {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(ts.Close)
	return NewRESTClient(ts.URL+"/", "api/v1/", 2*time.Second)
}

func TestHealth_UsesServerRoot(t *testing.T) {
	var rec recorded
	c := newTestServer(t, http.StatusOK, schemas.HealthResponse{Status: "healthy", Version: "1.0.0"}, &rec)

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, "/health", rec.path)
}

func TestRegister(t *testing.T) {
	var rec recorded
	c := newTestServer(t, http.StatusCreated, schemas.UserResponse{ID: 7, Username: "alice", Email: "alice@example.com", IsActive: true}, &rec)

	u, err := c.Register(context.Background(), schemas.CreateUserRequest{
		Username: "Alice", Email: "alice@example.com", Password: "Secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/v1/users", rec.path)
	assert.Equal(t, "Alice", rec.body["username"])
	assert.Equal(t, "Secret123", rec.body["password"])
	assert.Empty(t, rec.auth)
}

func TestLogin_StoresTokenForAuthenticatedCalls(t *testing.T) {
	c := newTestServer(t, http.StatusOK, schemas.TokenResponse{AccessToken: "tok", TokenType: "bearer", ExpiresIn: 1800}, nil)

	require.False(t, c.LoggedIn())
	require.NoError(t, c.Login(context.Background(), "alice", "Secret123"))
	assert.True(t, c.LoggedIn())

	var rec recorded
	other := newTestServer(t, http.StatusOK, schemas.UserResponse{ID: 1, Username: "alice"}, &rec)
	other.token = c.token

	me, err := other.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, "/api/v1/users/me", rec.path)
	assert.Equal(t, "Bearer tok", rec.auth)

	c.Logout()
	assert.False(t, c.LoggedIn())
}

func TestLogin_BadCredentials(t *testing.T) {
	c := newTestServer(t, http.StatusUnauthorized, schemas.ErrorResponse{Detail: "Incorrect username or password"}, nil)

	err := c.Login(context.Background(), "alice", "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrUnauthorized))
	assert.EqualError(t, err, "Incorrect username or password")
	assert.False(t, c.LoggedIn())
}

func TestAuthenticatedCall_RequiresLogin(t *testing.T) {
	c := newTestServer(t, http.StatusOK, nil, nil)

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.ErrorIs(t, c.ChangePassword(context.Background(), "a", "b"), ErrNotLoggedIn)
}

func TestChangePassword(t *testing.T) {
	var rec recorded
	c := newTestServer(t, http.StatusNoContent, nil, &rec)
	c.token = "tok"

	require.NoError(t, c.ChangePassword(context.Background(), "Old12345", "New12345"))
	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/api/v1/users/me/password", rec.path)
	assert.Equal(t, "Old12345", rec.body["current_password"])
	assert.Equal(t, "New12345", rec.body["new_password"])
}

func TestListUsers_Query(t *testing.T) {
	var rec recorded
	c := newTestServer(t, http.StatusOK, schemas.UserListResponse{
		Users: []schemas.UserResponse{{ID: 1}, {ID: 2}}, Total: 2, Page: 2, Size: 5, Pages: 1,
	}, &rec)

	list, err := c.ListUsers(context.Background(), 2, 5)
	require.NoError(t, err)
	assert.Len(t, list.Users, 2)
	assert.Equal(t, "page=2&size=5", rec.query)

	_, err = c.ListUsers(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, rec.query)
}

func TestGetUser_NotFound(t *testing.T) {
	var rec recorded
	c := newTestServer(t, http.StatusNotFound, schemas.ErrorResponse{Detail: "User not found"}, &rec)

	_, err := c.GetUser(context.Background(), 42)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, "/api/v1/users/42", rec.path)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestUpdateUser_SendsOnlyGivenFields(t *testing.T) {
	var rec recorded
	c := newTestServer(t, http.StatusOK, schemas.UserResponse{ID: 3, Username: "bob"}, &rec)

	_, err := c.UpdateUser(context.Background(), 3, map[string]any{"first_name": "Bob", "last_name": nil})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/api/v1/users/3", rec.path)
	assert.Len(t, rec.body, 2)
	assert.Equal(t, "Bob", rec.body["first_name"])
	v, ok := rec.body["last_name"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestUpdateUser_ValidationFields(t *testing.T) {
	c := newTestServer(t, http.StatusBadRequest, schemas.ErrorResponse{
		Detail: "Validation error",
		Errors: map[string]string{"username": "Username must be 3-50 characters long", "email": "must be a valid email address"},
	}, nil)

	_, err := c.UpdateUser(context.Background(), 3, map[string]any{"username": "x"})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
	assert.EqualError(t, err, "Validation error (email: must be a valid email address; username: Username must be 3-50 characters long)")
}

func TestDeleteUser(t *testing.T) {
	var rec recorded
	c := newTestServer(t, http.StatusNoContent, nil, &rec)

	require.NoError(t, c.DeleteUser(context.Background(), 9))
	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Equal(t, "/api/v1/users/9", rec.path)
}

func TestErrorWithoutBody(t *testing.T) {
	c := newTestServer(t, http.StatusInternalServerError, nil, nil)

	err := c.DeleteUser(context.Background(), 1)
	assert.ErrorIs(t, err, common.ErrInternal)
	assert.EqualError(t, err, "unexpected status 500")
}

func TestUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := NewRESTClient(url, "/api/v1", time.Second)
	_, err := c.Health(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCanceledContext(t *testing.T) {
	c := newTestServer(t, http.StatusOK, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Health(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAPIError_Unwrap(t *testing.T) {
	cases := map[int]error{
		http.StatusBadRequest:          common.ErrInvalidArgument,
		http.StatusUnauthorized:        common.ErrUnauthorized,
		http.StatusNotFound:            common.ErrNotFound,
		http.StatusInternalServerError: common.ErrInternal,
	}
	for status, want := range cases {
		err := &APIError{Status: status, Detail: "x"}
		assert.ErrorIs(t, err, want, "status %d", status)
	}
}

func TestCancelDuringRequest(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(ts.Close)
	t.Cleanup(func() { close(release) })

	c := NewRESTClient(ts.URL, "/api/v1", 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	_, err := c.Health(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 2*time.Second)
}
