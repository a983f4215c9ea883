package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/dmitrijs2005/userkeeper/internal/server/schemas"
)

var _ Client = (*RESTClient)(nil)

// RESTClient talks to the user API over HTTP using fiber's client agent.
// It keeps the access token from the last successful Login.
type RESTClient struct {
	baseURL   string
	apiPrefix string
	timeout   time.Duration
	token     string
}

func NewRESTClient(serverURL, apiPrefix string, timeout time.Duration) *RESTClient {
	return &RESTClient{
		baseURL:   strings.TrimRight(serverURL, "/"),
		apiPrefix: "/" + strings.Trim(apiPrefix, "/"),
		timeout:   timeout,
	}
}

type call struct {
	method string
	path   string
	query  url.Values
	body   any
	auth   bool
	raw    bool // path is not under the API prefix
}

func (c *RESTClient) url(cl call) string {
	u := c.baseURL
	if !cl.raw {
		u += c.apiPrefix
	}
	u += cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}
	return u
}

// do performs one request and decodes a 2xx JSON body into out when out is
// not nil. Cancelling ctx returns ctx.Err() without waiting for the response.
func (c *RESTClient) do(ctx context.Context, cl call, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cl.auth && c.token == "" {
		return ErrNotLoggedIn
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(cl.method)
	req.SetRequestURI(c.url(cl))

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); timeout == 0 || left < timeout {
			timeout = left
		}
	}
	if timeout > 0 {
		a.Timeout(timeout)
	}

	if cl.auth {
		a.Set(fiber.HeaderAuthorization, common.BearerScheme+" "+c.token)
	}
	if cl.body != nil {
		a.JSON(cl.body)
	}

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	type response struct {
		status int
		body   []byte
		errs   []error
	}
	done := make(chan response, 1)
	go func() {
		status, body, errs := a.Bytes()
		done <- response{status: status, body: body, errs: errs}
	}()

	var resp response
	select {
	case <-ctx.Done():
		// the agent is released once the abandoned request finishes
		return ctx.Err()
	case resp = <-done:
	}
	if len(resp.errs) > 0 {
		return fmt.Errorf("%w: %v", ErrUnavailable, errors.Join(resp.errs...))
	}
	status, body := resp.status, resp.body

	if status >= fiber.StatusBadRequest {
		return decodeError(status, body)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(status int, body []byte) error {
	var resp schemas.ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Detail == "" {
		resp.Detail = fmt.Sprintf("unexpected status %d", status)
	}
	return &APIError{Status: status, Detail: resp.Detail, Fields: resp.Errors}
}

func userPath(id int64) string {
	return "/users/" + strconv.FormatInt(id, 10)
}

func (c *RESTClient) Health(ctx context.Context) (*schemas.HealthResponse, error) {
	var out schemas.HealthResponse
	if err := c.do(ctx, call{method: fiber.MethodGet, path: "/health", raw: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) Register(ctx context.Context, req schemas.CreateUserRequest) (*schemas.UserResponse, error) {
	var out schemas.UserResponse
	if err := c.do(ctx, call{method: fiber.MethodPost, path: "/users", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for an access token and keeps it for later
// calls.
func (c *RESTClient) Login(ctx context.Context, login, password string) error {
	var out schemas.TokenResponse
	req := schemas.LoginRequest{Username: login, Password: password}
	if err := c.do(ctx, call{method: fiber.MethodPost, path: "/users/login", body: req}, &out); err != nil {
		return err
	}
	c.token = out.AccessToken
	return nil
}

func (c *RESTClient) Logout() { c.token = "" }

func (c *RESTClient) LoggedIn() bool { return c.token != "" }

func (c *RESTClient) Me(ctx context.Context) (*schemas.UserResponse, error) {
	var out schemas.UserResponse
	if err := c.do(ctx, call{method: fiber.MethodGet, path: "/users/me", auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) ChangePassword(ctx context.Context, current, next string) error {
	req := schemas.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}
	return c.do(ctx, call{method: fiber.MethodPut, path: "/users/me/password", body: req, auth: true}, nil)
}

func (c *RESTClient) ListUsers(ctx context.Context, page, size int) (*schemas.UserListResponse, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}

	var out schemas.UserListResponse
	if err := c.do(ctx, call{method: fiber.MethodGet, path: "/users", query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) GetUser(ctx context.Context, id int64) (*schemas.UserResponse, error) {
	var out schemas.UserResponse
	if err := c.do(ctx, call{method: fiber.MethodGet, path: userPath(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser sends only the given fields. A nil value clears first_name or
// last_name.
func (c *RESTClient) UpdateUser(ctx context.Context, id int64, fields map[string]any) (*schemas.UserResponse, error) {
	var out schemas.UserResponse
	if err := c.do(ctx, call{method: fiber.MethodPut, path: userPath(id), body: fields}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, call{method: fiber.MethodDelete, path: userPath(id)}, nil)
}
