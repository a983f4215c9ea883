package client

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/userkeeper/internal/common"
)

var (
	ErrUnavailable = errors.New("server unavailable")
	ErrNotLoggedIn = errors.New("not logged in")
)

// APIError is a non-2xx response. It unwraps to the common error category
// matching its status, so callers can use errors.Is(err, common.ErrNotFound).
type APIError struct {
	Status int
	Detail string
	Fields map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return e.Detail
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return fmt.Sprintf("%s (%s)", e.Detail, strings.Join(parts, "; "))
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case fiber.StatusBadRequest:
		return common.ErrInvalidArgument
	case fiber.StatusUnauthorized:
		return common.ErrUnauthorized
	case fiber.StatusNotFound:
		return common.ErrNotFound
	default:
		return common.ErrInternal
	}
}
