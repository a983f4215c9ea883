package httpapi

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/dmitrijs2005/userkeeper/internal/logging"
)

type ctxKey string

const (
	userIDLocal    ctxKey = "userID"
	requestIDLocal        = "requestid"
)

// accessLog moves the request id into the user context and logs one line
// per request. Errors are rendered here so the logged status is final.
func (s *HTTPServer) accessLog(c *fiber.Ctx) error {
	start := time.Now()

	if id, ok := c.Locals(requestIDLocal).(string); ok {
		c.SetUserContext(logging.ContextWithRequestID(c.UserContext(), id))
	}

	if err := c.Next(); err != nil {
		if herr := s.errorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	s.logger.Info(c.UserContext(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"latency", time.Since(start).String(),
	)
	return nil
}

// requireBearer accepts "Authorization: Bearer <token>" and stores the
// token subject in the request locals.
func (s *HTTPServer) requireBearer(c *fiber.Ctx) error {
	token, ok := bearerToken(c.Get(common.AuthorizationHeader))
	if !ok {
		return common.ErrInvalidToken
	}

	userID, err := s.users.UserIDFromToken(token)
	if err != nil {
		return err
	}

	c.Locals(userIDLocal, userID)
	return c.Next()
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func currentUserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(userIDLocal).(int64)
	return id
}
