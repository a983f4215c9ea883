package httpapi

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/dmitrijs2005/userkeeper/internal/server/schemas"
)

const (
	detailInternal   = "Internal server error"
	detailValidation = "Validation error"
)

var (
	errInvalidBody   = common.NewError(common.ErrInvalidArgument, "Invalid request body")
	errInvalidUserID = common.NewError(common.ErrInvalidArgument, "Invalid user id")
)

// statusOf maps an error category to an HTTP status. Conflicts are reported
// as 400.
func statusOf(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidArgument), errors.Is(err, common.ErrConflict):
		return fiber.StatusBadRequest
	case errors.Is(err, common.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, common.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *HTTPServer) errorHandler(c *fiber.Ctx, err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for name, ferr := range verrs {
			fields[name] = ferr.Error()
		}
		return c.Status(fiber.StatusBadRequest).JSON(schemas.ErrorResponse{Detail: detailValidation, Errors: fields})
	}

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return c.Status(ferr.Code).JSON(schemas.ErrorResponse{Detail: ferr.Message})
	}

	status := statusOf(err)
	switch status {
	case fiber.StatusInternalServerError:
		s.logger.Error(c.UserContext(), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(status).JSON(schemas.ErrorResponse{Detail: detailInternal})
	case fiber.StatusUnauthorized:
		c.Set(fiber.HeaderWWWAuthenticate, common.BearerScheme)
	}

	return c.Status(status).JSON(schemas.ErrorResponse{Detail: common.Detail(err, utils.StatusMessage(status))})
}
