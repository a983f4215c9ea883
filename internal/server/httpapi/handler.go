package httpapi

import (
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/dmitrijs2005/userkeeper/internal/server/schemas"
)

// parseBody decodes the JSON body into dst and validates it.
func parseBody(c *fiber.Ctx, dst validation.Validatable) error {
	if err := c.BodyParser(dst); err != nil {
		return errInvalidBody
	}
	return dst.Validate()
}

func pathID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, errInvalidUserID
	}
	return id, nil
}

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, common.Errorf(common.ErrInvalidArgument, "Query parameter %s must be an integer", key)
	}
	return v, nil
}

func (s *HTTPServer) info(c *fiber.Ctx) error {
	return c.JSON(schemas.InfoResponse{
		Message: "Welcome to " + s.opts.AppName,
		Version: s.opts.AppVersion,
		Health:  "/health",
	})
}

func (s *HTTPServer) health(c *fiber.Ctx) error {
	return c.JSON(schemas.HealthResponse{Status: "healthy", Version: s.opts.AppVersion})
}

func (s *HTTPServer) createUser(c *fiber.Ctx) error {
	var req schemas.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := s.users.Create(c.UserContext(), req.ToModel())
	if err != nil {
		return err
	}

	s.logger.Info(c.UserContext(), "Registered", "user_id", user.ID)
	return c.Status(fiber.StatusCreated).JSON(schemas.NewUserResponse(user))
}

func (s *HTTPServer) listUsers(c *fiber.Ctx) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return err
	}
	size, err := queryInt(c, "size", s.opts.DefaultPageSize)
	if err != nil {
		return err
	}

	result, err := s.users.ListPage(c.UserContext(), page, size)
	if err != nil {
		return err
	}
	return c.JSON(schemas.NewUserListResponse(result))
}

func (s *HTTPServer) getUser(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	user, err := s.users.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(schemas.NewUserResponse(user))
}

func (s *HTTPServer) updateUser(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req schemas.UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := s.users.Update(c.UserContext(), id, req.ToModel())
	if err != nil {
		return err
	}
	return c.JSON(schemas.NewUserResponse(user))
}

func (s *HTTPServer) deleteUser(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := s.users.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *HTTPServer) login(c *fiber.Ctx) error {
	var req schemas.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	token, err := s.users.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(schemas.NewTokenResponse(token))
}

func (s *HTTPServer) me(c *fiber.Ctx) error {
	user, err := s.users.CurrentUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(schemas.NewUserResponse(user))
}

func (s *HTTPServer) changePassword(c *fiber.Ctx) error {
	var req schemas.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := s.users.ChangePassword(c.UserContext(), currentUserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
