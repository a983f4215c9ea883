// Package httpapi exposes the user service over a JSON REST API served by
// fiber.
package httpapi

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/userkeeper/internal/logging"
	"github.com/dmitrijs2005/userkeeper/internal/server/auth"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
)

// UserService is the part of services.UserService the handlers use.
type UserService interface {
	Create(ctx context.Context, in models.NewUser) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ListPage(ctx context.Context, page, size int) (*models.UserPage, error)
	Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	Login(ctx context.Context, login, password string) (*auth.AccessToken, error)
	UserIDFromToken(token string) (int64, error)
	CurrentUser(ctx context.Context, userID int64) (*models.User, error)
	ChangePassword(ctx context.Context, userID int64, current, next string) error
}

// Options configure an HTTPServer.
type Options struct {
	Address          string
	APIPrefix        string
	AppName          string
	AppVersion       string
	CORSAllowOrigins string
	DefaultPageSize  int
}

type HTTPServer struct {
	app    *fiber.App
	opts   Options
	users  UserService
	logger logging.Logger
}

func NewHTTPServer(opts Options, users UserService, l logging.Logger) *HTTPServer {
	s := &HTTPServer{
		opts:   opts,
		users:  users,
		logger: l.With("module", "http_server"),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               opts.AppName,
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})

	s.app.Use(recover.New())
	s.app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: requestIDLocal,
	}))
	s.app.Use(s.accessLog)
	s.app.Use(cors.New(cors.Config{AllowOrigins: opts.CORSAllowOrigins}))

	s.routes()
	return s
}

func (s *HTTPServer) routes() {
	s.app.Get("/", s.info)
	s.app.Get("/health", s.health)

	api := s.app.Group(s.opts.APIPrefix)
	users := api.Group("/users")

	// fixed paths go before /:id
	users.Post("/login", s.login)
	users.Get("/me", s.requireBearer, s.me)
	users.Put("/me/password", s.requireBearer, s.changePassword)

	users.Post("", s.createUser)
	users.Get("", s.listUsers)
	users.Get("/:id", s.getUser)
	users.Put("/:id", s.updateUser)
	users.Delete("/:id", s.deleteUser)
}

// App exposes the underlying fiber app, mostly for app.Test.
func (s *HTTPServer) App() *fiber.App { return s.app }

// Run blocks serving requests until Shutdown is called.
func (s *HTTPServer) Run(ctx context.Context) error {
	s.logger.Info(ctx, "Starting HTTP server", "address", s.opts.Address)
	return s.app.Listen(s.opts.Address)
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "Stopping HTTP server...")

	timeout := 10 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	return s.app.ShutdownWithTimeout(timeout)
}
