// Package server wires the user service together: configuration, logging,
// the PostgreSQL pool and migrations, the domain services and the REST
// endpoint, and runs it until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"go.uber.org/zap"

	"github.com/dmitrijs2005/userkeeper/internal/logging"
	"github.com/dmitrijs2005/userkeeper/internal/server/auth"
	"github.com/dmitrijs2005/userkeeper/internal/server/config"
	"github.com/dmitrijs2005/userkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/userkeeper/internal/server/pagination"
	"github.com/dmitrijs2005/userkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userkeeper/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	zap         *zap.Logger
	db          *sql.DB
	userService *services.UserService
	http        *httpapi.HTTPServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	zl, err := logging.NewZap(c.Debug)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	logger := logging.NewZapLogger(zl)

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN, repomanager.PoolOptions{
		MaxOpenConns: c.MaxOpenConns,
		MaxIdleConns: c.MaxIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(ctx, c, logger, db, repomanager.NewPostgresRepositoryManager())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app.zap = zl
	return app, nil
}

// newApp builds the service graph on an open database.
func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) (*App, error) {
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenIssuer(c.SecretKey, c.SigningAlgorithm, c.AccessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	us := services.NewUserService(db, rm,
		auth.NewPasswordHasher(c.BcryptCost),
		tokens,
		pagination.NewCalculator(c.DefaultPageSize, c.MaxPageSize),
		logger,
	)

	hs := httpapi.NewHTTPServer(httpapi.Options{
		Address:          c.EndpointAddrHTTP,
		APIPrefix:        c.APIPrefix,
		AppName:          c.AppName,
		AppVersion:       c.AppVersion,
		CORSAllowOrigins: c.CORSAllowOrigins,
		DefaultPageSize:  c.DefaultPageSize,
	}, us, logger)

	return &App{config: c, logger: logger, db: db, userService: us, http: hs}, nil
}

// shutdown drains HTTP first and closes the pool afterwards.
func (app *App) shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, app.config.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := app.http.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := app.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("db close: %w", err))
	}
	if app.zap != nil {
		_ = app.zap.Sync()
	}
	return errors.Join(errs...)
}

// Run serves until SIGINT/SIGTERM and returns the process exit code.
func (app *App) Run(ctx context.Context) int {
	app.logger.Info(ctx, "Starting app...", "name", app.config.AppName, "version", app.config.AppVersion)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- app.http.Run(ctx)
	}()

	wait := gfshutdown.GracefulShutdown(ctx, app.config.ShutdownTimeout, map[string]gfshutdown.Operation{
		"app": app.shutdown,
	})

	select {
	case code := <-wait:
		return code
	case err := <-serveErr:
		if err == nil {
			// Listen returns after a signal-driven shutdown
			return <-wait
		}
		app.logger.Error(ctx, "HTTP server error", "error", err)
		if err := app.shutdown(ctx); err != nil {
			app.logger.Error(ctx, "shutdown", "error", err)
		}
		return 1
	}
}
