package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/userkeeper/internal/client/client"
	"github.com/dmitrijs2005/userkeeper/internal/client/config"
	"github.com/dmitrijs2005/userkeeper/internal/logging"
)

type App struct {
	config   *config.Config
	api      client.Client
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer
	userName string
}

func NewApp(c *config.Config) (*App, error) {
	if c.ServerURL == "" {
		return nil, fmt.Errorf("server url is empty")
	}

	api := client.NewRESTClient(c.ServerURL, c.APIPrefix, c.RequestTimeout)

	return &App{
		config: c,
		api:    api,
		logger: logging.NewTextSlogLogger(os.Stderr, c.Debug),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.api.LoggedIn()
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return "(anonymous)"
	}
	return fmt.Sprintf("(%s)", a.userName)
}

// checkServer reports whether the server answers its health endpoint.
func (a *App) checkServer(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	h, err := a.api.Health(ctx)
	if err != nil {
		a.logger.Warn(ctx, "Server health check failed", "url", a.config.ServerURL, "error", err)
		return false
	}
	a.logger.Debug(ctx, "Server is up", "status", h.Status, "version", h.Version)
	return true
}

// Run blocks in the interactive prompt until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintf(a.out, "Welcome to userkeeper CLI, server %s (type 'help' for commands)\n", a.config.ServerURL)
	a.checkServer(ctx)
	runREPL(ctx, a, a.getStatus, a.reader)
}
