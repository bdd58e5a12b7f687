package web

import (
	"context"
	"errors"
	"net"
	"strings"

	"contentdesk/internal/filter"
	"contentdesk/internal/logging"
	"contentdesk/internal/records"
	"contentdesk/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type ServerConfig struct {
	Addr  string
	Dir   string
	Views map[string][]filter.Section
	Log   *logging.Logger
}

// Server is a read-only JSON API over the record store. Every request reloads the
// store so CLI and TUI writes show up without a restart.
type Server struct {
	cfg   ServerConfig
	store store.Store
	app   *fiber.App
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, errors.New("web: missing store dir")
	}
	if cfg.Views == nil {
		cfg.Views = filter.DefaultViews()
	}
	s := &Server{cfg: cfg, store: store.Store{Dir: cfg.Dir}}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${status} - ${latency} ${method} ${path}\n",
		Output: cfg.Log.Writer(),
	}))
	s.app = app
	s.routes()
	return s, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

// App exposes the fiber app (tests use app.Test).
func (s *Server) App() *fiber.App { return s.app }

// Serve blocks serving ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.app.Listener(ln) }()
	select {
	case <-ctx.Done():
		s.cfg.Log.Info("web: shutting down")
		return s.app.Shutdown()
	case err := <-errCh:
		return err
	}
}

func (s *Server) routes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	api := s.app.Group("/api")
	api.Get("/views", s.handleViews)
	api.Get("/schedule", s.handleSchedule)
	api.Get("/:view/facets", s.handleFacets)
	api.Get("/tasks/:id", s.handleTask)
	api.Get("/enquiries/:id", s.handleEnquiry)
	api.Get("/:view", s.handleList)
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	kind := "server_error"
	message := "Internal Server Error"

	var fe *fiber.Error
	var nf store.NotFoundError
	switch {
	case errors.As(err, &fe):
		code = fe.Code
		kind = "request_error"
		message = fe.Message
	case errors.As(err, &nf):
		code = fiber.StatusNotFound
		kind = "not_found"
		message = nf.Error()
	case errors.Is(err, records.ErrUnknownView):
		code = fiber.StatusNotFound
		kind = "unknown_view"
		message = err.Error()
	default:
		s.cfg.Log.Error("web: request failed", "path", c.Path(), "err", err)
	}
	return c.Status(code).JSON(ErrorResponse{Error: kind, Message: message})
}
