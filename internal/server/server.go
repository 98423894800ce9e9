package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Memehub-GmbH-Co-KG/MemeHub-Limits/internal/config"
	"github.com/Memehub-GmbH-Co-KG/MemeHub-Limits/internal/domain"
)

// redisPinger is the minimal interface for Redis health checks.
type redisPinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP facade: quota queries, token issuance, event intake,
// and observability endpoints.
type Server struct {
	echo      *echo.Echo
	config    *config.Config
	limiter   domain.Limiter
	redis     redisPinger
	startTime time.Time
}

// NewServer creates the HTTP facade.
func NewServer(cfg *config.Config, limiter domain.Limiter, redis redisPinger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	srv := &Server{
		echo:      e,
		config:    cfg,
		limiter:   limiter,
		redis:     redis,
		startTime: time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
