package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Query and admin routes
	s.echo.POST("/api/may-post", s.handleMayPost)
	s.echo.POST("/api/may-vote", s.handleMayVote)
	s.echo.GET("/api/quota/:user_id", s.handleGetQuota)
	s.echo.POST("/api/tokens", s.handleIssueTokens)

	// Event intake, rate limited per client IP
	events := s.echo.Group("/events",
		middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(s.config.EventRateLimit))))
	events.POST("/post", s.handlePostEvent)
	events.POST("/vote", s.handleVoteEvent)
	events.POST("/vote-retracted", s.handleVoteRetractedEvent)
}
