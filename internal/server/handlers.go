package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Memehub-GmbH-Co-KG/MemeHub-Limits/internal/domain"
)

type userRequest struct {
	UserID string `json:"user_id"`
}

type voteCheckRequest struct {
	UserID   string `json:"user_id"`
	TargetID string `json:"target_id"`
}

type issueTokensRequest struct {
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
}

type allowedResponse struct {
	Allowed bool `json:"allowed"`
}

type balanceResponse struct {
	Balance int64 `json:"balance"`
}

func (s *Server) handleMayPost(c echo.Context) error {
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	allowed, err := s.limiter.MayPost(c.Request().Context(), req.UserID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, allowedResponse{Allowed: allowed})
}

func (s *Server) handleMayVote(c echo.Context) error {
	var req voteCheckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	allowed, err := s.limiter.MayVote(c.Request().Context(), req.UserID, req.TargetID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, allowedResponse{Allowed: allowed})
}

func (s *Server) handleGetQuota(c echo.Context) error {
	quota, err := s.limiter.GetQuota(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, quota)
}

func (s *Server) handleIssueTokens(c echo.Context) error {
	var req issueTokensRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	balance, err := s.limiter.IssueTokens(c.Request().Context(), req.UserID, req.Amount)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, balanceResponse{Balance: balance})
}

func (s *Server) handlePostEvent(c echo.Context) error {
	var ev domain.PostIssued
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.limiter.HandlePost(c.Request().Context(), ev); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusAccepted)
}

func (s *Server) handleVoteEvent(c echo.Context) error {
	var ev domain.VoteEvent
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.limiter.HandleVote(c.Request().Context(), ev); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusAccepted)
}

func (s *Server) handleVoteRetractedEvent(c echo.Context) error {
	var ev domain.VoteEvent
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.limiter.HandleVoteRetracted(c.Request().Context(), ev); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusAccepted)
}

// mapError turns malformed-input errors into 400s; everything else is a
// transient store failure the caller may retry.
func mapError(err error) error {
	switch {
	case errors.Is(err, domain.ErrMissingUserID),
		errors.Is(err, domain.ErrMissingPosterID),
		errors.Is(err, domain.ErrMissingTargetID):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable, retry later").SetInternal(err)
	}
}
