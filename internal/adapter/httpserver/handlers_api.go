package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pscheid92/sessiontimer/internal/domain"
	apperrors "github.com/pscheid92/sessiontimer/internal/platform/errors"
	"github.com/pscheid92/sessiontimer/internal/registry"
)

const msgInvalidBody = "invalid request body"

type addSessionRequest struct {
	Nick    string `json:"nick"`
	Minutes int    `json:"minutes"`
	Players int    `json:"players"`
}

type removeSessionRequest struct {
	ID string `json:"id"`
}

func (s *Server) registerAPIRoutes() {
	bodyLimit := middleware.BodyLimit(s.config.MaxBodySize)
	rateLimiter := newRateLimiter(s.config.RateLimitPerSecond, s.config.RateLimitBurst)

	s.echo.GET("/api/state", s.handleState)
	s.echo.POST("/api/add", s.handleAddSession, rateLimiter, bodyLimit)
	s.echo.POST("/api/remove", s.handleRemoveSession, rateLimiter, bodyLimit)
	s.echo.POST("/api/clear", s.handleClear, rateLimiter, bodyLimit)
}

func (s *Server) handleState(c echo.Context) error {
	doc, err := s.app.State(c.Request().Context())
	if err != nil {
		return storageError(err, "failed to load state")
	}
	return writeJSON(c, http.StatusOK, doc)
}

func (s *Server) handleAddSession(c echo.Context) error {
	var req addSessionRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}

	session, err := s.app.AddSession(c.Request().Context(), registry.AddRequest{
		Nick:    req.Nick,
		Minutes: req.Minutes,
		Players: req.Players,
	})
	if errors.Is(err, domain.ErrInvalidSession) {
		return apperrors.ValidationError(domain.ErrInvalidSession.Error()).
			WithField("nick", req.Nick).
			WithField("minutes", req.Minutes)
	}
	if err != nil {
		return storageError(err, "failed to add session")
	}

	return writeJSON(c, http.StatusOK, okResponse{OK: true, ID: session.ID})
}

func (s *Server) handleRemoveSession(c echo.Context) error {
	var req removeSessionRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}

	if err := s.app.RemoveSession(c.Request().Context(), req.ID); err != nil {
		return storageError(err, "failed to remove session").WithField("session_id", req.ID)
	}

	return writeJSON(c, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleClear(c echo.Context) error {
	if err := s.app.Clear(c.Request().Context()); err != nil {
		return storageError(err, "failed to clear sessions")
	}

	return writeJSON(c, http.StatusOK, okResponse{OK: true})
}

// decodeBody parses a JSON body into v. An empty body leaves v at its zero value.
func decodeBody(c echo.Context, v any) error {
	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		return apperrors.ValidationError(msgInvalidBody).WithField("cause", err.Error())
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		return apperrors.ValidationError(msgInvalidBody).WithField("cause", err.Error())
	}
	return nil
}

// storageError maps store failures to a 500 with a stable message. Causes are logged only.
func storageError(err error, fallback string) *apperrors.Error {
	switch {
	case errors.Is(err, domain.ErrStorageCorrupt):
		return apperrors.InternalError(domain.ErrStorageCorrupt.Error(), err)
	case errors.Is(err, domain.ErrStorageWrite):
		return apperrors.InternalError(domain.ErrStorageWrite.Error(), err)
	default:
		return apperrors.InternalError(fallback, err)
	}
}
