package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	apperrors "github.com/pscheid92/sessiontimer/internal/platform/errors"
)

const (
	apiPrefix  = "/api/"
	indexFile  = "index.html"
	anyPattern = "/*"
)

// Operator-facing pages expected in the static directory.
const (
	AdminPage  = "/admin.html"
	ScreenPage = "/screen.html"
)

// registerStaticRoutes mounts the catch-all route. GET and HEAD requests outside /api/
// are served from the static directory; anything left over is a JSON 404.
func (s *Server) registerStaticRoutes() {
	static := middleware.StaticWithConfig(middleware.StaticConfig{
		Root:    s.config.StaticDir,
		Index:   indexFile,
		Skipper: skipStatic,
	})
	s.echo.Any(anyPattern, s.handleFallback, static)
}

func skipStatic(c echo.Context) bool {
	method := c.Request().Method
	if method != http.MethodGet && method != http.MethodHead {
		return true
	}
	return isAPIPath(c.Request().URL.Path)
}

func isAPIPath(path string) bool {
	return path == strings.TrimSuffix(apiPrefix, "/") || strings.HasPrefix(path, apiPrefix)
}

func (s *Server) handleFallback(c echo.Context) error {
	req := c.Request()
	if !isAPIPath(req.URL.Path) && (req.Method == http.MethodGet || req.Method == http.MethodHead) {
		return apperrors.NotFoundError(msgNotFound).WithField("path", req.URL.Path)
	}
	return apperrors.NotFoundError(msgUnknownEndpoint).WithField("path", req.URL.Path)
}
