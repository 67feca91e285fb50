package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	apperrors "github.com/pscheid92/sessiontimer/internal/platform/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRemoteAddr = "1.2.3.4:1234"

func callLimited(e *echo.Echo, handler echo.HandlerFunc, remoteAddr string) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(http.MethodPost, "/api/clear", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	return rec, handler(e.NewContext(req, rec))
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRateLimiterAllowsRequestsUnderLimit(t *testing.T) {
	e := echo.New()
	handler := newRateLimiter(10, 3)(okHandler) // 10 req/s, burst 3

	for range 3 {
		rec, err := callLimited(e, handler, testRemoteAddr)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiterBlocksExcessiveRequests(t *testing.T) {
	e := echo.New()
	handler := newRateLimiter(0.01, 1)(okHandler)

	rec, err := callLimited(e, handler, testRemoteAddr)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err = callLimited(e, handler, testRemoteAddr)
	require.Error(t, err)

	structured := apperrors.AsStructuredError(err)
	assert.Equal(t, apperrors.TypeRejected, structured.Type)
	assert.Equal(t, http.StatusTooManyRequests, structured.HTTPStatus())
	assert.Equal(t, "rate limit exceeded", structured.Message)
	assert.Equal(t, "1.2.3.4", structured.Context["client_ip"])
}

func TestRateLimiterDifferentIPsAreIndependent(t *testing.T) {
	e := echo.New()
	handler := newRateLimiter(0.01, 1)(okHandler)

	rec, err := callLimited(e, handler, testRemoteAddr)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Second IP still has its own burst
	rec, err = callLimited(e, handler, "5.6.7.8:5678")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err = callLimited(e, handler, testRemoteAddr)
	assert.Error(t, err)
}
