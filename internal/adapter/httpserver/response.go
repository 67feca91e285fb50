package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
)

const contentTypeJSON = "application/json; charset=utf-8"

type okResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id,omitempty"`
}

// writeJSON sends v with an explicit Content-Length and caching disabled.
// HTML characters are not escaped so nicks round-trip verbatim.
func writeJSON(c echo.Context, status int, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}
	body := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	h := c.Response().Header()
	h.Set(echo.HeaderCacheControl, "no-store")
	h.Set(echo.HeaderContentLength, strconv.Itoa(len(body)))

	if err := c.Blob(status, contentTypeJSON, body); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
