package response

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusGone, "TOKEN_EXPIRED", "Token has expired", discard())

	assert.Equal(t, http.StatusGone, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, map[string]any{
		"v":       float64(1),
		"success": false,
		"error":   "Token has expired",
		"code":    "TOKEN_EXPIRED",
	}, decode(t, w))
}

func TestNotFound(t *testing.T) {
	w := httptest.NewRecorder()
	NotFound(discard())(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, "NOT_FOUND", body["code"])
	assert.Equal(t, false, body["success"])
}

func TestMethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()
	MethodNotAllowed(nil)(w, httptest.NewRequest(http.MethodDelete, "/health", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "DELETE not allowed on this route", decode(t, w)["error"])
}
