package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yengalvez/tour360/internal/shared/apperr"
)

func newEngine(h gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := gin.New()
	r.Use(RequestID(), Logger(l), ErrorHandler(l), Recovery(l))
	r.GET("/api/x", h)
	r.GET("/page", h)
	return r
}

func serve(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestErrorHandlerJSON(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		Fail(c, apperr.MalformedInputErr("Revisa los datos", map[string]string{"name": "Obligatorio."}))
	})

	w := serve(r, "/api/x")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Revisa los datos", body["error"])
	assert.Equal(t, map[string]any{"name": "Obligatorio."}, body["fields"])
}

func TestErrorHandlerHidesInternalErrors(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		Fail(c, errors.New("disk on fire"))
	})

	w := serve(r, "/api/x")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk on fire")
}

func TestErrorHandlerHTML(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		Fail(c, apperr.NotFoundErr("<b>Tour</b> no encontrado"))
	})

	w := serve(r, "/page")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "&lt;b&gt;Tour&lt;/b&gt; no encontrado")
	assert.Contains(t, w.Body.String(), w.Header().Get(HeaderRequestID))
}

func TestRecoveryTurnsPanicInto500(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		panic("boom")
	})

	w := serve(r, "/api/x")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Ha ocurrido un error inesperado.")
}

func TestRequestIDRejectsUnsafeValues(t *testing.T) {
	r := newEngine(func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
	req.Header.Set(HeaderRequestID, "bad id\r\n<script>")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	rid := w.Header().Get(HeaderRequestID)
	assert.NotEmpty(t, rid)
	assert.False(t, strings.Contains(rid, "<"))
}

func TestLoggerRecordsTourSlug(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))
	r := gin.New()
	r.Use(RequestID(), Logger(l))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/api/tours/:slug", ok)
	r.GET("/api/get-tour", ok)
	r.GET("/", ok)

	lastLine := func(path string) map[string]any {
		buf.Reset()
		serve(r, path)
		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line), buf.String())
		return line
	}

	line := lastLine("/api/tours/casa-bonita")
	assert.Equal(t, "http_request", line["msg"])
	assert.Equal(t, "casa-bonita", line["slug"])

	line = lastLine("/api/get-tour?slug=casa-bonita")
	assert.Equal(t, "casa-bonita", line["slug"])

	line = lastLine("/")
	assert.NotContains(t, line, "slug")
}
