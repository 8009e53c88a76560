package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/volunteerd/internal/bot"
	"github.com/fyrsmithlabs/volunteerd/internal/ledger"
	"github.com/fyrsmithlabs/volunteerd/internal/session"
	"github.com/fyrsmithlabs/volunteerd/internal/store/sqlite"
)

func newTestBotRouter(t *testing.T) *bot.Router {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := sqlite.New(db)
	sessions := session.NewStore(0, zap.NewNop())
	return bot.NewRouter(sessions, st, ledger.New(st, zap.NewNop()), zap.NewNop())
}

func setupTestServer(t *testing.T) *Server {
	t.Helper()
	server, err := NewServer(newTestBotRouter(t), zap.NewNop(), nil)
	require.NoError(t, err)
	return server
}

func postEvent(t *testing.T, server *Server, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)
	return rec
}

func TestNewServer(t *testing.T) {
	t.Run("creates server with valid config", func(t *testing.T) {
		cfg := &Config{
			Host: "localhost",
			Port: 8080,
		}

		server, err := NewServer(newTestBotRouter(t), zap.NewNop(), cfg)
		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.NotNil(t, server.echo)
		assert.Equal(t, cfg, server.config)
	})

	t.Run("uses defaults when config is nil", func(t *testing.T) {
		server, err := NewServer(newTestBotRouter(t), zap.NewNop(), nil)
		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.Equal(t, "localhost", server.config.Host)
		assert.Equal(t, 8080, server.config.Port)
	})

	t.Run("returns error when logger is nil", func(t *testing.T) {
		_, err := NewServer(newTestBotRouter(t), nil, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "logger is required")
	})

	t.Run("returns error when router is nil", func(t *testing.T) {
		_, err := NewServer(nil, zap.NewNop(), nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "router cannot be nil")
	})
}

func TestHandleHealth(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	server.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleMetrics(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	server.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleEvent(t *testing.T) {
	t.Run("dispatches a text event", func(t *testing.T) {
		server := setupTestServer(t)

		rec := postEvent(t, server, EventRequest{
			Principal: 42,
			Kind:      "text",
			Text:      "/start",
		})

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp EventResponse
		err := json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		require.Len(t, resp.Renders, 1)
		assert.NotEmpty(t, resp.Renders[0].Text)
		assert.NotNil(t, resp.Renders[0].Menu)
	})

	t.Run("dispatches a callback event", func(t *testing.T) {
		server := setupTestServer(t)

		rec := postEvent(t, server, EventRequest{
			Principal: 42,
			Kind:      "callback",
			Token:     "menu_statistics",
		})

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp EventResponse
		err := json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		require.Len(t, resp.Renders, 1)
	})

	t.Run("rejects missing principal", func(t *testing.T) {
		server := setupTestServer(t)

		rec := postEvent(t, server, EventRequest{Kind: "text", Text: "hi"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		server := setupTestServer(t)

		rec := postEvent(t, server, EventRequest{Principal: 42, Kind: "gesture"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		server := setupTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewReader([]byte("{")))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestShutdown(t *testing.T) {
	server := setupTestServer(t)
	assert.NoError(t, server.Shutdown(context.Background()))
}
