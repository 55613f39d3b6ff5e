package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/intermernet/teamtrack/internal/config"
	"github.com/intermernet/teamtrack/internal/database"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

const testCleanupSecret = "sweep-secret-for-tests"

// newTestServer wires a Server against a fresh temp-dir database and returns
// the fully routed handler plus the underlying database service for seeding.
func newTestServer(t *testing.T) (*chi.Mux, *database.Service) {
	t.Helper()

	svc, err := database.NewService(filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	require.NoError(t, svc.InitSchema())

	cfg := &config.Config{
		ServerAddr:     ":0",
		FrontendURL:    "*",
		CleanupSecret:  testCleanupSecret,
		MaxUploadBytes: 1 << 20,
	}

	router := chi.NewRouter()
	NewServer(cfg, svc).RegisterRoutes(router)
	return router, svc
}

// doJSON performs a request with an optional JSON body and decodes the JSON
// response into out (when out is non-nil).
func doJSON(t *testing.T, handler http.Handler, method, target string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if out != nil {
		require.NoErrorf(t, json.Unmarshal(rec.Body.Bytes(), out),
			"response was not valid JSON: %s", rec.Body.String())
	}
	return rec
}

// createEventViaAPI is a seeding shortcut used across handler tests.
func createEventViaAPI(t *testing.T, handler http.Handler, name string) EventResponse {
	t.Helper()

	var resp struct {
		Event EventResponse `json:"event"`
	}
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/events", map[string]interface{}{"name": name}, &resp)
	require.Equal(t, http.StatusCreated, rec.Code)
	return resp.Event
}

// createTeamViaAPI registers a team under an event.
func createTeamViaAPI(t *testing.T, handler http.Handler, eventID int64, name string) TeamResponse {
	t.Helper()

	var resp struct {
		Team TeamResponse `json:"team"`
	}
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/teams", map[string]interface{}{
		"event_id": eventID,
		"name":     name,
	}, &resp)
	require.Equal(t, http.StatusCreated, rec.Code)
	return resp.Team
}
