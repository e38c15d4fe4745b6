package statuspage

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(repo Repository) http.Handler {
	r := chi.NewRouter()
	NewHandler(newTestService(repo)).RegisterRoutes(r)
	return r
}

func serve(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandler_GetPageUptime(t *testing.T) {
	h := newTestRouter(seededRepository())

	rec := serve(t, h, "/pages/1/uptime?days=3&tz=UTC")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Data struct {
			WindowDays     int  `json:"window_days"`
			AllOperational bool `json:"all_operational"`
			Days           []struct {
				Day    string  `json:"day"`
				Uptime float64 `json:"uptime"`
				Grade  string  `json:"grade"`
			} `json:"days"`
			Components []struct {
				ComponentID   int64  `json:"component_id"`
				StatusLabel   string `json:"status_label"`
				DisplayUptime *bool  `json:"display_uptime"`
			} `json:"components"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, 3, body.Data.WindowDays)
	assert.False(t, body.Data.AllOperational)
	require.Len(t, body.Data.Days, 3)
	assert.Equal(t, "2024-01-02", body.Data.Days[1].Day)
	assert.Equal(t, 62.5, body.Data.Days[1].Uptime)
	assert.Equal(t, "orange", body.Data.Days[1].Grade)
	require.Len(t, body.Data.Components, 3)
	assert.Equal(t, "Operational", body.Data.Components[0].StatusLabel)
	require.NotNil(t, body.Data.Components[2].DisplayUptime)
	assert.Equal(t, int64(12), body.Data.Components[2].ComponentID)
	assert.False(t, *body.Data.Components[2].DisplayUptime)
}

func TestHandler_Errors(t *testing.T) {
	h := newTestRouter(seededRepository())

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
	}{
		{"page not found", "/pages/99/uptime", http.StatusNotFound, "page not found"},
		{"bad page id", "/pages/abc/uptime", http.StatusBadRequest, "id must be a positive integer"},
		{"negative page id", "/pages/-1/uptime", http.StatusBadRequest, "id must be a positive integer"},
		{"bad days", "/pages/1/uptime?days=ten", http.StatusBadRequest, "days must be a positive integer"},
		{"window not allowed", "/pages/1/uptime?days=7", http.StatusBadRequest, "window size is not allowed"},
		{"days over limit", "/pages/1/uptime?days=1000", http.StatusBadRequest, "validation error"},
		{"unknown timezone", "/pages/1/uptime?tz=Mars/Olympus", http.StatusBadRequest, "validation error"},
		{"component not found", "/pages/1/components/99/uptime", http.StatusNotFound, "component not found"},
		{"component on missing page", "/pages/999/components/12/uptime", http.StatusNotFound, "page not found"},
		{"bad component id", "/pages/1/components/x/uptime", http.StatusBadRequest, "componentID must be a positive integer"},
		{"unknown kind", "/pages/1/history?kind=outage", http.StatusBadRequest, "validation error"},
		{"history page not found", "/pages/99/history", http.StatusNotFound, "page not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, h, tt.target)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestHandler_GetComponentUptime(t *testing.T) {
	h := newTestRouter(seededRepository())

	rec := serve(t, h, "/pages/1/components/10/uptime")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Data ComponentUptime `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(10), body.Data.ComponentID)
	assert.Equal(t, 91.67, body.Data.TotalUptime)
	require.Len(t, body.Data.Days, 3)
}

func TestHandler_GetHistory(t *testing.T) {
	h := newTestRouter(historyRepository())

	rec := serve(t, h, "/pages/1/history?kind=incident")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Data struct {
			WindowDays int `json:"window_days"`
			Days       []struct {
				Day       string `json:"day"`
				Incidents []struct {
					ID          int64  `json:"id"`
					StatusLabel string `json:"status_label"`
					Open        bool   `json:"open"`
				} `json:"incidents"`
			} `json:"days"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, 3, body.Data.WindowDays)
	require.Len(t, body.Data.Days, 3)
	assert.NotNil(t, body.Data.Days[0].Incidents, "empty days serialize as []")
	assert.Empty(t, body.Data.Days[0].Incidents)
	require.Len(t, body.Data.Days[1].Incidents, 1)
	assert.Equal(t, "Resolved", body.Data.Days[1].Incidents[0].StatusLabel)
	assert.False(t, body.Data.Days[1].Incidents[0].Open)
	require.Len(t, body.Data.Days[2].Incidents, 1)
	assert.True(t, body.Data.Days[2].Incidents[0].Open)
}
