package relay

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, tokenURL, apiBaseURL string) *Server {
	t.Helper()

	srv, err := NewServer(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:3000/callback",
		TokenURL:     tokenURL,
		APIBaseURL:   apiBaseURL,
	}, testLogger(), nil)
	require.NoError(t, err)
	return srv
}

func TestNewServer_RequiresCredentials(t *testing.T) {
	_, err := NewServer(Config{ClientID: "id"}, testLogger(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ZOOM_CLIENT_SECRET")
}

func TestHandleToken(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok, "expected basic auth")
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
		assert.Equal(t, "auth-code-123", r.FormValue("code"))
		assert.Equal(t, "http://localhost:3000/callback", r.FormValue("redirect_uri"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-abc","token_type":"bearer","expires_in":3599}`))
	}))
	defer upstream.Close()

	srv := newTestServer(t, upstream.URL, "http://unused")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/zoom/token", strings.NewReader(`{"code":"auth-code-123"}`))

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "tok-abc", resp.AccessToken)
}

func TestHandleToken_MissingCode(t *testing.T) {
	srv := newTestServer(t, "http://unused", "http://unused")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/zoom/token", strings.NewReader(`{}`))

	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleToken_UpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"reason":"Invalid client credentials"}`))
	}))
	defer upstream.Close()

	srv := newTestServer(t, upstream.URL, "http://unused")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/zoom/token", strings.NewReader(`{"code":"bad"}`))

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Failed to get Zoom token", resp.Error)
}

func TestHandleCreateMeeting(t *testing.T) {
	var captured map[string]any
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me/meetings", r.URL.Path)
		assert.Equal(t, "Bearer tok-abc", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":123456789,"join_url":"https://zoom.us/j/123456789"}`))
	}))
	defer upstream.Close()

	srv := newTestServer(t, "http://unused", upstream.URL)
	rec := httptest.NewRecorder()
	body := `{"accessToken":"tok-abc","meetingData":{"title":"Team Sync","start_time":"2024-12-05T14:00:00Z","duration":45}}`
	req := httptest.NewRequest(http.MethodPost, "/api/zoom/create-meeting", strings.NewReader(body))

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "Team Sync", captured["topic"])
	assert.Equal(t, float64(2), captured["type"])
	assert.Equal(t, "2024-12-05T14:00:00Z", captured["start_time"])
	assert.Equal(t, float64(45), captured["duration"])
	assert.Equal(t, "UTC", captured["timezone"])

	var resp struct {
		JoinURL string `json:"join_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://zoom.us/j/123456789", resp.JoinURL)
}

func TestHandleCreateMeeting_MissingToken(t *testing.T) {
	srv := newTestServer(t, "http://unused", "http://unused")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/zoom/create-meeting", strings.NewReader(`{"meetingData":{"title":"x"}}`))

	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreateMeeting_UpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	srv := newTestServer(t, "http://unused", upstream.URL)
	rec := httptest.NewRecorder()
	body := `{"accessToken":"tok-abc","meetingData":{"title":"Team Sync","start_time":"2024-12-05T14:00:00Z"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/zoom/create-meeting", strings.NewReader(body))

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Failed to create Zoom meeting", resp.Error)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, "http://unused", "http://unused")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/zoom/token", nil)

	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDurationMinutes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "integer", raw: `45`, want: 45},
		{name: "display string", raw: `"30 minutes"`, want: 30},
		{name: "leading integer only", raw: `"1 hour"`, want: 1},
		{name: "no digits", raw: `"an hour"`, want: 30},
		{name: "absent", raw: ``, want: 30},
		{name: "null", raw: `null`, want: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw json.RawMessage
			if tt.raw != "" {
				raw = json.RawMessage(tt.raw)
			}
			assert.Equal(t, tt.want, durationMinutes(raw))
		})
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, "http://unused", "http://unused")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Not ready until Start flips the flag.
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	srv.Health().SetReady(true)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
