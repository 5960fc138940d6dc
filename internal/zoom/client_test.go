package zoom

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeURL(t *testing.T) {
	c := NewClient(Config{
		ClientID:    "abc123",
		RedirectURI: "http://localhost:3000/zoom/callback",
	})

	u := c.AuthorizeURL("state-value")

	assert.True(t, strings.HasPrefix(u, DefaultAuthorizeURL+"?"))
	assert.Contains(t, u, "response_type=code")
	assert.Contains(t, u, "client_id=abc123")
	assert.Contains(t, u, "state=state-value")
	assert.Contains(t, u, "redirect_uri=http%3A%2F%2Flocalhost%3A3000%2Fzoom%2Fcallback")
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "raw code", input: "  abc123  ", want: "abc123"},
		{
			name:  "full redirect url",
			input: "http://localhost:3000/zoom/callback?code=xyz789&state=s",
			want:  "xyz789",
		},
		{name: "url without code", input: "http://localhost:3000/zoom/callback", want: "http://localhost:3000/zoom/callback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCode(tt.input))
		})
	}
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/zoom/token", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "one-time-code", body["code"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"zoom-token","token_type":"bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	c := NewClient(Config{RelayURL: srv.URL})

	token, err := c.ExchangeCode(context.Background(), "one-time-code")
	require.NoError(t, err)
	assert.Equal(t, "zoom-token", token)
}

func TestExchangeCode_RelayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"invalid authorization code"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{RelayURL: srv.URL})

	_, err := c.ExchangeCode(context.Background(), "bad-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid authorization code")
}

func TestCreateMeeting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/zoom/create-meeting", r.URL.Path)

		var body struct {
			AccessToken string `json:"accessToken"`
			MeetingData struct {
				Title     string `json:"title"`
				StartTime string `json:"start_time"`
				Duration  int    `json:"duration"`
			} `json:"meetingData"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "zoom-token", body.AccessToken)
		assert.Equal(t, "Team Standup", body.MeetingData.Title)
		assert.Equal(t, "2025-12-05T14:00:00Z", body.MeetingData.StartTime)
		assert.Equal(t, 30, body.MeetingData.Duration)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":987654321,"join_url":"https://zoom.us/j/987654321"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{RelayURL: srv.URL})

	resp, err := c.CreateMeeting(context.Background(), "zoom-token", MeetingRequest{
		Title:     "Team Standup",
		StartTime: time.Date(2025, time.December, 5, 14, 0, 0, 0, time.UTC),
		Duration:  "30 min",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(987654321), resp.ID)
	assert.Equal(t, "https://zoom.us/j/987654321", resp.JoinURL)
}

func TestLeadingMinutes(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{input: "30 min", want: 30},
		{input: "45 min", want: 45},
		{input: "1 hour", want: 1},
		{input: "1.5 hours", want: 1},
		{input: "", want: 30},
		{input: "soon", want: 30},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LeadingMinutes(tt.input), "input %q", tt.input)
	}
}
