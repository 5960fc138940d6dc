// Package zoom talks to the Zoom provider through the relay, which holds the
// confidential client secret. The client itself only ever sees authorization
// codes and access tokens.
package zoom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// DefaultAuthorizeURL is Zoom's user-facing authorization endpoint.
const DefaultAuthorizeURL = "https://zoom.us/oauth/authorize"

// DefaultRelayURL is where the relay listens during local development.
const DefaultRelayURL = "http://localhost:4000"

// Config holds the client-side Zoom settings. Only the public client ID and
// the redirect URI live here; the secret stays with the relay.
type Config struct {
	RelayURL     string
	ClientID     string
	RedirectURI  string
	AuthorizeURL string
	HTTPClient   *http.Client
}

// ConfigFromEnv builds a Config from ZOOM_CLIENT_ID, ZOOM_REDIRECT_URI and
// MEETSCHED_RELAY_URL.
func ConfigFromEnv() Config {
	return Config{
		RelayURL:    os.Getenv("MEETSCHED_RELAY_URL"),
		ClientID:    os.Getenv("ZOOM_CLIENT_ID"),
		RedirectURI: os.Getenv("ZOOM_REDIRECT_URI"),
	}
}

// Client performs the authorization handoff and meeting creation via the
// relay.
type Client struct {
	relayURL     string
	clientID     string
	redirectURI  string
	authorizeURL string
	httpClient   *http.Client
}

// NewClient returns a Client with defaults applied.
func NewClient(cfg Config) *Client {
	c := &Client{
		relayURL:     strings.TrimRight(cfg.RelayURL, "/"),
		clientID:     cfg.ClientID,
		redirectURI:  cfg.RedirectURI,
		authorizeURL: cfg.AuthorizeURL,
		httpClient:   cfg.HTTPClient,
	}
	if c.relayURL == "" {
		c.relayURL = DefaultRelayURL
	}
	if c.authorizeURL == "" {
		c.authorizeURL = DefaultAuthorizeURL
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	return c
}

// AuthorizeURL builds the provider authorization URL the user is redirected
// to.
func (c *Client) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.clientID)
	q.Set("redirect_uri", c.redirectURI)
	if state != "" {
		q.Set("state", state)
	}
	return c.authorizeURL + "?" + q.Encode()
}

// ExtractCode accepts either a raw authorization code or the full redirect
// URL the provider sent the user back to, and returns the code.
func ExtractCode(input string) string {
	input = strings.TrimSpace(input)
	if u, err := url.Parse(input); err == nil {
		if code := u.Query().Get("code"); code != "" {
			return code
		}
	}
	return input
}

// TokenResponse is the relay's passthrough of the provider token response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// ExchangeCode trades a one-time authorization code for an access token via
// the relay.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	var resp TokenResponse
	err := c.post(ctx, "/api/zoom/token", map[string]any{"code": code}, &resp)
	if err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("token response contained no access token")
	}
	return resp.AccessToken, nil
}

// MeetingRequest describes the meeting to create.
type MeetingRequest struct {
	Title     string
	StartTime time.Time
	Duration  string
}

// MeetingResponse is the provider's meeting-creation result.
type MeetingResponse struct {
	ID      int64  `json:"id"`
	JoinURL string `json:"join_url"`
}

// CreateMeeting asks the relay to create a scheduled meeting with the given
// access token and returns the provider-issued join URL.
func (c *Client) CreateMeeting(ctx context.Context, accessToken string, req MeetingRequest) (*MeetingResponse, error) {
	body := map[string]any{
		"accessToken": accessToken,
		"meetingData": map[string]any{
			"title":      req.Title,
			"start_time": req.StartTime.UTC().Format(time.RFC3339),
			"duration":   LeadingMinutes(req.Duration),
		},
	}

	var resp MeetingResponse
	if err := c.post(ctx, "/api/zoom/create-meeting", body, &resp); err != nil {
		return nil, err
	}
	if resp.JoinURL == "" {
		return nil, fmt.Errorf("meeting response contained no join URL")
	}
	return &resp, nil
}

// LeadingMinutes extracts the leading integer of a duration display string
// for the provider payload, defaulting to 30 when there is none. This
// matches the historical client behavior; precise minute mapping is the
// domain layer's concern.
func LeadingMinutes(duration string) int {
	duration = strings.TrimSpace(duration)
	n := 0
	seen := false
	for _, r := range duration {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		seen = true
	}
	if !seen {
		return 30
	}
	return n
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.relayURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var relayErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &relayErr) == nil && relayErr.Error != "" {
			return fmt.Errorf("relay returned status %d: %s", resp.StatusCode, relayErr.Error)
		}
		return fmt.Errorf("relay returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode relay response: %w", err)
	}
	return nil
}
