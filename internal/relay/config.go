package relay

import (
	"fmt"
	"os"
)

// Default upstream endpoints and listen address.
const (
	DefaultAddr        = ":4000"
	DefaultTokenURL    = "https://zoom.us/oauth/token"
	DefaultAPIBaseURL  = "https://api.zoom.us/v2"
	DefaultMeetingType = 2 // scheduled meeting
)

// Config holds the relay's confidential OAuth credentials and upstream
// endpoints. Upstream URLs are overridable for tests.
type Config struct {
	// Addr is the listen address (default ":4000").
	Addr string

	// ClientID and ClientSecret authenticate the relay with the provider's
	// token endpoint. The secret never leaves this process.
	ClientID     string
	ClientSecret string

	// RedirectURI must match the value registered with the provider and the
	// one the client used during authorization.
	RedirectURI string

	// TokenURL is the provider's OAuth token endpoint.
	TokenURL string

	// APIBaseURL is the provider's REST API base URL.
	APIBaseURL string
}

// ConfigFromEnv builds a Config from ZOOM_CLIENT_ID, ZOOM_CLIENT_SECRET,
// ZOOM_REDIRECT_URI and RELAY_ADDR. Callers load .env files beforehand.
func ConfigFromEnv() Config {
	cfg := Config{
		Addr:         os.Getenv("RELAY_ADDR"),
		ClientID:     os.Getenv("ZOOM_CLIENT_ID"),
		ClientSecret: os.Getenv("ZOOM_CLIENT_SECRET"),
		RedirectURI:  os.Getenv("ZOOM_REDIRECT_URI"),
	}
	return cfg.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.TokenURL == "" {
		c.TokenURL = DefaultTokenURL
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	return c
}

// Validate checks that the credentials required for the token exchange are
// present.
func (c Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("ZOOM_CLIENT_ID is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("ZOOM_CLIENT_SECRET is required")
	}
	if c.RedirectURI == "" {
		return fmt.Errorf("ZOOM_REDIRECT_URI is required")
	}
	return nil
}
