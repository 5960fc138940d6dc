// Package google implements the identity sign-in flow: an OAuth2
// authorization-code exchange scoped for sending mail, plus the userinfo
// lookup that turns a token into a user identity.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
)

// defaultUserInfoURL resolves the signed-in user's email address.
const defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Config holds the OAuth client registration for the identity flow.
// Endpoint and UserInfoURL are overridable for tests and default to Google's.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoint     oauth2.Endpoint
	UserInfoURL  string
}

// ConfigFromEnv builds a Config from GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET
// and GOOGLE_REDIRECT_URI.
func ConfigFromEnv() Config {
	return Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URI"),
	}
}

// Authenticator performs the sign-in exchange.
type Authenticator struct {
	conf        *oauth2.Config
	userInfoURL string
}

// NewAuthenticator returns an Authenticator requesting the mail-send and
// user-email scopes.
func NewAuthenticator(cfg Config) *Authenticator {
	endpoint := cfg.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = googleoauth.Endpoint
	}
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = defaultUserInfoURL
	}
	redirect := cfg.RedirectURL
	if redirect == "" {
		redirect = "urn:ietf:wg:oauth:2.0:oob"
	}
	return &Authenticator{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  redirect,
			Scopes: []string{
				gmail.GmailSendScope,
				"https://www.googleapis.com/auth/userinfo.email",
			},
		},
		userInfoURL: userInfoURL,
	}
}

// AuthURL returns the authorization URL for user consent.
func (a *Authenticator) AuthURL(state string) string {
	return a.conf.AuthCodeURL(state)
}

// Exchange trades the authorization code for an access token and resolves
// the user's email address.
func (a *Authenticator) Exchange(ctx context.Context, code string) (email, accessToken string, err error) {
	token, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return "", "", fmt.Errorf("failed to exchange auth code: %w", err)
	}

	email, err = a.userEmail(ctx, token)
	if err != nil {
		return "", "", err
	}
	return email, token.AccessToken, nil
}

func (a *Authenticator) userEmail(ctx context.Context, token *oauth2.Token) (string, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.userInfoURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("user info request returned status %d", resp.StatusCode)
	}

	var info struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("failed to decode user info: %w", err)
	}
	if info.Email == "" {
		return "", fmt.Errorf("user info response contained no email")
	}
	return info.Email, nil
}

// GenerateState produces a fresh opaque state value for an authorization
// request.
func GenerateState() string {
	return uuid.NewString()
}
