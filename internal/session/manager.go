// Package session tracks the two independent provider sessions: the Google
// identity session used for display and invite dispatch, and the Zoom
// conferencing session used to create real meetings. Each has its own
// acquisition flow and durable token slot; the only coupling is that signing
// out of Google also disconnects Zoom.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/meeting-scheduler/internal/instrumentation"
	"github.com/example/meeting-scheduler/internal/logging"
)

// State is the identity session state.
type State string

// Identity session states.
const (
	SignedOut State = "signed_out"
	SignedIn  State = "signed_in"
)

// ConferencingState is the Zoom session state.
type ConferencingState string

// Conferencing session states.
const (
	Disconnected ConferencingState = "disconnected"
	Authorizing  ConferencingState = "authorizing"
	Connected    ConferencingState = "connected"
)

// Identity is a snapshot of the identity session.
type Identity struct {
	State State
	Email string
	Token string
}

// Conferencing is a snapshot of the conferencing session.
type Conferencing struct {
	State ConferencingState
	Token string
}

// Event is an auth-state change notification. It carries the identity
// snapshot at the time of the change.
type Event struct {
	Identity Identity
}

// TokenCache is the durable slot both sessions persist their tokens to.
// *store.Store satisfies it.
type TokenCache interface {
	SaveGoogleSession(email, token string) error
	GoogleSession() (email, token string, ok bool)
	ClearGoogleSession() error
	SaveZoomToken(token string) error
	ZoomToken() (string, bool)
	ClearZoomToken() error
}

// IdentityExchanger performs the Google sign-in code exchange.
type IdentityExchanger interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (email, accessToken string, err error)
}

// ConferencingExchanger performs the Zoom authorization flow via the relay.
type ConferencingExchanger interface {
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (accessToken string, err error)
}

// ErrIdentityRequired rejects a Zoom authorization attempt while signed out.
var ErrIdentityRequired = errors.New("sign in with Google before connecting Zoom")

// ErrNotAuthorizing rejects a Zoom code exchange without a pending
// authorization.
var ErrNotAuthorizing = errors.New("zoom authorization has not been started")

// ErrAlreadySubscribed rejects a second auth-state subscription; the
// notification stream is consumed exactly once per process lifetime.
var ErrAlreadySubscribed = errors.New("auth state change stream already subscribed")

// Manager owns both session state machines.
type Manager struct {
	mu           sync.Mutex
	cache        TokenCache
	google       IdentityExchanger
	zoom         ConferencingExchanger
	logger       *slog.Logger
	metrics      *instrumentation.Metrics
	identity     Identity
	conferencing Conferencing
	events       chan Event
}

// NewManager restores both sessions from the token cache. A cached identity
// token means SignedIn; a cached conferencing token means Connected, but
// only alongside a restored identity session. Connected implies SignedIn,
// so an orphaned Zoom token is ignored.
func NewManager(cache TokenCache, google IdentityExchanger, zoom ConferencingExchanger, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		cache:        cache,
		google:       google,
		zoom:         zoom,
		logger:       logger,
		metrics:      &instrumentation.Metrics{},
		identity:     Identity{State: SignedOut},
		conferencing: Conferencing{State: Disconnected},
	}

	if email, token, ok := cache.GoogleSession(); ok {
		m.identity = Identity{State: SignedIn, Email: email, Token: token}
		logger.Debug("restored identity session",
			logging.UserHash(email),
			slog.String("token", logging.SanitizeToken(token)))
		if ztoken, ok := cache.ZoomToken(); ok {
			m.conferencing = Conferencing{State: Connected, Token: ztoken}
		}
	} else if _, ok := cache.ZoomToken(); ok {
		logger.Warn("ignoring cached zoom token without an identity session")
	}
	return m
}

// SetMetrics attaches the instrumentation recorder for OAuth attempts.
func (m *Manager) SetMetrics(metrics *instrumentation.Metrics) {
	if metrics != nil {
		m.metrics = metrics
	}
}

// Subscribe registers the single auth-state change consumer. When the
// identity session was restored from the cache, the stream immediately
// carries that out-of-band sign-in. The returned cancel function must be
// called on teardown.
func (m *Manager) Subscribe() (<-chan Event, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.events != nil {
		return nil, nil, ErrAlreadySubscribed
	}
	m.events = make(chan Event, 8)

	if m.identity.State == SignedIn {
		m.events <- Event{Identity: m.identity}
	}

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.events != nil {
			close(m.events)
			m.events = nil
		}
	}
	return m.events, cancel, nil
}

// notify must be called with m.mu held.
func (m *Manager) notify() {
	if m.events == nil {
		return
	}
	select {
	case m.events <- Event{Identity: m.identity}:
	default:
		// A stalled consumer loses events rather than blocking mutations.
	}
}

// Identity returns a snapshot of the identity session.
func (m *Manager) Identity() Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity
}

// Conferencing returns a snapshot of the conferencing session.
func (m *Manager) Conferencing() Conferencing {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conferencing
}

// SignInURL returns the Google authorization URL for the given state value,
// or "" when no identity provider is configured.
func (m *Manager) SignInURL(state string) string {
	if m.google == nil {
		return ""
	}
	return m.google.AuthURL(state)
}

// SignIn exchanges the authorization code, captures the user identity and
// caches the send-scoped token.
func (m *Manager) SignIn(ctx context.Context, code string) (Identity, error) {
	if m.google == nil {
		return Identity{}, fmt.Errorf("google sign-in is not configured")
	}
	email, token, err := m.google.Exchange(ctx, code)
	if err != nil {
		m.metrics.RecordOAuthAuth(ctx, instrumentation.ServiceGoogle, instrumentation.OAuthResultFailure)
		return Identity{}, fmt.Errorf("google sign-in failed: %w", err)
	}
	m.metrics.RecordOAuthAuth(ctx, instrumentation.ServiceGoogle, instrumentation.OAuthResultSuccess)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.identity = Identity{State: SignedIn, Email: email, Token: token}
	if err := m.cache.SaveGoogleSession(email, token); err != nil {
		m.logger.Warn("failed to cache identity session", logging.Err(err))
	}
	m.logger.Info("signed in", logging.UserHash(email))
	m.notify()
	return m.identity, nil
}

// SignOut clears the identity session and cascades a conferencing
// disconnect; both cached tokens are removed.
func (m *Manager) SignOut() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.identity = Identity{State: SignedOut}
	m.conferencing = Conferencing{State: Disconnected}

	var errs []error
	if err := m.cache.ClearGoogleSession(); err != nil {
		errs = append(errs, fmt.Errorf("failed to clear google session: %w", err))
	}
	if err := m.cache.ClearZoomToken(); err != nil {
		errs = append(errs, fmt.Errorf("failed to clear zoom token: %w", err))
	}
	m.logger.Info("signed out")
	m.notify()
	return errors.Join(errs...)
}

// BeginAuthorization starts the Zoom authorization flow. It is only
// permitted while the identity session is signed in; otherwise the attempt
// is rejected and no state changes.
func (m *Manager) BeginAuthorization(state string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.identity.State != SignedIn {
		return "", ErrIdentityRequired
	}
	if m.zoom == nil {
		return "", fmt.Errorf("zoom authorization is not configured")
	}
	m.conferencing = Conferencing{State: Authorizing}
	return m.zoom.AuthorizeURL(state), nil
}

// CompleteAuthorization exchanges the one-time authorization code for an
// access token via the relay. Connected is only reachable while the identity
// session is SignedIn and an authorization is pending; otherwise the attempt
// is rejected with no state change and no cached token. On exchange failure
// the conferencing session returns to Disconnected and the error is reported
// for logging; the caller's flow is expected to continue.
func (m *Manager) CompleteAuthorization(ctx context.Context, code string) error {
	if m.zoom == nil {
		return fmt.Errorf("zoom authorization is not configured")
	}

	m.mu.Lock()
	if m.identity.State != SignedIn {
		m.mu.Unlock()
		return ErrIdentityRequired
	}
	if m.conferencing.State != Authorizing {
		m.mu.Unlock()
		return ErrNotAuthorizing
	}
	m.mu.Unlock()

	token, err := m.zoom.ExchangeCode(ctx, code)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.conferencing = Conferencing{State: Disconnected}
		m.metrics.RecordOAuthAuth(ctx, instrumentation.ServiceZoom, instrumentation.OAuthResultFailure)
		return fmt.Errorf("zoom code exchange failed: %w", err)
	}
	// A sign-out racing the exchange wins: the cascade already disconnected
	// this session and the fresh token must not resurrect it.
	if m.identity.State != SignedIn {
		return ErrIdentityRequired
	}
	m.metrics.RecordOAuthAuth(ctx, instrumentation.ServiceZoom, instrumentation.OAuthResultSuccess)

	m.conferencing = Conferencing{State: Connected, Token: token}
	if err := m.cache.SaveZoomToken(token); err != nil {
		m.logger.Warn("failed to cache zoom token", logging.Err(err))
	}
	m.logger.Info("zoom connected", slog.String("token", logging.SanitizeToken(token)))
	return nil
}

// DisconnectConferencing clears the Zoom session and its cached token only;
// the identity session is unaffected.
func (m *Manager) DisconnectConferencing() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.conferencing = Conferencing{State: Disconnected}
	m.logger.Info("zoom disconnected")
	if err := m.cache.ClearZoomToken(); err != nil {
		return fmt.Errorf("failed to clear zoom token: %w", err)
	}
	return nil
}
