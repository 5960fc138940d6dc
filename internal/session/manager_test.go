package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/meeting-scheduler/internal/instrumentation"
	"github.com/example/meeting-scheduler/internal/store"
)

type fakeIdentity struct {
	email string
	token string
	err   error
}

func (f *fakeIdentity) AuthURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (f *fakeIdentity) Exchange(_ context.Context, code string) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return f.email, f.token, nil
}

type fakeConferencing struct {
	token string
	err   error
	calls int
}

func (f *fakeConferencing) AuthorizeURL(state string) string {
	return "https://zoom.us/oauth/authorize?state=" + state
}

func (f *fakeConferencing) ExchangeCode(_ context.Context, code string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

func newTestManager(t *testing.T) (*Manager, *store.Store, *fakeConferencing) {
	t.Helper()
	st, err := store.Open(t.TempDir(), nil)
	require.NoError(t, err)
	zoom := &fakeConferencing{token: "zoom-token"}
	m := NewManager(st, &fakeIdentity{email: "jane@example.com", token: "google-token"}, zoom, nil)
	return m, st, zoom
}

func TestSignIn(t *testing.T) {
	m, st, _ := newTestManager(t)

	id, err := m.SignIn(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, SignedIn, id.State)
	assert.Equal(t, "jane@example.com", id.Email)

	email, token, ok := st.GoogleSession()
	require.True(t, ok)
	assert.Equal(t, "jane@example.com", email)
	assert.Equal(t, "google-token", token)
}

func TestBeginAuthorization_RequiresSignIn(t *testing.T) {
	m, _, _ := newTestManager(t)

	url, err := m.BeginAuthorization("state123")
	require.ErrorIs(t, err, ErrIdentityRequired)
	assert.Empty(t, url, "no redirect URL may be produced while signed out")
	assert.Equal(t, Disconnected, m.Conferencing().State, "state must be unchanged after rejection")
}

func TestCompleteAuthorization_RequiresSignIn(t *testing.T) {
	m, st, zoom := newTestManager(t)

	err := m.CompleteAuthorization(context.Background(), "one-time-code")
	require.ErrorIs(t, err, ErrIdentityRequired)
	assert.Equal(t, Disconnected, m.Conferencing().State, "connected must be unreachable while signed out")
	assert.Zero(t, zoom.calls, "no code exchange may happen while signed out")

	_, ok := st.ZoomToken()
	assert.False(t, ok, "no token may be cached after a rejected exchange")
}

func TestCompleteAuthorization_RequiresPendingAuthorization(t *testing.T) {
	m, st, zoom := newTestManager(t)

	_, err := m.SignIn(context.Background(), "auth-code")
	require.NoError(t, err)

	err = m.CompleteAuthorization(context.Background(), "one-time-code")
	require.ErrorIs(t, err, ErrNotAuthorizing)
	assert.Equal(t, Disconnected, m.Conferencing().State)
	assert.Zero(t, zoom.calls)

	_, ok := st.ZoomToken()
	assert.False(t, ok)
}

func TestConferencingFlow(t *testing.T) {
	m, st, _ := newTestManager(t)

	_, err := m.SignIn(context.Background(), "auth-code")
	require.NoError(t, err)

	url, err := m.BeginAuthorization("state123")
	require.NoError(t, err)
	assert.Contains(t, url, "zoom.us/oauth/authorize")
	assert.Equal(t, Authorizing, m.Conferencing().State)

	require.NoError(t, m.CompleteAuthorization(context.Background(), "one-time-code"))
	assert.Equal(t, Connected, m.Conferencing().State)

	token, ok := st.ZoomToken()
	require.True(t, ok)
	assert.Equal(t, "zoom-token", token)
}

func TestCompleteAuthorization_FailureReturnsToDisconnected(t *testing.T) {
	m, st, zoom := newTestManager(t)
	zoom.err = errors.New("exchange blew up")

	_, err := m.SignIn(context.Background(), "auth-code")
	require.NoError(t, err)
	_, err = m.BeginAuthorization("state123")
	require.NoError(t, err)

	err = m.CompleteAuthorization(context.Background(), "bad-code")
	require.Error(t, err)
	assert.Equal(t, Disconnected, m.Conferencing().State)
	_, ok := st.ZoomToken()
	assert.False(t, ok)
}

func TestSignOut_CascadesToConferencing(t *testing.T) {
	m, st, _ := newTestManager(t)

	_, err := m.SignIn(context.Background(), "auth-code")
	require.NoError(t, err)
	_, err = m.BeginAuthorization("state123")
	require.NoError(t, err)
	require.NoError(t, m.CompleteAuthorization(context.Background(), "one-time-code"))

	require.NoError(t, m.SignOut())

	assert.Equal(t, SignedOut, m.Identity().State)
	assert.Equal(t, Disconnected, m.Conferencing().State)
	_, _, ok := st.GoogleSession()
	assert.False(t, ok, "google token must be cleared from durable storage")
	_, ok = st.ZoomToken()
	assert.False(t, ok, "zoom token must be cleared from durable storage")
}

func TestDisconnectConferencing_LeavesIdentityAlone(t *testing.T) {
	m, st, _ := newTestManager(t)

	_, err := m.SignIn(context.Background(), "auth-code")
	require.NoError(t, err)
	_, err = m.BeginAuthorization("state123")
	require.NoError(t, err)
	require.NoError(t, m.CompleteAuthorization(context.Background(), "one-time-code"))

	require.NoError(t, m.DisconnectConferencing())

	assert.Equal(t, Disconnected, m.Conferencing().State)
	assert.Equal(t, SignedIn, m.Identity().State)
	_, _, ok := st.GoogleSession()
	assert.True(t, ok, "google token must survive a zoom disconnect")
}

func TestRestoreFromCache(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(dir, nil)
	require.NoError(t, err)
	require.NoError(t, st.SaveGoogleSession("jane@example.com", "cached-token"))
	require.NoError(t, st.SaveZoomToken("cached-zoom"))

	m := NewManager(st, &fakeIdentity{}, &fakeConferencing{}, nil)

	id := m.Identity()
	assert.Equal(t, SignedIn, id.State)
	assert.Equal(t, "jane@example.com", id.Email)
	assert.Equal(t, Connected, m.Conferencing().State)
}

func TestOAuthAttemptsAreRecorded(t *testing.T) {
	m, _, zoom := newTestManager(t)

	ctx := context.Background()
	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: instrumentation.ExporterStdout,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })
	m.SetMetrics(provider.Metrics())

	// Both outcomes of both flows must pass through the recorder without
	// changing session behavior.
	_, err = m.SignIn(ctx, "auth-code")
	require.NoError(t, err)

	zoom.err = errors.New("exchange blew up")
	_, err = m.BeginAuthorization("state123")
	require.NoError(t, err)
	require.Error(t, m.CompleteAuthorization(ctx, "bad-code"))
	assert.Equal(t, Disconnected, m.Conferencing().State)

	zoom.err = nil
	_, err = m.BeginAuthorization("state123")
	require.NoError(t, err)
	require.NoError(t, m.CompleteAuthorization(ctx, "one-time-code"))
	assert.Equal(t, Connected, m.Conferencing().State)
}

func TestRestoreFromCache_OrphanedZoomTokenIgnored(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(dir, nil)
	require.NoError(t, err)
	require.NoError(t, st.SaveZoomToken("cached-zoom"))

	m := NewManager(st, &fakeIdentity{}, &fakeConferencing{}, nil)

	assert.Equal(t, SignedOut, m.Identity().State)
	assert.Equal(t, Disconnected, m.Conferencing().State,
		"a cached zoom token without an identity session must not restore Connected")
}

func TestSubscribe(t *testing.T) {
	m, _, _ := newTestManager(t)

	events, cancel, err := m.Subscribe()
	require.NoError(t, err)
	defer cancel()

	// Second subscription is rejected: exactly one per process lifetime.
	_, _, err = m.Subscribe()
	require.ErrorIs(t, err, ErrAlreadySubscribed)

	_, err = m.SignIn(context.Background(), "auth-code")
	require.NoError(t, err)

	ev := <-events
	assert.Equal(t, SignedIn, ev.Identity.State)
	assert.Equal(t, "jane@example.com", ev.Identity.Email)
}

func TestSubscribe_RestoredSessionIsPushed(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(dir, nil)
	require.NoError(t, err)
	require.NoError(t, st.SaveGoogleSession("jane@example.com", "cached-token"))

	m := NewManager(st, &fakeIdentity{}, &fakeConferencing{}, nil)

	events, cancel, err := m.Subscribe()
	require.NoError(t, err)
	defer cancel()

	// The restored session arrives out-of-band without any sign-in call.
	ev := <-events
	assert.Equal(t, SignedIn, ev.Identity.State)
}
