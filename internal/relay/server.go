// Package relay implements the small confidential backend that brokers the
// Zoom OAuth flow for clients. Clients hand it one-time authorization codes
// and access tokens; the client secret itself never leaves this process.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/meeting-scheduler/internal/instrumentation"
	"github.com/example/meeting-scheduler/internal/logging"
)

const (
	// DefaultReadTimeout is the read header timeout for the relay server.
	DefaultReadTimeout = 10 * time.Second

	// DefaultWriteTimeout bounds slow upstream calls plus response writing.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout is the keep-alive idle timeout.
	DefaultIdleTimeout = 60 * time.Second
)

// Server is the OAuth relay HTTP server.
type Server struct {
	config     Config
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
	health     *HealthChecker
	httpClient *http.Client
	httpServer *http.Server
}

// NewServer creates a relay server. The metrics recorder may be a disabled
// (zero-value) recorder; recording is then a no-op.
func NewServer(cfg Config, logger *slog.Logger, metrics *instrumentation.Metrics) (*Server, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}

	return &Server{
		config:     cfg,
		logger:     logger,
		metrics:    metrics,
		health:     NewHealthChecker(),
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}, nil
}

// Health returns the server's health checker.
func (s *Server) Health() *HealthChecker {
	return s.health
}

// Handler returns the relay's HTTP handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/zoom/token", s.instrument("/api/zoom/token", s.handleToken))
	mux.Handle("/api/zoom/create-meeting", s.instrument("/api/zoom/create-meeting", s.handleCreateMeeting))
	mux.Handle("/healthz", s.health.LivenessHandler())
	mux.Handle("/readyz", s.health.ReadinessHandler())
	return mux
}

// Start starts the relay server in a blocking manner.
// Call this in a goroutine if you need non-blocking operation.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultReadTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}

	s.health.SetReady(true)
	s.logger.Info("starting relay server", "addr", s.config.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the relay server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	if s.httpServer != nil {
		s.logger.Info("shutting down relay server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(path string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, path, rec.status, time.Since(start))
	})
}

// tokenRequest is the client's half of the code exchange.
type tokenRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		s.writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	start := time.Now()
	body, err := s.exchangeCode(r.Context(), req.Code)
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	s.metrics.RecordAPIOperation(r.Context(), instrumentation.ServiceZoom, "exchange_token", status, time.Since(start))

	if err != nil {
		s.logger.Error("token exchange failed",
			logging.Service("zoom"),
			logging.Operation("exchange_token"),
			logging.Err(err),
		)
		s.writeError(w, http.StatusInternalServerError, "Failed to get Zoom token")
		return
	}

	s.logger.Info("token exchange completed",
		logging.Service("zoom"),
		logging.Operation("exchange_token"),
		logging.Status(logging.StatusSuccess),
	)
	s.writeJSON(w, http.StatusOK, body)
}

// exchangeCode trades the authorization code for tokens at the provider's
// token endpoint using the confidential client credentials.
func (s *Server) exchangeCode(ctx context.Context, code string) (json.RawMessage, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", s.config.RedirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(s.config.ClientID, s.config.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token endpoint request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}

// meetingData is the client's description of the meeting to create.
type meetingData struct {
	Title     string          `json:"title"`
	StartTime string          `json:"start_time"`
	Duration  json.RawMessage `json:"duration"`
}

// createMeetingRequest carries the user's access token alongside the meeting.
type createMeetingRequest struct {
	AccessToken string      `json:"accessToken"`
	MeetingData meetingData `json:"meetingData"`
}

func (s *Server) handleCreateMeeting(w http.ResponseWriter, r *http.Request) {
	var req createMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AccessToken == "" {
		s.writeError(w, http.StatusBadRequest, "missing access token")
		return
	}

	start := time.Now()
	body, err := s.createMeeting(r.Context(), req)
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	s.metrics.RecordAPIOperation(r.Context(), instrumentation.ServiceZoom, "create_meeting", status, time.Since(start))

	if err != nil {
		s.logger.Error("meeting creation failed",
			logging.Service("zoom"),
			logging.Operation("create_meeting"),
			logging.Err(err),
		)
		s.writeError(w, http.StatusInternalServerError, "Failed to create Zoom meeting")
		return
	}

	s.logger.Info("meeting created",
		logging.Service("zoom"),
		logging.Operation("create_meeting"),
		logging.Status(logging.StatusSuccess),
	)
	s.writeJSON(w, http.StatusOK, body)
}

// createMeeting calls the provider's meeting endpoint with the user's token.
// The relay always requests a scheduled meeting in UTC.
func (s *Server) createMeeting(ctx context.Context, req createMeetingRequest) (json.RawMessage, error) {
	payload := map[string]any{
		"topic":      req.MeetingData.Title,
		"type":       DefaultMeetingType,
		"start_time": req.MeetingData.StartTime,
		"duration":   durationMinutes(req.MeetingData.Duration),
		"timezone":   "UTC",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode meeting payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIBaseURL+"/users/me/meetings", strings.NewReader(string(data)))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+req.AccessToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("meeting endpoint request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read meeting response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("meeting endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}

// durationMinutes normalizes the wire duration, which clients may send as a
// number or a display string like "1 hour". The leading integer wins and
// absence falls back to 30.
func durationMinutes(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 30
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil && n > 0 {
		return n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		v := 0
		seen := false
		for _, r := range s {
			if r < '0' || r > '9' {
				break
			}
			v = v*10 + int(r-'0')
			seen = true
		}
		if seen && v > 0 {
			return v
		}
	}
	return 30
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
