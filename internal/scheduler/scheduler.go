// Package scheduler orchestrates the meeting lifecycle: validation,
// defaulting, advisory conflict detection, join-link generation and
// persistence. It is the one place that ties the store, the provider
// sessions and the conferencing backend together.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/meeting-scheduler/internal/gmail"
	"github.com/example/meeting-scheduler/internal/instrumentation"
	"github.com/example/meeting-scheduler/internal/logging"
	"github.com/example/meeting-scheduler/internal/meeting"
	"github.com/example/meeting-scheduler/internal/session"
	"github.com/example/meeting-scheduler/internal/store"
	"github.com/example/meeting-scheduler/internal/zoom"
)

// ConferenceBackend creates provider-backed meetings. *zoom.Client satisfies
// it.
type ConferenceBackend interface {
	CreateMeeting(ctx context.Context, accessToken string, req zoom.MeetingRequest) (*zoom.MeetingResponse, error)
}

// SenderFactory builds an invite sender for an identity access token.
// Injected so tests never touch the real Gmail API.
type SenderFactory func(ctx context.Context, accessToken string) (gmail.RawSender, error)

// Scheduler is the orchestration layer over the store and both provider
// sessions.
type Scheduler struct {
	store      *store.Store
	sessions   *session.Manager
	conference ConferenceBackend
	newSender  SenderFactory
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
	strict     bool
}

// New wires a Scheduler. conference may be nil, in which case every meeting
// gets a placeholder link. newSender may be nil, defaulting to the Gmail
// client.
func New(st *store.Store, sessions *session.Manager, conference ConferenceBackend, logger *slog.Logger, metrics *instrumentation.Metrics) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	return &Scheduler{
		store:      st,
		sessions:   sessions,
		conference: conference,
		newSender: func(ctx context.Context, accessToken string) (gmail.RawSender, error) {
			return gmail.NewClient(ctx, accessToken)
		},
		logger:  logger,
		metrics: metrics,
	}
}

// SetSenderFactory overrides the invite sender constructor. Used by tests.
func (s *Scheduler) SetSenderFactory(f SenderFactory) {
	s.newSender = f
}

// SetStrictOverlap switches the advisory conflict detector from the 60-minute
// proximity heuristic to true interval overlap.
func (s *Scheduler) SetStrictOverlap(strict bool) {
	s.strict = strict
}

func (s *Scheduler) detect(candidate meeting.Meeting) []meeting.Meeting {
	if s.strict {
		return meeting.CheckOverlap(candidate, s.store.All())
	}
	return meeting.Check(candidate, s.store.All())
}

// Result is the outcome of a schedule or update operation. Conflicts are
// advisory and never block the save.
type Result struct {
	Meeting   meeting.Meeting
	Conflicts []meeting.Meeting

	// UsedPlaceholder is true when a provider-backed link was wanted but
	// creation failed and the placeholder fallback was used.
	UsedPlaceholder bool
}

// Schedule validates a draft, fills defaults, generates the join link and
// persists the new meeting. Conflicts with existing meetings are returned
// alongside, never as an error.
func (s *Scheduler) Schedule(ctx context.Context, draft meeting.Meeting) (*Result, error) {
	applyDefaults(&draft)
	if err := draft.Validate(); err != nil {
		s.metrics.RecordMeetingOperation(ctx, "schedule", string(draft.Platform), instrumentation.StatusError)
		return nil, err
	}

	conflicts := s.detect(draft)
	for range conflicts {
		s.metrics.RecordConflictDetected(ctx)
	}

	link, fellBack := s.meetingLink(ctx, draft)
	draft.MeetingLink = link
	draft.Status = meeting.StatusConfirmed

	saved, err := s.store.Add(draft)
	if err != nil {
		s.metrics.RecordMeetingOperation(ctx, "schedule", string(draft.Platform), instrumentation.StatusError)
		return nil, err
	}

	s.metrics.RecordMeetingOperation(ctx, "schedule", string(saved.Platform), instrumentation.StatusSuccess)
	s.metrics.AddStoredMeetings(ctx, 1)
	s.logger.Info("meeting scheduled",
		logging.Operation("schedule"),
		logging.MeetingID(saved.ID),
		logging.Platform(string(saved.Platform)),
		slog.Int("conflicts", len(conflicts)),
	)

	return &Result{Meeting: saved, Conflicts: conflicts, UsedPlaceholder: fellBack}, nil
}

// Update validates and replaces the full record matching the meeting's ID.
// The existing join link is kept; an unknown ID is a silent no-op, matching
// the store contract.
func (s *Scheduler) Update(ctx context.Context, m meeting.Meeting) (*Result, error) {
	applyDefaults(&m)
	if err := m.Validate(); err != nil {
		s.metrics.RecordMeetingOperation(ctx, "update", string(m.Platform), instrumentation.StatusError)
		return nil, err
	}

	conflicts := s.detect(m)

	if m.MeetingLink == "" {
		if prev, ok := s.store.Get(m.ID); ok {
			m.MeetingLink = prev.MeetingLink
		}
	}
	if m.MeetingLink == "" {
		m.MeetingLink = meeting.PlaceholderLink(m.Platform)
	}

	if err := s.store.Update(m); err != nil {
		s.metrics.RecordMeetingOperation(ctx, "update", string(m.Platform), instrumentation.StatusError)
		return nil, err
	}

	s.metrics.RecordMeetingOperation(ctx, "update", string(m.Platform), instrumentation.StatusSuccess)
	s.logger.Info("meeting updated",
		logging.Operation("update"),
		logging.MeetingID(m.ID),
		slog.Int("conflicts", len(conflicts)),
	)

	return &Result{Meeting: m, Conflicts: conflicts}, nil
}

// Remove deletes a meeting by ID. The caller owns the confirmation step.
func (s *Scheduler) Remove(ctx context.Context, id int64) error {
	existed := false
	if _, ok := s.store.Get(id); ok {
		existed = true
	}

	if err := s.store.Remove(id); err != nil {
		s.metrics.RecordMeetingOperation(ctx, "delete", "", instrumentation.StatusError)
		return err
	}

	if existed {
		s.metrics.RecordMeetingOperation(ctx, "delete", "", instrumentation.StatusSuccess)
		s.metrics.AddStoredMeetings(ctx, -1)
		s.logger.Info("meeting deleted", logging.Operation("delete"), logging.MeetingID(id))
	}
	return nil
}

// CheckConflicts runs the advisory conflict check for a candidate against
// the stored meetings, using the configured detector.
func (s *Scheduler) CheckConflicts(candidate meeting.Meeting) []meeting.Meeting {
	return s.detect(candidate)
}

// CheckConflictsStrict runs the interval-overlap check regardless of the
// configured default detector.
func (s *Scheduler) CheckConflictsStrict(candidate meeting.Meeting) []meeting.Meeting {
	return meeting.CheckOverlap(candidate, s.store.All())
}

// SendInvites dispatches one invite per participant using the identity
// session's send-scoped token. Requires a signed-in identity session.
func (s *Scheduler) SendInvites(ctx context.Context, m meeting.Meeting) ([]gmail.Result, error) {
	identity := s.sessions.Identity()
	if identity.State != session.SignedIn || identity.Token == "" {
		return nil, session.ErrIdentityRequired
	}
	if len(m.Participants) == 0 {
		return nil, fmt.Errorf("meeting has no participants")
	}

	sender, err := s.newSender(ctx, identity.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create invite sender: %w", err)
	}

	start := time.Now()
	results, err := gmail.SendInvites(ctx, sender, m, s.logger)
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	s.metrics.RecordAPIOperation(ctx, instrumentation.ServiceGmail, "send_invites", status, time.Since(start))
	for _, r := range results {
		if r.Failed() {
			s.metrics.RecordInviteSent(ctx, instrumentation.StatusError)
		} else {
			s.metrics.RecordInviteSent(ctx, instrumentation.StatusSuccess)
		}
	}
	return results, err
}

// meetingLink resolves the join link for a new meeting. A connected Zoom
// session on a zoom meeting gets a provider-backed link; everything else,
// including a failed provider call, gets a placeholder. The second return
// reports the failure fallback.
func (s *Scheduler) meetingLink(ctx context.Context, m meeting.Meeting) (string, bool) {
	conf := s.sessions.Conferencing()
	if m.Platform != meeting.PlatformZoom || s.conference == nil ||
		conf.State != session.Connected || conf.Token == "" {
		return meeting.PlaceholderLink(m.Platform), false
	}

	start := time.Now()
	resp, err := s.conference.CreateMeeting(ctx, conf.Token, zoom.MeetingRequest{
		Title:     m.Title,
		StartTime: m.Date,
		Duration:  m.Duration,
	})
	if err != nil {
		s.metrics.RecordAPIOperation(ctx, instrumentation.ServiceZoom, "create_meeting", instrumentation.StatusError, time.Since(start))
		s.logger.Warn("provider meeting creation failed, using placeholder link",
			logging.Service("zoom"),
			logging.Operation("create_meeting"),
			logging.Err(err),
		)
		return meeting.PlaceholderLink(m.Platform), true
	}

	s.metrics.RecordAPIOperation(ctx, instrumentation.ServiceZoom, "create_meeting", instrumentation.StatusSuccess, time.Since(start))
	return resp.JoinURL, false
}

// applyDefaults fills the fields the creation form defaults in the UI.
func applyDefaults(m *meeting.Meeting) {
	if strings.TrimSpace(m.Duration) == "" {
		m.Duration = "30 min"
	}
	if strings.TrimSpace(m.Location) == "" {
		m.Location = meeting.DefaultLocation
	}
	if strings.TrimSpace(m.Timezone) == "" {
		m.Timezone = meeting.DefaultTimezone()
	}
	if m.Status == "" {
		m.Status = meeting.StatusConfirmed
	}
}
