package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/example/meeting-scheduler/internal/meeting"
)

func inviteMeeting() meeting.Meeting {
	return meeting.Meeting{
		ID:           42,
		Title:        "Client Review",
		Date:         time.Date(2025, time.December, 5, 14, 0, 0, 0, time.UTC),
		Duration:     "1 hour",
		Platform:     meeting.PlatformTeams,
		Participants: []string{"a@example.com", "b@example.com"},
		Description:  "Q4 project review",
		MeetingLink:  "https://teams.microsoft.com/l/meetup-join/x",
	}
}

func TestBuildInvite(t *testing.T) {
	msg := BuildInvite(inviteMeeting(), "a@example.com")

	wantFragments := []string{
		"To: a@example.com\r\n",
		"Subject: Meeting Invite: Client Review\r\n",
		"Content-Type: text/plain; charset=utf-8\r\n",
		"Title: Client Review",
		"Date: 12/5/2025",
		"Time: 2:00 PM",
		"Duration: 1 hour",
		"Description: Q4 project review",
		"Join Meeting: https://teams.microsoft.com/l/meetup-join/x",
	}
	for _, want := range wantFragments {
		if !strings.Contains(msg, want) {
			t.Errorf("invite missing %q:\n%s", want, msg)
		}
	}

	// Headers must be separated from the body by a blank line.
	if !strings.Contains(msg, "\r\n\r\n") {
		t.Error("invite has no header/body separator")
	}
}

func TestEncodeInvite_RoundTrip(t *testing.T) {
	msg := BuildInvite(inviteMeeting(), "a@example.com")
	raw := EncodeInvite(msg)

	decoded, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("raw message is not valid base64url: %v", err)
	}
	if string(decoded) != msg {
		t.Error("decoded raw message differs from original")
	}
}

type fakeSender struct {
	failFor map[string]bool
	sent    []string
}

func (f *fakeSender) SendRaw(_ context.Context, raw string) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		return "", err
	}
	// First line is "To: <recipient>".
	to := strings.TrimPrefix(strings.SplitN(string(decoded), "\r\n", 2)[0], "To: ")
	if f.failFor[to] {
		return "", errors.New("send rejected")
	}
	f.sent = append(f.sent, to)
	return fmt.Sprintf("msg-%d", len(f.sent)), nil
}

func TestSendInvites_AllSucceed(t *testing.T) {
	sender := &fakeSender{}

	results, err := SendInvites(context.Background(), sender, inviteMeeting(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Failed() {
			t.Errorf("unexpected failure for %s: %v", r.Participant, r.Err)
		}
		if r.MessageID == "" {
			t.Errorf("missing message ID for %s", r.Participant)
		}
	}
}

func TestSendInvites_LogsDomainNotAddress(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	sender := &fakeSender{failFor: map[string]bool{"b@example.com": true}}
	if _, err := SendInvites(context.Background(), sender, inviteMeeting(), logger); err == nil {
		t.Fatal("expected aggregate error when one send fails")
	}

	out := buf.String()
	if !strings.Contains(out, "domain=example.com") {
		t.Errorf("log output missing the recipient domain:\n%s", out)
	}
	for _, addr := range []string{"a@example.com", "b@example.com"} {
		if strings.Contains(out, addr) {
			t.Errorf("raw address %s must not appear in logs:\n%s", addr, out)
		}
	}
}

func TestSendInvites_PartialFailureIsObservable(t *testing.T) {
	sender := &fakeSender{failFor: map[string]bool{"b@example.com": true}}

	results, err := SendInvites(context.Background(), sender, inviteMeeting(), nil)
	if err == nil {
		t.Fatal("expected aggregate error when one send fails")
	}
	if !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("aggregate error should carry the failure count, got %v", err)
	}

	// The successful send must be distinguishable from the failed one.
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	byParticipant := map[string]Result{}
	for _, r := range results {
		byParticipant[r.Participant] = r
	}
	if byParticipant["a@example.com"].Failed() {
		t.Error("a@example.com should have succeeded")
	}
	if byParticipant["a@example.com"].MessageID == "" {
		t.Error("successful send should carry its message ID")
	}
	if !byParticipant["b@example.com"].Failed() {
		t.Error("b@example.com should have failed")
	}

	// The successful message really went out.
	if len(sender.sent) != 1 || sender.sent[0] != "a@example.com" {
		t.Errorf("expected exactly one delivered message to a@example.com, got %v", sender.sent)
	}
}
