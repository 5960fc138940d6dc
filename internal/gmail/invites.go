// Package gmail dispatches meeting invites through the Gmail API using the
// identity session's send-scoped access token. Dispatch is per recipient:
// each participant gets their own message and their own outcome, so a
// partial failure is observable and retryable per recipient.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/example/meeting-scheduler/internal/logging"
	"github.com/example/meeting-scheduler/internal/meeting"
)

// RawSender submits one base64url-encoded RFC 2822 message and returns the
// provider message ID.
type RawSender interface {
	SendRaw(ctx context.Context, raw string) (string, error)
}

// Client is a Gmail-backed RawSender.
type Client struct {
	svc *gmailapi.UsersService
}

// NewClient builds a Gmail client around a send-scoped access token.
func NewClient(ctx context.Context, accessToken string) (*Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	svc, err := gmailapi.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &Client{svc: svc.Users}, nil
}

// SendRaw submits a raw message via users.messages.send.
func (c *Client) SendRaw(ctx context.Context, raw string) (string, error) {
	sent, err := c.svc.Messages.Send("me", &gmailapi.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return sent.Id, nil
}

// Result is the outcome of one invite send.
type Result struct {
	Participant string
	MessageID   string
	Err         error
}

// Failed reports whether this invite did not go out.
func (r Result) Failed() bool {
	return r.Err != nil
}

// BuildInvite constructs the plaintext invite message for one recipient:
// To/Subject/Content-Type headers followed by a body carrying the title,
// date, time, duration, description and join link.
func BuildInvite(m meeting.Meeting, recipient string) string {
	var b strings.Builder
	b.WriteString("To: ")
	b.WriteString(recipient)
	b.WriteString("\r\n")
	b.WriteString("Subject: Meeting Invite: ")
	b.WriteString(m.Title)
	b.WriteString("\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")

	b.WriteString("You're invited to a meeting!\n\n")
	fmt.Fprintf(&b, "Title: %s\n", m.Title)
	fmt.Fprintf(&b, "Date: %s\n", m.Date.Format("1/2/2006"))
	fmt.Fprintf(&b, "Time: %s\n", m.DisplayTime())
	fmt.Fprintf(&b, "Duration: %s\n", m.Duration)
	fmt.Fprintf(&b, "Description: %s\n", m.Description)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Join Meeting: %s\n", m.MeetingLink)
	b.WriteString("\n---\nSent from Meeting Scheduler\n")
	return b.String()
}

// EncodeInvite produces the base64url raw form the Gmail API expects.
func EncodeInvite(message string) string {
	return base64.URLEncoding.EncodeToString([]byte(message))
}

// SendInvites dispatches one invite per participant and collects an outcome
// for each. The returned error aggregates the failure count when any send
// failed; the per-recipient results tell the caller which invites actually
// went out.
func SendInvites(ctx context.Context, sender RawSender, m meeting.Meeting, logger *slog.Logger) ([]Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	results := make([]Result, 0, len(m.Participants))
	failed := 0
	for _, participant := range m.Participants {
		raw := EncodeInvite(BuildInvite(m, participant))
		id, err := sender.SendRaw(ctx, raw)
		if err != nil {
			failed++
			logger.Warn("invite send failed",
				logging.MeetingID(m.ID),
				logging.UserHash(participant),
				slog.String("domain", logging.ExtractDomain(participant)),
				logging.Err(err))
		} else {
			logger.Debug("invite sent",
				logging.MeetingID(m.ID),
				logging.UserHash(participant),
				slog.String("domain", logging.ExtractDomain(participant)),
				slog.String("message_id", id))
		}
		results = append(results, Result{Participant: participant, MessageID: id, Err: err})
	}

	if failed > 0 {
		return results, fmt.Errorf("failed to send %d of %d invites", failed, len(m.Participants))
	}
	return results, nil
}
