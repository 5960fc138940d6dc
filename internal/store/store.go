// Package store persists all scheduler state under a per-user state
// directory: the meeting collection as a single JSON document plus one small
// token file per provider session. The directory is treated as exclusively
// owned by one process; there is no cross-process coordination and the last
// writer wins.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/meeting-scheduler/internal/logging"
	"github.com/example/meeting-scheduler/internal/meeting"
)

const (
	meetingsFile    = "meetings.json"
	googleTokenFile = "google.token"
	zoomTokenFile   = "zoom.token"
)

// Store holds the in-process meeting collection and mirrors every mutation
// synchronously to disk. All methods are meant to be called from a single
// goroutine; there is no internal locking.
type Store struct {
	dir      string
	logger   *slog.Logger
	meetings []meeting.Meeting
	lastID   int64
}

// DefaultDir returns the per-user state directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	return filepath.Join(base, "meetsched"), nil
}

// Open loads the meeting collection from dir, creating the directory when
// needed. An absent meetings file yields the seed set; a malformed one is
// logged and yields an empty collection, never an error.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	s := &Store{dir: dir, logger: logger}
	s.load()
	return s, nil
}

func (s *Store) load() {
	data, err := os.ReadFile(filepath.Join(s.dir, meetingsFile))
	if errors.Is(err, fs.ErrNotExist) {
		s.meetings = Seed()
		return
	}
	if err != nil {
		s.logger.Warn("failed to read meetings file, starting empty", logging.Err(err))
		s.meetings = nil
		return
	}

	var records []meetingRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("failed to parse meetings file, starting empty", logging.Err(err))
		s.meetings = nil
		return
	}

	s.meetings = make([]meeting.Meeting, 0, len(records))
	for _, r := range records {
		m := r.toMeeting()
		if m.ID > s.lastID {
			s.lastID = m.ID
		}
		s.meetings = append(s.meetings, m)
	}
}

// All returns the full collection in insertion order.
func (s *Store) All() []meeting.Meeting {
	out := make([]meeting.Meeting, len(s.meetings))
	copy(out, s.meetings)
	return out
}

// Get returns the meeting with the given ID.
func (s *Store) Get(id int64) (meeting.Meeting, bool) {
	for _, m := range s.meetings {
		if m.ID == id {
			return m, true
		}
	}
	return meeting.Meeting{}, false
}

// Add appends a meeting and persists the collection. A zero ID is replaced
// with a fresh time-derived identifier that is guaranteed unique within this
// store.
func (s *Store) Add(m meeting.Meeting) (meeting.Meeting, error) {
	if m.ID == 0 {
		m.ID = s.nextID()
	} else if m.ID > s.lastID {
		s.lastID = m.ID
	}
	s.meetings = append(s.meetings, m)
	return m, s.persist()
}

// Update replaces the record whose ID matches. A missing ID is a silent
// no-op; the collection is persisted either way.
func (s *Store) Update(m meeting.Meeting) error {
	for i := range s.meetings {
		if s.meetings[i].ID == m.ID {
			s.meetings[i] = m
			break
		}
	}
	return s.persist()
}

// Remove deletes the record with the given ID; removing an unknown ID is a
// no-op.
func (s *Store) Remove(id int64) error {
	out := s.meetings[:0]
	for _, m := range s.meetings {
		if m.ID != id {
			out = append(out, m)
		}
	}
	s.meetings = out
	return s.persist()
}

// nextID derives an identifier from the wall clock, bumping past the last
// issued ID when two meetings are created within the same millisecond.
func (s *Store) nextID() int64 {
	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// persist rewrites the whole collection. There is no partial-write guarantee;
// a crash mid-write corrupts the slot and the next load falls back to the
// empty case.
func (s *Store) persist() error {
	records := make([]meetingRecord, 0, len(s.meetings))
	for _, m := range s.meetings {
		records = append(records, toRecord(m))
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode meetings: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, meetingsFile), data, 0o600); err != nil {
		return fmt.Errorf("failed to write meetings file: %w", err)
	}
	return nil
}

// SaveGoogleSession caches the identity session (user email and send-scoped
// access token) to its slot.
func (s *Store) SaveGoogleSession(email, token string) error {
	data := email + " " + token
	if err := os.WriteFile(filepath.Join(s.dir, googleTokenFile), []byte(data), 0o600); err != nil {
		return fmt.Errorf("failed to write google token file: %w", err)
	}
	return nil
}

// GoogleSession returns the cached identity session, if any.
func (s *Store) GoogleSession() (email, token string, ok bool) {
	data, err := os.ReadFile(filepath.Join(s.dir, googleTokenFile))
	if err != nil {
		return "", "", false
	}
	f := strings.Fields(strings.TrimSpace(string(data)))
	if len(f) != 2 {
		s.logger.Warn("google token file has unexpected format, ignoring")
		return "", "", false
	}
	return f[0], f[1], true
}

// ClearGoogleSession removes the cached identity session.
func (s *Store) ClearGoogleSession() error {
	return removeIfPresent(filepath.Join(s.dir, googleTokenFile))
}

// SaveZoomToken caches the conferencing access token to its slot.
func (s *Store) SaveZoomToken(token string) error {
	if err := os.WriteFile(filepath.Join(s.dir, zoomTokenFile), []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write zoom token file: %w", err)
	}
	return nil
}

// ZoomToken returns the cached conferencing access token, if any.
func (s *Store) ZoomToken() (string, bool) {
	data, err := os.ReadFile(filepath.Join(s.dir, zoomTokenFile))
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(data))
	return token, token != ""
}

// ClearZoomToken removes the cached conferencing access token.
func (s *Store) ClearZoomToken() error {
	return removeIfPresent(filepath.Join(s.dir, zoomTokenFile))
}

func removeIfPresent(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
