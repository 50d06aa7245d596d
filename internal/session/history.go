package session

import (
	"log/slog"
	"time"
)

// HistoryEntry is one record in the session's append-only audit log.
type HistoryEntry struct {
	At     time.Time `json:"at"`
	Action string    `json:"action"`
	Detail string    `json:"detail"`
}

// logLocked appends to the history and mirrors the entry to the
// structured log. Caller holds s.mu.
func (s *Session) logLocked(action, detail string) {
	s.history = append(s.history, HistoryEntry{At: time.Now(), Action: action, Detail: detail})
	slog.Info("session event", "session", s.ID, "action", action, "detail", detail)
}

// History returns a copy of the audit log in chronological order.
func (s *Session) History() []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}
