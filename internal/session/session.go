// Package session holds the per-user mutable state of an analysis
// session: the table registry, the active table reference, the snapshot
// store and the transformation history. One Session instance exists per
// user session and is never shared across sessions; the Manager keys
// sessions by id.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xavrousseau/datalyzer/internal/dataset"
	"github.com/xavrousseau/datalyzer/internal/ingest"
	"github.com/xavrousseau/datalyzer/internal/join"
)

// Session is the explicit session-context structure passed to every
// operation. All mutating operations either fully succeed or leave the
// session exactly as it was.
type Session struct {
	ID      string
	Created time.Time

	mu      sync.RWMutex
	names   []string // registry insertion order
	tables  map[string]*dataset.Table
	active  string
	snaps   *SnapshotStore
	history []HistoryEntry

	maxUploadBytes int64
}

// New creates an empty session with a generated id.
func New(maxUploadBytes int64) *Session {
	return &Session{
		ID:             uuid.NewString(),
		Created:        time.Now(),
		tables:         make(map[string]*dataset.Table),
		snaps:          NewSnapshotStore(),
		maxUploadBytes: maxUploadBytes,
	}
}

// Register inserts a table under name. Registering an existing name fails
// with DuplicateNameError unless overwrite is set; overwriting keeps the
// name's position in the insertion order.
func (s *Session) Register(name string, t *dataset.Table, overwrite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registerLocked(name, t, overwrite)
}

func (s *Session) registerLocked(name string, t *dataset.Table, overwrite bool) error {
	if _, exists := s.tables[name]; exists {
		if !overwrite {
			return &dataset.DuplicateNameError{Name: name}
		}
	} else {
		s.names = append(s.names, name)
	}
	s.tables[name] = t
	return nil
}

// Get returns the registered table or NotFoundError.
func (s *Session) Get(name string) (*dataset.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[name]
	if !ok {
		return nil, &dataset.NotFoundError{Kind: "table", Name: name}
	}
	return t, nil
}

// Names lists registered tables in insertion order.
func (s *Session) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Drop removes a table. When the active reference points at the dropped
// table it is invalidated rather than left dangling.
func (s *Session) Drop(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[name]; !ok {
		return &dataset.NotFoundError{Kind: "table", Name: name}
	}
	delete(s.tables, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			break
		}
	}
	if s.active == name {
		s.active = ""
	}
	s.logLocked("drop", fmt.Sprintf("table %s removed", name))
	return nil
}

// SetActive validates the name against the registry before assigning the
// active reference.
func (s *Session) SetActive(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[name]; !ok {
		return &dataset.NotFoundError{Kind: "table", Name: name}
	}
	s.active = name
	return nil
}

// Active returns the currently selected table.
func (s *Session) Active() (*dataset.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == "" {
		return nil, &dataset.NoActiveTableError{}
	}
	t, ok := s.tables[s.active]
	if !ok {
		return nil, &dataset.NoActiveTableError{}
	}
	return t, nil
}

// ActiveName returns the active table's name, empty when unset.
func (s *Session) ActiveName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Load parses an uploaded file, registers the table under its file name,
// and makes it the active table. Re-uploading a name replaces the previous
// table, matching the interactive flow.
func (s *Session) Load(name string, data []byte) (*dataset.Table, error) {
	if s.maxUploadBytes > 0 && int64(len(data)) > s.maxUploadBytes {
		return nil, &dataset.ParseError{File: name, Format: "upload", Reason: fmt.Sprintf("file exceeds %d bytes", s.maxUploadBytes)}
	}
	t, err := ingest.Read(name, data)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.registerLocked(name, t, true); err != nil {
		return nil, err
	}
	s.active = name
	s.logLocked("load", fmt.Sprintf("%s loaded (%d rows, %d cols)", name, t.NumRows(), t.NumCols()))
	return t, nil
}

// SuggestJoins runs the compatibility scorer on two registered tables.
func (s *Session) SuggestJoins(leftName, rightName string, opt join.ScorerOptions) ([]join.Suggestion, error) {
	left, err := s.Get(leftName)
	if err != nil {
		return nil, err
	}
	right, err := s.Get(rightName)
	if err != nil {
		return nil, err
	}
	return join.Suggest(left, right, opt), nil
}

// Join executes a join between two registered tables and, on success,
// registers the result, makes it the active table, snapshots it and logs
// the operation. On failure the session is untouched.
func (s *Session) Join(leftName, rightName string, spec join.Spec, resultName string) (*dataset.Table, *join.Result, error) {
	left, err := s.Get(leftName)
	if err != nil {
		return nil, nil, err
	}
	right, err := s.Get(rightName)
	if err != nil {
		return nil, nil, err
	}

	joined, res, err := join.Execute(left, right, spec, resultName)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.registerLocked(resultName, joined, true); err != nil {
		return nil, nil, err
	}
	s.active = resultName
	if _, err := s.snaps.Save(joined, resultName); err != nil {
		slog.Warn("snapshot of join result failed", "table", resultName, "error", err)
	}
	s.logLocked("join", fmt.Sprintf("%s between %s and %s -> %s (%s)", spec.Kind, leftName, rightName, resultName, res))
	return joined, res, nil
}

// Transform applies fn to a registered table and replaces the entry with
// the result. Used by the cast/drop-columns/drop-duplicates commands.
func (s *Session) Transform(name, action, detail string, fn func(*dataset.Table) (*dataset.Table, error)) (*dataset.Table, error) {
	t, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	out, err := fn(t)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.registerLocked(name, out, true); err != nil {
		return nil, err
	}
	s.logLocked(action, detail)
	return out, nil
}

// SaveSnapshot snapshots a registered table (the active one when name is
// empty) under the given label.
func (s *Session) SaveSnapshot(name, label string) (string, error) {
	var t *dataset.Table
	var err error
	if name == "" {
		t, err = s.Active()
	} else {
		t, err = s.Get(name)
	}
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	snapName, err := s.snaps.Save(t, label)
	if err != nil {
		return "", err
	}
	s.logLocked("snapshot", fmt.Sprintf("saved %s (%d rows)", snapName, t.NumRows()))
	return snapName, nil
}

// RestoreSnapshot copies a snapshot back into the registry under the
// snapshot name and makes it the active table.
func (s *Session) RestoreSnapshot(snapName string) (*dataset.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.snaps.Restore(snapName)
	if err != nil {
		return nil, err
	}
	if err := s.registerLocked(snapName, t, true); err != nil {
		return nil, err
	}
	s.active = snapName
	s.logLocked("snapshot", fmt.Sprintf("restored %s", snapName))
	return t, nil
}

// DeleteSnapshot removes a snapshot. The typed not-found result is
// returned for programmatic callers; the interactive layer ignores it.
func (s *Session) DeleteSnapshot(snapName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.snaps.Delete(snapName); err != nil {
		return err
	}
	s.logLocked("snapshot", fmt.Sprintf("deleted %s", snapName))
	return nil
}

// Snapshots lists the stored snapshots.
func (s *Session) Snapshots() []SnapshotInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snaps.List()
}
