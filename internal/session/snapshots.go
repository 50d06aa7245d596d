package session

import (
	"fmt"
	"time"

	"github.com/xavrousseau/datalyzer/internal/dataset"
)

// SnapshotInfo describes a stored snapshot.
type SnapshotInfo struct {
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Created time.Time `json:"created"`
	Rows    int       `json:"rows"`
	Cols    int       `json:"cols"`
}

type snapshot struct {
	info  SnapshotInfo
	table *dataset.Table
}

// SnapshotStore holds deep copies of tables keyed by a generated name.
// Snapshot names carry a monotonic counter so that two saves within the
// same second never collide. The store is not safe for concurrent use;
// callers hold the session lock.
type SnapshotStore struct {
	order []string
	byName map[string]*snapshot
	seq    int
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{byName: make(map[string]*snapshot)}
}

// Save deep-copies t so later mutations of the live table cannot leak
// into the snapshot, and returns the generated name.
func (st *SnapshotStore) Save(t *dataset.Table, label string) (string, error) {
	if t == nil {
		return "", &dataset.NoActiveTableError{}
	}
	if label == "" {
		label = "snapshot"
	}
	st.seq++
	now := time.Now()
	name := fmt.Sprintf("%s_%s_%03d", label, now.Format("20060102_150405"), st.seq)

	cp := t.Clone()
	cp.Name = name
	st.byName[name] = &snapshot{
		info: SnapshotInfo{
			Name:    name,
			Label:   label,
			Created: now,
			Rows:    cp.NumRows(),
			Cols:    cp.NumCols(),
		},
		table: cp,
	}
	st.order = append(st.order, name)
	return name, nil
}

// Restore returns a deep copy of the stored table, so restoring twice
// yields independent tables.
func (st *SnapshotStore) Restore(name string) (*dataset.Table, error) {
	sn, ok := st.byName[name]
	if !ok {
		return nil, &dataset.NotFoundError{Kind: "snapshot", Name: name}
	}
	return sn.table.Clone(), nil
}

// Delete removes a snapshot by name.
func (st *SnapshotStore) Delete(name string) error {
	if _, ok := st.byName[name]; !ok {
		return &dataset.NotFoundError{Kind: "snapshot", Name: name}
	}
	delete(st.byName, name)
	for i, n := range st.order {
		if n == name {
			st.order = append(st.order[:i], st.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns snapshot metadata in creation order.
func (st *SnapshotStore) List() []SnapshotInfo {
	out := make([]SnapshotInfo, 0, len(st.order))
	for _, n := range st.order {
		out = append(out, st.byName[n].info)
	}
	return out
}
