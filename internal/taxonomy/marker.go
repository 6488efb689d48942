// Package taxonomy edits the backend's categories, templates and
// settings and pushes each reloaded list to whoever consumes it.
package taxonomy

import (
	"errors"
	"fmt"
	"sync"
)

// ErrBusy is returned when the same record already has an operation in
// flight.
var ErrBusy = errors.New("record is being modified")

// ErrInvalid wraps input validation failures.
var ErrInvalid = errors.New("invalid input")

// Action is what is being done to a record.
type Action string

const (
	ActionSave   Action = "save"
	ActionDelete Action = "delete"
)

// Marker identifies one in-flight operation. TargetID 0 is a record that
// does not exist yet.
type Marker struct {
	Action   Action
	TargetID int64
}

// markers tracks in-flight operations per target. Different targets
// never block each other.
type markers struct {
	mu     sync.Mutex
	active map[int64]Marker
}

func (m *markers) begin(action Action, id int64) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		m.active = make(map[int64]Marker)
	}
	if cur, ok := m.active[id]; ok {
		return nil, fmt.Errorf("%s of %d in progress: %w", cur.Action, id, ErrBusy)
	}
	m.active[id] = Marker{Action: action, TargetID: id}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.active, id)
	}, nil
}

func (m *markers) list() []Marker {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Marker, 0, len(m.active))
	for _, mk := range m.active {
		out = append(out, mk)
	}
	return out
}

func (m *markers) status(id int64) (Marker, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mk, ok := m.active[id]
	return mk, ok
}
