// Package tracker records the one operation allowed in flight per email.
package tracker

import (
	"errors"
	"fmt"
	"sync"
)

// Kind is the operation occupying an email.
type Kind string

const (
	Analyzing Kind = "analyzing"
	Sending   Kind = "sending"
	Deleting  Kind = "deleting"
)

// ErrBusy is returned when an email already has an operation in flight.
var ErrBusy = errors.New("operation already in progress")

// Tracker maps email ids to their in-flight operation. Safe for
// concurrent use.
type Tracker struct {
	mu      sync.Mutex
	ops     map[int64]Kind
	onEvent func(id int64)
}

// New returns an empty tracker. onChange, if non-nil, is called after
// every begin and end, outside the lock.
func New(onChange func(id int64)) *Tracker {
	return &Tracker{ops: make(map[int64]Kind), onEvent: onChange}
}

// Begin marks id as running kind. The returned release func clears the
// mark and may be called any number of times.
func (t *Tracker) Begin(id int64, kind Kind) (func(), error) {
	t.mu.Lock()
	if cur, ok := t.ops[id]; ok {
		t.mu.Unlock()
		return nil, fmt.Errorf("email %d is %s: %w", id, cur, ErrBusy)
	}
	t.ops[id] = kind
	t.mu.Unlock()
	t.notify(id)

	var once sync.Once
	return func() { once.Do(func() { t.End(id) }) }, nil
}

// End clears any operation on id.
func (t *Tracker) End(id int64) {
	t.mu.Lock()
	_, ok := t.ops[id]
	delete(t.ops, id)
	t.mu.Unlock()
	if ok {
		t.notify(id)
	}
}

// Do runs fn while id is marked as kind. The mark is cleared when fn
// returns or panics.
func (t *Tracker) Do(id int64, kind Kind, fn func() error) error {
	release, err := t.Begin(id, kind)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

// Status returns the operation on id, if any.
func (t *Tracker) Status(id int64) (Kind, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	k, ok := t.ops[id]
	return k, ok
}

// Busy reports whether id has an operation in flight.
func (t *Tracker) Busy(id int64) bool {
	_, ok := t.Status(id)
	return ok
}

// Snapshot returns a copy of all in-flight operations.
func (t *Tracker) Snapshot() map[int64]Kind {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[int64]Kind, len(t.ops))
	for id, k := range t.ops {
		out[id] = k
	}
	return out
}

func (t *Tracker) notify(id int64) {
	if t.onEvent != nil {
		t.onEvent(id)
	}
}
