// Package queue pages through the backend's pending emails.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/nhle/reply-desk/internal/model"
)

var (
	// ErrNoPage is returned by navigation that would leave the valid
	// page range or stay on the current page. No request is issued.
	ErrNoPage = errors.New("no such page")

	// ErrSuperseded is returned by a load whose response arrived after a
	// newer load was issued. The response is discarded.
	ErrSuperseded = errors.New("page load superseded")
)

// DefaultPageSize is used when no size is configured.
const DefaultPageSize = 10

// Lister fetches one page of emails.
type Lister interface {
	ListEmails(ctx context.Context, status model.EmailStatus, page, pageSize int) (model.EmailPage, error)
}

// State is the queue's cached page and counters.
type State struct {
	Items        []model.Email
	Page         int
	PageSize     int
	Total        int
	TotalPages   int
	TotalCount   int
	PendingCount int

	// Loaded is false until the first load succeeds.
	Loaded bool

	// Loading is true while a load is outstanding.
	Loading bool
}

// HasPrev reports whether a previous page exists.
func (s State) HasPrev() bool { return s.TotalPages > 0 && s.Page > 1 }

// HasNext reports whether a following page exists.
func (s State) HasNext() bool { return s.TotalPages > 0 && s.Page < s.TotalPages }

// Manager keeps the current page of pending emails. Every load replaces
// the list and all counters from a single response. Safe for concurrent
// use.
type Manager struct {
	lister Lister
	logger *zap.Logger

	mu      sync.Mutex
	state   State
	issued  uint64
	pending int
}

// New returns a manager that has not loaded anything yet.
func New(lister Lister, pageSize int, logger *zap.Logger) *Manager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		lister: lister,
		logger: logger.Named("queue"),
		state:  State{Page: 1, PageSize: pageSize},
	}
}

// State returns a copy of the current page state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.state
	s.Items = append([]model.Email(nil), m.state.Items...)
	return s
}

// Find returns the cached email with id.
func (m *Manager) Find(id int64) (model.Email, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.state.Items {
		if e.ID == id {
			return e, true
		}
	}
	return model.Email{}, false
}

// FirstItem returns the first cached email.
func (m *Manager) FirstItem() (model.Email, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.state.Items) == 0 {
		return model.Email{}, false
	}
	return m.state.Items[0], true
}

// LoadPage fetches page p. If the backend reports fewer pages than p,
// the last page is fetched once instead.
func (m *Manager) LoadPage(ctx context.Context, p int) error {
	if p < 1 {
		p = 1
	}
	return m.load(ctx, p, false)
}

func (m *Manager) load(ctx context.Context, p int, clamped bool) error {
	m.mu.Lock()
	m.issued++
	seq := m.issued
	size := m.state.PageSize
	m.pending++
	m.state.Loading = true
	m.mu.Unlock()

	res, err := m.lister.ListEmails(ctx, model.EmailPending, p, size)

	m.mu.Lock()
	m.pending--
	m.state.Loading = m.pending > 0
	if seq != m.issued {
		m.mu.Unlock()
		m.logger.Debug("discarding superseded page", zap.Int("page", p))
		return ErrSuperseded
	}
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("loading page %d: %w", p, err)
	}
	if res.TotalPages > 0 && p > res.TotalPages && !clamped {
		last := res.TotalPages
		m.mu.Unlock()
		m.logger.Debug("page out of range, clamping", zap.Int("page", p), zap.Int("last", last))
		return m.load(ctx, last, true)
	}

	page := p
	if res.Page > 0 {
		page = res.Page
	}
	if res.TotalPages == 0 {
		page = 1
	}
	m.state.Items = append([]model.Email(nil), res.Data...)
	m.state.Page = page
	m.state.Total = res.Total
	m.state.TotalPages = res.TotalPages
	m.state.TotalCount = res.TotalCount
	m.state.PendingCount = res.PendingCount
	m.state.Loaded = true
	m.mu.Unlock()
	return nil
}

// Refresh reloads the current page.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	p := m.state.Page
	m.mu.Unlock()
	return m.LoadPage(ctx, p)
}

// SetPageSize changes the page size and reloads page 1.
func (m *Manager) SetPageSize(ctx context.Context, n int) error {
	if n <= 0 {
		return fmt.Errorf("page size must be positive, got %d", n)
	}
	m.mu.Lock()
	m.state.PageSize = n
	m.mu.Unlock()
	return m.LoadPage(ctx, 1)
}

// First loads page 1.
func (m *Manager) First(ctx context.Context) error {
	return m.navigate(ctx, func(s State) int { return 1 })
}

// Prev loads the previous page.
func (m *Manager) Prev(ctx context.Context) error {
	return m.navigate(ctx, func(s State) int { return s.Page - 1 })
}

// Next loads the following page.
func (m *Manager) Next(ctx context.Context) error {
	return m.navigate(ctx, func(s State) int { return s.Page + 1 })
}

// Last loads the final page.
func (m *Manager) Last(ctx context.Context) error {
	return m.navigate(ctx, func(s State) int { return s.TotalPages })
}

// GoTo loads page p.
func (m *Manager) GoTo(ctx context.Context, p int) error {
	return m.navigate(ctx, func(State) int { return p })
}

func (m *Manager) navigate(ctx context.Context, target func(State) int) error {
	m.mu.Lock()
	s := m.state
	m.mu.Unlock()

	p := target(s)
	if s.TotalPages == 0 || p < 1 || p > s.TotalPages || p == s.Page {
		return ErrNoPage
	}
	return m.LoadPage(ctx, p)
}
