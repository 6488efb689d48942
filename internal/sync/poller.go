// Package sync runs the background auto-sync that asks the backend to
// pull new mail on a fixed period.
package sync

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/reply-desk/internal/workspace"
)

// State represents the current state of the auto-sync loop.
type State int

const (
	Idle State = iota
	Running
	Failed
)

// Status is the poller's externally visible state.
type Status struct {
	State    State
	Interval time.Duration
	LastSync time.Time
	Error    error
}

// ResultMsg is a tea.Msg sent when an automatic sync completes.
type ResultMsg struct {
	At    time.Time
	Error error
	// Skipped is set when a manual sync was already running.
	Skipped bool
}

// Syncer asks the backend to fetch mail and refreshes local state.
type Syncer interface {
	Sync(ctx context.Context) error
}

// syncTimeout bounds a single automatic sync.
const syncTimeout = 2 * time.Minute

// ResolveInterval turns the configured auto-sync period into a duration.
// A positive configured value wins; zero falls back to the backend's
// fetch interval; a negative value disables auto-sync.
func ResolveInterval(configuredSec, fetchIntervalSec int) time.Duration {
	switch {
	case configuredSec > 0:
		return time.Duration(configuredSec) * time.Second
	case configuredSec < 0:
		return 0
	case fetchIntervalSec > 0:
		return time.Duration(fetchIntervalSec) * time.Second
	default:
		return 0
	}
}

// Poller triggers Syncer.Sync periodically.
type Poller struct {
	syncer   Syncer
	logger   *zap.Logger
	resultCh chan ResultMsg
	resetCh  chan time.Duration
	stopCh   chan struct{}

	mu      gosync.Mutex
	running bool
	status  Status
}

// New creates a poller. An interval <= 0 leaves it dormant until
// SetInterval supplies a period.
func New(s Syncer, interval time.Duration, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval < 0 {
		interval = 0
	}
	return &Poller{
		syncer:   s,
		logger:   logger,
		resultCh: make(chan ResultMsg, 16),
		resetCh:  make(chan time.Duration, 1),
		status:   Status{Interval: interval},
	}
}

// Start launches the loop and returns a tea.Cmd that waits for the
// first result. It returns nil if the poller is already running.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	// Each run gets its own stop channel so a stopped poller can start again.
	p.stopCh = make(chan struct{})
	stop := p.stopCh
	interval := p.status.Interval
	p.mu.Unlock()

	go p.loop(interval, stop)
	return p.waitForResult()
}

// Stop halts the loop.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	close(p.stopCh)
	p.running = false
}

// SetInterval changes the period. Zero pauses auto-sync.
func (p *Poller) SetInterval(d time.Duration) {
	if d < 0 {
		d = 0
	}
	p.mu.Lock()
	p.status.Interval = d
	p.mu.Unlock()

	// Keep only the latest pending change.
	select {
	case <-p.resetCh:
	default:
	}
	select {
	case p.resetCh <- d:
	default:
	}
}

// Status returns a copy of the current status.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) loop(interval time.Duration, stop <-chan struct{}) {
	var ticker *time.Ticker
	var tick <-chan time.Time
	reset := func(d time.Duration) {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
		if d > 0 {
			ticker = time.NewTicker(d)
			tick = ticker.C
		}
	}
	reset(interval)
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case <-stop:
			return
		case d := <-p.resetCh:
			p.logger.Debug("auto-sync interval changed", zap.Duration("interval", d))
			reset(d)
		case <-tick:
			p.runOnce()
		}
	}
}

func (p *Poller) runOnce() {
	p.setState(Running, nil)

	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	err := p.syncer.Sync(ctx)
	now := time.Now()

	switch {
	case errors.Is(err, workspace.ErrBusy):
		p.setState(Idle, nil)
		p.sendResult(ResultMsg{At: now, Skipped: true})
	case err != nil:
		p.logger.Warn("auto-sync failed", zap.Error(err))
		p.setState(Failed, err)
		p.sendResult(ResultMsg{At: now, Error: err})
	default:
		p.mu.Lock()
		p.status.State = Idle
		p.status.Error = nil
		p.status.LastSync = now
		p.mu.Unlock()
		p.sendResult(ResultMsg{At: now})
	}
}

func (p *Poller) setState(state State, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.State = state
	p.status.Error = err
}

// sendResult drops the message when nobody is listening.
func (p *Poller) sendResult(msg ResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
	}
}

func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next result.
// Call it after handling a ResultMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
