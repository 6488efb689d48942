package sync

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/reply-desk/internal/workspace"
)

type fakeSyncer struct {
	mu    gosync.Mutex
	calls int
	err   error
}

func (f *fakeSyncer) Sync(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeSyncer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func receive(t *testing.T, p *Poller) ResultMsg {
	t.Helper()
	done := make(chan ResultMsg, 1)
	go func() { done <- p.WaitForNextResult()().(ResultMsg) }()
	select {
	case msg := <-done:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for sync result")
		return ResultMsg{}
	}
}

func TestResolveInterval(t *testing.T) {
	assert.Equal(t, 60*time.Second, ResolveInterval(60, 300))
	assert.Equal(t, 300*time.Second, ResolveInterval(0, 300))
	assert.Equal(t, time.Duration(0), ResolveInterval(-1, 300))
	assert.Equal(t, time.Duration(0), ResolveInterval(0, 0))
}

func TestPollerSyncsOnTick(t *testing.T) {
	s := &fakeSyncer{}
	p := New(s, 10*time.Millisecond, nil)
	require.NotNil(t, p.Start())
	defer p.Stop()

	msg := receive(t, p)
	assert.NoError(t, msg.Error)
	assert.False(t, msg.Skipped)
	assert.GreaterOrEqual(t, s.count(), 1)
	assert.False(t, p.Status().LastSync.IsZero())
}

func TestPollerStartTwice(t *testing.T) {
	p := New(&fakeSyncer{}, 0, nil)
	require.NotNil(t, p.Start())
	defer p.Stop()
	assert.Nil(t, p.Start())
}

func TestPollerReportsFailure(t *testing.T) {
	s := &fakeSyncer{err: errors.New("imap down")}
	p := New(s, 10*time.Millisecond, nil)
	p.Start()
	defer p.Stop()

	msg := receive(t, p)
	assert.EqualError(t, msg.Error, "imap down")
	st := p.Status()
	assert.Equal(t, Failed, st.State)
	assert.True(t, st.LastSync.IsZero())
}

func TestPollerSkipsWhenManualSyncRunning(t *testing.T) {
	s := &fakeSyncer{err: workspace.ErrBusy}
	p := New(s, 10*time.Millisecond, nil)
	p.Start()
	defer p.Stop()

	msg := receive(t, p)
	assert.True(t, msg.Skipped)
	assert.NoError(t, msg.Error)
	assert.Equal(t, Idle, p.Status().State)
}

func TestPollerDormantUntilIntervalSet(t *testing.T) {
	s := &fakeSyncer{}
	p := New(s, 0, nil)
	p.Start()
	defer p.Stop()

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, s.count())

	p.SetInterval(10 * time.Millisecond)
	receive(t, p)
	assert.Equal(t, 10*time.Millisecond, p.Status().Interval)
}

func TestPollerRestartsAfterStop(t *testing.T) {
	s := &fakeSyncer{}
	p := New(s, 10*time.Millisecond, nil)
	require.NotNil(t, p.Start())
	receive(t, p)
	p.Stop()

	time.Sleep(50 * time.Millisecond)
	stopped := s.count()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, s.count(), "loop kept syncing after Stop")

	require.NotNil(t, p.Start())
	defer p.Stop()
	assert.Eventually(t, func() bool { return s.count() > stopped }, 2*time.Second, 10*time.Millisecond)
}
