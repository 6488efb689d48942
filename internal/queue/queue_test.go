package queue

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/reply-desk/internal/model"
)

type listCall struct{ page, size int }

// fakeLister serves total pending emails with ids 1..total.
type fakeLister struct {
	mu    sync.Mutex
	total int
	err   error
	calls []listCall

	// gates, when set for a page, block that page's response.
	gates map[int]chan struct{}
}

func (f *fakeLister) ListEmails(ctx context.Context, status model.EmailStatus, page, size int) (model.EmailPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, listCall{page, size})
	gate := f.gates[page]
	total, err := f.total, f.err
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return model.EmailPage{}, err
	}
	pages := (total + size - 1) / size
	out := model.EmailPage{Total: total, TotalPages: pages, Page: page, TotalCount: total + 5, PendingCount: total}
	for id := (page-1)*size + 1; id <= total && id <= page*size; id++ {
		out.Data = append(out.Data, model.Email{ID: int64(id)})
	}
	return out, nil
}

func (f *fakeLister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func ids(s State) []int64 {
	var out []int64
	for _, e := range s.Items {
		out = append(out, e.ID)
	}
	return out
}

func TestLoadPageReplacesState(t *testing.T) {
	l := &fakeLister{total: 25}
	m := New(l, 10, nil)

	require.NoError(t, m.LoadPage(context.Background(), 3))
	s := m.State()
	assert.Equal(t, []int64{21, 22, 23, 24, 25}, ids(s))
	assert.Equal(t, 3, s.Page)
	assert.Equal(t, 3, s.TotalPages)
	assert.Equal(t, 25, s.PendingCount)
	assert.Equal(t, 30, s.TotalCount)
	assert.True(t, s.Loaded)
	assert.False(t, s.Loading)
}

func TestNavigationBounds(t *testing.T) {
	ctx := context.Background()
	l := &fakeLister{total: 25}
	m := New(l, 10, nil)

	// nothing loaded yet
	assert.ErrorIs(t, m.Next(ctx), ErrNoPage)
	assert.Equal(t, 0, l.callCount())

	require.NoError(t, m.LoadPage(ctx, 1))
	assert.ErrorIs(t, m.Prev(ctx), ErrNoPage)
	assert.ErrorIs(t, m.First(ctx), ErrNoPage)
	assert.Equal(t, 1, l.callCount())

	require.NoError(t, m.Next(ctx))
	assert.Equal(t, 2, m.State().Page)
	require.NoError(t, m.Last(ctx))
	assert.Equal(t, 3, m.State().Page)
	assert.ErrorIs(t, m.Next(ctx), ErrNoPage)
	assert.ErrorIs(t, m.Last(ctx), ErrNoPage)
	assert.ErrorIs(t, m.GoTo(ctx, 9), ErrNoPage)
	require.NoError(t, m.First(ctx))
	assert.Equal(t, 1, m.State().Page)
	assert.Equal(t, 4, l.callCount())
}

func TestRefreshClampsWhenLastPageEmptied(t *testing.T) {
	ctx := context.Background()
	l := &fakeLister{total: 21}
	m := New(l, 10, nil)
	require.NoError(t, m.LoadPage(ctx, 3))
	assert.Equal(t, []int64{21}, ids(m.State()))

	// the only email on page 3 was sent
	l.total = 20
	require.NoError(t, m.Refresh(ctx))
	s := m.State()
	assert.Equal(t, 2, s.Page)
	assert.Equal(t, 2, s.TotalPages)
	assert.Len(t, s.Items, 10)
	assert.Equal(t, []listCall{{3, 10}, {3, 10}, {2, 10}}, l.calls)
}

func TestEmptyQueue(t *testing.T) {
	m := New(&fakeLister{}, 10, nil)
	require.NoError(t, m.LoadPage(context.Background(), 4))
	s := m.State()
	assert.Empty(t, s.Items)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, 0, s.TotalPages)
	_, ok := m.FirstItem()
	assert.False(t, ok)
}

func TestFailedLoadKeepsState(t *testing.T) {
	ctx := context.Background()
	l := &fakeLister{total: 15}
	m := New(l, 10, nil)
	require.NoError(t, m.LoadPage(ctx, 1))
	before := m.State()

	l.err = errors.New("connection refused")
	require.Error(t, m.Next(ctx))
	assert.Equal(t, before, m.State())
}

func TestOlderResponseIsDiscarded(t *testing.T) {
	ctx := context.Background()
	l := &fakeLister{total: 30, gates: map[int]chan struct{}{2: make(chan struct{})}}
	m := New(l, 10, nil)
	require.NoError(t, m.LoadPage(ctx, 1))

	slow := make(chan error, 1)
	go func() { slow <- m.LoadPage(ctx, 2) }()
	require.Eventually(t, func() bool { return l.callCount() == 2 }, timeout, tick)

	require.NoError(t, m.LoadPage(ctx, 3))
	close(l.gates[2])
	assert.ErrorIs(t, <-slow, ErrSuperseded)

	s := m.State()
	assert.Equal(t, 3, s.Page)
	assert.Equal(t, []int64{21, 22, 23, 24, 25, 26, 27, 28, 29, 30}, ids(s))
	assert.False(t, s.Loading)
}

func TestSetPageSize(t *testing.T) {
	ctx := context.Background()
	l := &fakeLister{total: 25}
	m := New(l, 10, nil)
	require.NoError(t, m.LoadPage(ctx, 2))

	require.NoError(t, m.SetPageSize(ctx, 20))
	s := m.State()
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, 20, s.PageSize)
	assert.Equal(t, 2, s.TotalPages)
	assert.Error(t, m.SetPageSize(ctx, 0))
}
