package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	text, source, target string
}

// fakeTranslator answers with a fixed mapping. When gate is set every
// call waits for a value on it before answering.
type fakeTranslator struct {
	answers map[string]string
	err     error
	gate    chan struct{}
	started chan call
	calls   []call
}

func (f *fakeTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	c := call{text, source, target}
	f.calls = append(f.calls, c)
	if f.started != nil {
		f.started <- c
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return "", f.err
	}
	return f.answers[text], nil
}

func TestReplyWritesClearPreview(t *testing.T) {
	b := NewBuffer()
	b.Reset("hello")
	tr := &fakeTranslator{answers: map[string]string{"hello": "你好"}}
	c := NewCoordinator(b, tr, nil)

	require.NoError(t, c.Forward(context.Background(), "en", "zh"))
	assert.Equal(t, State{Reply: "hello", Preview: "你好", Epoch: 1}, b.State())
	assert.Equal(t, []call{{"hello", "en", "zh"}}, tr.calls)

	assert.False(t, b.Edit("hello"))
	assert.Equal(t, "你好", b.State().Preview)

	assert.True(t, b.Edit("hello there"))
	assert.Empty(t, b.State().Preview)

	require.NoError(t, c.Forward(context.Background(), "en", "zh"))
	b.Replace("template text")
	assert.Empty(t, b.State().Preview)
}

func TestReverseKeepsPreview(t *testing.T) {
	b := NewBuffer()
	b.Reset("Hello")
	tr := &fakeTranslator{answers: map[string]string{"Hello": "你好", "你好!": "Hello!"}}
	c := NewCoordinator(b, tr, nil)

	require.NoError(t, c.Forward(context.Background(), "en", "zh"))
	b.EditPreview("你好!")
	require.NoError(t, c.Reverse(context.Background(), "en", "zh"))

	assert.Equal(t, "Hello!", b.State().Reply)
	assert.Equal(t, "你好!", b.State().Preview)
	assert.Equal(t, call{"你好!", "zh", "en"}, tr.calls[1])
}

func TestEmptyTextIsNoop(t *testing.T) {
	b := NewBuffer()
	b.Reset("   ")
	tr := &fakeTranslator{}
	c := NewCoordinator(b, tr, nil)

	assert.ErrorIs(t, c.Forward(context.Background(), "en", "zh"), ErrEmptyText)
	assert.ErrorIs(t, c.Reverse(context.Background(), "en", "zh"), ErrEmptyText)
	assert.Empty(t, tr.calls)
}

func TestFailureLeavesBufferUntouched(t *testing.T) {
	b := NewBuffer()
	b.Reset("hello")
	tr := &fakeTranslator{err: errors.New("translation failed")}
	c := NewCoordinator(b, tr, nil)

	err := c.Forward(context.Background(), "en", "zh")
	require.Error(t, err)
	assert.Equal(t, State{Reply: "hello", Epoch: 1}, b.State())
	assert.False(t, c.Busy(Forward))
}

func TestSecondForwardIsRefusedWhileBusy(t *testing.T) {
	b := NewBuffer()
	b.Reset("hello")
	tr := &fakeTranslator{
		answers: map[string]string{"hello": "你好"},
		gate:    make(chan struct{}),
		started: make(chan call, 1),
	}
	c := NewCoordinator(b, tr, nil)

	done := make(chan error, 1)
	go func() { done <- c.Forward(context.Background(), "en", "zh") }()
	<-tr.started

	assert.True(t, c.Busy(Forward))
	assert.ErrorIs(t, c.Forward(context.Background(), "en", "zh"), ErrBusy)

	tr.gate <- struct{}{}
	require.NoError(t, <-done)
	assert.False(t, c.Busy(Forward))
	assert.Equal(t, "你好", b.State().Preview)
}

func TestStaleResultIsDiscarded(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *Buffer)
	}{
		{"reselected", func(b *Buffer) { b.Reset("other email") }},
		{"reply edited", func(b *Buffer) { b.Edit("hello!") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer()
			b.Reset("hello")
			tr := &fakeTranslator{
				answers: map[string]string{"hello": "你好"},
				gate:    make(chan struct{}),
				started: make(chan call, 1),
			}
			c := NewCoordinator(b, tr, nil)

			done := make(chan error, 1)
			go func() { done <- c.Forward(context.Background(), "en", "zh") }()
			<-tr.started
			tt.mutate(b)
			before := b.State()
			tr.gate <- struct{}{}

			assert.ErrorIs(t, <-done, ErrStale)
			assert.Equal(t, before, b.State())
		})
	}
}

func TestReplaceIfChecksEpoch(t *testing.T) {
	b := NewBuffer()
	epoch := b.Reset("a")
	b.Reset("b")
	assert.False(t, b.ReplaceIf(epoch, "late"))
	assert.Equal(t, "b", b.State().Reply)
	assert.True(t, b.ReplaceIf(b.Epoch(), "fresh"))
	assert.Equal(t, "fresh", b.State().Reply)
}
