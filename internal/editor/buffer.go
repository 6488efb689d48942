// Package editor holds the reply being composed for the selected email
// and round-trips it through machine translation.
package editor

import (
	"errors"
	"sync"
)

// ErrStale is returned when a result arrives for a buffer that has
// changed since the request was issued.
var ErrStale = errors.New("buffer changed while request was in flight")

// Stamp identifies one state of a Buffer. A result computed from a stamp
// may only be written back while the buffer still carries that stamp.
type Stamp struct {
	Epoch   uint64
	Reply   uint64
	Preview uint64
}

// State is a read-only copy of the buffer contents.
type State struct {
	Reply   string
	Preview string
	Epoch   uint64
}

// Buffer is the reply text plus its translation preview. Every write
// to the reply clears the preview except CommitReverse. Safe for
// concurrent use.
type Buffer struct {
	mu         sync.Mutex
	epoch      uint64
	replyRev   uint64
	previewRev uint64
	reply      string
	preview    string
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Reset starts a new epoch seeded with reply and an empty preview.
// Results stamped before the reset become stale.
func (b *Buffer) Reset(reply string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.epoch++
	b.reply = reply
	b.preview = ""
	b.replyRev = 0
	b.previewRev = 0
	return b.epoch
}

// Epoch returns the current selection epoch.
func (b *Buffer) Epoch() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.epoch
}

// Replace overwrites the reply and clears the preview.
func (b *Buffer) Replace(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setReplyLocked(text)
}

// ReplaceIf overwrites the reply only while the buffer is still in
// epoch. It reports whether the write happened.
func (b *Buffer) ReplaceIf(epoch uint64, text string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.epoch != epoch {
		return false
	}
	b.setReplyLocked(text)
	return true
}

// Edit sets the reply from an operator edit. The preview is cleared only
// when the text actually changes. It reports whether it changed.
func (b *Buffer) Edit(text string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if text == b.reply {
		return false
	}
	b.setReplyLocked(text)
	return true
}

// EditPreview sets the preview from an operator edit.
func (b *Buffer) EditPreview(text string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if text == b.preview {
		return false
	}
	b.preview = text
	b.previewRev++
	return true
}

func (b *Buffer) setReplyLocked(text string) {
	b.reply = text
	b.replyRev++
	if b.preview != "" {
		b.preview = ""
		b.previewRev++
	}
}

// Stamp returns the current stamp.
func (b *Buffer) Stamp() Stamp {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stampLocked()
}

func (b *Buffer) stampLocked() Stamp {
	return Stamp{Epoch: b.epoch, Reply: b.replyRev, Preview: b.previewRev}
}

// State returns a copy of the buffer contents.
func (b *Buffer) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return State{Reply: b.reply, Preview: b.preview, Epoch: b.epoch}
}

// commitPreview stores a forward translation computed from s.
func (b *Buffer) commitPreview(s Stamp, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stampLocked() != s {
		return ErrStale
	}
	b.preview = text
	b.previewRev++
	return nil
}

// commitReverse writes a reverse translation into the reply. The preview
// is kept so the operator can keep refining it.
func (b *Buffer) commitReverse(s Stamp, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stampLocked() != s {
		return ErrStale
	}
	b.reply = text
	b.replyRev++
	return nil
}

// snapshotFor returns the stamp together with the text a request reads.
func (b *Buffer) snapshotFor(preview bool) (Stamp, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if preview {
		return b.stampLocked(), b.preview
	}
	return b.stampLocked(), b.reply
}
