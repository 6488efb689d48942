package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrEmptyText is returned when there is nothing to translate.
	ErrEmptyText = errors.New("nothing to translate")

	// ErrBusy is returned when a translation in the same direction is
	// already running.
	ErrBusy = errors.New("translation already in progress")
)

// Translator translates text between two languages.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Direction is which way a translation runs.
type Direction string

const (
	Forward Direction = "forward"
	Reverse Direction = "reverse"
)

// Coordinator runs forward (reply → preview) and reverse
// (preview → reply) translations against a Buffer. Each direction has
// its own busy flag.
type Coordinator struct {
	buf        *Buffer
	translator Translator
	logger     *zap.Logger

	mu     sync.Mutex
	busy   map[Direction]bool
	notify func()
}

// NewCoordinator binds a translator to buf.
func NewCoordinator(buf *Buffer, translator Translator, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		buf:        buf,
		translator: translator,
		logger:     logger.Named("editor"),
		busy:       make(map[Direction]bool),
	}
}

// OnBusyChange registers fn to be called whenever a direction becomes
// busy or idle. It must be set before the first translation.
func (c *Coordinator) OnBusyChange(fn func()) {
	c.notify = fn
}

// Busy reports whether a translation in dir is running.
func (c *Coordinator) Busy(dir Direction) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy[dir]
}

func (c *Coordinator) acquire(dir Direction) bool {
	c.mu.Lock()
	if c.busy[dir] {
		c.mu.Unlock()
		return false
	}
	c.busy[dir] = true
	c.mu.Unlock()
	c.changed()
	return true
}

func (c *Coordinator) release(dir Direction) {
	c.mu.Lock()
	delete(c.busy, dir)
	c.mu.Unlock()
	c.changed()
}

func (c *Coordinator) changed() {
	if c.notify != nil {
		c.notify()
	}
}

// Forward translates the reply from source to target and stores the
// result as the preview.
func (c *Coordinator) Forward(ctx context.Context, source, target string) error {
	return c.run(ctx, Forward, source, target)
}

// Reverse translates the preview from target back to source and writes
// it over the reply. The preview is left in place.
func (c *Coordinator) Reverse(ctx context.Context, source, target string) error {
	return c.run(ctx, Reverse, target, source)
}

func (c *Coordinator) run(ctx context.Context, dir Direction, from, to string) error {
	stamp, text := c.buf.snapshotFor(dir == Reverse)
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if !c.acquire(dir) {
		return ErrBusy
	}
	defer c.release(dir)

	out, err := c.translator.Translate(ctx, text, from, to)
	if err != nil {
		return fmt.Errorf("%s translation: %w", dir, err)
	}

	if dir == Forward {
		err = c.buf.commitPreview(stamp, out)
	} else {
		err = c.buf.commitReverse(stamp, out)
	}
	if errors.Is(err, ErrStale) {
		c.logger.Debug("discarding stale translation",
			zap.String("direction", string(dir)),
			zap.Uint64("epoch", stamp.Epoch),
		)
	}
	return err
}
