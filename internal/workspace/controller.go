// Package workspace owns the state of the triage session: which email is
// selected, what the backend suggested for it, the reply being written
// and which backend operations are in flight. Presentation layers read
// Snapshots and react to Events; they never mutate state directly.
package workspace

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/reply-desk/internal/editor"
	"github.com/nhle/reply-desk/internal/model"
	"github.com/nhle/reply-desk/internal/queue"
	"github.com/nhle/reply-desk/internal/store"
	"github.com/nhle/reply-desk/internal/tracker"
)

var (
	// ErrNoSelection is returned by transitions that need a selected email.
	ErrNoSelection = errors.New("no email selected")

	// ErrEmptyReply is returned by Send when the reply is blank.
	ErrEmptyReply = errors.New("reply is empty")

	// ErrAlreadySent is returned when acting on an email already sent in
	// this session.
	ErrAlreadySent = errors.New("reply already sent")

	// ErrBusy is returned when a session-wide action (regenerate, sync)
	// is already running.
	ErrBusy = errors.New("already in progress")

	// ErrUnknownTemplate is returned by ApplyTemplateID for ids not in the
	// template list.
	ErrUnknownTemplate = errors.New("unknown template")

	// ErrStale marks a result that arrived after the selection changed.
	// It is never applied; callers should ignore it.
	ErrStale = editor.ErrStale
)

// Backend is the subset of the backend API the workspace drives.
type Backend interface {
	queue.Lister
	editor.Translator
	AnalyzeEmail(ctx context.Context, id int64, forceAI bool) (model.AnalysisResult, error)
	GenerateReply(ctx context.Context, id int64) (string, error)
	SendReply(ctx context.Context, id int64, reply string, categoryID *int64) error
	DeleteEmail(ctx context.Context, id int64) error
	SyncEmails(ctx context.Context) error
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListTemplates(ctx context.Context) ([]model.Template, error)
	GetSettings(ctx context.Context) (model.SettingsBundle, error)
}

// Options tune a Controller. Zero values are usable.
type Options struct {
	PageSize   int
	SourceLang string
	TargetLang string

	// Journal, when set, records sends and deletes locally.
	Journal store.Journal

	Logger *zap.Logger

	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// Controller is the single owner of workspace state. All methods are
// safe for concurrent use; blocking methods never hold the state lock
// across a backend call.
type Controller struct {
	backend Backend
	queue   *queue.Manager
	tracker *tracker.Tracker
	buf     *editor.Buffer
	coord   *editor.Coordinator
	journal store.Journal
	logger  *zap.Logger
	now     func() time.Time

	sourceLang string
	targetLang string

	mu               sync.Mutex
	phase            Phase
	selected         *model.Email
	analysis         *model.AnalysisResult
	selectedTemplate *int64
	categories       []model.Category
	templates        []model.Template
	settings         *model.SettingsBundle
	notice           Notice
	regenerating     bool
	syncing          bool
	bootstrapping    bool
	sentToday        int

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// New builds a controller over backend. Nothing is loaded until
// Bootstrap or a queue method runs.
func New(backend Backend, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	src, tgt := opts.SourceLang, opts.TargetLang
	if src == "" {
		src = "en"
	}
	if tgt == "" {
		tgt = model.DefaultTargetLang
	}

	c := &Controller{
		backend:    backend,
		journal:    opts.Journal,
		logger:     logger.Named("workspace"),
		now:        now,
		sourceLang: src,
		targetLang: tgt,
		buf:        editor.NewBuffer(),
		subs:       make(map[int]chan Event),
	}
	c.queue = queue.New(backend, opts.PageSize, logger)
	c.tracker = tracker.New(func(int64) { c.publish(ReasonOperation) })
	c.coord = editor.NewCoordinator(c.buf, backend, logger)
	c.coord.OnBusyChange(func() { c.publish(ReasonOperation) })
	return c
}

// Languages returns the configured source and target language codes.
func (c *Controller) Languages() (source, target string) {
	return c.sourceLang, c.targetLang
}

// Subscribe returns a channel that receives an Event after every state
// transition, and a func that ends the subscription. Events coalesce: a
// slow reader sees at least one event after the latest change, not one
// per change.
func (c *Controller) Subscribe() (<-chan Event, func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	id := c.nextSub
	c.nextSub++
	ch := make(chan Event, 1)
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subMu.Lock()
			defer c.subMu.Unlock()
			delete(c.subs, id)
			close(ch)
		})
	}
}

func (c *Controller) publish(reason Reason) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- Event{Reason: reason}:
		default:
		}
	}
}

func (c *Controller) setNotice(level NoticeLevel, text string) {
	c.mu.Lock()
	c.notice = Notice{Level: level, Text: text, At: c.now()}
	c.mu.Unlock()
	c.publish(ReasonNotice)
}

// failed records err as an error notice and logs it.
func (c *Controller) failed(op string, id int64, err error) {
	c.logger.Warn("operation failed",
		zap.String("op", op),
		zap.Int64("email_id", id),
		zap.Error(err),
	)
	c.setNotice(NoticeError, op+" failed: "+describe(err))
}

// ClearNotice dismisses the current notice.
func (c *Controller) ClearNotice() {
	c.mu.Lock()
	c.notice = Notice{}
	c.mu.Unlock()
	c.publish(ReasonNotice)
}

// Tracker exposes the per-email operation tracker for read-only use.
func (c *Controller) Tracker() *tracker.Tracker { return c.tracker }
