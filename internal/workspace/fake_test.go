package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nhle/reply-desk/internal/model"
)

var errBackendDown = errors.New("backend unavailable")

type sendCall struct {
	id         int64
	reply      string
	categoryID *int64
}

// fakeBackend is an in-memory backend. Emails are served from pending;
// send and delete remove them. Hooks, when set, replace the default
// behavior of a call.
type fakeBackend struct {
	mu      sync.Mutex
	pending []model.Email

	// counters override the computed total_count / pending_count.
	totalCount   *int
	pendingCount *int

	categories []model.Category
	templates  []model.Template
	settings   model.SettingsBundle

	analyze   func(ctx context.Context, id int64, force bool) (model.AnalysisResult, error)
	generate  func(ctx context.Context, id int64) (string, error)
	translate func(ctx context.Context, text, source, target string) (string, error)
	send      func(ctx context.Context, id int64) error
	del       func(ctx context.Context, id int64) error

	listErr     error
	categoryErr error
	settingsErr error

	sends     []sendCall
	deletes   []int64
	listCalls []int
	syncs     int
}

func (f *fakeBackend) ListEmails(ctx context.Context, status model.EmailStatus, page, size int) (model.EmailPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, page)
	if f.listErr != nil {
		return model.EmailPage{}, f.listErr
	}
	total := len(f.pending)
	pages := (total + size - 1) / size
	out := model.EmailPage{Total: total, TotalPages: pages, Page: page, TotalCount: total, PendingCount: total}
	if f.totalCount != nil {
		out.TotalCount = *f.totalCount
	}
	if f.pendingCount != nil {
		out.PendingCount = *f.pendingCount
	}
	start := (page - 1) * size
	for i := start; i >= 0 && i < total && i < start+size; i++ {
		out.Data = append(out.Data, f.pending[i])
	}
	return out, nil
}

func (f *fakeBackend) AnalyzeEmail(ctx context.Context, id int64, force bool) (model.AnalysisResult, error) {
	if f.analyze != nil {
		return f.analyze(ctx, id, force)
	}
	return model.AnalysisResult{}, fmt.Errorf("analyze not configured")
}

func (f *fakeBackend) GenerateReply(ctx context.Context, id int64) (string, error) {
	if f.generate != nil {
		return f.generate(ctx, id)
	}
	return "generated reply", nil
}

func (f *fakeBackend) Translate(ctx context.Context, text, source, target string) (string, error) {
	if f.translate != nil {
		return f.translate(ctx, text, source, target)
	}
	return "[" + target + "] " + text, nil
}

func (f *fakeBackend) SendReply(ctx context.Context, id int64, reply string, categoryID *int64) error {
	f.mu.Lock()
	f.sends = append(f.sends, sendCall{id, reply, categoryID})
	hook := f.send
	f.mu.Unlock()
	if hook != nil {
		if err := hook(ctx, id); err != nil {
			return err
		}
	}
	f.remove(id)
	return nil
}

func (f *fakeBackend) DeleteEmail(ctx context.Context, id int64) error {
	f.mu.Lock()
	f.deletes = append(f.deletes, id)
	hook := f.del
	f.mu.Unlock()
	if hook != nil {
		if err := hook(ctx, id); err != nil {
			return err
		}
	}
	f.remove(id)
	return nil
}

func (f *fakeBackend) remove(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.pending {
		if e.ID == id {
			f.pending = append(f.pending[:i:i], f.pending[i+1:]...)
			return
		}
	}
}

func (f *fakeBackend) SyncEmails(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncs++
	return nil
}

func (f *fakeBackend) ListCategories(ctx context.Context) ([]model.Category, error) {
	if f.categoryErr != nil {
		return nil, f.categoryErr
	}
	return f.categories, nil
}

func (f *fakeBackend) ListTemplates(ctx context.Context) ([]model.Template, error) {
	return f.templates, nil
}

func (f *fakeBackend) GetSettings(ctx context.Context) (model.SettingsBundle, error) {
	if f.settingsErr != nil {
		return model.SettingsBundle{}, f.settingsErr
	}
	return f.settings, nil
}

func (f *fakeBackend) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends)
}

func emails(n int) []model.Email {
	out := make([]model.Email, n)
	for i := range out {
		out[i] = model.Email{
			ID:      int64(i + 1),
			Subject: fmt.Sprintf("Question %d", i+1),
			Sender:  fmt.Sprintf("customer%d@example.com", i+1),
			Status:  model.EmailPending,
		}
	}
	return out
}

func ptr[T any](v T) *T { return &v }
