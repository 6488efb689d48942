package workspace

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/reply-desk/internal/model"
	"github.com/nhle/reply-desk/internal/queue"
	"github.com/nhle/reply-desk/internal/store"
	"github.com/nhle/reply-desk/internal/subst"
	"github.com/nhle/reply-desk/internal/testutil"
	"github.com/nhle/reply-desk/internal/tracker"
)

func newController(t *testing.T, fb *fakeBackend) *Controller {
	t.Helper()
	c := New(fb, Options{PageSize: 10, SourceLang: "en", TargetLang: "zh"})
	require.NoError(t, c.LoadPage(context.Background(), 1))
	return c
}

func TestLoadAutoSelectsFirstEmail(t *testing.T) {
	fb := &fakeBackend{pending: emails(3)}
	c := newController(t, fb)

	s := c.Snapshot()
	require.NotNil(t, s.Selected)
	assert.Equal(t, int64(1), s.Selected.ID)
	assert.Equal(t, Selected, s.Phase)

	// an existing selection is kept across loads
	require.NoError(t, c.SelectID(2))
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, int64(2), c.Snapshot().Selected.ID)
}

func TestSelectSeedsReply(t *testing.T) {
	c := New(&fakeBackend{}, Options{})

	c.Select(model.Email{ID: 1, AIReply: ptr("ai draft")})
	assert.Equal(t, "ai draft", c.Snapshot().Reply)

	c.Select(model.Email{ID: 2, AIReply: ptr("ai draft"), FinalReply: ptr("final")})
	assert.Equal(t, "final", c.Snapshot().Reply)
}

// Analysis fills the reply, variables resolve it and the translation
// round trip writes back without clearing the preview.
func TestAnalyzeSubstituteTranslateRoundTrip(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{pending: emails(1)}
	fb.analyze = func(ctx context.Context, id int64, force bool) (model.AnalysisResult, error) {
		assert.False(t, force)
		return model.AnalysisResult{
			Category:           &model.Category{ID: 3, Name: "Greeting"},
			Confidence:         0.9,
			Method:             model.MethodKeyword,
			Reply:              "Hello {name}",
			ReplySource:        model.ReplyFromTemplate,
			MatchedTemplateID:  ptr(int64(7)),
			ExtractedVariables: map[string]any{"name": "Alice"},
		}, nil
	}
	fb.translate = func(ctx context.Context, text, source, target string) (string, error) {
		switch {
		case text == "Hello Alice" && source == "en" && target == "zh":
			return "你好 Alice", nil
		case text == "你好 爱丽丝" && source == "zh" && target == "en":
			return "Hello Alice (revised)", nil
		}
		t.Fatalf("unexpected translate %q %s->%s", text, source, target)
		return "", nil
	}
	c := newController(t, fb)
	assert.Equal(t, "", c.Snapshot().Reply)

	// A
	require.NoError(t, c.Analyze(ctx, false))
	s := c.Snapshot()
	assert.Equal(t, Analyzed, s.Phase)
	assert.Equal(t, "Hello {name}", s.Reply)
	assert.Equal(t, ptr(int64(7)), s.SelectedTemplateID)
	assert.Empty(t, s.Preview)
	assert.Equal(t, []string{"name"}, s.Placeholders)
	assert.Empty(t, s.Operations)

	// B
	require.NoError(t, c.ApplyVariables())
	assert.Equal(t, "Hello Alice", c.Snapshot().Reply)

	// C
	require.NoError(t, c.TranslateForward(ctx))
	assert.Equal(t, "你好 Alice", c.Snapshot().Preview)
	require.NoError(t, c.EditTranslation("你好 爱丽丝"))
	require.NoError(t, c.TranslateReverse(ctx))
	s = c.Snapshot()
	assert.Equal(t, "Hello Alice (revised)", s.Reply)
	assert.Equal(t, "你好 爱丽丝", s.Preview)
}

func TestEveryReplyMutationClearsPreview(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{pending: emails(1), templates: []model.Template{{ID: 4, Name: "Thanks", Content: "Thanks {name}"}}}
	fb.analyze = func(context.Context, int64, bool) (model.AnalysisResult, error) {
		return model.AnalysisResult{Reply: "Hi {name}", ExtractedVariables: map[string]any{"name": "Bo"}}, nil
	}
	c := newController(t, fb)
	c.SetTemplates(fb.templates)

	mutations := []struct {
		name string
		do   func() error
	}{
		{"analyze", func() error { return c.Analyze(ctx, false) }},
		{"manual edit", func() error { return c.EditReply("Hi {name}, edited") }},
		{"template", func() error { return c.ApplyTemplateID(4) }},
		{"substitution", func() error { return c.ApplyVariables() }},
		{"regenerate", func() error { return c.RegenerateReply(ctx) }},
	}
	for i, m := range mutations {
		require.NoError(t, c.EditReply(fmt.Sprintf("draft %d for {name}", i)))
		require.NoError(t, c.TranslateForward(ctx), m.name)
		require.NotEmpty(t, c.Snapshot().Preview, m.name)

		require.NoError(t, m.do(), m.name)
		assert.Empty(t, c.Snapshot().Preview, m.name)
	}
}

func TestEditReplyWithSameTextKeepsPreview(t *testing.T) {
	ctx := context.Background()
	c := newController(t, &fakeBackend{pending: emails(1)})
	require.NoError(t, c.EditReply("hello"))
	require.NoError(t, c.TranslateForward(ctx))

	require.NoError(t, c.EditReply("hello"))
	assert.Equal(t, "[zh] hello", c.Snapshot().Preview)
}

func TestApplyVariablesWithoutAnalysis(t *testing.T) {
	c := newController(t, &fakeBackend{pending: emails(1)})
	require.NoError(t, c.EditReply("Hi {name}"))

	err := c.ApplyVariables()
	assert.ErrorIs(t, err, subst.ErrNoVariables)
	s := c.Snapshot()
	assert.Equal(t, "Hi {name}", s.Reply)
	assert.Equal(t, NoticeInfo, s.Notice.Level)
}

func TestAnalyzeFailureKeepsPriorState(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{pending: emails(1)}
	fb.analyze = func(context.Context, int64, bool) (model.AnalysisResult, error) {
		return model.AnalysisResult{Reply: "first", Category: &model.Category{ID: 1}}, nil
	}
	c := newController(t, fb)
	require.NoError(t, c.Analyze(ctx, false))
	require.NoError(t, c.EditReply("operator text"))
	before := c.Snapshot()

	fb.analyze = func(context.Context, int64, bool) (model.AnalysisResult, error) {
		return model.AnalysisResult{}, errBackendDown
	}
	assert.ErrorIs(t, c.Analyze(ctx, true), errBackendDown)

	after := c.Snapshot()
	assert.Equal(t, before.Reply, after.Reply)
	assert.Empty(t, cmp.Diff(before.Analysis, after.Analysis))
	assert.Equal(t, Analyzed, after.Phase)
	assert.False(t, c.Tracker().Busy(1))
	assert.Equal(t, NoticeError, after.Notice.Level)
}

func TestStaleAnalysisIsDiscarded(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{pending: emails(2)}
	started := make(chan struct{})
	release := make(chan struct{})
	fb.analyze = func(ctx context.Context, id int64, force bool) (model.AnalysisResult, error) {
		close(started)
		<-release
		return model.AnalysisResult{Reply: "for email 1", Category: &model.Category{ID: 9}}, nil
	}
	c := newController(t, fb)

	done := make(chan error, 1)
	go func() { done <- c.Analyze(ctx, false) }()
	<-started
	assert.True(t, c.Tracker().Busy(1))

	require.NoError(t, c.SelectID(2))
	require.NoError(t, c.EditReply("reply to email 2"))
	close(release)

	assert.ErrorIs(t, <-done, ErrStale)
	s := c.Snapshot()
	assert.Equal(t, int64(2), s.Selected.ID)
	assert.Equal(t, "reply to email 2", s.Reply)
	assert.Nil(t, s.Analysis)
	assert.Equal(t, Selected, s.Phase)
	assert.False(t, c.Tracker().Busy(1))
}

// Two sends on one email issue a single request.
func TestConcurrentSendIssuesOneRequest(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{pending: emails(2)}
	started := make(chan struct{})
	release := make(chan struct{})
	fb.send = func(context.Context, int64) error {
		close(started)
		<-release
		return nil
	}
	c := newController(t, fb)
	require.NoError(t, c.EditReply("Thanks for writing"))

	first := make(chan error, 1)
	go func() { first <- c.Send(ctx) }()
	<-started

	k, ok := c.Snapshot().OperationFor(1)
	require.True(t, ok)
	assert.Equal(t, tracker.Sending, k)
	assert.ErrorIs(t, c.Send(ctx), tracker.ErrBusy)
	assert.ErrorIs(t, c.Delete(ctx, 1), tracker.ErrBusy)

	close(release)
	require.NoError(t, <-first)
	assert.Equal(t, 1, fb.sendCount())

	s := c.Snapshot()
	assert.Equal(t, Sent, s.Phase)
	assert.Equal(t, model.EmailSent, s.Selected.Status)
	assert.Equal(t, 1, s.SentToday)
	assert.Equal(t, []int64{2}, []int64{s.Queue.Items[0].ID})
	assert.ErrorIs(t, c.Send(ctx), ErrAlreadySent)
}

func TestSendRejectsEmptyReply(t *testing.T) {
	fb := &fakeBackend{pending: emails(1)}
	c := newController(t, fb)
	require.NoError(t, c.EditReply("   \n"))

	assert.ErrorIs(t, c.Send(context.Background()), ErrEmptyReply)
	assert.Equal(t, 0, fb.sendCount())
	assert.Equal(t, Selected, c.Snapshot().Phase)
}

func TestSendFailureRemainsInPhase(t *testing.T) {
	fb := &fakeBackend{pending: emails(1)}
	fb.send = func(context.Context, int64) error { return errBackendDown }
	c := newController(t, fb)
	require.NoError(t, c.EditReply("hi"))

	assert.ErrorIs(t, c.Send(context.Background()), errBackendDown)
	s := c.Snapshot()
	assert.Equal(t, Selected, s.Phase)
	assert.Equal(t, "hi", s.Reply)
	assert.Empty(t, s.Operations)
}

func TestSendUsesActiveCategory(t *testing.T) {
	ctx := context.Background()
	stored := model.Email{ID: 1, Subject: "Where is my parcel", CategoryID: ptr(int64(5))}
	fb := &fakeBackend{pending: []model.Email{stored, {ID: 2}}}
	c := newController(t, fb)

	require.NoError(t, c.EditReply("On its way"))
	require.NoError(t, c.Send(ctx))
	require.Len(t, fb.sends, 1)
	assert.Equal(t, ptr(int64(5)), fb.sends[0].categoryID)

	fb.analyze = func(context.Context, int64, bool) (model.AnalysisResult, error) {
		return model.AnalysisResult{Reply: "Refund issued", Category: &model.Category{ID: 8}}, nil
	}
	require.NoError(t, c.ProcessNext())
	require.NoError(t, c.Analyze(ctx, false))
	require.NoError(t, c.Send(ctx))
	require.Len(t, fb.sends, 2)
	assert.Equal(t, sendCall{id: 2, reply: "Refund issued", categoryID: ptr(int64(8))}, fb.sends[1])
}

// Deleting refetches the counters instead of decrementing them.
func TestDeleteRefetchesCounters(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{pending: emails(12), totalCount: ptr(45), pendingCount: ptr(12)}
	c := newController(t, fb)
	assert.Equal(t, 45, c.Snapshot().Queue.TotalCount)
	assert.Equal(t, 12, c.Snapshot().Queue.PendingCount)

	// the backend also received new mail meanwhile
	fb.mu.Lock()
	fb.pendingCount = ptr(14)
	fb.totalCount = ptr(47)
	fb.mu.Unlock()

	require.NoError(t, c.Delete(ctx, 3))
	assert.Equal(t, []int{1, 1}, fb.listCalls)
	s := c.Snapshot()
	assert.Equal(t, 14, s.Queue.PendingCount)
	assert.Equal(t, 47, s.Queue.TotalCount)
	assert.Equal(t, int64(1), s.Selected.ID)
}

func TestDeleteSelectedGoesIdle(t *testing.T) {
	fb := &fakeBackend{pending: emails(2)}
	c := newController(t, fb)
	require.NoError(t, c.EditReply("draft"))

	require.NoError(t, c.Delete(context.Background(), 1))
	s := c.Snapshot()
	assert.Equal(t, Idle, s.Phase)
	assert.Nil(t, s.Selected)
	assert.Empty(t, s.Reply)
	assert.Len(t, s.Queue.Items, 1)
}

func TestDeleteFailureChangesNothing(t *testing.T) {
	fb := &fakeBackend{pending: emails(2)}
	fb.del = func(context.Context, int64) error { return errBackendDown }
	c := newController(t, fb)
	before := c.Snapshot()

	assert.ErrorIs(t, c.Delete(context.Background(), 1), errBackendDown)
	after := c.Snapshot()
	assert.Equal(t, before.Selected, after.Selected)
	assert.Equal(t, before.Queue, after.Queue)
	assert.Empty(t, after.Operations)
}

func TestProcessNextSkipsSentEmailAfterFailedRefresh(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{pending: emails(3)}
	c := newController(t, fb)
	require.NoError(t, c.EditReply("done"))

	fb.listErr = errBackendDown
	require.NoError(t, c.Send(ctx))
	s := c.Snapshot()
	require.Len(t, s.Queue.Items, 3)
	assert.Equal(t, NoticeError, s.Notice.Level)

	require.NoError(t, c.ProcessNext())
	s = c.Snapshot()
	require.NotNil(t, s.Selected)
	assert.Equal(t, int64(2), s.Selected.ID)
	assert.Equal(t, Selected, s.Phase)

	require.NoError(t, c.EditReply("second"))
	require.NoError(t, c.Send(ctx))
	assert.Equal(t, []int64{1, 2}, []int64{fb.sends[0].id, fb.sends[1].id})
}

func TestNextPendingSkipsTerminalEmails(t *testing.T) {
	items := []model.Email{
		{ID: 1, Status: model.EmailPending},
		{ID: 2, Status: model.EmailSent},
		{ID: 3, Status: model.EmailDeleted},
		{ID: 4},
	}
	next, ok := nextPending(items, 1)
	require.True(t, ok)
	assert.Equal(t, int64(4), next.ID)

	_, ok = nextPending(items[:3], 1)
	assert.False(t, ok)
}

func TestProcessNext(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{pending: emails(1)}
	c := newController(t, fb)

	assert.Error(t, c.ProcessNext())

	require.NoError(t, c.EditReply("done"))
	require.NoError(t, c.Send(ctx))
	assert.Empty(t, c.Snapshot().Queue.Items)

	require.NoError(t, c.ProcessNext())
	s := c.Snapshot()
	assert.Equal(t, Idle, s.Phase)
	assert.Nil(t, s.Selected)
	assert.Nil(t, s.Analysis)
	assert.Empty(t, s.Reply)
}

func TestStaleRegeneratedReplyIsDiscarded(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{pending: emails(2)}
	started := make(chan struct{})
	release := make(chan struct{})
	fb.generate = func(context.Context, int64) (string, error) {
		close(started)
		<-release
		return "reply for email 1", nil
	}
	c := newController(t, fb)

	done := make(chan error, 1)
	go func() { done <- c.RegenerateReply(ctx) }()
	<-started
	assert.True(t, c.Snapshot().Regenerating)
	assert.ErrorIs(t, c.RegenerateReply(ctx), ErrBusy)

	require.NoError(t, c.SelectID(2))
	require.NoError(t, c.EditReply("reply to email 2"))
	close(release)

	assert.ErrorIs(t, <-done, ErrStale)
	s := c.Snapshot()
	assert.Equal(t, int64(2), s.Selected.ID)
	assert.Equal(t, "reply to email 2", s.Reply)
	assert.Equal(t, Selected, s.Phase)
	assert.False(t, s.Regenerating)
}

func TestSendCompletingAfterReselectLeavesNewSelection(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{pending: emails(2)}
	started := make(chan struct{})
	release := make(chan struct{})
	fb.send = func(context.Context, int64) error {
		close(started)
		<-release
		return nil
	}
	c := newController(t, fb)
	require.NoError(t, c.EditReply("answer for email 1"))

	done := make(chan error, 1)
	go func() { done <- c.Send(ctx) }()
	<-started
	assert.True(t, c.Tracker().Busy(1))

	require.NoError(t, c.SelectID(2))
	require.NoError(t, c.EditReply("draft for email 2"))
	close(release)

	require.NoError(t, <-done)
	assert.Equal(t, 1, fb.sendCount())
	s := c.Snapshot()
	assert.Equal(t, int64(2), s.Selected.ID)
	assert.Equal(t, "draft for email 2", s.Reply)
	assert.Equal(t, Selected, s.Phase)
	assert.Equal(t, model.EmailPending, s.Selected.Status)
	assert.False(t, c.Tracker().Busy(1))
	assert.Empty(t, s.Operations)
}

func TestDerivedCategoryAndTemplates(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{
		pending: []model.Email{{ID: 1, CategoryID: ptr(int64(2))}},
		categories: []model.Category{
			{ID: 1, Name: "Refund"},
			{ID: 2, Name: "Shipping"},
		},
		templates: []model.Template{
			{ID: 10, CategoryID: ptr(int64(1)), Name: "Refund ok"},
			{ID: 11, CategoryID: ptr(int64(2)), Name: "Tracking"},
			{ID: 12, Name: "Generic"},
		},
	}
	c := newController(t, fb)
	require.NoError(t, c.ReloadCategories(ctx))
	require.NoError(t, c.ReloadTemplates(ctx))

	s := c.Snapshot()
	assert.Equal(t, "Shipping", s.ActiveCategoryName)
	assert.Len(t, s.ApplicableTemplates, 3)

	fb.analyze = func(context.Context, int64, bool) (model.AnalysisResult, error) {
		return model.AnalysisResult{Category: &model.Category{ID: 1, Name: "Refund"}}, nil
	}
	require.NoError(t, c.Analyze(ctx, false))
	s = c.Snapshot()
	assert.Equal(t, "Refund", s.ActiveCategoryName)
	want := []model.Template{{ID: 10, CategoryID: ptr(int64(1)), Name: "Refund ok"}}
	assert.Empty(t, cmp.Diff(want, s.ApplicableTemplates))

	c.Select(model.Email{ID: 5, CategoryID: ptr(int64(99))})
	assert.Equal(t, UncategorizedLabel, c.Snapshot().ActiveCategoryName)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	fb := &fakeBackend{pending: []model.Email{{ID: 1, AIReply: ptr("draft"), CategoryID: ptr(int64(2))}}}
	c := newController(t, fb)

	s := c.Snapshot()
	*s.Selected.CategoryID = 77
	*s.Selected.AIReply = "mutated"
	s.Queue.Items[0].Subject = "mutated"

	fresh := c.Snapshot()
	assert.Equal(t, int64(2), *fresh.Selected.CategoryID)
	assert.Equal(t, "draft", *fresh.Selected.AIReply)
	assert.Empty(t, fresh.Queue.Items[0].Subject)
}

func TestSubscribeCoalescesEvents(t *testing.T) {
	c := New(&fakeBackend{}, Options{})
	events, cancel := c.Subscribe()

	for i := 0; i < 5; i++ {
		c.Select(model.Email{ID: int64(i + 1)})
	}
	ev := <-events
	assert.Equal(t, ReasonSelection, ev.Reason)
	select {
	case <-events:
		t.Fatal("events were not coalesced")
	default:
	}

	cancel()
	cancel()
	_, open := <-events
	assert.False(t, open)
	c.Select(model.Email{ID: 9})
}

func TestBootstrapJoinsFailures(t *testing.T) {
	fb := &fakeBackend{
		pending:     emails(2),
		templates:   []model.Template{{ID: 1}},
		categoryErr: errBackendDown,
		settingsErr: errBackendDown,
	}
	c := New(fb, Options{})

	err := c.Bootstrap(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errBackendDown)
	assert.Contains(t, err.Error(), "categories")
	assert.Contains(t, err.Error(), "settings")
	assert.NotContains(t, err.Error(), "templates")

	s := c.Snapshot()
	assert.Len(t, s.Queue.Items, 2)
	assert.Len(t, s.Templates, 1)
	assert.Nil(t, s.Settings)
	assert.False(t, s.NeedsSetup)
	assert.False(t, s.Bootstrapping)
	assert.Equal(t, "Initial load incomplete (2 of 4 requests failed)", s.Notice.Text)
}

func TestNeedsSetupAfterSettingsLoad(t *testing.T) {
	fb := &fakeBackend{settings: model.SettingsBundle{Settings: model.Settings{DeepseekAPIKey: "sk"}}}
	c := New(fb, Options{})
	assert.False(t, c.NeedsSetup())

	require.NoError(t, c.Bootstrap(context.Background()))
	assert.True(t, c.NeedsSetup())

	c.SetSettings(model.SettingsBundle{
		Settings: model.Settings{DeepseekAPIKey: "sk"},
		Account:  &model.MailAccount{Email: "desk@example.com"},
	})
	assert.False(t, c.NeedsSetup())
}

func TestSyncRefreshesQueue(t *testing.T) {
	fb := &fakeBackend{pending: emails(1)}
	c := newController(t, fb)
	fb.mu.Lock()
	fb.pending = emails(4)
	fb.mu.Unlock()

	require.NoError(t, c.Sync(context.Background()))
	assert.Equal(t, 1, fb.syncs)
	assert.Len(t, c.Snapshot().Queue.Items, 4)
}

func TestNavigationOutOfRangeIssuesNoRequest(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{pending: emails(15)}
	c := newController(t, fb)

	assert.ErrorIs(t, c.PrevPage(ctx), queue.ErrNoPage)
	require.NoError(t, c.NextPage(ctx))
	assert.ErrorIs(t, c.LastPage(ctx), queue.ErrNoPage)
	assert.Equal(t, []int{1, 2}, fb.listCalls)
	assert.Equal(t, 2, c.Snapshot().Queue.Page)
}

func TestGoToPageStaysInRange(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{pending: emails(25)}
	c := newController(t, fb)
	require.Equal(t, 3, c.Snapshot().Queue.TotalPages)

	assert.ErrorIs(t, c.GoToPage(ctx, 0), queue.ErrNoPage)
	assert.ErrorIs(t, c.GoToPage(ctx, 4), queue.ErrNoPage)
	assert.ErrorIs(t, c.GoToPage(ctx, 9), queue.ErrNoPage)
	assert.ErrorIs(t, c.GoToPage(ctx, 1), queue.ErrNoPage)
	assert.Equal(t, []int{1}, fb.listCalls)

	require.NoError(t, c.GoToPage(ctx, 3))
	assert.Equal(t, []int{1, 3}, fb.listCalls)
	assert.Equal(t, 3, c.Snapshot().Queue.Page)
}

func TestJournalRecordsSendAndDelete(t *testing.T) {
	ctx := context.Background()
	journal := testutil.NewTestStore(t)
	fb := &fakeBackend{pending: emails(3)}
	c := New(fb, Options{Journal: journal})
	require.NoError(t, c.Bootstrap(ctx))

	require.NoError(t, c.EditReply("answer"))
	require.NoError(t, c.Send(ctx))
	require.NoError(t, c.Delete(ctx, 3))

	rows, err := journal.RecentActivity(ctx, store.ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	actions := map[model.ActivityAction]int64{}
	for _, r := range rows {
		actions[r.Action] = r.EmailID
	}
	assert.Equal(t, map[model.ActivityAction]int64{model.ActivitySent: 1, model.ActivityDeleted: 3}, actions)

	// a new controller picks the count up from the journal
	c2 := New(&fakeBackend{}, Options{Journal: journal})
	require.NoError(t, c2.Bootstrap(ctx))
	assert.Equal(t, 1, c2.Snapshot().SentToday)
}

