package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nhle/reply-desk/internal/editor"
	"github.com/nhle/reply-desk/internal/model"
	"github.com/nhle/reply-desk/internal/subst"
	"github.com/nhle/reply-desk/internal/tracker"
)

// Select makes email the working email: analysis, preview and template
// marker are reset and the reply is seeded from the stored reply.
func (c *Controller) Select(email model.Email) {
	c.mu.Lock()
	c.selectLocked(email)
	c.mu.Unlock()
	c.publish(ReasonSelection)
}

func (c *Controller) selectLocked(email model.Email) {
	e := copyEmail(email)
	c.selected = &e
	c.analysis = nil
	c.selectedTemplate = nil
	c.phase = Selected
	c.buf.Reset(email.SeedReply())
}

func (c *Controller) clearSelectionLocked() {
	c.selected = nil
	c.analysis = nil
	c.selectedTemplate = nil
	c.phase = Idle
	c.buf.Reset("")
}

// SelectID selects the cached email with id.
func (c *Controller) SelectID(id int64) error {
	email, ok := c.queue.Find(id)
	if !ok {
		return fmt.Errorf("email %d is not on the current page", id)
	}
	c.Select(email)
	return nil
}

// target captures the selection an async transition works on.
type target struct {
	id    int64
	epoch uint64
	phase Phase
	email model.Email
}

func (c *Controller) currentTarget() (target, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return target{}, ErrNoSelection
	}
	return target{
		id:    c.selected.ID,
		epoch: c.buf.Epoch(),
		phase: c.phase,
		email: copyEmail(*c.selected),
	}, nil
}

// stillCurrentLocked reports whether t is still the selection.
func (c *Controller) stillCurrentLocked(t target) bool {
	return c.selected != nil && c.selected.ID == t.id && c.buf.Epoch() == t.epoch
}

// Analyze asks the backend to classify the selected email and suggest a
// reply. On success the analysis replaces the previous one and the
// suggestion overwrites the reply. On failure nothing changes.
func (c *Controller) Analyze(ctx context.Context, forceAI bool) error {
	t, err := c.currentTarget()
	if err != nil {
		return err
	}
	if t.phase == Sent {
		return ErrAlreadySent
	}

	var res model.AnalysisResult
	err = c.tracker.Do(t.id, tracker.Analyzing, func() error {
		var callErr error
		res, callErr = c.backend.AnalyzeEmail(ctx, t.id, forceAI)
		return callErr
	})
	if errors.Is(err, tracker.ErrBusy) {
		return err
	}
	if err != nil {
		c.failed("Analyze", t.id, err)
		return err
	}

	c.mu.Lock()
	stale := !c.stillCurrentLocked(t)
	if !stale {
		a := copyAnalysis(res)
		c.analysis = &a
		c.buf.Replace(res.Reply)
		if res.MatchedTemplateID != nil {
			id := *res.MatchedTemplateID
			c.selectedTemplate = &id
		}
		if catID, ok := res.CategoryID(); ok {
			c.selected.CategoryID = &catID
			conf := res.Confidence
			c.selected.Confidence = &conf
		}
		c.phase = Analyzed
	}
	c.mu.Unlock()

	if stale {
		c.logger.Debug("discarding stale analysis", zap.Int64("email_id", t.id))
	} else {
		c.publish(ReasonAnalysis)
	}
	c.refreshQueue(ctx, "analyze")
	if stale {
		return ErrStale
	}
	return nil
}

// RegenerateReply asks the backend for a fresh AI reply for the selected
// email and writes it over the reply.
func (c *Controller) RegenerateReply(ctx context.Context) error {
	t, err := c.currentTarget()
	if err != nil {
		return err
	}
	if t.phase == Sent {
		return ErrAlreadySent
	}

	c.mu.Lock()
	if c.regenerating {
		c.mu.Unlock()
		return ErrBusy
	}
	c.regenerating = true
	c.mu.Unlock()
	c.publish(ReasonOperation)

	reply, err := c.backend.GenerateReply(ctx, t.id)

	c.mu.Lock()
	c.regenerating = false
	stale := err == nil && !c.stillCurrentLocked(t)
	if err == nil && !stale {
		c.buf.Replace(reply)
	}
	c.mu.Unlock()
	c.publish(ReasonOperation)

	switch {
	case err != nil:
		c.failed("Generate reply", t.id, err)
		return err
	case stale:
		c.logger.Debug("discarding stale reply", zap.Int64("email_id", t.id))
		return ErrStale
	}
	c.publish(ReasonReply)
	return nil
}

// ApplyTemplate writes the template's raw content over the reply and
// marks it as the selected template.
func (c *Controller) ApplyTemplate(tpl model.Template) error {
	c.mu.Lock()
	if c.selected == nil {
		c.mu.Unlock()
		return ErrNoSelection
	}
	if c.phase == Sent {
		c.mu.Unlock()
		return ErrAlreadySent
	}
	id := tpl.ID
	c.selectedTemplate = &id
	c.buf.Replace(tpl.Content)
	c.mu.Unlock()
	c.publish(ReasonReply)
	return nil
}

// ApplyTemplateID applies the template with id from the template list.
func (c *Controller) ApplyTemplateID(id int64) error {
	c.mu.Lock()
	tpl, ok := model.FindTemplate(c.templates, id)
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("template %d: %w", id, ErrUnknownTemplate)
	}
	return c.ApplyTemplate(tpl)
}

// ApplyVariables fills placeholders in the reply with the variables the
// last analysis extracted. With nothing to apply it sets a notice and
// returns subst.ErrNoVariables without touching the reply.
func (c *Controller) ApplyVariables() error {
	c.mu.Lock()
	if c.selected == nil {
		c.mu.Unlock()
		return ErrNoSelection
	}
	var vars map[string]any
	if c.analysis != nil {
		vars = c.analysis.ExtractedVariables
	}
	reply := c.buf.State().Reply
	out, err := subst.Apply(reply, vars)
	if err == nil {
		c.buf.Replace(out)
	}
	c.mu.Unlock()

	if errors.Is(err, subst.ErrNoVariables) {
		c.setNotice(NoticeInfo, "No variables to apply; analyze the email first")
		return err
	}
	if err != nil {
		return err
	}
	c.publish(ReasonReply)
	return nil
}

// EditReply replaces the reply with operator-typed text. The preview is
// cleared only if the text actually changed.
func (c *Controller) EditReply(text string) error {
	c.mu.Lock()
	if c.selected == nil {
		c.mu.Unlock()
		return ErrNoSelection
	}
	changed := c.buf.Edit(text)
	c.mu.Unlock()
	if changed {
		c.publish(ReasonReply)
	}
	return nil
}

// EditTranslation replaces the preview with operator-typed text.
func (c *Controller) EditTranslation(text string) error {
	c.mu.Lock()
	if c.selected == nil {
		c.mu.Unlock()
		return ErrNoSelection
	}
	changed := c.buf.EditPreview(text)
	c.mu.Unlock()
	if changed {
		c.publish(ReasonPreview)
	}
	return nil
}

// TranslateForward translates the reply into the target language and
// stores it as the preview.
func (c *Controller) TranslateForward(ctx context.Context) error {
	return c.translate(ctx, editor.Forward)
}

// TranslateReverse translates the preview back into the source language
// and writes it over the reply, keeping the preview.
func (c *Controller) TranslateReverse(ctx context.Context) error {
	return c.translate(ctx, editor.Reverse)
}

func (c *Controller) translate(ctx context.Context, dir editor.Direction) error {
	t, err := c.currentTarget()
	if err != nil {
		return err
	}

	if dir == editor.Forward {
		err = c.coord.Forward(ctx, c.sourceLang, c.targetLang)
	} else {
		err = c.coord.Reverse(ctx, c.sourceLang, c.targetLang)
	}

	switch {
	case err == nil:
		if dir == editor.Forward {
			c.publish(ReasonPreview)
		} else {
			c.publish(ReasonReply)
		}
		return nil
	case errors.Is(err, editor.ErrEmptyText):
		c.setNotice(NoticeInfo, "Nothing to translate")
		return err
	case errors.Is(err, editor.ErrBusy), errors.Is(err, editor.ErrStale):
		return err
	default:
		c.failed("Translate", t.id, err)
		return err
	}
}

// activeCategoryIDLocked prefers the analysis' category over the stored
// one.
func (c *Controller) activeCategoryIDLocked() *int64 {
	if id, ok := c.analysis.CategoryID(); ok {
		return &id
	}
	if c.selected != nil && c.selected.CategoryID != nil {
		id := *c.selected.CategoryID
		return &id
	}
	return nil
}

// Send submits the reply for the selected email with the active
// category. On success the phase becomes Sent and the queue is
// refreshed. On failure nothing changes.
func (c *Controller) Send(ctx context.Context) error {
	t, err := c.currentTarget()
	if err != nil {
		return err
	}
	if t.phase == Sent {
		return ErrAlreadySent
	}

	c.mu.Lock()
	reply := c.buf.State().Reply
	categoryID := c.activeCategoryIDLocked()
	c.mu.Unlock()

	if strings.TrimSpace(reply) == "" {
		c.setNotice(NoticeInfo, "Reply is empty")
		return ErrEmptyReply
	}

	err = c.tracker.Do(t.id, tracker.Sending, func() error {
		return c.backend.SendReply(ctx, t.id, reply, categoryID)
	})
	if errors.Is(err, tracker.ErrBusy) {
		return err
	}
	if err != nil {
		c.failed("Send", t.id, err)
		return err
	}

	c.mu.Lock()
	c.sentToday++
	stale := !c.stillCurrentLocked(t)
	if !stale {
		c.phase = Sent
		c.selected.Status = model.EmailSent
		final := reply
		c.selected.FinalReply = &final
	}
	c.mu.Unlock()

	c.record(ctx, model.Activity{
		EmailID:    t.id,
		Action:     model.ActivitySent,
		Subject:    t.email.Subject,
		Sender:     t.email.Sender,
		CategoryID: categoryID,
	})
	c.setNotice(NoticeInfo, "Reply sent")
	c.publish(ReasonSent)
	c.refreshQueue(ctx, "send")
	return nil
}

// Delete removes email id from the pending queue. Confirmation is the
// caller's responsibility. If id was selected the workspace goes Idle.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	email, cached := c.queue.Find(id)
	c.mu.Lock()
	if !cached && c.selected != nil && c.selected.ID == id {
		email, cached = copyEmail(*c.selected), true
	}
	c.mu.Unlock()

	err := c.tracker.Do(id, tracker.Deleting, func() error {
		return c.backend.DeleteEmail(ctx, id)
	})
	if errors.Is(err, tracker.ErrBusy) {
		return err
	}
	if err != nil {
		c.failed("Delete", id, err)
		return err
	}

	a := model.Activity{EmailID: id, Action: model.ActivityDeleted}
	if cached {
		a.Subject = email.Subject
		a.Sender = email.Sender
		a.CategoryID = email.CategoryID
	}
	c.record(ctx, a)

	c.refreshQueue(ctx, "delete")

	c.mu.Lock()
	wasSelected := c.selected != nil && c.selected.ID == id
	if wasSelected {
		c.clearSelectionLocked()
	}
	c.mu.Unlock()
	if wasSelected {
		c.publish(ReasonSelection)
	}
	c.setNotice(NoticeInfo, "Email deleted")
	c.publish(ReasonDeleted)
	return nil
}

// ProcessNext leaves the Sent phase: the first pending email on the
// cached page other than the sent one is selected, or the workspace goes
// Idle when there is none.
func (c *Controller) ProcessNext() error {
	items := c.queue.State().Items

	c.mu.Lock()
	if c.phase != Sent {
		c.mu.Unlock()
		return fmt.Errorf("process next from %s: nothing was sent", c.phase)
	}
	var sentID int64
	if c.selected != nil {
		sentID = c.selected.ID
	}
	if next, ok := nextPending(items, sentID); ok {
		c.selectLocked(next)
	} else {
		c.clearSelectionLocked()
	}
	c.mu.Unlock()
	c.publish(ReasonSelection)
	return nil
}

// nextPending returns the first cached email that is still pending and
// is not sentID. A failed refresh can leave the sent email in the page.
func nextPending(items []model.Email, sentID int64) (model.Email, bool) {
	for _, e := range items {
		if e.ID == sentID {
			continue
		}
		if e.Status != "" && e.Status != model.EmailPending {
			continue
		}
		return e, true
	}
	return model.Email{}, false
}

// record appends to the journal, if any. Failures are logged only.
func (c *Controller) record(ctx context.Context, a model.Activity) {
	if c.journal == nil {
		return
	}
	a.CreatedAt = c.now()
	if err := c.journal.RecordActivity(ctx, a); err != nil {
		c.logger.Warn("recording activity",
			zap.String("op", string(a.Action)),
			zap.Int64("email_id", a.EmailID),
			zap.Error(err),
		)
	}
}
