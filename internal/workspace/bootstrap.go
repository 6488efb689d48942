package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/reply-desk/internal/model"
	"github.com/nhle/reply-desk/internal/store"
)

// Bootstrap performs the initial load: page 1 of the queue, categories,
// templates and settings are fetched concurrently. A failing request
// does not stop the others; every failure is logged and the joined
// errors are returned.
func (c *Controller) Bootstrap(ctx context.Context) error {
	c.mu.Lock()
	c.bootstrapping = true
	c.mu.Unlock()
	c.publish(ReasonOperation)

	var (
		mu       sync.Mutex
		errs     []error
		requests int
	)
	collect := func(what string, err error) error {
		mu.Lock()
		defer mu.Unlock()
		requests++
		if err == nil {
			return nil
		}
		c.logger.Error("initial load failed", zap.String("op", what), zap.Error(err))
		err = fmt.Errorf("%s: %w", what, err)
		errs = append(errs, err)
		return err
	}

	// Plain Group: one failure must not cancel the siblings. Wait only
	// reports the first error, so every failure is collected as well.
	var g errgroup.Group
	g.Go(func() error {
		err := c.queue.LoadPage(ctx, 1)
		return collect("emails", c.afterLoad("bootstrap", err))
	})
	g.Go(func() error {
		return collect("categories", c.ReloadCategories(ctx))
	})
	g.Go(func() error {
		return collect("templates", c.ReloadTemplates(ctx))
	})
	g.Go(func() error {
		return collect("settings", c.ReloadSettings(ctx))
	})
	// The journal is local and its failures are only logged, so it is
	// not counted as a backend request.
	g.Go(func() error {
		c.loadSentToday(ctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		c.logger.Debug("initial load finished with errors", zap.Int("failed", len(errs)))
	}

	c.mu.Lock()
	c.bootstrapping = false
	c.mu.Unlock()
	c.publish(ReasonOperation)

	err := errors.Join(errs...)
	if err != nil {
		c.setNotice(NoticeError, fmt.Sprintf("Initial load incomplete (%d of %d requests failed)", len(errs), requests))
	}
	return err
}

// loadSentToday seeds the "sent today" counter from the journal.
func (c *Controller) loadSentToday(ctx context.Context) {
	if c.journal == nil {
		return
	}
	now := c.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	n, err := c.journal.CountActivity(ctx, store.ActivityFilter{Action: model.ActivitySent, Since: midnight})
	if err != nil {
		c.logger.Warn("counting sent replies", zap.Error(err))
		return
	}
	c.mu.Lock()
	c.sentToday = n
	c.mu.Unlock()
}

// ReloadCategories fetches the category list.
func (c *Controller) ReloadCategories(ctx context.Context) error {
	list, err := c.backend.ListCategories(ctx)
	if err != nil {
		return err
	}
	c.SetCategories(list)
	return nil
}

// ReloadTemplates fetches the template list.
func (c *Controller) ReloadTemplates(ctx context.Context) error {
	list, err := c.backend.ListTemplates(ctx)
	if err != nil {
		return err
	}
	c.SetTemplates(list)
	return nil
}

// ReloadSettings fetches settings and the mail account.
func (c *Controller) ReloadSettings(ctx context.Context) error {
	b, err := c.backend.GetSettings(ctx)
	if err != nil {
		return err
	}
	c.SetSettings(b)
	return nil
}

// SetCategories replaces the category list.
func (c *Controller) SetCategories(list []model.Category) {
	c.mu.Lock()
	c.categories = append([]model.Category(nil), list...)
	c.mu.Unlock()
	c.publish(ReasonTaxonomy)
}

// SetTemplates replaces the template list.
func (c *Controller) SetTemplates(list []model.Template) {
	c.mu.Lock()
	c.templates = make([]model.Template, len(list))
	for i, t := range list {
		c.templates[i] = copyTemplate(t)
	}
	c.mu.Unlock()
	c.publish(ReasonTaxonomy)
}

// SetSettings replaces the settings bundle.
func (c *Controller) SetSettings(b model.SettingsBundle) {
	c.mu.Lock()
	cp := copySettings(b)
	c.settings = &cp
	c.mu.Unlock()
	c.publish(ReasonSettings)
}

// NeedsSetup reports whether settings are loaded and incomplete.
func (c *Controller) NeedsSetup() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings != nil && c.settings.NeedsSetup()
}
