package workspace

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/nhle/reply-desk/internal/queue"
)

// afterLoad finishes a queue load: superseded loads are dropped, failures
// become notices, and the first email is selected when nothing is.
func (c *Controller) afterLoad(op string, err error) error {
	if errors.Is(err, queue.ErrSuperseded) {
		return nil
	}
	if errors.Is(err, queue.ErrNoPage) {
		return err
	}
	if err != nil {
		c.logger.Warn("loading queue", zap.String("op", op), zap.Error(err))
		c.setNotice(NoticeError, "Loading emails failed: "+describe(err))
		return err
	}

	c.mu.Lock()
	autoSelected := false
	if c.selected == nil {
		if first, ok := c.queue.FirstItem(); ok {
			c.selectLocked(first)
			autoSelected = true
		}
	}
	c.mu.Unlock()

	c.publish(ReasonQueue)
	if autoSelected {
		c.publish(ReasonSelection)
	}
	return nil
}

// refreshQueue reloads the current page after a mutation. Errors are
// reported through a notice only; the mutation itself already succeeded.
func (c *Controller) refreshQueue(ctx context.Context, op string) {
	_ = c.afterLoad(op, c.queue.Refresh(ctx))
}

// LoadPage loads page p of the pending queue without a bounds check.
// The backend clamps p; operator navigation goes through GoToPage.
func (c *Controller) LoadPage(ctx context.Context, p int) error {
	c.publish(ReasonQueue)
	return c.afterLoad("load", c.queue.LoadPage(ctx, p))
}

// Refresh reloads the current page.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.afterLoad("refresh", c.queue.Refresh(ctx))
}

// GoToPage jumps to page p. Pages outside [1, TotalPages] and the
// current page return queue.ErrNoPage without a request.
func (c *Controller) GoToPage(ctx context.Context, p int) error {
	return c.afterLoad("page", c.queue.GoTo(ctx, p))
}

// FirstPage moves to page 1.
func (c *Controller) FirstPage(ctx context.Context) error {
	return c.afterLoad("first", c.queue.First(ctx))
}

// PrevPage moves back one page.
func (c *Controller) PrevPage(ctx context.Context) error {
	return c.afterLoad("prev", c.queue.Prev(ctx))
}

// NextPage moves forward one page.
func (c *Controller) NextPage(ctx context.Context) error {
	return c.afterLoad("next", c.queue.Next(ctx))
}

// LastPage moves to the final page.
func (c *Controller) LastPage(ctx context.Context) error {
	return c.afterLoad("last", c.queue.Last(ctx))
}

// SetPageSize changes the page size and reloads page 1.
func (c *Controller) SetPageSize(ctx context.Context, n int) error {
	return c.afterLoad("page_size", c.queue.SetPageSize(ctx, n))
}

// Sync asks the backend to fetch new mail, then refreshes the queue.
func (c *Controller) Sync(ctx context.Context) error {
	c.mu.Lock()
	if c.syncing {
		c.mu.Unlock()
		return ErrBusy
	}
	c.syncing = true
	c.mu.Unlock()
	c.publish(ReasonOperation)

	err := c.backend.SyncEmails(ctx)

	c.mu.Lock()
	c.syncing = false
	c.mu.Unlock()
	c.publish(ReasonOperation)

	if err != nil {
		c.failed("Sync", 0, err)
		return err
	}
	if err := c.Refresh(ctx); err != nil {
		return err
	}
	c.setNotice(NoticeInfo, "Mailbox synced")
	return nil
}
