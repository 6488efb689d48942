package backend

import (
	"context"
	"fmt"

	"github.com/nhle/reply-desk/internal/model"
)

// GetSettings returns the backend settings and the current mail account.
func (c *Client) GetSettings(ctx context.Context) (model.SettingsBundle, error) {
	var out struct {
		Settings    map[string]string  `json:"settings"`
		MailAccount *model.MailAccount `json:"mail_account"`
	}
	if err := c.get(ctx, "/settings", &out); err != nil {
		return model.SettingsBundle{}, fmt.Errorf("loading settings: %w", err)
	}
	return model.SettingsBundle{
		Settings: model.SettingsFromMap(out.Settings),
		Account:  out.MailAccount,
	}, nil
}

// UpdateSettings stores the global settings.
func (c *Client) UpdateSettings(ctx context.Context, s model.Settings) error {
	if err := c.post(ctx, "/settings", s.Update(), nil); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// UpdateMailAccount stores the mail account.
func (c *Client) UpdateMailAccount(ctx context.Context, a model.MailAccount) error {
	if err := c.post(ctx, "/settings/mail-account", a, nil); err != nil {
		return fmt.Errorf("saving mail account %s: %w", a.Email, err)
	}
	return nil
}
