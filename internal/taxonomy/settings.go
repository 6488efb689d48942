package taxonomy

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/nhle/reply-desk/internal/model"
)

// SettingsBackend is the settings half of the backend API.
type SettingsBackend interface {
	GetSettings(ctx context.Context) (model.SettingsBundle, error)
	UpdateSettings(ctx context.Context, s model.Settings) error
	UpdateMailAccount(ctx context.Context, a model.MailAccount) error
}

// SettingsEditor saves backend settings and the mail account.
type SettingsEditor struct {
	backend  SettingsBackend
	onChange func(model.SettingsBundle)
	logger   *zap.Logger

	mu     sync.Mutex
	saving bool
}

// NewSettingsEditor returns an editor. onChange receives the reloaded
// bundle after every save.
func NewSettingsEditor(backend SettingsBackend, onChange func(model.SettingsBundle), logger *zap.Logger) *SettingsEditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsEditor{backend: backend, onChange: onChange, logger: logger.Named("settings")}
}

// Saving reports whether a save is running.
func (e *SettingsEditor) Saving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saving
}

// ValidateAccount checks the fields the backend needs to reach the
// mailbox.
func ValidateAccount(a model.MailAccount) error {
	var missing []string
	if strings.TrimSpace(a.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(a.IMAPHost) == "" {
		missing = append(missing, "imap host")
	}
	if strings.TrimSpace(a.SMTPHost) == "" {
		missing = append(missing, "smtp host")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s: %w", strings.Join(missing, ", "), ErrInvalid)
	}
	if a.IMAPPort <= 0 || a.IMAPPort > 65535 || a.SMTPPort <= 0 || a.SMTPPort > 65535 {
		return fmt.Errorf("ports must be between 1 and 65535: %w", ErrInvalid)
	}
	return nil
}

// Save stores settings, then the mail account when one is given, then
// reloads and pushes the bundle.
func (e *SettingsEditor) Save(ctx context.Context, s model.Settings, account *model.MailAccount) error {
	if s.FetchInterval <= 0 {
		return fmt.Errorf("fetch interval must be positive: %w", ErrInvalid)
	}
	if account != nil {
		if err := ValidateAccount(*account); err != nil {
			return err
		}
	}

	e.mu.Lock()
	if e.saving {
		e.mu.Unlock()
		return ErrBusy
	}
	e.saving = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.saving = false
		e.mu.Unlock()
	}()

	if err := e.backend.UpdateSettings(ctx, s); err != nil {
		return err
	}
	if account != nil {
		if err := e.backend.UpdateMailAccount(ctx, *account); err != nil {
			return err
		}
	}
	e.logger.Info("settings saved", zap.Bool("account", account != nil))

	b, err := e.backend.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("reloading settings: %w", err)
	}
	if e.onChange != nil {
		e.onChange(b)
	}
	return nil
}
