// Command replydesk is a terminal workspace for triaging and answering
// support email through the reply-desk backend.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/reply-desk/internal/app"
	"github.com/nhle/reply-desk/internal/backend"
	"github.com/nhle/reply-desk/internal/credential"
	"github.com/nhle/reply-desk/internal/logging"
	"github.com/nhle/reply-desk/internal/mailcheck"
	"github.com/nhle/reply-desk/internal/model"
	"github.com/nhle/reply-desk/internal/store"
	appsync "github.com/nhle/reply-desk/internal/sync"
	"github.com/nhle/reply-desk/internal/taxonomy"
	"github.com/nhle/reply-desk/internal/ui/setup"
	"github.com/nhle/reply-desk/internal/workspace"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "replydesk: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to the config file")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(*configPath); errors.Is(err, fs.ErrNotExist) {
		// First run: leave an editable file behind.
		if err := model.SaveConfig(*configPath, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "replydesk: writing default config: %v\n", err)
		}
	}

	logger, err := logging.New(cfg.Log, *debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	opts := workspace.Options{
		PageSize:   cfg.Queue.PageSize,
		SourceLang: cfg.Translation.SourceLang,
		TargetLang: cfg.Translation.TargetLang,
		Logger:     logger,
	}
	if journal, err := openJournal(cfg.Store.Path); err != nil {
		logger.Warn("activity journal unavailable", zap.Error(err))
	} else {
		defer journal.Close()
		opts.Journal = journal
	}

	client := backend.NewClient(cfg.Backend, logger)
	ctrl := workspace.New(client, opts)

	categories := taxonomy.NewCategories(client, ctrl.SetCategories, logger)
	templates := taxonomy.NewTemplates(client, ctrl.SetTemplates, logger)
	settings := taxonomy.NewSettingsEditor(client, ctrl.SetSettings, logger)

	poller := appsync.New(ctrl, appsync.ResolveInterval(cfg.Sync.AutoIntervalSec, 0), logger)

	deps := app.Deps{
		Workspace:   ctrl,
		Categories:  categories,
		Templates:   templates,
		Settings:    settings,
		Checker:     mailcheck.NewChecker(time.Duration(cfg.Backend.TimeoutSec) * time.Second),
		Poller:      poller,
		AutoSyncSec: cfg.Sync.AutoIntervalSec,
		Logger:      logger,
	}
	deps.Vault = openVault(logger)

	logger.Info("starting", zap.String("backend", cfg.Backend.BaseURL))
	p := tea.NewProgram(app.New(deps), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

func openJournal(path string) (*store.SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}
	return store.NewSQLiteStore(path)
}

// openVault returns nil when no keyring backend is usable, so the
// wizard runs without a secret cache.
func openVault(logger *zap.Logger) setup.Vault {
	v, err := credential.Open()
	if err != nil {
		logger.Warn("keyring unavailable", zap.Error(err))
		return nil
	}
	return v
}
