package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// BackendConfig holds connection settings for the triage backend.
type BackendConfig struct {
	// BaseURL is the API root, including the /api prefix.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds every request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// MaxRetries is how many times a rate-limited request is retried.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`

	// RequestsPerSec paces outgoing requests. Zero disables pacing.
	RequestsPerSec float64 `mapstructure:"requests_per_sec" yaml:"requests_per_sec"`
}

// QueueConfig holds pending-queue preferences.
type QueueConfig struct {
	PageSize int `mapstructure:"page_size" yaml:"page_size"`
}

// TranslationConfig names the language pair used for round-trip translation.
type TranslationConfig struct {
	SourceLang string `mapstructure:"source_lang" yaml:"source_lang"`
	TargetLang string `mapstructure:"target_lang" yaml:"target_lang"`
}

// SyncConfig controls the background auto-sync.
type SyncConfig struct {
	// AutoIntervalSec is the auto-sync period. Zero follows the backend's
	// fetch_interval setting; a negative value turns auto-sync off.
	AutoIntervalSec int `mapstructure:"auto_interval_sec" yaml:"auto_interval_sec"`
}

// StoreConfig locates the local activity journal.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Backend     BackendConfig     `mapstructure:"backend" yaml:"backend"`
	Queue       QueueConfig       `mapstructure:"queue" yaml:"queue"`
	Translation TranslationConfig `mapstructure:"translation" yaml:"translation"`
	Sync        SyncConfig        `mapstructure:"sync" yaml:"sync"`
	Store       StoreConfig       `mapstructure:"store" yaml:"store"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
	Display     DisplayConfig     `mapstructure:"display" yaml:"display"`
}

// configDir returns ~/.config/replydesk, or "." when there is no home.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "replydesk")
}

// DefaultConfigPath returns ~/.config/replydesk/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	dir := configDir()
	return &AppConfig{
		Backend: BackendConfig{
			BaseURL:        "http://127.0.0.1:8001/api",
			TimeoutSec:     30,
			MaxRetries:     3,
			RequestsPerSec: 10,
		},
		Queue:       QueueConfig{PageSize: 10},
		Translation: TranslationConfig{SourceLang: "en", TargetLang: "zh"},
		Store:       StoreConfig{Path: filepath.Join(dir, "activity.db")},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "replydesk.log"),
		},
		Display: DisplayConfig{Theme: "default"},
	}
}

func setDefaults(v *viper.Viper, cfg *AppConfig) {
	v.SetDefault("backend.base_url", cfg.Backend.BaseURL)
	v.SetDefault("backend.timeout_sec", cfg.Backend.TimeoutSec)
	v.SetDefault("backend.max_retries", cfg.Backend.MaxRetries)
	v.SetDefault("backend.requests_per_sec", cfg.Backend.RequestsPerSec)
	v.SetDefault("queue.page_size", cfg.Queue.PageSize)
	v.SetDefault("translation.source_lang", cfg.Translation.SourceLang)
	v.SetDefault("translation.target_lang", cfg.Translation.TargetLang)
	v.SetDefault("sync.auto_interval_sec", cfg.Sync.AutoIntervalSec)
	v.SetDefault("store.path", cfg.Store.Path)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("display.theme", cfg.Display.Theme)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v, DefaultAppConfig())

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &pathErr) || errors.As(err, &notFound) {
			return DefaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Queue.PageSize <= 0 {
		cfg.Queue.PageSize = 10
	}
	if cfg.Backend.TimeoutSec <= 0 {
		cfg.Backend.TimeoutSec = 30
	}
	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("backend", cfg.Backend)
	v.Set("queue", cfg.Queue)
	v.Set("translation", cfg.Translation)
	v.Set("sync", cfg.Sync)
	v.Set("store", cfg.Store)
	v.Set("log", cfg.Log)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}
