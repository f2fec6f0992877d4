package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Analysis provider names.
const (
	ProviderAnthropic = "anthropic"
)

// Notification provider names.
const (
	NotifyNtfy     = "ntfy"
	NotifySMTP     = "smtp"
	NotifyTelegram = "telegram"
)

// Config holds all application configuration. It is resolved once at
// startup into this typed structure; components never read raw keys.
type Config struct {
	Logging  LoggingConfig  `toml:"logging"`
	Storage  StorageConfig  `toml:"storage"`
	Platform PlatformConfig `toml:"platform"`
	Monitor  MonitorConfig  `toml:"monitor"`
	Analysis AnalysisConfig `toml:"analysis"`
	Notify   NotifyConfig   `toml:"notify"`
	Admin    AdminConfig    `toml:"admin"`
	Accounts []AccountSeed  `toml:"accounts"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"` // optional JSON log file, empty disables
}

type StorageConfig struct {
	Path string `toml:"path"`
}

// PlatformConfig configures the HTTP client for the monitored platform.
type PlatformConfig struct {
	BaseURL        string `toml:"base_url"`
	Token          string `toml:"token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxResults     int    `toml:"max_results"`
}

type MonitorConfig struct {
	Schedule             string `toml:"schedule"` // cron spec
	MaxConcurrentFetches int    `toml:"max_concurrent_fetches"`
}

type AnalysisConfig struct {
	Provider      string `toml:"provider"`
	APIKey        string `toml:"api_key"`
	Model         string `toml:"model"`
	MaxKeywords   int    `toml:"max_keywords"`
	MaxSummaryLen int    `toml:"max_summary_len"`
}

type NotifyConfig struct {
	Provider   string         `toml:"provider"`
	RatePerSec int            `toml:"rate_per_sec"`
	Ntfy       NtfyConfig     `toml:"ntfy"`
	SMTP       SMTPConfig     `toml:"smtp"`
	Telegram   TelegramConfig `toml:"telegram"`
}

type NtfyConfig struct {
	ServerURL string `toml:"server_url"`
	Topic     string `toml:"topic"`
}

type SMTPConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	FromAddr string `toml:"from_address"`
	ToAddr   string `toml:"to_address"`
}

type TelegramConfig struct {
	Token  string `toml:"token"`
	ChatID int64  `toml:"chat_id"`
}

type AdminConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// AccountSeed declares an account to monitor; seeds are upserted into
// the store at startup.
type AccountSeed struct {
	Handle      string `toml:"handle"`
	DisplayName string `toml:"display_name"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Storage: StorageConfig{Path: "./feedpulse.db"},
		Platform: PlatformConfig{
			BaseURL:        "https://api.example.com/v1",
			TimeoutSeconds: 30,
			MaxResults:     100,
		},
		Monitor: MonitorConfig{
			Schedule:             "*/5 * * * *",
			MaxConcurrentFetches: 8,
		},
		Analysis: AnalysisConfig{
			Provider:      ProviderAnthropic,
			Model:         "claude-sonnet-4-20250514",
			MaxKeywords:   8,
			MaxSummaryLen: 280,
		},
		Notify: NotifyConfig{
			Provider:   NotifyNtfy,
			RatePerSec: 3,
			Ntfy: NtfyConfig{
				ServerURL: "https://ntfy.sh",
			},
			SMTP: SMTPConfig{Port: 587},
		},
		Admin: AdminConfig{
			Enabled: false,
			Addr:    "127.0.0.1:8090",
		},
	}
}

// Load reads config from the given path, applying defaults for omitted fields.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot be acted on.
func (c *Config) Validate() error {
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path must be set")
	}
	if c.Platform.BaseURL == "" {
		return fmt.Errorf("platform.base_url must be set")
	}
	if c.Monitor.Schedule == "" {
		return fmt.Errorf("monitor.schedule must be set")
	}
	if c.Monitor.MaxConcurrentFetches <= 0 {
		return fmt.Errorf("monitor.max_concurrent_fetches must be positive")
	}
	if c.Analysis.MaxSummaryLen <= 0 {
		return fmt.Errorf("analysis.max_summary_len must be positive")
	}
	switch c.Notify.Provider {
	case NotifyNtfy, NotifySMTP, NotifyTelegram:
	default:
		return fmt.Errorf("unknown notify provider: %s", c.Notify.Provider)
	}
	return nil
}

// PlatformTimeout returns the platform HTTP timeout as a duration.
func (c *Config) PlatformTimeout() time.Duration {
	if c.Platform.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Platform.TimeoutSeconds) * time.Second
}

// Save writes config to the given path.
func (c *Config) Save(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}
