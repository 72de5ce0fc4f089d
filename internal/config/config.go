package config

import (
	"fmt"
	"path/filepath"
	"time"

	"ride-agent/internal/application/port/output"
)

// Config is the full configuration surface of the agent. Values come from
// the environment (layered .env files via the env service); CLI flags may
// override individual fields.
type Config struct {
	ClubURL     string
	CalendarURL string
	Username    string
	Password    string

	SearchText string
	ExactMatch bool
	WindowDays int

	MaxAttempts   int
	OpTimeout     time.Duration
	RunBudget     time.Duration
	ConfirmTarget string

	Headless  bool
	NoSandbox bool

	PollInterval time.Duration

	LogDir      string
	HistoryPath string
}

const (
	DefaultWindowDays   = 10
	DefaultMaxAttempts  = 3
	DefaultOpTimeout    = 20 * time.Second
	DefaultRunBudget    = 10 * time.Minute
	DefaultPollInterval = 6 * time.Hour
)

// FromEnv loads configuration. Only credentials and the club URL are
// mandatory; everything else has a sane default.
func FromEnv(e output.ConfigPort) (Config, error) {
	cfg := Config{
		ClubURL:     e.Get("CLUB_URL"),
		CalendarURL: e.Get("CLUB_CALENDAR_URL"),
		Username:    e.Get("CLUB_USERNAME"),
		Password:    e.Get("CLUB_PASSWORD"),

		SearchText: e.GetWithDefault("RIDE_SEARCH_TEXT", "B Ride"),
		ExactMatch: e.GetBool("RIDE_SEARCH_EXACT", false),
		WindowDays: e.GetInt("RIDE_WINDOW_DAYS", DefaultWindowDays),

		MaxAttempts:   e.GetInt("MAX_ATTEMPTS", DefaultMaxAttempts),
		OpTimeout:     e.GetDuration("OP_TIMEOUT", DefaultOpTimeout),
		RunBudget:     e.GetDuration("RUN_BUDGET", DefaultRunBudget),
		ConfirmTarget: e.GetWithDefault("CONFIRM_TARGET", "Confirm"),

		Headless:  e.GetBool("BROWSER_HEADLESS", true),
		NoSandbox: e.GetBool("BROWSER_NO_SANDBOX", false),

		PollInterval: e.GetDuration("POLL_INTERVAL", DefaultPollInterval),

		LogDir:      e.GetWithDefault("LOG_DIR", "log"),
		HistoryPath: e.GetWithDefault("HISTORY_PATH", filepath.Join("log", "history.db")),
	}

	if cfg.ClubURL == "" {
		return cfg, fmt.Errorf("CLUB_URL is required")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return cfg, fmt.Errorf("CLUB_USERNAME and CLUB_PASSWORD are required")
	}
	if cfg.CalendarURL == "" {
		cfg.CalendarURL = cfg.ClubURL
	}

	return cfg.normalized(), nil
}

func (c Config) normalized() Config {
	if c.WindowDays <= 0 {
		c.WindowDays = DefaultWindowDays
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.OpTimeout <= 0 {
		c.OpTimeout = DefaultOpTimeout
	}
	if c.RunBudget <= 0 {
		c.RunBudget = DefaultRunBudget
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	return c
}
