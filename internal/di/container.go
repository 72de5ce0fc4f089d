package di

import (
	"context"
	"fmt"

	"ride-agent/internal/application/port/output"
	"ride-agent/internal/config"
	"ride-agent/internal/infrastructure/browser/rod"
	"ride-agent/internal/infrastructure/calendar"
	"ride-agent/internal/infrastructure/history"
	"ride-agent/internal/infrastructure/logger"
	"ride-agent/internal/usecase/executor"
	"ride-agent/internal/usecase/session"
	"ride-agent/internal/usecase/workflow"
)

type Container struct {
	Config   config.Config
	Logger   output.LoggerPort
	Browser  output.BrowserPort
	History  output.RunHistoryPort
	Executor *executor.UseCase
}

func NewContainer(ctx context.Context, cfg config.Config) (*Container, error) {
	log, err := logger.NewLoggerAdapter(cfg.LogDir, cfg.SearchText)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	browserCfg := rod.DefaultConfig()
	browserCfg.Headless = cfg.Headless
	browserCfg.NoSandbox = cfg.NoSandbox
	browserCfg.Timeout = cfg.OpTimeout
	browser, err := rod.NewBrowserAdapter(ctx, browserCfg)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}

	var hist output.RunHistoryPort
	if cfg.HistoryPath != "" {
		hist, err = history.Open(cfg.HistoryPath)
		if err != nil {
			// History is diagnostics, not a precondition.
			log.Warn("Run history unavailable", "path", cfg.HistoryPath, "error", err.Error())
			hist = nil
		}
	}

	signin := session.New(browser, log, session.Config{
		ClubURL:  cfg.ClubURL,
		Username: cfg.Username,
		Password: cfg.Password,
	})

	parser := calendar.New(calendar.DefaultContract())

	uc := executor.New(browser, signin, parser, hist, log, executor.Config{
		SearchText: cfg.SearchText,
		ExactMatch: cfg.ExactMatch,
		WindowDays: cfg.WindowDays,
		RunBudget:  cfg.RunBudget,
		Workflow: workflow.Config{
			CalendarURL:   cfg.CalendarURL,
			ConfirmTarget: cfg.ConfirmTarget,
			MaxAttempts:   cfg.MaxAttempts,
			OpTimeout:     cfg.OpTimeout,
		},
	})

	return &Container{
		Config:   cfg,
		Logger:   log,
		Browser:  browser,
		History:  hist,
		Executor: uc,
	}, nil
}

func (c *Container) Close() {
	if c.Browser != nil {
		c.Browser.Close()
	}
	if c.History != nil {
		_ = c.History.Close()
	}
	if c.Logger != nil {
		_ = c.Logger.Close()
	}
}
