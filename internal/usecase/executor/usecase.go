package executor

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"ride-agent/internal/application/port/output"
	"ride-agent/internal/domain/entity"
	"ride-agent/internal/usecase/workflow"
)

type Config struct {
	SearchText string
	ExactMatch bool
	WindowDays int
	RunBudget  time.Duration

	Workflow workflow.Config
}

// UseCase executes scheduled registration runs. Every run gets a fresh
// workflow wired to a run-scoped logger, an outer wall-clock budget, and an
// outcome row in history. No state survives between runs beyond the browser
// session and configuration.
type UseCase struct {
	browser output.BrowserPort
	session workflow.Session
	parser  workflow.CalendarParser
	history output.RunHistoryPort
	logger  output.LoggerPort
	cfg     Config
	now     func() time.Time
}

func New(
	browser output.BrowserPort,
	session workflow.Session,
	parser workflow.CalendarParser,
	history output.RunHistoryPort,
	logger output.LoggerPort,
	cfg Config,
) *UseCase {
	if cfg.RunBudget <= 0 {
		cfg.RunBudget = 10 * time.Minute
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 10
	}
	return &UseCase{
		browser: browser,
		session: session,
		parser:  parser,
		history: history,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Execute performs one complete run and returns its single outcome. The
// workflow error, when present, is already folded into the outcome; callers
// only need the outcome to derive an exit status.
func (uc *UseCase) Execute(ctx context.Context) entity.RegistrationOutcome {
	runID := uuid.NewString()
	log := uc.logger.WithField("run_id", runID)

	runCtx, cancel := context.WithTimeout(ctx, uc.cfg.RunBudget)
	defer cancel()

	criterion := entity.NewSearchCriterion(uc.cfg.SearchText, uc.now(), uc.cfg.WindowDays)
	criterion.ExactMatch = uc.cfg.ExactMatch

	log.Info("Run starting",
		"pattern", criterion.Pattern,
		"window_days", uc.cfg.WindowDays,
		"budget", uc.cfg.RunBudget.String(),
	)
	started := uc.now()

	wf := workflow.New(uc.browser, uc.session, uc.parser, log, uc.cfg.Workflow)
	outcome, err := wf.Run(runCtx, criterion)

	finished := uc.now()
	if err != nil {
		log.Error("Run failed", "outcome", string(outcome.Kind), "error", err.Error())
	} else {
		log.Info("Run finished", "outcome", string(outcome.Kind), "attempts", len(outcome.Attempts))
	}

	uc.record(ctx, log, runID, started, finished, outcome, err)
	return outcome
}

// record persists the run. History is a sink: failures are logged and
// otherwise ignored.
func (uc *UseCase) record(ctx context.Context, log output.LoggerPort, runID string, started, finished time.Time, outcome entity.RegistrationOutcome, runErr error) {
	if uc.history == nil {
		return
	}

	rec := output.RunRecord{
		ID:         runID,
		StartedAt:  started,
		FinishedAt: finished,
		Outcome:    outcome.Kind,
		Attempts:   len(outcome.Attempts),
	}
	if outcome.Ride != nil {
		rec.RideTitle = outcome.Ride.Title
		rec.RideDate = outcome.Ride.Date.Format("2006-01-02")
	}
	if outcome.Kind == entity.OutcomeFailed {
		rec.LastError = outcome.Reason
	}
	if last, ok := outcome.Attempts.Last(); ok {
		rec.ArtifactRef = last.SnapshotRef
	}
	if rec.ArtifactRef == "" && runErr != nil {
		var werr *entity.WorkflowError
		if errors.As(runErr, &werr) {
			rec.ArtifactRef = werr.ArtifactRef
		}
	}

	if err := uc.history.Save(ctx, rec); err != nil {
		log.Warn("History write failed", "error", err.Error())
	}
}
