package workflow

import (
	"context"
	"fmt"
	"time"

	"ride-agent/internal/application/port/input"
	"ride-agent/internal/application/port/output"
	"ride-agent/internal/domain/entity"
)

// Phase names follow the run state machine: Init → SignedIn → CalendarRead →
// Matched → TargetSelected → Registering → terminal. A run never re-enters
// sign-in or calendar read.
const (
	PhaseSignIn       = "sign_in"
	PhaseCalendarRead = "calendar_read"
	PhaseMatch        = "match"
	PhaseRegister     = "register"
)

const (
	DefaultMaxAttempts = 3
	DefaultOpTimeout   = 20 * time.Second
)

// Session verifies the browser holds an authenticated club session.
type Session interface {
	EnsureSignedIn(ctx context.Context) error
}

// CalendarParser turns a calendar page snapshot into ride listings.
type CalendarParser interface {
	Parse(html string) ([]entity.RideListing, error)
}

type Config struct {
	CalendarURL   string
	ConfirmTarget string // registration confirm control, selector or visible text
	MaxAttempts   int
	OpTimeout     time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.OpTimeout <= 0 {
		c.OpTimeout = DefaultOpTimeout
	}
	if c.ConfirmTarget == "" {
		c.ConfirmTarget = "Confirm"
	}
	return c
}

var _ input.WorkflowRunner = (*Workflow)(nil)

// Workflow is the deterministic registration decision procedure: one pass
// per scheduled invocation, exactly one RegistrationOutcome per run.
type Workflow struct {
	browser output.BrowserPort
	session Session
	parser  CalendarParser
	logger  output.LoggerPort
	cfg     Config
}

func New(browser output.BrowserPort, session Session, parser CalendarParser, logger output.LoggerPort, cfg Config) *Workflow {
	return &Workflow{
		browser: browser,
		session: session,
		parser:  parser,
		logger:  logger,
		cfg:     cfg.withDefaults(),
	}
}

// Run sequences sign-in check → calendar read → match → select →
// registration with bounded retry. The context carries the outer wall-clock
// budget; expiry is fatal, not retried. err is non-nil only for
// WorkflowError-class failures, and the returned outcome is still the single
// terminal classification of the run.
func (w *Workflow) Run(ctx context.Context, criterion entity.SearchCriterion) (entity.RegistrationOutcome, error) {
	if err := w.signIn(ctx); err != nil {
		return entity.Failed(err.Error(), nil), err
	}

	listings, err := w.readCalendar(ctx)
	if err != nil {
		return entity.Failed(err.Error(), nil), err
	}

	matches := FindMatches(listings, criterion)
	w.logger.Info("Calendar matched",
		"phase", PhaseMatch,
		"listings", len(listings),
		"matches", len(matches),
		"pattern", criterion.Pattern,
	)

	target := SelectTarget(matches)
	if target == nil {
		if len(matches) == 0 {
			w.logger.Info("No ride matched the criterion", "phase", PhaseMatch)
			return entity.NoMatchFound(), nil
		}
		w.logger.Info("All matched rides already registered or full",
			"phase", PhaseMatch,
			"matches", len(matches),
		)
		return entity.AlreadyRegistered(), nil
	}

	w.logger.Info("Target selected",
		"phase", PhaseRegister,
		"ride", target.Title,
		"date", target.Date.Format("2006-01-02"),
	)

	outcome := w.RunWithRetry(ctx, *target)

	if ctx.Err() != nil && outcome.Kind == entity.OutcomeFailed {
		werr := entity.NewWorkflowError(entity.ErrBudgetExceeded, PhaseRegister, "run wall-clock budget exhausted", ctx.Err())
		w.logger.Error("Run budget exceeded", "phase", PhaseRegister, "error", werr.Error())
		return outcome, werr
	}
	return outcome, nil
}

// signIn delegates to the session service. Failures are not retried here:
// repeated blind sign-in attempts risk an account lockout.
func (w *Workflow) signIn(ctx context.Context) error {
	if err := w.checkBudget(ctx, PhaseSignIn); err != nil {
		return err
	}

	opCtx, cancel := context.WithTimeout(ctx, w.cfg.OpTimeout)
	defer cancel()

	if err := w.session.EnsureSignedIn(opCtx); err != nil {
		w.logger.Error("Sign-in failed", "phase", PhaseSignIn, "error", err.Error())
		if entity.IsWorkflowError(err, entity.ErrSignInFailed) {
			return err
		}
		return entity.NewWorkflowError(entity.ErrSignInFailed, PhaseSignIn, err.Error(), err)
	}

	w.logger.Info("Signed in", "phase", PhaseSignIn)
	return nil
}

func (w *Workflow) readCalendar(ctx context.Context) ([]entity.RideListing, error) {
	if err := w.checkBudget(ctx, PhaseCalendarRead); err != nil {
		return nil, err
	}

	opCtx, cancel := context.WithTimeout(ctx, w.cfg.OpTimeout)
	defer cancel()

	if err := w.browser.Navigate(opCtx, w.cfg.CalendarURL); err != nil {
		w.logger.Error("Calendar navigation failed", "phase", PhaseCalendarRead, "error", err.Error())
		return nil, entity.NewWorkflowError(entity.ErrCalendarUnreadable, PhaseCalendarRead, "navigate: "+err.Error(), err)
	}

	listings, err := w.parseCurrentPage(opCtx)
	if err != nil {
		ref := w.snapshot(ctx, "calendar_unreadable")
		w.logger.Error("Calendar page unreadable",
			"phase", PhaseCalendarRead,
			"error", err.Error(),
			"artifact", ref,
		)
		werr := entity.NewWorkflowError(entity.ErrCalendarUnreadable, PhaseCalendarRead, err.Error(), err)
		werr.ArtifactRef = ref
		return nil, werr
	}

	w.logger.Info("Calendar read", "phase", PhaseCalendarRead, "listings", len(listings))
	return listings, nil
}

func (w *Workflow) parseCurrentPage(ctx context.Context) ([]entity.RideListing, error) {
	page, err := w.browser.ReadPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	listings, err := w.parser.Parse(page.HTML)
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}
	return listings, nil
}

// checkBudget converts an expired run context into a fatal BudgetExceeded
// before a new phase starts.
func (w *Workflow) checkBudget(ctx context.Context, phase string) error {
	if err := ctx.Err(); err != nil {
		werr := entity.NewWorkflowError(entity.ErrBudgetExceeded, phase, "run wall-clock budget exhausted", err)
		w.logger.Error("Run budget exceeded", "phase", phase, "error", werr.Error())
		return werr
	}
	return nil
}

func (w *Workflow) snapshot(ctx context.Context, label string) string {
	ref, err := w.browser.Screenshot(ctx, label)
	if err != nil {
		w.logger.Warn("Screenshot failed", "label", label, "error", err.Error())
		return ""
	}
	return ref
}
