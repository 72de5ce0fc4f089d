package workflow

import (
	"context"
	"time"

	"ride-agent/internal/domain/entity"
)

// AttemptRegistration performs a single registration attempt against the
// target: open its registration control, then confirm. Any browser failure
// surfaces as a RegistrationError.
func (w *Workflow) AttemptRegistration(ctx context.Context, target entity.RideListing) error {
	opCtx, cancel := context.WithTimeout(ctx, w.cfg.OpTimeout)
	defer cancel()

	control := target.Selector
	if control == "" {
		control = target.Title
	}

	if err := w.browser.FindAndClick(opCtx, control); err != nil {
		return err
	}
	if err := w.browser.FindAndClick(opCtx, w.cfg.ConfirmTarget); err != nil {
		return err
	}
	return nil
}

// RunWithRetry calls AttemptRegistration up to the configured ceiling.
// Before each retry the page state is re-read rather than retried blind: a
// prior attempt may have gone through even though its confirmation failed,
// in which case the target shows as Registered and the run succeeds without
// spending another attempt. On exhaustion the full AttemptLog is preserved
// in the Failed outcome.
func (w *Workflow) RunWithRetry(ctx context.Context, target entity.RideListing) entity.RegistrationOutcome {
	var attempts entity.AttemptLog
	var lastErr error

	for number := 1; number <= w.cfg.MaxAttempts; number++ {
		if ctx.Err() != nil {
			break
		}

		if number > 1 {
			if refreshed, ok := w.refreshTarget(ctx, target); ok {
				if refreshed.Status == entity.StatusRegistered {
					w.logger.Info("Prior attempt already registered the ride",
						"phase", PhaseRegister,
						"ride", target.Title,
						"attempt", number-1,
					)
					return entity.Registered(refreshed, attempts)
				}
				// Selector may have changed after the page reloaded.
				target = refreshed
			}
		}

		rec := entity.AttemptRecord{Number: number, Timestamp: time.Now()}
		err := w.AttemptRegistration(ctx, target)
		if err == nil {
			attempts = append(attempts, rec)
			w.logger.Info("Registration confirmed",
				"phase", PhaseRegister,
				"ride", target.Title,
				"attempt", number,
			)
			return entity.Registered(target, attempts)
		}

		rec.Err = err.Error()
		rec.SnapshotRef = w.snapshot(ctx, "attempt_failed")
		attempts = append(attempts, rec)
		lastErr = err

		w.logger.Warn("Registration attempt failed",
			"phase", PhaseRegister,
			"ride", target.Title,
			"attempt", number,
			"kind", string(entity.RegistrationErrorKindOf(err)),
			"error", err.Error(),
			"url", w.browser.CurrentURL(),
			"artifact", rec.SnapshotRef,
		)
	}

	reason := "registration attempts exhausted"
	if lastErr != nil {
		reason = lastErr.Error()
	} else if err := ctx.Err(); err != nil {
		reason = "run wall-clock budget exhausted: " + err.Error()
	}

	w.logger.Error("Registration failed",
		"phase", PhaseRegister,
		"ride", target.Title,
		"attempts", len(attempts),
		"reason", reason,
	)
	return entity.Failed(reason, attempts)
}

// refreshTarget re-reads the calendar and locates the same listing by title
// and date. ok is false when the page could not be re-read or the listing
// vanished; the retry then proceeds against the stale snapshot.
func (w *Workflow) refreshTarget(ctx context.Context, target entity.RideListing) (entity.RideListing, bool) {
	opCtx, cancel := context.WithTimeout(ctx, w.cfg.OpTimeout)
	defer cancel()

	if err := w.browser.Navigate(opCtx, w.cfg.CalendarURL); err != nil {
		w.logger.Warn("Page re-read navigation failed", "phase", PhaseRegister, "error", err.Error())
		return entity.RideListing{}, false
	}

	listings, err := w.parseCurrentPage(opCtx)
	if err != nil {
		w.logger.Warn("Page re-read parse failed", "phase", PhaseRegister, "error", err.Error())
		return entity.RideListing{}, false
	}

	for _, l := range listings {
		if l.Title == target.Title && l.Date.Equal(target.Date) && sameClock(l.Time, target.Time) {
			return l, true
		}
	}
	return entity.RideListing{}, false
}

func sameClock(a, b *entity.ClockTime) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Minutes() == b.Minutes()
}
