package input

import (
	"context"

	"ride-agent/internal/domain/entity"
)

// WorkflowRunner drives one complete registration run: sign-in check,
// calendar read, matching and bounded-retry registration. Exactly one
// RegistrationOutcome is produced per call; err is non-nil only for
// WorkflowError-class failures.
type WorkflowRunner interface {
	Run(ctx context.Context, criterion entity.SearchCriterion) (entity.RegistrationOutcome, error)
}
