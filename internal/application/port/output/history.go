package output

import (
	"context"
	"time"

	"ride-agent/internal/domain/entity"
)

// RunRecord is one completed workflow run as stored in history.
type RunRecord struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	Outcome     entity.OutcomeKind
	RideTitle   string
	RideDate    string
	Attempts    int
	LastError   string
	ArtifactRef string
}

// RunHistoryPort persists run outcomes for later diagnosis. It is a sink:
// write failures are logged by callers, never fatal.
type RunHistoryPort interface {
	Save(ctx context.Context, rec RunRecord) error
	Recent(ctx context.Context, limit int) ([]RunRecord, error)
	Close() error
}
