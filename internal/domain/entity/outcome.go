package entity

import "time"

type OutcomeKind string

const (
	OutcomeRegistered        OutcomeKind = "registered"
	OutcomeAlreadyRegistered OutcomeKind = "already_registered_no_action"
	OutcomeNoMatchFound      OutcomeKind = "no_match_found"
	OutcomeFailed            OutcomeKind = "failed"
)

// RegistrationOutcome is the single terminal result of one workflow run.
type RegistrationOutcome struct {
	Kind     OutcomeKind
	Ride     *RideListing // set for Registered
	Reason   string       // set for Failed
	Attempts AttemptLog
}

// Success reports whether the caller should map the run to a zero exit
// status. NoMatchFound and AlreadyRegisteredNoAction are normal results,
// not failures.
func (o RegistrationOutcome) Success() bool {
	return o.Kind != OutcomeFailed
}

func Registered(ride RideListing, attempts AttemptLog) RegistrationOutcome {
	return RegistrationOutcome{Kind: OutcomeRegistered, Ride: &ride, Attempts: attempts}
}

func AlreadyRegistered() RegistrationOutcome {
	return RegistrationOutcome{Kind: OutcomeAlreadyRegistered}
}

func NoMatchFound() RegistrationOutcome {
	return RegistrationOutcome{Kind: OutcomeNoMatchFound}
}

func Failed(reason string, attempts AttemptLog) RegistrationOutcome {
	return RegistrationOutcome{Kind: OutcomeFailed, Reason: reason, Attempts: attempts}
}

// AttemptRecord is the diagnostic trail of a single registration attempt.
// Never mutated after creation.
type AttemptRecord struct {
	Number      int
	Timestamp   time.Time
	SnapshotRef string // screenshot or page artifact, may be empty
	Err         string // empty on success
}

// AttemptLog is append-only; its length never exceeds the retry ceiling.
type AttemptLog []AttemptRecord

func (l AttemptLog) Last() (AttemptRecord, bool) {
	if len(l) == 0 {
		return AttemptRecord{}, false
	}
	return l[len(l)-1], true
}
