package entity

import (
	"errors"
	"fmt"
)

type RegistrationErrorKind string

const (
	ErrUIElementNotFound   RegistrationErrorKind = "ui_element_not_found"
	ErrNetworkTimeout      RegistrationErrorKind = "network_timeout"
	ErrUnexpectedPageState RegistrationErrorKind = "unexpected_page_state"
)

// RegistrationError is a recoverable failure of a single registration
// attempt; the workflow retries these up to the configured ceiling.
type RegistrationError struct {
	Kind   RegistrationErrorKind
	Detail string
	Cause  error
}

func (e *RegistrationError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *RegistrationError) Unwrap() error {
	return e.Cause
}

func NewRegistrationError(kind RegistrationErrorKind, detail string, cause error) *RegistrationError {
	return &RegistrationError{Kind: kind, Detail: detail, Cause: cause}
}

// RegistrationErrorKindOf extracts the kind from an error chain, defaulting
// to UnexpectedPageState for errors the browser layer did not classify.
func RegistrationErrorKindOf(err error) RegistrationErrorKind {
	var re *RegistrationError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ErrUnexpectedPageState
}

type WorkflowErrorKind string

const (
	ErrSignInFailed       WorkflowErrorKind = "sign_in_failed"
	ErrCalendarUnreadable WorkflowErrorKind = "calendar_unreadable"
	ErrBudgetExceeded     WorkflowErrorKind = "budget_exceeded"
)

// WorkflowError is a precondition or budget failure. The workflow never
// continues past one and never retries it within a run; blind sign-in
// retries risk account lockout.
type WorkflowError struct {
	Kind        WorkflowErrorKind
	Phase       string
	Detail      string
	ArtifactRef string
	Cause       error
}

func (e *WorkflowError) Error() string {
	msg := fmt.Sprintf("%s (phase %s)", e.Kind, e.Phase)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *WorkflowError) Unwrap() error {
	return e.Cause
}

func NewWorkflowError(kind WorkflowErrorKind, phase, detail string, cause error) *WorkflowError {
	return &WorkflowError{Kind: kind, Phase: phase, Detail: detail, Cause: cause}
}

func IsWorkflowError(err error, kind WorkflowErrorKind) bool {
	var we *WorkflowError
	return errors.As(err, &we) && we.Kind == kind
}
