package types

import (
	"errors"
	"fmt"
)

var (
	ErrRequestNotFound = errors.New("request not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrAccountNotFound = errors.New("account not found")
)

// UpdateFailureKind classifies why a request update was rejected. Each kind
// maps to a distinct user-facing message; none are retried automatically.
type UpdateFailureKind string

const (
	FailureNotFound      UpdateFailureKind = "not_found"
	FailureForbidden     UpdateFailureKind = "forbidden"
	FailureProofRequired UpdateFailureKind = "proof_required"
	FailureInvalidStatus UpdateFailureKind = "invalid_status"
	FailureStorage       UpdateFailureKind = "storage_error"
	FailureUnexpected    UpdateFailureKind = "unexpected"
)

// UpdateError is the typed failure surfaced by the update orchestrator and the
// assignment engine.
type UpdateError struct {
	Kind UpdateFailureKind
	Err  error
}

func (e *UpdateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *UpdateError) Unwrap() error {
	return e.Err
}

func NewUpdateError(kind UpdateFailureKind, err error) *UpdateError {
	return &UpdateError{Kind: kind, Err: err}
}

// FailureKindOf extracts the failure kind, defaulting to unexpected.
func FailureKindOf(err error) UpdateFailureKind {
	var ue *UpdateError
	if errors.As(err, &ue) {
		return ue.Kind
	}
	if errors.Is(err, ErrRequestNotFound) {
		return FailureNotFound
	}
	return FailureUnexpected
}
