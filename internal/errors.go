package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain failure so the boundary layer can map it to a
// transport status without inspecting message text.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuthorization
	KindInvalidState
	KindExternal
)

type DomainError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func NewValidationError(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func NewAuthorizationError(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindAuthorization, Msg: fmt.Sprintf(format, args...)}
}

func NewInvalidStateError(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindInvalidState, Msg: fmt.Sprintf(format, args...)}
}

// NewExternalError wraps a collaborator failure (weather provider, advisory
// ranker). The cause is kept for logs; callers see only Msg.
func NewExternalError(msg string, err error) *DomainError {
	return &DomainError{Kind: KindExternal, Msg: msg, Err: err}
}

// NewResourceConflictError names the contended resource in user-facing text.
func NewResourceConflictError(kind ResourceKind) *DomainError {
	var who string
	switch kind {
	case ResourceInstructor:
		who = "Instructor"
	case ResourceAircraft:
		who = "Aircraft"
	case ResourceStudent:
		who = "Student"
	default:
		who = "Resource"
	}
	return NewConflictError("%s is not available at this time", who)
}

// KindOf walks the wrap chain and returns the first DomainError's kind, or
// KindInternal when the failure is not a classified domain condition.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
