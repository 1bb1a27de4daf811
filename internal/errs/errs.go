// Package errs defines the error taxonomy shared by the lifecycle engine.
//
// Components wrap failures in a kinded error so programmatic callers can
// branch on the failure class while conversational callers get the plain
// message. Expected absences (zero facts, zero deliverables) are NOT
// errors — only structural violations and I/O failures are.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error.
type Kind string

const (
	// NotFound: a project, knowledge ledger, phase, or deliverable key
	// does not exist. Fail fast — never fabricate defaults.
	NotFound Kind = "not_found"
	// Validation: malformed identifier or out-of-range value, rejected
	// before any I/O happens.
	Validation Kind = "validation_error"
	// UpstreamParse: an external collaborator returned unparseable
	// content. Callers degrade to an empty structure and continue.
	UpstreamParse Kind = "upstream_parse_error"
	// Persistence: I/O failure on save or load. Must propagate —
	// swallowing write failures produces silent data loss.
	Persistence Kind = "persistence_error"
)

// Error is a kinded engine error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a kinded error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or "" if err is not an engine error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsNotFound reports whether err is a NotFound engine error.
func IsNotFound(err error) bool { return KindOf(err) == NotFound }
