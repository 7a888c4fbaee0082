// Package procerr defines the error type returned across the extension
// runtime. Every error carries a status the host uses to classify failures.
package procerr

import (
	"errors"
	"fmt"
)

// Status classifies an Error.
type Status string

const (
	RegistrationFailed Status = "Procedure.ProcedureRegistrationFailed"
	CallFailed         Status = "Procedure.ProcedureCallFailed"
	NotFound           Status = "Procedure.ProcedureNotFound"
	TypeError          Status = "Statement.TypeError"
	ArchiveCorrupted   Status = "Procedure.ArchiveCorrupted"
)

// Error is a classified error with an optional cause and any errors that were
// suppressed while unwinding it.
type Error struct {
	Status     Status
	msg        string
	cause      error
	suppressed []error
}

// New returns an Error with a formatted message.
func New(status Status, format string, args ...any) *Error {
	return &Error{Status: status, msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error with a formatted message and cause. The cause is
// reachable through errors.Unwrap but is not part of the message.
func Wrap(status Status, cause error, format string, args ...any) *Error {
	return &Error{Status: status, msg: fmt.Sprintf(format, args...), cause: cause}
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// AddSuppressed records an error that occurred while handling e.
func (e *Error) AddSuppressed(err error) {
	if err != nil {
		e.suppressed = append(e.suppressed, err)
	}
}

// Suppressed returns the suppressed errors in the order they were added.
func (e *Error) Suppressed() []error {
	out := make([]error, len(e.suppressed))
	copy(out, e.suppressed)
	return out
}

// StatusOf reports the status of the first Error in err's chain.
func StatusOf(err error) (Status, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Status, true
	}
	return "", false
}
