package invoker

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/vk/graphproc/internal/procerr"
)

// PanicError carries a value extension code panicked with.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprint(e.Value)
}

func fromPanic(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &PanicError{Value: r, Stack: debug.Stack()}
}

// wrapFailure converts an extension failure into a call failure naming what
// was invoked. Errors that already are procerr.Error values pass unchanged.
func wrapFailure(err error, what string) error {
	var pe *procerr.Error
	if errors.As(err, &pe) {
		return err
	}
	return procerr.Wrap(procerr.CallFailed, err, "Failed to invoke %s: Caused by: %s", what, describe(rootCause(err)))
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func describe(err error) string {
	if msg := err.Error(); msg != "" {
		return fmt.Sprintf("%T: %s", err, msg)
	}
	return fmt.Sprintf("%T", err)
}

// conversionFailure wraps a value produced by extension code that could not
// be converted. The result always names what was invoked.
func conversionFailure(err error, what string) error {
	return procerr.Wrap(procerr.CallFailed, err, "Failed to invoke %s: Caused by: %s", what, describe(rootCause(err)))
}

// suppress returns primary with a secondary failure attached. primary may
// be an error value owned by extension code, so it is wrapped rather than
// modified.
func suppress(primary, secondary error) error {
	if secondary == nil {
		return primary
	}
	status, _ := procerr.StatusOf(primary)
	out := procerr.Wrap(status, primary, "%s", primary.Error())
	out.AddSuppressed(secondary)
	return out
}

func procedureName(name fmt.Stringer) string {
	return fmt.Sprintf("procedure `%s`", name)
}

func functionName(name fmt.Stringer) string {
	return fmt.Sprintf("function `%s`", name)
}
