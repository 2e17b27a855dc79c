package sqlite

import "fmt"

// Error is the single failure kind reported by this package. It carries
// the engine's own diagnostic text and, when a statement was involved,
// the SQL that failed. Every fallible engine call funnels through it;
// nothing is retried or recovered at this layer.
type Error struct {
	// Message is the engine's diagnostic text, uninterpreted.
	Message string

	// SQL is the originating statement text, when one was involved.
	SQL string

	cause error
}

func newError(err error, sql string) *Error {
	return &Error{Message: err.Error(), SQL: sql, cause: err}
}

func errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.SQL != "" {
		return fmt.Sprintf("sqlite: %q failed: %s", e.SQL, e.Message)
	}
	return "sqlite: " + e.Message
}

// Unwrap returns the underlying driver error, if any, so callers can
// reach driver-specific error codes with errors.As.
func (e *Error) Unwrap() error { return e.cause }

// withSQL attaches statement context to an Error that was produced
// below the statement layer.
func withSQL(err error, sql string) error {
	if e, ok := err.(*Error); ok && e.SQL == "" {
		e.SQL = sql
	}
	return err
}
