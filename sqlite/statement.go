package sqlite

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
)

// Statement is one compiled, parameterised query bound to its owning
// Conn's handle. It is reusable: Execute rebinds and restarts it, Fetch
// walks the result rows one at a time.
//
// A Statement must not outlive its Conn, and must be closed by the code
// that prepared it.
type Statement struct {
	stmt driver.Stmt
	sql  string

	// rows is the live cursor from the last Execute, if any. row is the
	// column buffer for the pending row; canFetch mirrors the outcome of
	// the last step (a row is ready), done latches engine completion.
	rows     driver.Rows
	row      []driver.Value
	canFetch bool
	done     bool
}

// SQL returns the statement's source text.
func (s *Statement) SQL() string { return s.sql }

// Execute resets the statement, binds args in positional order and
// advances the engine one step. Byte payloads are bound with the Copy
// policy. After a successful Execute the statement either has a first
// row ready or is already complete; Fetch distinguishes the two.
//
// The number of args must equal the statement's declared parameter
// count; a mismatch is a caller error, reported without touching the
// engine.
func (s *Statement) Execute(args ...any) error {
	return s.ExecutePolicy(Copy, args...)
}

// ExecutePolicy is Execute with an explicit payload lifetime policy.
// Borrow avoids cloning []byte parameters; the caller must keep those
// buffers stable until the next Execute or Close.
func (s *Statement) ExecutePolicy(policy BindPolicy, args ...any) error {
	if s == nil || s.stmt == nil {
		return errorf("statement is closed")
	}
	s.canFetch = false
	s.done = true
	if err := s.closeRows(); err != nil {
		return err
	}
	if want := s.stmt.NumInput(); want >= 0 && want != len(args) {
		return &Error{
			Message: fmt.Sprintf("statement declares %d parameters, got %d", want, len(args)),
			SQL:     s.sql,
		}
	}
	vals := make([]driver.Value, len(args))
	for i, arg := range args {
		v, err := bindArg(policy, arg)
		if err != nil {
			return withSQL(err, s.sql)
		}
		vals[i] = v
	}
	rows, err := s.stmt.Query(vals)
	if err != nil {
		return newError(err, s.sql)
	}
	s.rows = rows
	s.row = make([]driver.Value, len(rows.Columns()))
	s.done = false
	return s.step()
}

// Fetch reads the next row into outs, in positional order. It returns
// false with a nil error when no more rows are available, leaving outs
// untouched. outs may name a prefix of the statement's columns but
// never more.
//
// A statement that was never executed is stepped from its initial
// state, binding nothing.
func (s *Statement) Fetch(outs ...any) (bool, error) {
	if s == nil || s.stmt == nil {
		return false, errorf("statement is closed")
	}
	switch {
	case s.rows == nil:
		if err := s.Execute(); err != nil {
			return false, err
		}
	case s.canFetch:
		// Row already pending from Execute or a prior step.
	case s.done:
		return false, nil
	default:
		if err := s.step(); err != nil {
			return false, err
		}
	}
	if !s.canFetch {
		return false, nil
	}
	if len(outs) > len(s.row) {
		return false, &Error{
			Message: fmt.Sprintf("statement yields %d columns, fetch names %d", len(s.row), len(outs)),
			SQL:     s.sql,
		}
	}
	for i, out := range outs {
		if err := scanArg(out, s.row[i]); err != nil {
			return false, withSQL(err, s.sql)
		}
	}
	s.canFetch = false
	return true, nil
}

// step advances the engine one row. Completion is not an error; any
// other failure leaves the statement exhausted so a fresh Execute can
// retry.
func (s *Statement) step() error {
	err := s.rows.Next(s.row)
	switch {
	case err == nil:
		s.canFetch = true
	case errors.Is(err, io.EOF):
		s.canFetch = false
		s.done = true
	default:
		s.canFetch = false
		s.done = true
		return newError(err, s.sql)
	}
	return nil
}

// Close finalises the statement. It is idempotent and safe on a nil
// receiver, so deferred cleanup never double-releases the handle.
func (s *Statement) Close() error {
	if s == nil || s.stmt == nil {
		return nil
	}
	rowsErr := s.closeRows()
	err := s.stmt.Close()
	s.stmt = nil
	if err != nil {
		return newError(err, s.sql)
	}
	return rowsErr
}

func (s *Statement) closeRows() error {
	if s.rows == nil {
		return nil
	}
	err := s.rows.Close()
	s.rows = nil
	s.row = nil
	if err != nil {
		return newError(err, s.sql)
	}
	return nil
}
