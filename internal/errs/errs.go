// Package errs defines the error taxonomy shared by the dashboard core.
// Operator-facing handlers collapse these into a single notification
// message; the types exist so callers can distinguish transient failures
// from permanent ones and react (retry, surface, or ignore).
package errs

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
)

// ValidationError reports a malformed submission. The store was never
// asked to write anything.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// Validation builds a ValidationError from a format string.
func Validation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ConflictError reports a write the store rejected, e.g. a referential
// violation or a duplicate primary key.
type ConflictError struct {
	Op  string
	Err error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict during %s: %v", e.Op, e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// TransientIOError reports an unavailable store or network. Safe to retry.
type TransientIOError struct {
	Op  string
	Err error
}

func (e *TransientIOError) Error() string {
	return fmt.Sprintf("transient failure during %s: %v", e.Op, e.Err)
}

func (e *TransientIOError) Unwrap() error { return e.Err }

// Store classifies a failed store operation. Connectivity failures
// (network errors, dead driver connections, timeouts) are transient and
// safe to retry; everything else the store rejected is a conflict.
func Store(op string, err error) error {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, context.DeadlineExceeded):
		return &TransientIOError{Op: op, Err: err}
	}
	return &ConflictError{Op: op, Err: err}
}

// AuditWriteSkipped is non-fatal: the badge download proceeded but no
// audit row was written, either because the IP lookup failed or because
// the append itself did.
type AuditWriteSkipped struct {
	Err error
}

func (e *AuditWriteSkipped) Error() string {
	return fmt.Sprintf("audit write skipped: %v", e.Err)
}

func (e *AuditWriteSkipped) Unwrap() error { return e.Err }
