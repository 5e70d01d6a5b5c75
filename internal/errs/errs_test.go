package errs_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"eventdesk/internal/errs"
)

func TestStoreClassifiesConnectivityAsTransient(t *testing.T) {
	netErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

	var transient *errs.TransientIOError
	assert.ErrorAs(t, errs.Store("create registration", netErr), &transient)
	assert.ErrorAs(t, errs.Store("load comment", driver.ErrBadConn), &transient)
	assert.ErrorAs(t, errs.Store("delete comment", context.DeadlineExceeded), &transient)

	// The original cause stays reachable through the wrapper
	assert.ErrorIs(t, errs.Store("create registration", netErr), netErr)
}

func TestStoreClassifiesRejectionsAsConflict(t *testing.T) {
	cause := errors.New("duplicate key value violates unique constraint")

	var conflict *errs.ConflictError
	err := errs.Store("create registration", cause)
	assert.ErrorAs(t, err, &conflict)
	assert.ErrorIs(t, err, cause)

	var transient *errs.TransientIOError
	assert.False(t, errors.As(err, &transient))
}
