package store

// transient.go classifies store errors as transient (worth retrying) or
// permanent.
//
// Classification order:
//  1. Context errors: a deadline is transient, cancellation is shutdown.
//  2. PostgreSQL errors by SQLSTATE: class 08 (connection exceptions) and
//     57P01 (admin shutdown) are transient; every other SQL error is a real
//     problem with the statement or the data and retrying cannot fix it.
//  3. Network timeouts via net.Error.
//  4. A lowercase substring table for driver and OS level failures that
//     arrive as plain errors. Matched with strings.Contains, first match
//     wins.

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// sqlstateConnectionClass is the two-character prefix of PostgreSQL
// connection-exception codes (08000, 08003, 08006, ...).
const sqlstateConnectionClass = "08"

// sqlstateAdminShutdown is raised when the server is shutting down or a
// backend is terminated; a fresh connection usually succeeds once the
// server is back.
const sqlstateAdminShutdown = "57P01"

// transientPatterns are substrings of error text that indicate a
// connectivity problem when no structured error type is available.
var transientPatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"i/o timeout",
	"dial tcp",
	"conn closed",
	"unexpected eof",
}

// IsTransient reports whether err is a transient connectivity failure that
// a retry with backoff can reasonably recover from.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false // shutdown in progress, do not keep the file alive
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, sqlstateConnectionClass) {
			return true
		}
		return pgErr.Code == sqlstateAdminShutdown
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
