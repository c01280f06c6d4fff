package postgres

import (
	"database/sql"

	crerr "github.com/cockroachdb/errors"
	"github.com/lib/pq"
)

const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"

	classConnectionException = "08"
)

func isNotFound(err error) bool {
	return crerr.Is(err, sql.ErrNoRows)
}

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if crerr.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pqCode(err) == codeUniqueViolation
}

// isRetryable reports errors caused by a concurrent transaction. Unique
// violations count because two writers can race for the same week or for
// the single active slot.
func isRetryable(err error) bool {
	switch pqCode(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeUniqueViolation:
		return true
	default:
		return false
	}
}
