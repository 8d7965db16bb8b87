package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const sqlStateUniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique constraint violation.
// Errors that lost their *pgconn.PgError (mocks, wrapped strings) are matched
// on the SQLSTATE in the message.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateUniqueViolation
	}

	return strings.Contains(err.Error(), "SQLSTATE "+sqlStateUniqueViolation)
}
