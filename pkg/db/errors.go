package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// unique_violation in the Postgres error code table.
const pgCodeUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique-constraint violation from
// either supported driver. Postgres errors are matched on the SQLSTATE code;
// sqlite (used in tests) only exposes the message text.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgCodeUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
