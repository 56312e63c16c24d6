package utils

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsPGUniqueViolation reports whether error is a PostgreSQL unique constraint
// violation (code 23505). If constraint is non-empty, the violated constraint
// name must match too.
func IsPGUniqueViolation(err error, constraint string) bool {
	var pge *pgconn.PgError
	if !errors.As(err, &pge) {
		return false
	}
	if pge.Code != "23505" {
		return false
	}
	return constraint == "" || pge.ConstraintName == constraint
}
