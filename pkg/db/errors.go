package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint violation.
// Against Postgres the pgconn error code and constraint name are matched
// directly. sqlite reports the violated columns instead of the constraint
// name ("UNIQUE constraint failed: stores.slug"), so callers that match a
// specific constraint also pass the table.column text sqlite emits.
func IsUniqueViolation(err error, constraintName string, sqliteColumns ...string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return false
		}
		return constraintName == "" || pgErr.ConstraintName == constraintName
	}

	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") &&
		!strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	if constraintName == "" {
		return true
	}
	if strings.Contains(msg, constraintName) {
		return true
	}
	for _, column := range sqliteColumns {
		if column != "" && strings.Contains(msg, column) {
			return true
		}
	}
	return false
}
