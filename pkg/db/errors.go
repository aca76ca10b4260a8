package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const checkViolation = "23514"

// IsCheckViolation reports whether err is a CHECK constraint failure. When
// constraintName is set, only that constraint matches. Postgres errors are
// matched by SQLSTATE; sqlite only exposes the message.
func IsCheckViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == checkViolation && (constraintName == "" || pgxErr.ConstraintName == constraintName)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == checkViolation && (constraintName == "" || pqErr.Constraint == constraintName)
	}

	msg := err.Error()
	if !strings.Contains(msg, "CHECK constraint failed") {
		return false
	}
	return constraintName == "" || strings.Contains(msg, constraintName)
}
