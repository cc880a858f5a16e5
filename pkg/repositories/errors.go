package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes for rows that collide with an occupied slot.
// Unique indexes report 23505; the deferrable draft constraint is an
// exclusion constraint and reports 23P01.
const (
	uniqueViolation    = "23505"
	exclusionViolation = "23P01"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation || pgErr.Code == exclusionViolation
}
