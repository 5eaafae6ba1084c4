package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/companydb-io/companydb/pkg/apperrors"
)

// uniqueViolation is the Postgres error code for duplicate key violations.
const uniqueViolation = "23505"

// asConflict maps a unique constraint violation to ErrConflict so callers can
// distinguish a dedup bug from an infrastructure failure. Other errors pass
// through unchanged.
func asConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperrors.ErrConflict
	}
	return err
}
