package httperr

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
	pgLockNotAvailable   = "55P03"
	pgQueryCanceled      = "57014"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsExclusionConflict reports a violated range-exclusion constraint.
func IsExclusionConflict(err error) bool {
	return pgCode(err) == pgExclusionViolation
}

func IsUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, gorm.ErrRecordNotFound)
}

// FromDB translates a driver error into the taxonomy. notFoundCode is used
// when the query matched no row.
func FromDB(err error, notFoundCode string) error {
	if err == nil {
		return nil
	}

	var be *BusinessError
	if errors.As(err, &be) {
		return err
	}

	switch {
	case IsNoRows(err):
		return NotFound(notFoundCode)
	case IsExclusionConflict(err), IsUniqueViolation(err):
		return &BusinessError{Kind: KindConflict, Code: CodeConflict, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &BusinessError{Kind: KindTimeout, Code: CodeTimeout, Err: err}
	}

	switch pgCode(err) {
	case pgLockNotAvailable, pgQueryCanceled:
		return &BusinessError{Kind: KindTimeout, Code: CodeTimeout, Err: err}
	}

	return Storage(err)
}
