package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/devactivity/dasar-actix-web/apperror"
)

// PostgreSQL error codes the services react to.
const (
	UniqueViolation = "23505"
	CheckViolation  = "23514"
)

// IsNoRows reports whether err is (or wraps) pgx.ErrNoRows.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// ConstraintViolation returns the constraint name when err is a PostgreSQL error with the
// given code, or "" and false otherwise.
func ConstraintViolation(err error, code string) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// WrapError keeps an *apperror.AppError already present in err (e.g. an acquire timeout
// raised by DB.Acquire) and wraps anything else as a DatabaseError with message.
func WrapError(message string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.NewDatabaseError(message, err)
}
