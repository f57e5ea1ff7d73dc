package errors

// Postgres helpers: classify pgx failures from the openIMIS records store

import (
	"context"
	stderrs "errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes that matter to read-only reporting queries
const (
	pgErrUndefinedTable            = "42P01"
	pgErrUndefinedColumn           = "42703"
	pgErrSyntaxError               = "42601"
	pgErrInvalidTextRepresentation = "22P02"
	pgErrDatetimeFieldOverflow     = "22008"
	pgErrQueryCanceled             = "57014"
	pgErrCannotConnectNow          = "57P03"
	pgErrAdminShutdown             = "57P01"
	pgErrSerializationFailure      = "40001"
	pgErrDeadlockDetected          = "40P01"
)

// ExtractPgError returns the PgError at the root of err, if any
func ExtractPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsSQLState reports whether err is a Postgres error with the given SQLSTATE
func IsSQLState(err error, code string) bool {
	pgErr, ok := ExtractPgError(err)
	return ok && pgErr.Code == code
}

// IsUndefinedObject reports whether a mapping file referenced a table or column that does not exist
func IsUndefinedObject(err error) bool {
	return IsSQLState(err, pgErrUndefinedTable) || IsSQLState(err, pgErrUndefinedColumn)
}

// DBErrorCode maps a Postgres error to an ErrorCode; !ok means err was not a PgError
func DBErrorCode(err error) (ErrorCode, bool) {
	pgErr, ok := ExtractPgError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}
	switch pgErr.Code {
	case pgErrUndefinedTable, pgErrUndefinedColumn, pgErrSyntaxError:
		// bad SQL fragment in a cube mapping
		return ErrorCodeValidation, true
	case pgErrInvalidTextRepresentation, pgErrDatetimeFieldOverflow:
		return ErrorCodeInvalidArgument, true
	case pgErrCannotConnectNow, pgErrAdminShutdown, pgErrQueryCanceled,
		pgErrSerializationFailure, pgErrDeadlockDetected:
		return ErrorCodeUnavailable, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps err with a mapped code; nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	if code, ok := DBErrorCode(err); ok {
		if pgErr, _ := ExtractPgError(err); pgErr.ColumnName != "" {
			return WithField(Wrap(err, code, msg), pgErr.ColumnName)
		}
		return Wrap(err, code, msg)
	}
	return Wrap(err, ErrorCodeDB, msg)
}

// FromPostgresf is the formatted variant of FromPostgres
func FromPostgresf(err error, format string, a ...any) error {
	return FromPostgres(err, fmt.Sprintf(format, a...))
}

// IsRetryable reports whether a record store error is transient.
// Local cancellation is never retryable
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	code, ok := DBErrorCode(err)
	return ok && code == ErrorCodeUnavailable
}
