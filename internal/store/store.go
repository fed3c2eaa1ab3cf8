package store

import (
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
)

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// insufficient_privilege, surfaced when row-level policies reject a write.
const permissionDeniedCode = "42501"

// IsPermissionDenied reports whether the storage layer rejected the call for
// lack of privilege, so callers can surface it as a forbidden failure rather
// than a storage fault.
func IsPermissionDenied(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == permissionDeniedCode
}
