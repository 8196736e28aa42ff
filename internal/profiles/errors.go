package profiles

import (
	"errors"

	"github.com/codeswap/codeswap_api/internal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = internal.ErrNotFound

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, internal.ErrNotFound)
}

func IsUniqueViolationUsername(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	// 23505 = unique_violation
	if pgErr.Code != "23505" {
		return false
	}

	if pgErr.ConstraintName == "profiles_username_key" {
		return true
	}

	if pgErr.ColumnName == "username" {
		return true
	}

	return false
}
