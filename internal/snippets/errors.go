package snippets

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

func IsUniqueViolationID(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != "23505" { // unique_violation
		return false
	}

	if pgErr.ConstraintName == "snippets_pkey" {
		return true
	}

	if pgErr.ColumnName == "id" {
		return true
	}

	return false
}
