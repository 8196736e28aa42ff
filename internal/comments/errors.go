package comments

import (
	"errors"

	"github.com/codeswap/codeswap_api/internal"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = internal.ErrNotFound

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, internal.ErrNotFound)
}
