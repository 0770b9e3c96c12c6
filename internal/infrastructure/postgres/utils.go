package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation 23505: otra transacción insertó la misma clave.
func isUniqueViolation(err error) bool {
	return pgCode(err) == "23505"
}

// isLockTimeout 55P03: venció lock_timeout esperando un FOR UPDATE.
func isLockTimeout(err error) bool {
	return pgCode(err) == "55P03"
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
