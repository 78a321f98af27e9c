// Package repository implements data access on Postgres via pgx.
//
// Tenant isolation is structural: every method that touches a
// tenant-owned table takes the tenant id as an explicit argument and
// every statement carries a tenant_id predicate. A row that exists
// under another tenant is reported as apperr.ErrNotFound, identical
// to a row that does not exist at all.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
