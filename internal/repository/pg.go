package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	util "github.com/spec-kit/helpdesk-service/pkg/util"
)

const uniqueViolationCode = "23505"

// mapPgError normalizes pgx errors into the domain error taxonomy so that
// callers never depend on the storage driver.
func mapPgError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return util.NewNotFound(resource, nil)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return util.NewConflict(resource+" already exists", map[string]any{
			"constraint": pgErr.ConstraintName,
		})
	}
	return err
}
