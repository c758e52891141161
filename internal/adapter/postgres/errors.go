package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/leobook/canondict/internal/domain"
)

const (
	pgUndefinedColumn = "42703"
	pgUndefinedTable  = "42P01"
)

// `column "foo" of relation "entities" does not exist` or
// `column "foo" does not exist`
var undefinedColumnRe = regexp.MustCompile(`column "([^"]+)"`)

// MapError converts pgx/pgconn errors into domain errors.
func MapError(err error, entity, id string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUndefinedColumn, pgUndefinedTable:
			return fmt.Errorf("%s %s: %w: %s", entity, id, domain.ErrSchemaMismatch, pgErr.Message)
		}
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}

// UndefinedColumn reports whether err is an undefined-column error and, if
// so, which column the remote schema is missing.
func UndefinedColumn(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUndefinedColumn {
		return "", false
	}
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName, true
	}
	if m := undefinedColumnRe.FindStringSubmatch(pgErr.Message); m != nil {
		return m[1], true
	}
	return "", true
}
