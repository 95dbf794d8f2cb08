package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"recycle-backend/internal/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the part of pgxpool.Pool used by repositories
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// wrapError turns driver errors into application error kinds
func wrapError(err error, op, entity string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NotFound("%s", entity)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperror.Conflict("%s already exists", entity)
		case pgForeignKeyViolation:
			return apperror.Invalid("%s references a missing record", entity)
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a substring pattern for ILIKE with wildcards in s escaped
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
