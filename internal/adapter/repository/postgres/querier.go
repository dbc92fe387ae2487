package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/kakeibo/internal/usecase"
)

// PostgreSQL error codes mapped to domain errors.
const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
)

// querier is the subset of pgxpool.Pool and pgx.Tx the repositories use.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// conn returns the transaction's connection when tx is a postgres Tx and
// the pool otherwise.
func conn(db querier, tx usecase.Tx) querier {
	if t, ok := tx.(*Tx); ok && t != nil {
		return t.tx
	}
	return db
}

// mapError converts constraint violations into domain errors. conflict and
// missing may be nil to leave the matching violation untouched.
func mapError(err error, conflict, missing error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case pgErr.Code == pgErrUniqueViolation && conflict != nil:
		return conflict
	case pgErr.Code == pgErrForeignKeyViolation && missing != nil:
		return missing
	}
	return err
}

// mustAffect returns notFound when a write matched no rows.
func mustAffect(tag pgconn.CommandTag, err error, notFound error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
