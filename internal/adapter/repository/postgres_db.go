package repository

import (
	"context"
	_ "embed"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// DB is the subset of *pgxpool.Pool (and pgx.Tx) the repositories use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

//go:embed postgres_schema.sql
var postgresSchema string

// ListingsChannel is the NOTIFY channel the listings trigger publishes on.
const ListingsChannel = "listings_changes"

// MigratePostgres creates the tables and the change-notification trigger.
// The statements are idempotent.
func MigratePostgres(ctx context.Context, db DB) error {
	_, err := db.Exec(ctx, postgresSchema)
	return err
}

// escapeLike makes every character of term match literally inside an
// ILIKE pattern using '\' as the escape character.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(term string) string {
	return "%" + escapeLike(term) + "%"
}
