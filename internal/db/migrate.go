package db

import (
	"context"
	_ "embed"
)

//go:embed schema.sql
var schema string

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, q Querier) error {
	_, err := q.Exec(ctx, schema)
	return err
}
