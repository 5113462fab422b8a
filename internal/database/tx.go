// internal/database/tx.go
package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InTx runs fn against a transaction on pool, committing when fn succeeds.
func InTx(ctx context.Context, pool *pgxpool.Pool, fn func(q Querier) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // Rollback is a no-op if the transaction is already committed.

	if err := fn(New(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
