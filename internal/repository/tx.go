package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dealroom/pkg/outbox"
)

// withTx runs fn in a transaction and appends evt to the outbox before commit.
func withTx(ctx context.Context, db *pgxpool.Pool, ob outbox.Inserter, evt *OutboxEvent, fn func(pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if evt != nil && ob != nil {
		if err := outbox.InsertEventInTx(ctx, tx, ob, evt.AggregateType, evt.AggregateID, evt.RoutingKey, evt.Payload); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
