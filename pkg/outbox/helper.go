package outbox

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
)

// Inserter writes an event inside a caller-owned transaction.
type Inserter interface {
	InsertEvent(ctx context.Context, tx pgx.Tx, event *Event) error
}

// InsertEventInTx marshals payload and inserts a pending event in tx.
func InsertEventInTx(
	ctx context.Context,
	tx pgx.Tx,
	repo Inserter,
	aggregateType string,
	aggregateID string,
	routingKey string,
	payload interface{},
) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	event := &Event{
		AggregateType: aggregateType,
		RoutingKey:    routingKey,
		Payload:       payloadJSON,
		Status:        StatusPending,
	}
	if aggregateID != "" {
		event.AggregateID = &aggregateID
	}

	return repo.InsertEvent(ctx, tx, event)
}
