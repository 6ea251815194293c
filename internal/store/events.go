package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// InsertSaleEvent persists a domain event row and returns it with the
// generated identifier and timestamp.
func (s *Store) InsertSaleEvent(ctx context.Context, ownerID, topic, aggregateID string, payload []byte) (SaleEvent, error) {
	oid, err := ToUUID(ownerID)
	if err != nil {
		return SaleEvent{}, err
	}
	aid, err := ToUUID(aggregateID)
	if err != nil {
		return SaleEvent{}, err
	}
	var (
		id         pgtype.UUID
		occurredAt pgtype.Timestamptz
		event      SaleEvent
	)
	err = s.Pool.QueryRow(ctx, `
		INSERT INTO sale_events (owner_id, topic, aggregate_id, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, occurred_at`, oid, topic, aid, payload).Scan(&id, &occurredAt)
	if err != nil {
		return SaleEvent{}, err
	}
	event.ID = UUIDString(id)
	event.OwnerID = ownerID
	event.Topic = topic
	event.AggregateID = aggregateID
	event.Payload = payload
	event.OccurredAt = timeFromPG(occurredAt)
	return event, nil
}
