package events

import (
	"context"
	"encoding/json"
	"errors"

	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-pos/internal/store"
)

// Envelope is the wire shape delivered on the owner channel. Consumers treat
// it as a hint and re-fetch the full record by AggregateID.
type Envelope struct {
	EventID     string `json:"eventId"`
	Topic       string `json:"topic"`
	AggregateID string `json:"aggregateId"`
}

// RedisPublisher implements Publisher over Redis Pub/Sub.
type RedisPublisher struct {
	R *redis.Client
}

// Publish serialises the envelope and pushes it on the owner's channel.
func (p RedisPublisher) Publish(ctx context.Context, event store.SaleEvent) error {
	if p.R == nil {
		return errors.New("events: redis client not configured")
	}
	data, err := json.Marshal(Envelope{
		EventID:     event.ID,
		Topic:       event.Topic,
		AggregateID: event.AggregateID,
	})
	if err != nil {
		return err
	}
	return p.R.Publish(ctx, ChannelFor(event.OwnerID), data).Err()
}
