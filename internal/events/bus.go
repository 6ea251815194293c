package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/backend-pos/internal/store"
)

// EventStore defines the persistence operation required by the event bus.
type EventStore interface {
	InsertSaleEvent(ctx context.Context, ownerID, topic, aggregateID string, payload []byte) (store.SaleEvent, error)
}

// Publisher pushes a persisted event onto the owner's live channel.
type Publisher interface {
	Publish(ctx context.Context, event store.SaleEvent) error
}

// Notifier reacts to emitted events (e.g. notification fan-out, metrics).
type Notifier interface {
	Notify(ctx context.Context, event store.SaleEvent) error
}

// Bus persists domain events, publishes them to the owner channel, and fans
// them out to local handlers. Persistence failure aborts the emit; publish and
// notifier failures are joined so the caller can log without losing the event.
type Bus struct {
	Store     EventStore
	Publisher Publisher
	Notifiers []Notifier
}

// Emit records the event and dispatches it to all configured handlers.
func (b *Bus) Emit(ctx context.Context, ownerID, topic, aggregateID string, payload any) (store.SaleEvent, error) {
	if b == nil || b.Store == nil {
		return store.SaleEvent{}, errors.New("events: store not configured")
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return store.SaleEvent{}, errors.New("events: topic is required")
	}
	if strings.TrimSpace(ownerID) == "" {
		return store.SaleEvent{}, errors.New("events: owner id is required")
	}
	if strings.TrimSpace(aggregateID) == "" {
		return store.SaleEvent{}, errors.New("events: aggregate id is required")
	}
	encoded, err := encodePayload(payload)
	if err != nil {
		return store.SaleEvent{}, fmt.Errorf("events: encode payload: %w", err)
	}
	event, err := b.Store.InsertSaleEvent(ctx, ownerID, topic, aggregateID, encoded)
	if err != nil {
		return store.SaleEvent{}, fmt.Errorf("events: persist event: %w", err)
	}
	var joined error
	if b.Publisher != nil {
		if pubErr := b.Publisher.Publish(ctx, event); pubErr != nil {
			joined = errors.Join(joined, fmt.Errorf("events: publish: %w", pubErr))
		}
	}
	for _, notifier := range b.Notifiers {
		if notifier == nil {
			continue
		}
		if notifyErr := notifier.Notify(ctx, event); notifyErr != nil {
			joined = errors.Join(joined, fmt.Errorf("events: notifier: %w", notifyErr))
		}
	}
	return event, joined
}

// EmitProductChanged is a convenience for catalog writes; the payload carries
// only the product id since feeds re-fetch whatever they need.
func (b *Bus) EmitProductChanged(ctx context.Context, ownerID, productID string) error {
	_, err := b.Emit(ctx, ownerID, TopicProductChanged, productID, map[string]string{"productId": productID})
	return err
}

func encodePayload(payload any) ([]byte, error) {
	if payload == nil {
		return []byte("{}"), nil
	}
	switch v := payload.(type) {
	case []byte:
		if len(v) == 0 {
			return []byte("{}"), nil
		}
		if !json.Valid(v) {
			return nil, errors.New("payload is not valid json")
		}
		return append([]byte(nil), v...), nil
	case json.RawMessage:
		if len(v) == 0 {
			return []byte("{}"), nil
		}
		if !json.Valid(v) {
			return nil, errors.New("payload is not valid json")
		}
		return append([]byte(nil), v...), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return data, nil
	}
}
