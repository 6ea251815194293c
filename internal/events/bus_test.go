package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/store"
)

type stubStore struct {
	lastTopic   string
	lastPayload []byte
}

func (s *stubStore) InsertSaleEvent(_ context.Context, ownerID, topic, aggregateID string, payload []byte) (store.SaleEvent, error) {
	s.lastTopic = topic
	s.lastPayload = payload
	return store.SaleEvent{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Topic:       topic,
		AggregateID: aggregateID,
		Payload:     payload,
		OccurredAt:  time.Now(),
	}, nil
}

type capturePublisher struct {
	events []store.SaleEvent
}

func (c *capturePublisher) Publish(_ context.Context, event store.SaleEvent) error {
	c.events = append(c.events, event)
	return nil
}

type captureNotifier struct {
	events []store.SaleEvent
}

func (c *captureNotifier) Notify(_ context.Context, event store.SaleEvent) error {
	c.events = append(c.events, event)
	return nil
}

func TestEmitPersistsAndFansOut(t *testing.T) {
	st := &stubStore{}
	pub := &capturePublisher{}
	notifier := &captureNotifier{}
	bus := events.Bus{Store: st, Publisher: pub, Notifiers: []events.Notifier{notifier}}

	owner := uuid.NewString()
	sale := uuid.NewString()
	payload := map[string]any{"saleId": sale, "finalTotal": int64(2700)}

	event, err := bus.Emit(context.Background(), owner, events.TopicSaleCommitted, sale, payload)
	require.NoError(t, err)
	require.Equal(t, events.TopicSaleCommitted, st.lastTopic)
	require.Len(t, pub.events, 1)
	require.Len(t, notifier.events, 1)
	require.Equal(t, event.ID, pub.events[0].ID)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	require.Equal(t, sale, decoded["saleId"])
}

func TestEmitRequiresIdentifiers(t *testing.T) {
	bus := events.Bus{Store: &stubStore{}}
	_, err := bus.Emit(context.Background(), "", events.TopicSaleCommitted, "x", nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), "owner", "", "x", nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), "owner", events.TopicSaleCommitted, "", nil)
	require.Error(t, err)
}

func TestEmitRejectsInvalidRawPayload(t *testing.T) {
	bus := events.Bus{Store: &stubStore{}}
	_, err := bus.Emit(context.Background(), "owner", events.TopicSaleCommitted, "x", []byte("{not json"))
	require.Error(t, err)
}
