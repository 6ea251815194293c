package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/store"
)

// SettingsReader loads the notification preferences gating each channel.
type SettingsReader interface {
	GetOwnerSettings(ctx context.Context, ownerID string) (store.OwnerSettings, error)
}

// TaskEnqueuer is the slice of asynq.Client the dispatcher needs.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher implements events.Notifier: on each committed sale it checks the
// owner's per-channel thresholds and enqueues one delivery task per channel
// that qualifies. Each channel gates on its enable flag AND the sale's final
// total reaching the channel minimum, the same shape as the discount rule.
type Dispatcher struct {
	Settings SettingsReader
	Tasks    TaskEnqueuer
	Logger   zerolog.Logger
}

type salePayload struct {
	SaleID     string        `json:"saleId"`
	WorkerID   string        `json:"workerId"`
	FinalTotal pricing.Money `json:"finalTotal"`
}

// Notify inspects the event and fans eligible channels out to the task queue.
func (d *Dispatcher) Notify(ctx context.Context, event store.SaleEvent) error {
	if d == nil || d.Settings == nil || d.Tasks == nil {
		return nil
	}
	if event.Topic != events.TopicSaleCommitted {
		return nil
	}
	var body salePayload
	if err := json.Unmarshal(event.Payload, &body); err != nil {
		return fmt.Errorf("notify: decode sale payload: %w", err)
	}
	if body.SaleID == "" {
		body.SaleID = event.AggregateID
	}
	settings, err := d.Settings.GetOwnerSettings(ctx, event.OwnerID)
	if err != nil {
		return fmt.Errorf("notify: load settings: %w", err)
	}
	channels := []struct {
		name    string
		enabled bool
		min     pricing.Money
	}{
		{ChannelBrowser, settings.NotifyBrowserEnable, settings.NotifyBrowserMin},
		{ChannelSMS, settings.NotifySMSEnable, settings.NotifySMSMin},
		{ChannelEmail, settings.NotifyEmailEnable, settings.NotifyEmailMin},
	}
	var joined error
	for _, ch := range channels {
		if !ch.enabled || body.FinalTotal < ch.min {
			obs.IncNotification(ch.name, "skipped")
			continue
		}
		task, err := NewSaleTask(SalePayload{
			OwnerID:    event.OwnerID,
			SaleID:     body.SaleID,
			WorkerID:   body.WorkerID,
			Channel:    ch.name,
			FinalTotal: body.FinalTotal,
		})
		if err != nil {
			joined = errors.Join(joined, err)
			continue
		}
		if _, err := d.Tasks.EnqueueContext(ctx, task); err != nil {
			if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
				obs.IncNotification(ch.name, "duplicate")
				continue
			}
			obs.IncNotification(ch.name, "enqueue_failed")
			joined = errors.Join(joined, fmt.Errorf("notify: enqueue %s: %w", ch.name, err))
			continue
		}
		obs.IncNotification(ch.name, "enqueued")
		d.Logger.Debug().Str("owner_id", event.OwnerID).Str("sale_id", body.SaleID).Str("channel", ch.name).Msg("notification enqueued")
	}
	return joined
}
