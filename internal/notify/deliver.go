package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/pricing"
)

// ContactDirectory resolves an owner's delivery addresses. The POS frontend
// registers these out of band; absent contacts skip delivery without error.
type ContactDirectory interface {
	Contacts(ctx context.Context, ownerID string) (email, phone string, err error)
}

// StaticContacts serves fixed addresses from configuration.
type StaticContacts struct {
	Email string
	Phone string
}

func (s StaticContacts) Contacts(context.Context, string) (string, string, error) {
	return s.Email, s.Phone, nil
}

// BrowserPush hands a payload to connected dashboard clients. The default
// in-memory implementation backs the test suite and single-node deployments.
type BrowserPush interface {
	Push(ctx context.Context, ownerID string, payload []byte) error
}

// MemoryPush buffers browser pushes per owner.
type MemoryPush struct {
	mu     sync.Mutex
	Pushed map[string][][]byte
}

func (m *MemoryPush) Push(_ context.Context, ownerID string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Pushed == nil {
		m.Pushed = make(map[string][][]byte)
	}
	m.Pushed[ownerID] = append(m.Pushed[ownerID], append([]byte(nil), payload...))
	return nil
}

// Deliverer executes queued channel deliveries. It runs inside cmd/worker
// under the asynq server mux.
type Deliverer struct {
	Email    common.EmailSender
	SMS      common.SMSSender
	Browser  BrowserPush
	Contacts ContactDirectory
	Logger   zerolog.Logger
}

// HandleSaleTask is the asynq handler for TypeSaleNotification tasks.
func (d *Deliverer) HandleSaleTask(ctx context.Context, task *asynq.Task) error {
	var p SalePayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		// Malformed payloads never succeed; drop instead of retrying.
		return fmt.Errorf("notify: decode task: %v: %w", err, asynq.SkipRetry)
	}
	err := d.deliver(ctx, p)
	if err != nil {
		obs.IncNotification(p.Channel, "failed")
		return err
	}
	obs.IncNotification(p.Channel, "delivered")
	return nil
}

func (d *Deliverer) deliver(ctx context.Context, p SalePayload) error {
	subject := "New sale recorded"
	body := saleMessage(p.FinalTotal)
	switch p.Channel {
	case ChannelBrowser:
		if d.Browser == nil {
			return nil
		}
		payload, err := json.Marshal(map[string]any{"saleId": p.SaleID, "finalTotal": p.FinalTotal})
		if err != nil {
			return err
		}
		return d.Browser.Push(ctx, p.OwnerID, payload)
	case ChannelSMS:
		if d.SMS == nil || d.Contacts == nil {
			return nil
		}
		_, phone, err := d.Contacts.Contacts(ctx, p.OwnerID)
		if err != nil {
			return err
		}
		if phone == "" {
			d.Logger.Debug().Str("owner_id", p.OwnerID).Msg("notify: no phone on file")
			return nil
		}
		return d.SMS.SendSMS(phone, body)
	case ChannelEmail:
		if d.Email == nil || d.Contacts == nil {
			return nil
		}
		email, _, err := d.Contacts.Contacts(ctx, p.OwnerID)
		if err != nil {
			return err
		}
		if email == "" {
			d.Logger.Debug().Str("owner_id", p.OwnerID).Msg("notify: no email on file")
			return nil
		}
		return d.Email.Send(email, subject, body)
	default:
		return fmt.Errorf("notify: unknown channel %q: %w", p.Channel, asynq.SkipRetry)
	}
}

func saleMessage(total pricing.Money) string {
	return fmt.Sprintf("A sale of %d was just recorded.", total)
}
