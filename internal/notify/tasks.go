package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/noah-isme/backend-pos/internal/pricing"
)

// TypeSaleNotification is the asynq task type for channel deliveries.
const TypeSaleNotification = "notify:sale"

// Channel names match the owner settings toggles.
const (
	ChannelBrowser = "browser"
	ChannelSMS     = "sms"
	ChannelEmail   = "email"
)

// SalePayload is the task body for one channel delivery.
type SalePayload struct {
	OwnerID    string        `json:"ownerId"`
	SaleID     string        `json:"saleId"`
	WorkerID   string        `json:"workerId"`
	Channel    string        `json:"channel"`
	FinalTotal pricing.Money `json:"finalTotal"`
}

// NewSaleTask builds the delivery task. The task id is derived from the sale
// and channel so a re-emitted event cannot double-deliver within the retention
// window.
func NewSaleTask(p SalePayload) (*asynq.Task, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	opts := []asynq.Option{
		asynq.TaskID(fmt.Sprintf("%s:%s:%s", TypeSaleNotification, p.SaleID, p.Channel)),
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
	}
	return asynq.NewTask(TypeSaleNotification, data, opts...), nil
}
