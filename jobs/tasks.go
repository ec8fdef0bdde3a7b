package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStockScan is the task type for the periodic stock status scan.
	TaskStockScan = "stock:scan"
	// TaskLowStockNotify is the task type for low stock notifications.
	TaskLowStockNotify = "stock:notify_low"
)

// LowStockPayload describes an item that dropped to or below its threshold.
type LowStockPayload struct {
	ItemID    int64  `json:"item_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Threshold int    `json:"threshold"`
}

// NewLowStockNotifyTask constructs an Asynq task.
func NewLowStockNotifyTask(payload LowStockPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockNotify, data, asynq.Queue(QueueDefault)), nil
}

// HandleLowStockNotifyTask processes TaskLowStockNotify tasks.
func HandleLowStockNotifyTask(ctx context.Context, t *asynq.Task) error {
	var payload LowStockPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: route through SMTP once the mail relay is provisioned.
	fmt.Printf("[jobs] low stock alert item=%d %q quantity=%d threshold=%d\n",
		payload.ItemID, payload.Name, payload.Quantity, payload.Threshold)
	return nil
}

// NewStockScanTask constructs the periodic scan task. It carries no payload;
// the scan always covers the whole catalog.
func NewStockScanTask() *asynq.Task {
	return asynq.NewTask(TaskStockScan, nil, asynq.Queue(QueueDefault))
}
