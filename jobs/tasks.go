package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportsWarmup rebuilds the cached dashboard reports.
	TaskReportsWarmup = "reports:warmup"
	// TaskOrdersSnapshot exports every order as CSV to the object store.
	TaskOrdersSnapshot = "orders:snapshot"
)

// warmupUniqueFor collapses bursts of writes into one pending warmup.
const warmupUniqueFor = 30 * time.Second

// ReportsWarmupPayload describes why a warmup was requested.
type ReportsWarmupPayload struct {
	Reason string `json:"reason"`
}

// NewReportsWarmupTask constructs a warmup task.
func NewReportsWarmupTask(reason string) (*asynq.Task, error) {
	if reason == "" {
		reason = "scheduled"
	}
	body, err := json.Marshal(ReportsWarmupPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// OrdersSnapshotPayload names the day a snapshot is taken for.
type OrdersSnapshotPayload struct {
	ScheduledFor time.Time `json:"scheduledFor,omitempty"`
}

// NewOrdersSnapshotTask constructs a snapshot task.
func NewOrdersSnapshotTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(OrdersSnapshotPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrdersSnapshot, body, asynq.Queue(QueueDefault)), nil
}
