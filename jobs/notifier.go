package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
)

// ReportInvalidator drops cached reports.
type ReportInvalidator interface {
	Invalidate(ctx context.Context) error
}

// TaskEnqueuer submits tasks to the queue.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Notifier reacts to order and settings writes: cached reports are dropped
// immediately and a warmup is queued for the worker.
type Notifier struct {
	reports ReportInvalidator
	queue   TaskEnqueuer
	logger  *slog.Logger
}

// NewNotifier constructs a Notifier. queue may be nil when no worker runs.
func NewNotifier(reports ReportInvalidator, queue TaskEnqueuer, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{reports: reports, queue: queue, logger: logger}
}

// OrdersChanged implements orders.ChangeNotifier.
func (n *Notifier) OrdersChanged(ctx context.Context, reason string) error {
	return n.changed(ctx, "orders:"+reason)
}

// SettingsChanged implements settings.ChangeNotifier.
func (n *Notifier) SettingsChanged(ctx context.Context) error {
	return n.changed(ctx, "settings")
}

func (n *Notifier) changed(ctx context.Context, reason string) error {
	if n.reports != nil {
		if err := n.reports.Invalidate(ctx); err != nil {
			return err
		}
	}
	if n.queue == nil {
		return nil
	}
	task, err := NewReportsWarmupTask(reason)
	if err != nil {
		return err
	}
	_, err = n.queue.EnqueueContext(ctx, task, asynq.Unique(warmupUniqueFor))
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	if err != nil {
		n.logger.Warn("enqueue reports warmup", slog.String("reason", reason), slog.Any("error", err))
	}
	return err
}
