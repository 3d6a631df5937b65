package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/homebite/orderdesk/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ReportWarmer is the part of the reports service the warmup needs.
type ReportWarmer interface {
	Warm(ctx context.Context) error
}

// ReportsWarmupJob recomputes the unfiltered reports after data changes.
type ReportsWarmupJob struct {
	Reports ReportWarmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Timeout time.Duration
}

// NewReportsWarmupJob wires dependencies for the warmup handler.
func NewReportsWarmupJob(reports ReportWarmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsWarmupJob {
	return &ReportsWarmupJob{Reports: reports, Logger: logger, Metrics: metrics, Timeout: time.Minute}
}

// Handle processes TaskReportsWarmup tasks.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("reports warmup: handler not configured")
	}
	var payload ReportsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := metricsOr(j.Metrics).Track(TaskReportsWarmup)
	logger := loggerOr(j.Logger, TaskReportsWarmup).With(slog.String("reason", payload.Reason))
	start := time.Now()

	runCtx := ctx
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}
	if err := j.Reports.Warm(runCtx); err != nil {
		logger.Error("warm reports", slog.Any("error", err))
		return tracker.End(err)
	}
	logger.Info("reports warmed", slog.Duration("duration", time.Since(start)))
	return tracker.End(nil)
}

func metricsOr(m *jobmetrics.Metrics) *jobmetrics.Metrics {
	if m != nil {
		return m
	}
	return defaultJobMetrics
}

func loggerOr(l *slog.Logger, job string) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}
	return l.With(slog.String("job", job))
}
