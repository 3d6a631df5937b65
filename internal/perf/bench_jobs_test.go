package perf

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	jobmetrics "github.com/homebite/orderdesk/internal/jobs"
	"github.com/homebite/orderdesk/internal/orders"
	"github.com/homebite/orderdesk/internal/reports"
	"github.com/homebite/orderdesk/jobs"
)

type flakyWarmer struct {
	inner *reports.Service
	calls int
	every int
}

func (f *flakyWarmer) Warm(ctx context.Context) error {
	f.calls++
	if f.every > 0 && f.calls%f.every == 0 {
		return errors.New("redis timeout")
	}
	return f.inner.Warm(ctx)
}

func TestWarmupJobThroughputAndReliability(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := orders.NewMemoryRepository(generateOrders(5000)...)
	orderService := orders.NewService(repo, nil, orders.NewValidator(nil), logger)
	warmer := &flakyWarmer{inner: reports.NewService(orderService, nil, nil, logger), every: 20}
	job := jobs.NewReportsWarmupJob(warmer, logger, metrics)

	task, err := jobs.NewReportsWarmupTask("perf")
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	failures := 0
	for i := 0; i < 60; i++ {
		if err := job.Handle(context.Background(), task); err != nil {
			failures++
		}
	}
	if failures != 3 {
		t.Fatalf("expected 3 injected failures, got %d", failures)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	success := metricValue(t, families, "orderdesk_jobs_total", map[string]string{"job": jobs.TaskReportsWarmup, "status": "success"})
	failure := metricValue(t, families, "orderdesk_jobs_total", map[string]string{"job": jobs.TaskReportsWarmup, "status": "failure"})
	if ratio := success / (success + failure); ratio < 0.9 {
		t.Fatalf("warmup success ratio too low: %f", ratio)
	}

	mean := histogramMean(t, families, "orderdesk_job_duration_seconds", map[string]string{"job": jobs.TaskReportsWarmup})
	if mean > 0.5 {
		t.Fatalf("warmup duration above budget: %f", mean)
	}
}

func metricValue(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func histogramMean(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				hist := metric.GetHistogram()
				if hist == nil || hist.GetSampleCount() == 0 {
					t.Fatalf("histogram %s missing samples", name)
				}
				return hist.GetSampleSum() / float64(hist.GetSampleCount())
			}
		}
	}
	t.Fatalf("histogram %s with labels %v not found", name, labels)
	return 0
}

func hasLabels(metric *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, lp := range metric.GetLabel() {
		val, ok := labels[lp.GetName()]
		if !ok {
			continue
		}
		if lp.GetValue() != val {
			return false
		}
		matched++
	}
	return matched == len(labels)
}
