package observability

import (
	"log/slog"
	"time"
)

// Timer measures one operation and reports it to a logger and a metric.
type Timer struct {
	metric  string
	start   time.Time
	logger  *slog.Logger
	metrics Metrics
	tags    []Tag
}

// StartTimer starts timing; the duration is recorded under metric.
func StartTimer(metric string) *Timer {
	return &Timer{metric: metric, start: time.Now()}
}

// WithLogger logs the duration when the timer stops.
func (t *Timer) WithLogger(logger *slog.Logger) *Timer {
	t.logger = logger
	return t
}

// WithMetrics records the duration when the timer stops.
func (t *Timer) WithMetrics(metrics Metrics) *Timer {
	t.metrics = metrics
	return t
}

// WithTags adds metric labels.
func (t *Timer) WithTags(tags ...Tag) *Timer {
	t.tags = append(t.tags, tags...)
	return t
}

// Stop records a successful run.
func (t *Timer) Stop() time.Duration {
	return t.StopWithError(nil)
}

// StopWithError records the run, tagging it as failed when err is non-nil.
func (t *Timer) StopWithError(err error) time.Duration {
	d := time.Since(t.start)

	if t.logger != nil {
		if err != nil {
			t.logger.Error("operation failed", "metric", t.metric, "duration_ms", d.Milliseconds(), ErrorKey, err)
		} else {
			t.logger.Info("operation completed", "metric", t.metric, "duration_ms", d.Milliseconds())
		}
	}

	if t.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		tags := append(append([]Tag(nil), t.tags...), T("status", status))
		t.metrics.Timing(t.metric, d, tags...)
	}
	return d
}

// Elapsed returns the time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
