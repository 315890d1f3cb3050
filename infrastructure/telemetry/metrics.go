// Package telemetry provides OpenTelemetry metrics for the
// counterfactual runtime.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics provides access to the runtime's metric instruments. A nil
// *Metrics is valid and records nothing, so instrumentation points never
// need nil checks at call sites.
type Metrics struct {
	edits         metric.Int64Counter
	editRetries   metric.Int64Counter
	mockFallbacks metric.Int64Counter
	critiques     metric.Int64Counter
	stageDuration metric.Float64Histogram
	activeRuns    metric.Int64UpDownCounter
}

// MetricsConfig configures the metrics provider.
type MetricsConfig struct {
	// MeterName is the name of the meter.
	MeterName string
}

// DefaultMetricsConfig returns a default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{MeterName: "github.com/urbanlens/counterfact"}
}

// NewMetrics creates a metrics provider backed by the global otel meter
// provider.
func NewMetrics(config MetricsConfig) (*Metrics, error) {
	if config.MeterName == "" {
		config = DefaultMetricsConfig()
	}
	meter := otel.GetMeterProvider().Meter(config.MeterName)

	m := &Metrics{}
	var err error

	if m.edits, err = meter.Int64Counter("counterfact.edits",
		metric.WithDescription("Completed edit operations")); err != nil {
		return nil, err
	}
	if m.editRetries, err = meter.Int64Counter("counterfact.edit_retries",
		metric.WithDescription("Edit attempts retried after transient backend failure")); err != nil {
		return nil, err
	}
	if m.mockFallbacks, err = meter.Int64Counter("counterfact.mock_fallbacks",
		metric.WithDescription("Edits resolved by the mock passthrough fallback")); err != nil {
		return nil, err
	}
	if m.critiques, err = meter.Int64Counter("counterfact.critiques",
		metric.WithDescription("Critique verdicts")); err != nil {
		return nil, err
	}
	if m.stageDuration, err = meter.Float64Histogram("counterfact.stage_duration",
		metric.WithDescription("Workflow stage duration"),
		metric.WithUnit("ms")); err != nil {
		return nil, err
	}
	if m.activeRuns, err = meter.Int64UpDownCounter("counterfact.active_runs",
		metric.WithDescription("Workflow runs currently executing")); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordEdit counts a completed edit operation.
func (m *Metrics) RecordEdit(ctx context.Context, backend string, usedMock bool) {
	if m == nil {
		return
	}
	m.edits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.Bool("used_mock", usedMock),
	))
	if usedMock {
		m.mockFallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("backend", backend)))
	}
}

// RecordEditRetry counts a retried edit attempt.
func (m *Metrics) RecordEditRetry(ctx context.Context, backend string) {
	if m == nil {
		return
	}
	m.editRetries.Add(ctx, 1, metric.WithAttributes(attribute.String("backend", backend)))
}

// RecordCritique counts a critique verdict.
func (m *Metrics) RecordCritique(ctx context.Context, accepted bool) {
	if m == nil {
		return
	}
	m.critiques.Add(ctx, 1, metric.WithAttributes(attribute.Bool("accepted", accepted)))
}

// RecordStage records the duration of one workflow stage.
func (m *Metrics) RecordStage(ctx context.Context, state string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.Record(ctx, float64(d.Milliseconds()),
		metric.WithAttributes(attribute.String("state", state)))
}

// RunStarted marks a workflow run as active.
func (m *Metrics) RunStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeRuns.Add(ctx, 1)
}

// RunEnded marks a workflow run as finished.
func (m *Metrics) RunEnded(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeRuns.Add(ctx, -1)
}
