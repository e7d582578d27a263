// Package observe provides OpenTelemetry metrics and tracing for the
// synthesis pipeline.
//
// Tests should build a [Metrics] with [NewMetrics] over their own
// [metric.MeterProvider]; [DefaultMetrics] uses the global provider.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/ieee0824/yomiage-go"

// Request status values for the requests counter.
const (
	StatusOK       = "ok"
	StatusError    = "error"
	StatusCacheHit = "cache_hit"
)

// Metrics holds the pipeline instruments. All fields are safe for
// concurrent use.
type Metrics struct {
	// StageDuration tracks per-stage latency. Attribute: stage.
	StageDuration metric.Float64Histogram

	// Requests counts finished synthesis requests. Attribute: status.
	Requests metric.Int64Counter

	// Errors counts failed requests. Attributes: stage, kind.
	Errors metric.Int64Counter

	// InFlight tracks requests currently holding the pipeline resources.
	InFlight metric.Int64UpDownCounter
}

// latencyBuckets in seconds; most stages finish well under 100ms.
var latencyBuckets = []float64{
	0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.StageDuration, err = m.Float64Histogram("yomiage.stage.duration",
		metric.WithDescription("Latency of a single pipeline stage."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Requests, err = m.Int64Counter("yomiage.requests",
		metric.WithDescription("Total synthesis requests by status."),
	); err != nil {
		return nil, err
	}
	if met.Errors, err = m.Int64Counter("yomiage.errors",
		metric.WithDescription("Total synthesis errors by stage and kind."),
	); err != nil {
		return nil, err
	}
	if met.InFlight, err = m.Int64UpDownCounter("yomiage.requests.in_flight",
		metric.WithDescription("Number of synthesis requests in progress."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns a process-wide instance backed by
// [otel.GetMeterProvider]. It panics if instrument creation fails.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordStage records how long stage took since start.
func (m *Metrics) RecordStage(ctx context.Context, stage string, start time.Time) {
	m.StageDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("stage", stage)),
	)
}

// RecordRequest increments the request counter.
func (m *Metrics) RecordRequest(ctx context.Context, status string) {
	m.Requests.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(ctx context.Context, stage, kind string) {
	m.Errors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("stage", stage),
			attribute.String("kind", kind),
		),
	)
}
