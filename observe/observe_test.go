package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestRecordStage(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordStage(ctx, "analyze", time.Now().Add(-10*time.Millisecond))
	m.RecordStage(ctx, "analyze", time.Now())
	m.RecordStage(ctx, "vocode", time.Now())

	got := findMetric(collect(t, reader), "yomiage.stage.duration")
	if got == nil {
		t.Fatal("yomiage.stage.duration not found")
	}
	hist, ok := got.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("unexpected data type %T", got.Data)
	}
	counts := map[string]uint64{}
	for _, dp := range hist.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("stage"))
		counts[v.AsString()] = dp.Count
	}
	if counts["analyze"] != 2 || counts["vocode"] != 1 {
		t.Errorf("stage counts = %v", counts)
	}
}

func TestRecordRequestAndError(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordRequest(ctx, StatusOK)
	m.RecordRequest(ctx, StatusOK)
	m.RecordRequest(ctx, StatusError)
	m.RecordError(ctx, "analyze", "analysis")

	rm := collect(t, reader)

	req := findMetric(rm, "yomiage.requests")
	if req == nil {
		t.Fatal("yomiage.requests not found")
	}
	sum := req.Data.(metricdata.Sum[int64])
	byStatus := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("status"))
		byStatus[v.AsString()] = dp.Value
	}
	if byStatus[StatusOK] != 2 || byStatus[StatusError] != 1 {
		t.Errorf("requests by status = %v", byStatus)
	}

	errs := findMetric(rm, "yomiage.errors")
	if errs == nil {
		t.Fatal("yomiage.errors not found")
	}
	esum := errs.Data.(metricdata.Sum[int64])
	if len(esum.DataPoints) != 1 {
		t.Fatalf("error data points = %d, want 1", len(esum.DataPoints))
	}
	dp := esum.DataPoints[0]
	stage, _ := dp.Attributes.Value(attribute.Key("stage"))
	kind, _ := dp.Attributes.Value(attribute.Key("kind"))
	if stage.AsString() != "analyze" || kind.AsString() != "analysis" || dp.Value != 1 {
		t.Errorf("error point = %s/%s/%d", stage.AsString(), kind.AsString(), dp.Value)
	}
}

func TestStartSpan(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	orig := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(orig) })

	ctx, span := StartSpan(context.Background(), "synthesize")
	if id := TraceID(ctx); len(id) != 32 {
		t.Errorf("TraceID length = %d, want 32", len(id))
	}
	EndSpan(span, errors.New("boom"))

	spans := exp.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	if spans[0].Name != "synthesize" {
		t.Errorf("span name = %q", spans[0].Name)
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want Error", spans[0].Status.Code)
	}
}

func TestTraceIDEmptyByDefault(t *testing.T) {
	if got := TraceID(context.Background()); got != "" {
		t.Errorf("TraceID(background) = %q, want empty", got)
	}
}
