package observe

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
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

// sumFor returns the value of the data point carrying key=value.
func sumFor(t *testing.T, rm metricdata.ResourceMetrics, name, key, value string) int64 {
	t.Helper()
	met := findMetric(rm, name)
	if met == nil {
		t.Fatalf("metric %q not found", name)
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %q is not an int64 sum", name)
	}
	for _, dp := range sum.DataPoints {
		if key == "" {
			return dp.Value
		}
		for _, kv := range dp.Attributes.ToSlice() {
			if string(kv.Key) == key && kv.Value.AsString() == value {
				return dp.Value
			}
		}
	}
	t.Fatalf("metric %q has no data point with %s=%s", name, key, value)
	return 0
}

func TestNewMetrics_Noop(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics(noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	// Recording on noop instruments must not panic.
	m.RecordSearchResult(context.Background(), "ready", "")
	m.RecordUtterance(context.Background())
}

func TestRecordSearchResult(t *testing.T) {
	t.Parallel()

	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordSearchResult(ctx, "ready", "")
	m.RecordSearchResult(ctx, "ready", "")
	m.RecordSearchResult(ctx, "failed", "network")

	rm := collect(t, reader)
	if got := sumFor(t, rm, "lookup.search.results", "kind", "network"); got != 1 {
		t.Errorf("failed/network = %d, want 1", got)
	}

	met := findMetric(rm, "lookup.search.results")
	sum := met.Data.(metricdata.Sum[int64])
	var ready int64
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Len() == 1 {
			ready += dp.Value
		}
	}
	if ready != 2 {
		t.Errorf("ready = %d, want 2", ready)
	}
}

func TestRecordFetch(t *testing.T) {
	t.Parallel()

	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordFetch(ctx, 120*time.Millisecond, "ok")
	m.RecordFetch(ctx, 2*time.Second, "ok")

	rm := collect(t, reader)
	met := findMetric(rm, "lookup.dictionary.fetch.duration")
	if met == nil {
		t.Fatal("metric not found")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("metric is not a histogram")
	}
	if len(hist.DataPoints) != 1 {
		t.Fatalf("data points = %d, want 1", len(hist.DataPoints))
	}
	if got := hist.DataPoints[0].Count; got != 2 {
		t.Errorf("sample count = %d, want 2", got)
	}
}

func TestCounters(t *testing.T) {
	t.Parallel()

	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordStorageError(ctx, "replace")
	m.RecordStorageError(ctx, "replace")
	m.RecordSpeechSession(ctx, "acquired")
	m.RecordUtterance(ctx)
	m.ActiveRecognizers.Add(ctx, 1)
	m.ActiveRecognizers.Add(ctx, -1)

	rm := collect(t, reader)
	if got := sumFor(t, rm, "lookup.cache.errors", "op", "replace"); got != 2 {
		t.Errorf("cache errors = %d, want 2", got)
	}
	if got := sumFor(t, rm, "lookup.speech.sessions", "outcome", "acquired"); got != 1 {
		t.Errorf("speech sessions = %d, want 1", got)
	}
	if got := sumFor(t, rm, "lookup.narration.utterances", "", ""); got != 1 {
		t.Errorf("utterances = %d, want 1", got)
	}
	if got := sumFor(t, rm, "lookup.speech.active_recognizers", "", ""); got != 0 {
		t.Errorf("active recognizers = %d, want 0", got)
	}
}

func TestDefaultMetrics_Singleton(t *testing.T) {
	t.Parallel()

	if DefaultMetrics() != DefaultMetrics() {
		t.Error("DefaultMetrics should return the same instance")
	}
}
