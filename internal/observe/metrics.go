// Package observe holds the OpenTelemetry instruments used by the lookup
// pipeline, the speech session and the narration sequencer.
//
// Tests should build their own [Metrics] with [NewMetrics] over an SDK
// MeterProvider; production code uses [DefaultMetrics].
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/heartmarshall/myenglish-lookup"

// Metrics holds all instruments. The OTel types are safe for concurrent use.
type Metrics struct {
	// SearchResults counts terminal search emissions by status
	// (ready, failed) and, for failures, kind.
	SearchResults metric.Int64Counter

	// FetchDuration tracks remote dictionary latency in seconds.
	FetchDuration metric.Float64Histogram

	// StorageErrors counts word cache failures by operation.
	StorageErrors metric.Int64Counter

	// SpeechSessions counts recognizer acquisitions by outcome.
	SpeechSessions metric.Int64Counter

	// Utterances counts narration utterances started.
	Utterances metric.Int64Counter

	// ActiveRecognizers is 1 while a recognizer is held, 0 otherwise.
	ActiveRecognizers metric.Int64UpDownCounter
}

var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15,
}

// NewMetrics creates every instrument from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.SearchResults, err = m.Int64Counter("lookup.search.results",
		metric.WithDescription("Terminal search emissions by status and failure kind."),
	); err != nil {
		return nil, err
	}
	if met.FetchDuration, err = m.Float64Histogram("lookup.dictionary.fetch.duration",
		metric.WithDescription("Latency of remote dictionary requests."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.StorageErrors, err = m.Int64Counter("lookup.cache.errors",
		metric.WithDescription("Word cache failures by operation."),
	); err != nil {
		return nil, err
	}
	if met.SpeechSessions, err = m.Int64Counter("lookup.speech.sessions",
		metric.WithDescription("Recognizer acquisitions by outcome."),
	); err != nil {
		return nil, err
	}
	if met.Utterances, err = m.Int64Counter("lookup.narration.utterances",
		metric.WithDescription("Narration utterances started."),
	); err != nil {
		return nil, err
	}
	if met.ActiveRecognizers, err = m.Int64UpDownCounter("lookup.speech.active_recognizers",
		metric.WithDescription("Recognizers currently held."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns a package-level Metrics built on the global
// MeterProvider.
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

// RecordSearchResult increments SearchResults. kind is empty for ready results.
func (m *Metrics) RecordSearchResult(ctx context.Context, status, kind string) {
	attrs := []attribute.KeyValue{attribute.String("status", status)}
	if kind != "" {
		attrs = append(attrs, attribute.String("kind", kind))
	}
	m.SearchResults.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordFetch records one remote request.
func (m *Metrics) RecordFetch(ctx context.Context, d time.Duration, outcome string) {
	m.FetchDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("outcome", outcome)),
	)
}

// RecordStorageError increments StorageErrors for op.
func (m *Metrics) RecordStorageError(ctx context.Context, op string) {
	m.StorageErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

// RecordSpeechSession increments SpeechSessions for outcome.
func (m *Metrics) RecordSpeechSession(ctx context.Context, outcome string) {
	m.SpeechSessions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordUtterance increments Utterances.
func (m *Metrics) RecordUtterance(ctx context.Context) {
	m.Utterances.Add(ctx, 1)
}
