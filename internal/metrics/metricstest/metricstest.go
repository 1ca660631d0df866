// Package metricstest records instruments through an in-memory otel SDK
// reader so tests can assert counter values.
package metricstest

import (
	"context"
	"testing"

	"github.com/OCAP2/panorama/internal/metrics"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Reader collects what the instruments returned by New recorded.
type Reader struct {
	reader *sdkmetric.ManualReader
}

// New returns instruments backed by a fresh meter provider and a reader over
// it. The provider is shut down when the test ends.
func New(t testing.TB) (*metrics.Instruments, *Reader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := metrics.NewWithMeter(provider.Meter("metricstest"))
	if err != nil {
		t.Fatalf("failed to create instruments: %v", err)
	}
	return m, &Reader{reader: reader}
}

// Count sums the int64 counter name over the data points carrying every attr.
func (r *Reader) Count(t testing.TB, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := r.reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s is %T, not an int64 sum", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				if matches(dp.Attributes, attrs) {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func matches(set attribute.Set, attrs []attribute.KeyValue) bool {
	for _, kv := range attrs {
		v, ok := set.Value(kv.Key)
		if !ok || v.Emit() != kv.Value.Emit() {
			return false
		}
	}
	return true
}
