// Package metrics holds the OpenTelemetry instruments shared by the annotation
// set and the hotspot client. Instruments come from the global meter and are
// no-ops until an SDK provider is installed.
package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/panorama/internal/metrics"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Instruments groups the counters the module records. A nil *Instruments is
// valid and records nothing.
type Instruments struct {
	mutations      metric.Int64Counter
	history        metric.Int64Counter
	hiddenVertices metric.Int64Counter
	remoteRequests metric.Int64Counter
}

// New creates the instruments on the global meter.
func New() (*Instruments, error) {
	return NewWithMeter(meter())
}

// NewWithMeter creates the instruments on m.
func NewWithMeter(m metric.Meter) (*Instruments, error) {
	var (
		i   Instruments
		err error
	)

	i.mutations, err = m.Int64Counter(
		"panorama.annotation.mutations",
		metric.WithDescription("Annotation set mutations applied"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mutations counter: %w", err)
	}

	i.history, err = m.Int64Counter(
		"panorama.annotation.history",
		metric.WithDescription("Undo and redo steps applied"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create history counter: %w", err)
	}

	i.hiddenVertices, err = m.Int64Counter(
		"panorama.render.hidden_vertices",
		metric.WithDescription("Vertices dropped because they were outside the view"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create hidden vertices counter: %w", err)
	}

	i.remoteRequests, err = m.Int64Counter(
		"panorama.remote.requests",
		metric.WithDescription("Requests sent to the hotspot service"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote requests counter: %w", err)
	}

	return &i, nil
}

// Mutation records one applied set operation.
func (i *Instruments) Mutation(ctx context.Context, op string) {
	if i == nil {
		return
	}
	i.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

// History records an undo or redo step.
func (i *Instruments) History(ctx context.Context, action string) {
	if i == nil {
		return
	}
	i.history.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
}

// HiddenVertices records n vertices culled from a rendered shape.
func (i *Instruments) HiddenVertices(ctx context.Context, kind string, n int) {
	if i == nil || n <= 0 {
		return
	}
	i.hiddenVertices.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", kind)))
}

// RemoteRequest records a hotspot service call and whether it succeeded.
func (i *Instruments) RemoteRequest(ctx context.Context, endpoint string, ok bool) {
	if i == nil {
		return
	}
	i.remoteRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.Bool("ok", ok),
	))
}
