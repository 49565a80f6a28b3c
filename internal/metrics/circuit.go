package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/pensionworks/pensync/internal/breaker"
)

// circuitStateValue maps a breaker state name to its gauge value. Closed is 0
// so a flat zero line means a healthy upstream.
func circuitStateValue(state string) int64 {
	switch state {
	case "closed":
		return 0
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return -1
	}
}

// RegisterCircuitGauge registers an observable gauge exposing the state of
// every breaker in the registry, labeled by circuit name.
func RegisterCircuitGauge(
	meterProvider metric.MeterProvider,
	namespace string,
	registry *breaker.Registry,
) error {
	meter := meterProvider.Meter(namespace)

	gauge, err := meter.Int64ObservableGauge(
		fmt.Sprintf("%s_circuit_state", namespace),
		metric.WithDescription("Circuit breaker state (0 closed, 1 half-open, 2 open)"),
	)
	if err != nil {
		return fmt.Errorf("failed to create circuit state gauge: %w", err)
	}

	_, err = meter.RegisterCallback(
		func(ctx context.Context, observer metric.Observer) error {
			for _, snapshot := range registry.Snapshots() {
				observer.ObserveInt64(gauge, circuitStateValue(snapshot.State),
					metric.WithAttributes(attribute.String("circuit", snapshot.Name)),
				)
			}
			return nil
		},
		gauge,
	)
	if err != nil {
		return fmt.Errorf("failed to register circuit state callback: %w", err)
	}

	return nil
}
