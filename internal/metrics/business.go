package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics defines the interface for recording business operation
// metrics. Implementations track operation counts, durations, and per-run
// record outcomes.
type BusinessMetrics interface {
	// RecordOperation records a business operation with its status.
	// Domain examples: "sync", "client". Operation examples: "sync_run",
	// "preview", "job_get". Status is "success" or "error".
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records the duration of a business operation with its
	// status. Duration is recorded in seconds as a histogram.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordSyncOutcome records how many records a sync run created, updated,
	// skipped, and failed. Each outcome becomes a labeled counter increment.
	RecordSyncOutcome(ctx context.Context, created, updated, skipped, failed int)
}

// businessMetrics implements BusinessMetrics using OpenTelemetry metrics.
type businessMetrics struct {
	operationCounter metric.Int64Counter
	durationHisto    metric.Float64Histogram
	recordCounter    metric.Int64Counter
}

// NewBusinessMetrics creates a BusinessMetrics implementation using the
// provided meter provider. The namespace parameter prefixes all metric names.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of business operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of business operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	recordCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_sync_records_total", namespace),
		metric.WithDescription("Total number of synced records by outcome"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync record counter: %w", err)
	}

	return &businessMetrics{
		operationCounter: operationCounter,
		durationHisto:    durationHisto,
		recordCounter:    recordCounter,
	}, nil
}

// RecordOperation increments the operation counter with domain, operation, and status labels.
func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

// RecordDuration records the operation duration in seconds with domain, operation, and status labels.
func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

// RecordSyncOutcome increments the record counter once per outcome label.
func (b *businessMetrics) RecordSyncOutcome(ctx context.Context, created, updated, skipped, failed int) {
	outcomes := []struct {
		label string
		count int
	}{
		{"created", created},
		{"updated", updated},
		{"skipped", skipped},
		{"failed", failed},
	}
	for _, outcome := range outcomes {
		if outcome.count == 0 {
			continue
		}
		b.recordCounter.Add(ctx, int64(outcome.count),
			metric.WithAttributes(attribute.String("outcome", outcome.label)),
		)
	}
}

// NoOpBusinessMetrics is a no-op implementation of BusinessMetrics for when
// metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

// RecordOperation does nothing when metrics are disabled.
func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	// No-op
}

// RecordDuration does nothing when metrics are disabled.
func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	// No-op
}

// RecordSyncOutcome does nothing when metrics are disabled.
func (n *NoOpBusinessMetrics) RecordSyncOutcome(ctx context.Context, created, updated, skipped, failed int) {
	// No-op
}
