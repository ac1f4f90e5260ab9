// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Event outcomes recorded on the events counter.
const (
	OutcomeHandled = "handled"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
)

// DispatchMetrics tracks envelope and event dispatch for production
// monitoring. A nil *DispatchMetrics is a valid no-op receiver.
type DispatchMetrics struct {
	// envelopeCounter tracks processed envelopes
	envelopeCounter metric.Int64Counter

	// eventCounter tracks dispatched events by type and outcome
	eventCounter metric.Int64Counter

	// errorCounter tracks handler errors by code
	errorCounter metric.Int64Counter

	// dispatchDuration tracks full-turn processing time in milliseconds
	dispatchDuration metric.Float64Histogram
}

// NewDispatchMetrics creates a dispatch metrics tracker with OTEL meters.
func NewDispatchMetrics() (*DispatchMetrics, error) {
	meter := otel.Meter("perico/agent")

	envelopeCounter, err := meter.Int64Counter(
		"perico.envelopes.total",
		metric.WithDescription("Total envelopes processed"),
	)
	if err != nil {
		return nil, err
	}

	eventCounter, err := meter.Int64Counter(
		"perico.events.total",
		metric.WithDescription("Total events dispatched by type and outcome"),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"perico.errors.total",
		metric.WithDescription("Total handler errors by code"),
	)
	if err != nil {
		return nil, err
	}

	dispatchDuration, err := meter.Float64Histogram(
		"perico.dispatch.duration",
		metric.WithDescription("Envelope dispatch duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &DispatchMetrics{
		envelopeCounter:  envelopeCounter,
		eventCounter:     eventCounter,
		errorCounter:     errorCounter,
		dispatchDuration: dispatchDuration,
	}, nil
}

// RecordEnvelope counts one processed envelope and its dispatch duration.
func (dm *DispatchMetrics) RecordEnvelope(ctx context.Context, elapsed time.Duration) {
	if dm == nil {
		return
	}
	dm.envelopeCounter.Add(ctx, 1)
	dm.dispatchDuration.Record(ctx, float64(elapsed)/float64(time.Millisecond))
}

// RecordEvent counts one dispatched event with its type and outcome.
func (dm *DispatchMetrics) RecordEvent(ctx context.Context, eventType, outcome string) {
	if dm == nil {
		return
	}
	dm.eventCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(AttrEventType, eventType),
			attribute.String(AttrEventOutcome, outcome),
		),
	)
}

// RecordError counts one handler error by code.
func (dm *DispatchMetrics) RecordError(ctx context.Context, errorCode string) {
	if dm == nil {
		return
	}
	dm.errorCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(AttrErrorCode, errorCode),
		),
	)
}
