// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"

	"github.com/jllopis/perico/pkg/errors"
)

// Semantic conventions for Perico telemetry.
const (
	// Agent attributes
	AttrAgentURI  = "perico.agent.uri"
	AttrAgentName = "perico.agent.name"

	// Envelope attributes
	AttrEnvelopeSender = "perico.envelope.sender"
	AttrEnvelopeEvents = "perico.envelope.event_count"

	// Event attributes
	AttrEventType    = "perico.event.type"
	AttrEventOutcome = "perico.event.outcome"

	// Error attributes
	AttrErrorCode        = "perico.error.code"
	AttrErrorRecoverable = "perico.error.recoverable"

	// Transport attributes
	AttrRequestID  = "perico.request.id"
	AttrHTTPOrigin = "perico.http.origin"
)

// EnvelopeAttributes returns common attributes for envelope spans.
func EnvelopeAttributes(sender string, eventCount int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrEnvelopeSender, sender),
		attribute.Int(AttrEnvelopeEvents, eventCount),
	}
}

// EventAttributes returns attributes for one dispatched event.
func EventAttributes(eventType, outcome string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrEventType, eventType),
		attribute.String(AttrEventOutcome, outcome),
	}
}

// ErrorAttributes returns attributes describing a handler error.
func ErrorAttributes(err error) []attribute.KeyValue {
	pe := errors.AsPericoError(err)
	if pe == nil {
		return nil
	}
	return []attribute.KeyValue{
		attribute.String(AttrErrorCode, string(pe.Code)),
		attribute.String(AttrErrorRecoverable, pe.RecoverableString()),
	}
}
