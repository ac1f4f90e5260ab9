// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

// Package agent implements the envelope dispatcher and the bot handlers
// built on top of it.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	perrors "github.com/jllopis/perico/pkg/errors"
	"github.com/jllopis/perico/pkg/openfloor"
	"github.com/jllopis/perico/pkg/telemetry"
)

// Handler processes one inbound event, reading addressing context from the
// inbound envelope and appending zero or more events to the reply builder.
// A returned error is converted into one error-carrying reply event.
type Handler func(ctx context.Context, event openfloor.Event, inbound *openfloor.Envelope, out *openfloor.Builder) error

// ErrorStyle selects the event shape used for in-envelope error replies.
type ErrorStyle string

const (
	// ErrorStyleError answers failures with a dedicated ErrorEvent.
	ErrorStyleError ErrorStyle = "error"
	// ErrorStyleUtterance answers failures with an utterance carrying the
	// error text, matching the behavior of older floor clients.
	ErrorStyleUtterance ErrorStyle = "utterance"
)

// DefaultMarker prefixes every echoed reply.
const DefaultMarker = "🦜 "

const genericFailureMessage = "Something went wrong while handling that event!"

// Agent is one Open Floor participant. It owns an immutable manifest and a
// handler registry; both are read-only after New returns, so a single Agent
// is safe for concurrent Process calls.
type Agent struct {
	manifest   openfloor.Manifest
	marker     string
	errorStyle ErrorStyle
	handlers   map[openfloor.EventType]Handler
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    *telemetry.DispatchMetrics
}

// Option configures an Agent instance.
type Option func(*Agent) error

// New creates an agent from its manifest and options. The parrot handlers
// for utterance and getManifests events are registered by default; WithHandler
// can replace them or register additional event types.
func New(manifest openfloor.Manifest, opts ...Option) (*Agent, error) {
	if err := manifest.Validate(); err != nil {
		return nil, perrors.New(perrors.CodeInvalidConfig, "invalid manifest", err)
	}
	a := &Agent{
		manifest:   manifest,
		marker:     DefaultMarker,
		errorStyle: ErrorStyleError,
		handlers:   make(map[openfloor.EventType]Handler),
		logger:     slog.Default(),
		tracer:     otel.Tracer("perico/agent"),
	}
	a.handlers[openfloor.EventUtterance] = a.onUtterance
	a.handlers[openfloor.EventGetManifests] = a.onGetManifests
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// WithMarker sets the reply prefix. The marker must be non-empty.
func WithMarker(marker string) Option {
	return func(a *Agent) error {
		if marker == "" {
			return perrors.New(perrors.CodeInvalidConfig, "marker must be non-empty", nil)
		}
		a.marker = marker
		return nil
	}
}

// WithErrorStyle selects the reply shape for in-envelope errors.
func WithErrorStyle(style ErrorStyle) Option {
	return func(a *Agent) error {
		switch style {
		case ErrorStyleError, ErrorStyleUtterance:
			a.errorStyle = style
			return nil
		default:
			return perrors.New(perrors.CodeInvalidConfig, fmt.Sprintf("unknown error style %q", style), nil)
		}
	}
}

// WithLogger sets the agent logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) error {
		if logger != nil {
			a.logger = logger
		}
		return nil
	}
}

// WithMetrics attaches dispatch metrics.
func WithMetrics(metrics *telemetry.DispatchMetrics) Option {
	return func(a *Agent) error {
		a.metrics = metrics
		return nil
	}
}

// WithHandler registers a handler for an event type, replacing any default.
func WithHandler(eventType openfloor.EventType, handler Handler) Option {
	return func(a *Agent) error {
		if handler == nil {
			return perrors.New(perrors.CodeInvalidConfig, "handler must not be nil", nil)
		}
		a.handlers[eventType] = handler
		return nil
	}
}

// Identity returns the agent's speaker URI.
func (a *Agent) Identity() openfloor.Identity {
	return a.manifest.Identification.SpeakerURI
}

// Manifest returns the agent's manifest.
func (a *Agent) Manifest() openfloor.Manifest {
	return a.manifest
}

// Process consumes one inbound envelope and produces the reply. Events are
// dispatched in order; unregistered event types are skipped; a failing or
// panicking handler costs exactly one error-carrying reply event and never
// aborts the rest of the turn.
func (a *Agent) Process(ctx context.Context, inbound *openfloor.Envelope) *openfloor.Envelope {
	started := time.Now()
	ctx, span := a.tracer.Start(ctx, "agent.process", trace.WithAttributes(
		attribute.String(telemetry.AttrAgentURI, string(a.Identity())),
		attribute.String(telemetry.AttrEnvelopeSender, string(inbound.Sender)),
		attribute.Int(telemetry.AttrEnvelopeEvents, len(inbound.Events)),
	))
	defer span.End()

	out := openfloor.NewReply(a.Identity(), inbound)
	for _, event := range inbound.Events {
		handler, ok := a.handlers[event.Type()]
		if !ok {
			a.logger.DebugContext(ctx, "skipping unhandled event",
				slog.String("event_type", string(event.Type())))
			a.metrics.RecordEvent(ctx, string(event.Type()), telemetry.OutcomeSkipped)
			continue
		}
		if err := a.invoke(ctx, handler, event, inbound, out); err != nil {
			pe := perrors.AsPericoError(err)
			a.logger.WarnContext(ctx, "event handler failed",
				slog.String("event_type", string(event.Type())),
				slog.String("error_code", string(pe.Code)),
				slog.Any("error", pe))
			a.metrics.RecordEvent(ctx, string(event.Type()), telemetry.OutcomeError)
			a.metrics.RecordError(ctx, string(pe.Code))
			a.respondError(spokenMessage(pe), out)
			continue
		}
		a.metrics.RecordEvent(ctx, string(event.Type()), telemetry.OutcomeHandled)
	}
	a.metrics.RecordEnvelope(ctx, time.Since(started))
	return out.Envelope()
}

// invoke runs one handler with a panic barrier so a defective handler is
// contained at the per-event boundary.
func (a *Agent) invoke(ctx context.Context, handler Handler, event openfloor.Event, inbound *openfloor.Envelope, out *openfloor.Builder) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = perrors.New(perrors.CodeHandlerFailure, genericFailureMessage,
				fmt.Errorf("handler panic: %v", r))
		}
	}()
	return handler(ctx, event, inbound, out)
}

// spokenMessage picks the text spoken back to the conversational partner.
// Only the protocol-level codes expose their message verbatim; anything
// unexpected gets the generic failure line.
func spokenMessage(pe *perrors.PericoError) string {
	switch pe.Code {
	case perrors.CodeMalformedEvent, perrors.CodeUnsupportedModality, perrors.CodeHandlerFailure:
		return pe.Message
	default:
		return genericFailureMessage
	}
}
