// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

// Package testing provides assertion helpers and envelope fixtures for
// Perico test suites.
package testing

import (
	"strings"
	"testing"

	"github.com/jllopis/perico/pkg/openfloor"
)

// Assertions provides assertion helpers for testing.
type Assertions struct {
	t      *testing.T
	failed bool
}

// NewAssertions creates a new assertions helper.
func NewAssertions(t *testing.T) *Assertions {
	return &Assertions{t: t}
}

// Failed returns true if any assertion has failed.
func (a *Assertions) Failed() bool {
	return a.failed
}

// AssertEqual asserts that two values are equal.
func (a *Assertions) AssertEqual(expected, actual any, msg string) {
	a.t.Helper()
	if expected != actual {
		a.t.Errorf("%s: expected %v, got %v", msg, expected, actual)
		a.failed = true
	}
}

// AssertTrue asserts that the value is true.
func (a *Assertions) AssertTrue(value bool, msg string) {
	a.t.Helper()
	if !value {
		a.t.Errorf("%s: expected true", msg)
		a.failed = true
	}
}

// AssertContains asserts that the string contains the substring.
func (a *Assertions) AssertContains(s, substr, msg string) {
	a.t.Helper()
	if !strings.Contains(s, substr) {
		a.t.Errorf("%s: %q does not contain %q", msg, s, substr)
		a.failed = true
	}
}

// AssertNoError asserts that the error is nil.
func (a *Assertions) AssertNoError(err error, msg string) {
	a.t.Helper()
	if err != nil {
		a.t.Errorf("%s: unexpected error: %v", msg, err)
		a.failed = true
	}
}

// AssertError asserts that the error is not nil.
func (a *Assertions) AssertError(err error, msg string) {
	a.t.Helper()
	if err == nil {
		a.t.Errorf("%s: expected error, got nil", msg)
		a.failed = true
	}
}

// EnvelopeAssertions wraps Assertions with envelope-specific checks.
type EnvelopeAssertions struct {
	*Assertions
	env *openfloor.Envelope
}

// AssertEnvelope starts an envelope assertion chain.
func AssertEnvelope(t *testing.T, env *openfloor.Envelope) *EnvelopeAssertions {
	t.Helper()
	if env == nil {
		t.Fatalf("envelope is nil")
	}
	return &EnvelopeAssertions{Assertions: NewAssertions(t), env: env}
}

// HasSender asserts the envelope sender.
func (ea *EnvelopeAssertions) HasSender(sender openfloor.Identity) *EnvelopeAssertions {
	ea.t.Helper()
	ea.AssertEqual(sender, ea.env.Sender, "envelope sender")
	return ea
}

// HasDestination asserts the envelope's single destination.
func (ea *EnvelopeAssertions) HasDestination(destination openfloor.Identity) *EnvelopeAssertions {
	ea.t.Helper()
	if len(ea.env.Destinations) != 1 {
		ea.t.Errorf("envelope destinations: expected exactly one, got %v", ea.env.Destinations)
		ea.failed = true
		return ea
	}
	ea.AssertEqual(destination, ea.env.Destinations[0], "envelope destination")
	return ea
}

// EventCount asserts the number of events.
func (ea *EnvelopeAssertions) EventCount(n int) *EnvelopeAssertions {
	ea.t.Helper()
	ea.AssertEqual(n, len(ea.env.Events), "envelope event count")
	return ea
}

// UtteranceAt asserts the event at index i is an utterance and returns it.
func (ea *EnvelopeAssertions) UtteranceAt(i int) *openfloor.UtteranceEvent {
	ea.t.Helper()
	event := ea.eventAt(i)
	utterance, ok := event.(*openfloor.UtteranceEvent)
	if !ok {
		ea.t.Fatalf("event %d: expected utterance, got %T", i, event)
	}
	return utterance
}

// TextAt asserts the event at index i is an utterance and returns its
// canonical text.
func (ea *EnvelopeAssertions) TextAt(i int) string {
	ea.t.Helper()
	utterance := ea.UtteranceAt(i)
	if utterance.DialogEvent == nil {
		ea.t.Fatalf("event %d: utterance has no dialog event", i)
	}
	feature, ok := utterance.DialogEvent.TextFeature()
	if !ok {
		ea.t.Fatalf("event %d: dialog event has no text feature", i)
	}
	return feature.Text()
}

// ErrorMessageAt asserts the event at index i is an error event and returns
// its message.
func (ea *EnvelopeAssertions) ErrorMessageAt(i int) string {
	ea.t.Helper()
	event := ea.eventAt(i)
	errEvent, ok := event.(*openfloor.ErrorEvent)
	if !ok {
		ea.t.Fatalf("event %d: expected error event, got %T", i, event)
	}
	return errEvent.Message
}

// PublishManifestsAt asserts the event at index i publishes manifests and
// returns it.
func (ea *EnvelopeAssertions) PublishManifestsAt(i int) *openfloor.PublishManifestsEvent {
	ea.t.Helper()
	event := ea.eventAt(i)
	publish, ok := event.(*openfloor.PublishManifestsEvent)
	if !ok {
		ea.t.Fatalf("event %d: expected publishManifests, got %T", i, event)
	}
	return publish
}

func (ea *EnvelopeAssertions) eventAt(i int) openfloor.Event {
	ea.t.Helper()
	if i >= len(ea.env.Events) {
		ea.t.Fatalf("envelope has %d events, wanted index %d", len(ea.env.Events), i)
	}
	return ea.env.Events[i]
}
