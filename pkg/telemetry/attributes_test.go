// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"fmt"
	"testing"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jllopis/perico/pkg/errors"
)

func TestEnvelopeAttributes(t *testing.T) {
	attrs := EnvelopeAttributes("tag:user:1", 3)

	expected := map[string]any{
		AttrEnvelopeSender: "tag:user:1",
		AttrEnvelopeEvents: 3,
	}

	assertAttributes(t, attrs, expected)
}

func TestEventAttributes(t *testing.T) {
	attrs := EventAttributes("utterance", OutcomeHandled)

	expected := map[string]any{
		AttrEventType:    "utterance",
		AttrEventOutcome: "handled",
	}

	assertAttributes(t, attrs, expected)
}

func TestErrorAttributes(t *testing.T) {
	err := errors.New(errors.CodeUnsupportedModality, "no text feature", nil)
	attrs := ErrorAttributes(err)

	expected := map[string]any{
		AttrErrorCode:        string(errors.CodeUnsupportedModality),
		AttrErrorRecoverable: "false",
	}

	assertAttributes(t, attrs, expected)
}

func TestErrorAttributesWrapsPlainErrors(t *testing.T) {
	attrs := ErrorAttributes(fmt.Errorf("plain failure"))

	expected := map[string]any{
		AttrErrorCode: string(errors.CodeInternal),
	}

	assertAttributes(t, attrs, expected)
}

func TestErrorAttributesNil(t *testing.T) {
	if attrs := ErrorAttributes(nil); attrs != nil {
		t.Errorf("expected nil attributes, got %v", attrs)
	}
}

// assertAttributes checks that expected key-value pairs exist in attrs
func assertAttributes(t *testing.T, attrs []attribute.KeyValue, expected map[string]any) {
	t.Helper()

	found := make(map[string]attribute.KeyValue)
	for _, attr := range attrs {
		found[string(attr.Key)] = attr
	}

	for key, expectedVal := range expected {
		attr, ok := found[key]
		if !ok {
			t.Errorf("missing attribute %s", key)
			continue
		}

		var actualVal any
		switch attr.Value.Type() {
		case attribute.STRING:
			actualVal = attr.Value.AsString()
		case attribute.INT64:
			actualVal = int(attr.Value.AsInt64())
		case attribute.BOOL:
			actualVal = attr.Value.AsBool()
		}

		if actualVal != expectedVal {
			t.Errorf("attribute %s: got %v, want %v", key, actualVal, expectedVal)
		}
	}
}
