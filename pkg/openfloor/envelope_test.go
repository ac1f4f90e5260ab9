// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

package openfloor

import (
	"encoding/json"
	"testing"
)

func TestNewReplyMirrorsSender(t *testing.T) {
	inbound := &Envelope{Sender: "tag:user:1"}
	builder := NewReply("tag:bot:1", inbound)
	reply := builder.Envelope()
	if reply.Sender != "tag:bot:1" {
		t.Errorf("expected sender tag:bot:1, got %q", reply.Sender)
	}
	if len(reply.Destinations) != 1 || reply.Destinations[0] != "tag:user:1" {
		t.Errorf("expected destinations [tag:user:1], got %v", reply.Destinations)
	}
}

func TestNewReplyWithoutInboundSender(t *testing.T) {
	builder := NewReply("tag:bot:1", &Envelope{})
	if destinations := builder.Envelope().Destinations; len(destinations) != 0 {
		t.Errorf("expected no destinations, got %v", destinations)
	}
}

func TestBuilderAppendPreservesOrder(t *testing.T) {
	builder := NewReply("tag:bot:1", &Envelope{Sender: "tag:user:1"})
	builder.Append(&ErrorEvent{Message: "first"})
	builder.Append(nil)
	builder.Append(&GetManifestsEvent{})
	if builder.Len() != 2 {
		t.Fatalf("expected 2 events, got %d", builder.Len())
	}
	events := builder.Envelope().Events
	if events[0].Type() != EventError || events[1].Type() != EventGetManifests {
		t.Errorf("events out of order: %v, %v", events[0].Type(), events[1].Type())
	}
}

func TestPayloadWrapper(t *testing.T) {
	payload := &Payload{OpenFloor: &Envelope{Sender: "tag:bot:1"}}
	encoded, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded Payload
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.OpenFloor == nil || decoded.OpenFloor.Sender != "tag:bot:1" {
		t.Errorf("payload round trip lost envelope: %+v", decoded.OpenFloor)
	}
}
