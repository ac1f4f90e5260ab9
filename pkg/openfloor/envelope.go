// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

package openfloor

import (
	"encoding/json"
	"fmt"
)

// Envelope is the unit of exchange: a sender, an ordered destination list
// (empty means broadcast) and an ordered sequence of events.
type Envelope struct {
	Sender       Identity   `json:"sender"`
	Destinations []Identity `json:"destinations,omitempty"`
	Events       []Event    `json:"events"`
}

// UnmarshalJSON decodes the envelope, folding unrecognized event type tags
// into UnknownEvent values instead of failing.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var raw struct {
		Sender       Identity          `json:"sender"`
		Destinations []Identity        `json:"destinations"`
		Events       []json.RawMessage `json:"events"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	e.Sender = raw.Sender
	e.Destinations = raw.Destinations
	e.Events = nil
	for i, rawEvent := range raw.Events {
		event, err := DecodeEvent(rawEvent)
		if err != nil {
			return fmt.Errorf("envelope event %d: %w", i, err)
		}
		e.Events = append(e.Events, event)
	}
	return nil
}

// MarshalJSON always emits an events array, even when empty.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	events := e.Events
	if events == nil {
		events = []Event{}
	}
	return json.Marshal(struct {
		Sender       Identity   `json:"sender"`
		Destinations []Identity `json:"destinations,omitempty"`
		Events       []Event    `json:"events"`
	}{e.Sender, e.Destinations, events})
}

// Payload is the transport wrapper placed around an envelope on the wire.
type Payload struct {
	OpenFloor *Envelope `json:"openFloor"`
}

// Builder accumulates the outbound envelope for one turn. Each request owns
// its own builder; handlers append to it and the dispatcher seals it.
type Builder struct {
	env Envelope
}

// NewReply starts a reply envelope: sender is the replying agent, the
// destination mirrors the inbound sender so the response routes back.
func NewReply(agent Identity, inbound *Envelope) *Builder {
	b := &Builder{env: Envelope{Sender: agent}}
	if inbound != nil && inbound.Sender != "" {
		b.env.Destinations = []Identity{inbound.Sender}
	}
	return b
}

// Append adds one event to the reply, preserving append order.
func (b *Builder) Append(event Event) {
	if event == nil {
		return
	}
	b.env.Events = append(b.env.Events, event)
}

// Len reports the number of appended events.
func (b *Builder) Len() int {
	return len(b.env.Events)
}

// Envelope seals and returns the accumulated reply.
func (b *Builder) Envelope() *Envelope {
	return &b.env
}
