// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

// Package openfloor implements the Open Floor envelope and event model
// together with its JSON wire codec.
package openfloor

import (
	"encoding/json"
	"fmt"
)

// Identity is a stable, globally-unique URI-like string identifying a
// conversational participant (e.g. "tag:openfloor-demo.com,2025:parrot-agent").
type Identity string

// EventType tags one of the protocol event variants.
type EventType string

const (
	EventUtterance        EventType = "utterance"
	EventGetManifests     EventType = "getManifests"
	EventPublishManifests EventType = "publishManifests"
	EventError            EventType = "error"
)

// Event is the closed union over protocol event variants. Variants carry
// their own typed fields; callers must inspect Type before reading them.
type Event interface {
	Type() EventType
	To() Identity

	isEvent()
}

// UtteranceEvent carries one spoken or written turn.
type UtteranceEvent struct {
	DialogEvent *DialogEvent `json:"dialogEvent,omitempty"`
	ToURI       Identity     `json:"to,omitempty"`
}

// GetManifestsEvent requests the receiving agent's manifests.
type GetManifestsEvent struct {
	ToURI Identity `json:"to,omitempty"`
}

// PublishManifestsEvent answers a GetManifestsEvent with the manifests the
// sender services and the manifests it can discover on behalf of others.
type PublishManifestsEvent struct {
	ServicingManifests []Manifest `json:"servicingManifests"`
	DiscoveryManifests []Manifest `json:"discoveryManifests"`
	ToURI              Identity   `json:"to,omitempty"`
}

// ErrorEvent reports a protocol-level problem inside the conversation.
type ErrorEvent struct {
	Message string   `json:"message"`
	ToURI   Identity `json:"to,omitempty"`
}

// UnknownEvent preserves an event whose type tag this agent does not
// recognize. The raw wire form is kept verbatim so the event can be
// re-emitted unchanged if it is ever forwarded.
type UnknownEvent struct {
	TypeTag EventType
	Raw     json.RawMessage
}

func (e *UtteranceEvent) Type() EventType        { return EventUtterance }
func (e *GetManifestsEvent) Type() EventType     { return EventGetManifests }
func (e *PublishManifestsEvent) Type() EventType { return EventPublishManifests }
func (e *ErrorEvent) Type() EventType            { return EventError }
func (e *UnknownEvent) Type() EventType          { return e.TypeTag }

func (e *UtteranceEvent) To() Identity        { return e.ToURI }
func (e *GetManifestsEvent) To() Identity     { return e.ToURI }
func (e *PublishManifestsEvent) To() Identity { return e.ToURI }
func (e *ErrorEvent) To() Identity            { return e.ToURI }
func (e *UnknownEvent) To() Identity          { return "" }

func (*UtteranceEvent) isEvent()        {}
func (*GetManifestsEvent) isEvent()     {}
func (*PublishManifestsEvent) isEvent() {}
func (*ErrorEvent) isEvent()            {}
func (*UnknownEvent) isEvent()          {}

// MarshalJSON emits the variant fields plus the "type" tag.
func (e *UtteranceEvent) MarshalJSON() ([]byte, error) {
	type alias UtteranceEvent
	return json.Marshal(struct {
		Type EventType `json:"type"`
		*alias
	}{EventUtterance, (*alias)(e)})
}

func (e *GetManifestsEvent) MarshalJSON() ([]byte, error) {
	type alias GetManifestsEvent
	return json.Marshal(struct {
		Type EventType `json:"type"`
		*alias
	}{EventGetManifests, (*alias)(e)})
}

func (e *PublishManifestsEvent) MarshalJSON() ([]byte, error) {
	type alias PublishManifestsEvent
	out := struct {
		Type EventType `json:"type"`
		*alias
	}{EventPublishManifests, (*alias)(e)}
	if out.ServicingManifests == nil {
		out.ServicingManifests = []Manifest{}
	}
	if out.DiscoveryManifests == nil {
		out.DiscoveryManifests = []Manifest{}
	}
	return json.Marshal(out)
}

func (e *ErrorEvent) MarshalJSON() ([]byte, error) {
	type alias ErrorEvent
	return json.Marshal(struct {
		Type EventType `json:"type"`
		*alias
	}{EventError, (*alias)(e)})
}

// MarshalJSON re-emits the preserved wire form verbatim.
func (e *UnknownEvent) MarshalJSON() ([]byte, error) {
	if len(e.Raw) == 0 {
		return json.Marshal(struct {
			Type EventType `json:"type"`
		}{e.TypeTag})
	}
	return append(json.RawMessage(nil), e.Raw...), nil
}

// DecodeEvent decodes one wire event into its variant. A missing or
// unrecognized type tag never fails: the event is folded into an
// UnknownEvent so callers can apply the skip rule.
func DecodeEvent(data []byte) (Event, error) {
	var head struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	switch head.Type {
	case EventUtterance:
		var ev UtteranceEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("decode utterance event: %w", err)
		}
		return &ev, nil
	case EventGetManifests:
		var ev GetManifestsEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("decode getManifests event: %w", err)
		}
		return &ev, nil
	case EventPublishManifests:
		var ev PublishManifestsEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("decode publishManifests event: %w", err)
		}
		return &ev, nil
	case EventError:
		var ev ErrorEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("decode error event: %w", err)
		}
		return &ev, nil
	default:
		return &UnknownEvent{TypeTag: head.Type, Raw: append(json.RawMessage(nil), data...)}, nil
	}
}
