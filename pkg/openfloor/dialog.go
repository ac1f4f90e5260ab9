// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

package openfloor

import (
	"strings"

	"github.com/google/uuid"
)

// FeatureText is the only modality this repository implements.
const FeatureText = "text"

// Token is one unit of a feature's token sequence. Value may be absent on
// the wire; an absent value reads as the empty string.
type Token struct {
	Value *string `json:"value,omitempty"`
}

// NewToken builds a token holding value.
func NewToken(value string) Token {
	return Token{Value: &value}
}

// String returns the token value, or "" when absent.
func (t Token) String() string {
	if t.Value == nil {
		return ""
	}
	return *t.Value
}

// Feature is a named modality payload inside a DialogEvent. All modalities
// share the token-sequence shape; only the text feature is interpreted here.
type Feature struct {
	Tokens []Token `json:"tokens"`
}

// NewTextFeature builds a feature with one token per value, in order.
func NewTextFeature(values ...string) Feature {
	tokens := make([]Token, 0, len(values))
	for _, v := range values {
		tokens = append(tokens, NewToken(v))
	}
	return Feature{Tokens: tokens}
}

// Text returns the canonical text: the in-order concatenation of all token
// values, with absent values contributing the empty string.
func (f Feature) Text() string {
	var sb strings.Builder
	for _, t := range f.Tokens {
		sb.WriteString(t.String())
	}
	return sb.String()
}

// DialogEvent is the content of one conversational turn.
type DialogEvent struct {
	ID         string             `json:"id,omitempty"`
	SpeakerURI Identity           `json:"speakerUri"`
	Features   map[string]Feature `json:"features,omitempty"`
}

// NewTextDialogEvent builds a dialog event carrying a single-token text
// feature, spoken by speaker, with a fresh id.
func NewTextDialogEvent(speaker Identity, text string) *DialogEvent {
	return &DialogEvent{
		ID:         uuid.NewString(),
		SpeakerURI: speaker,
		Features:   map[string]Feature{FeatureText: NewTextFeature(text)},
	}
}

// TextFeature returns the text feature, if present.
func (d *DialogEvent) TextFeature() (Feature, bool) {
	if d == nil || d.Features == nil {
		return Feature{}, false
	}
	f, ok := d.Features[FeatureText]
	return f, ok
}
