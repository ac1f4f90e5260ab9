// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

// Package transcript records processed envelope exchanges for operational
// inspection. The dispatch path never reads from it.
package transcript

import (
	"context"
	"time"
)

// Exchange outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Exchange is one processed turn: the inbound and outbound envelopes plus
// bookkeeping fields.
type Exchange struct {
	ID         string    `json:"id"`
	ReceivedAt time.Time `json:"received_at"`
	Sender     string    `json:"sender"`
	Inbound    string    `json:"inbound"`
	Outbound   string    `json:"outbound"`
	EventCount int       `json:"event_count"`
	Outcome    string    `json:"outcome"`
}

// Filter narrows a transcript listing.
type Filter struct {
	Sender  string
	Outcome string
	Limit   int
}

// Store persists exchanges.
type Store interface {
	Record(ctx context.Context, exchange Exchange) error
	List(ctx context.Context, filter Filter) ([]Exchange, error)
	Close() error
}

// NopStore discards every exchange. Used when the transcript is disabled.
type NopStore struct{}

func (NopStore) Record(context.Context, Exchange) error { return nil }

func (NopStore) List(context.Context, Filter) ([]Exchange, error) { return nil, nil }

func (NopStore) Close() error { return nil }
