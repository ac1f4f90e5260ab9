// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"

	perrors "github.com/jllopis/perico/pkg/errors"
	"github.com/jllopis/perico/pkg/openfloor"
)

// onUtterance echoes the inbound text back to the sender with the marker
// prefix. The emptiness check is against the token sequence, not the
// resulting string: all-empty tokens still make a valid (empty) text.
func (a *Agent) onUtterance(_ context.Context, event openfloor.Event, inbound *openfloor.Envelope, out *openfloor.Builder) error {
	utterance, ok := event.(*openfloor.UtteranceEvent)
	if !ok || utterance.DialogEvent == nil {
		return perrors.New(perrors.CodeMalformedEvent, "I didn't receive a valid dialog event!", nil)
	}
	feature, ok := utterance.DialogEvent.TextFeature()
	if !ok || len(feature.Tokens) == 0 {
		return perrors.New(perrors.CodeUnsupportedModality, "I can only repeat text messages!", nil)
	}

	reply := a.marker + feature.Text()
	out.Append(&openfloor.UtteranceEvent{
		DialogEvent: openfloor.NewTextDialogEvent(a.Identity(), reply),
		ToURI:       inbound.Sender,
	})
	return nil
}

// onGetManifests publishes the agent's own manifest. The agent never proxies
// for others, so the discovery list is always empty.
func (a *Agent) onGetManifests(_ context.Context, _ openfloor.Event, inbound *openfloor.Envelope, out *openfloor.Builder) error {
	out.Append(&openfloor.PublishManifestsEvent{
		ServicingManifests: []openfloor.Manifest{a.manifest},
		DiscoveryManifests: []openfloor.Manifest{},
		ToURI:              inbound.Sender,
	})
	return nil
}

// respondError appends one error-carrying event. The reply carries no
// explicit destination: the envelope already routes back to the sender.
func (a *Agent) respondError(message string, out *openfloor.Builder) {
	if a.errorStyle == ErrorStyleUtterance {
		out.Append(&openfloor.UtteranceEvent{
			DialogEvent: openfloor.NewTextDialogEvent(a.Identity(), message),
		})
		return
	}
	out.Append(&openfloor.ErrorEvent{Message: message})
}
