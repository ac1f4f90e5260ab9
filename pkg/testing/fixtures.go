// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

package testing

import (
	"github.com/jllopis/perico/pkg/openfloor"
)

// Manifest returns a small valid manifest for tests.
func Manifest(speakerURI openfloor.Identity) openfloor.Manifest {
	return openfloor.BuildManifest(openfloor.ManifestConfig{
		SpeakerURI:         string(speakerURI),
		ServiceURL:         "http://localhost:8080/",
		ConversationalName: "Test Parrot",
		Organization:       "Perico Tests",
		Synopsis:           "Fixture agent",
	})
}

// TextEnvelope builds an envelope carrying one text utterance from sender.
func TextEnvelope(sender openfloor.Identity, text string) *openfloor.Envelope {
	return &openfloor.Envelope{
		Sender: sender,
		Events: []openfloor.Event{
			&openfloor.UtteranceEvent{
				DialogEvent: openfloor.NewTextDialogEvent(sender, text),
			},
		},
	}
}

// GetManifestsEnvelope builds an envelope carrying one getManifests request.
func GetManifestsEnvelope(sender openfloor.Identity) *openfloor.Envelope {
	return &openfloor.Envelope{
		Sender: sender,
		Events: []openfloor.Event{&openfloor.GetManifestsEvent{}},
	}
}
