// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

package openfloor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuildManifestDefaults(t *testing.T) {
	manifest := BuildManifest(ManifestConfig{
		SpeakerURI:         "tag:openfloor-demo.com,2025:parrot-agent",
		ServiceURL:         "http://localhost:8080/",
		ConversationalName: "Polly the Parrot",
		Organization:       "OpenFloor Demo Corp",
		Synopsis:           "A simple parrot agent",
	})
	if err := manifest.Validate(); err != nil {
		t.Fatalf("expected valid manifest: %v", err)
	}
	if len(manifest.Capabilities) != 1 {
		t.Fatalf("expected one capability, got %d", len(manifest.Capabilities))
	}
	capability := manifest.Capabilities[0]
	if len(capability.Keyphrases) == 0 {
		t.Error("expected default keyphrases")
	}
	if len(capability.SupportedLayers.Input) != 1 || capability.SupportedLayers.Input[0] != FeatureText {
		t.Errorf("expected text input layer, got %v", capability.SupportedLayers.Input)
	}
}

func TestManifestValidate(t *testing.T) {
	tests := []struct {
		name     string
		manifest Manifest
		wantErr  bool
	}{
		{
			"valid",
			Manifest{Identification: Identification{SpeakerURI: "tag:a", ConversationalName: "A"}},
			false,
		},
		{
			"missing speaker uri",
			Manifest{Identification: Identification{ConversationalName: "A"}},
			true,
		},
		{
			"missing name",
			Manifest{Identification: Identification{SpeakerURI: "tag:a"}},
			true,
		},
		{
			"empty capability",
			Manifest{
				Identification: Identification{SpeakerURI: "tag:a", ConversationalName: "A"},
				Capabilities:   []Capability{{}},
			},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.manifest.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadManifest(t *testing.T) {
	doc := `
identification:
  speaker_uri: tag:openfloor-demo.com,2025:parrot-agent
  service_url: http://localhost:8080/
  conversational_name: Polly the Parrot
  organization: OpenFloor Demo Corp
  synopsis: A friendly parrot
capabilities:
  - keyphrases: [echo, repeat]
    descriptions:
      - Repeats back text messages
    supported_layers:
      input: [text]
      output: [text]
`
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}
	if manifest.Identification.SpeakerURI != "tag:openfloor-demo.com,2025:parrot-agent" {
		t.Errorf("unexpected speaker uri %q", manifest.Identification.SpeakerURI)
	}
	if len(manifest.Capabilities) != 1 || manifest.Capabilities[0].Keyphrases[0] != "echo" {
		t.Errorf("unexpected capabilities: %+v", manifest.Capabilities)
	}
}

func TestLoadManifestRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	if err := os.WriteFile(path, []byte("identification:\n  organization: Acme\n"), 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	if _, err := LoadManifest(path); err == nil {
		t.Error("expected validation error")
	}
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected read error")
	}
}
