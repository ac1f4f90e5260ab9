// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

package openfloor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest describes one agent: who it is and what it can do. It is built
// once at startup and never mutated afterwards.
type Manifest struct {
	Identification Identification `json:"identification" yaml:"identification"`
	Capabilities   []Capability   `json:"capabilities,omitempty" yaml:"capabilities"`
}

// Identification carries the agent's identity and presentation fields.
type Identification struct {
	SpeakerURI         Identity `json:"speakerUri" yaml:"speaker_uri"`
	ServiceURL         string   `json:"serviceUrl,omitempty" yaml:"service_url"`
	Organization       string   `json:"organization,omitempty" yaml:"organization"`
	ConversationalName string   `json:"conversationalName,omitempty" yaml:"conversational_name"`
	Synopsis           string   `json:"synopsis,omitempty" yaml:"synopsis"`
}

// Capability describes one thing the agent can do.
type Capability struct {
	Keyphrases      []string        `json:"keyphrases,omitempty" yaml:"keyphrases"`
	Descriptions    []string        `json:"descriptions,omitempty" yaml:"descriptions"`
	SupportedLayers SupportedLayers `json:"supportedLayers" yaml:"supported_layers"`
}

// SupportedLayers lists the modality layers a capability accepts and emits.
type SupportedLayers struct {
	Input  []string `json:"input,omitempty" yaml:"input"`
	Output []string `json:"output,omitempty" yaml:"output"`
}

// ManifestConfig describes manifest fields that can be derived from runtime
// settings. Zero-valued capability fields fall back to the parrot defaults.
type ManifestConfig struct {
	SpeakerURI         string
	ServiceURL         string
	ConversationalName string
	Organization       string
	Synopsis           string
	Keyphrases         []string
	Descriptions       []string
	InputLayers        []string
	OutputLayers       []string
}

// BuildManifest assembles a Manifest from the provided config.
func BuildManifest(cfg ManifestConfig) Manifest {
	keyphrases := cfg.Keyphrases
	if len(keyphrases) == 0 {
		keyphrases = []string{"echo", "repeat", "parrot", "say"}
	}
	descriptions := cfg.Descriptions
	if len(descriptions) == 0 {
		descriptions = []string{
			"Repeats back any text message sent to it",
			"Echoes user utterances with a parrot emoji prefix",
			"Simple demonstration agent for the Open Floor protocol",
		}
	}
	input := cfg.InputLayers
	if len(input) == 0 {
		input = []string{FeatureText}
	}
	output := cfg.OutputLayers
	if len(output) == 0 {
		output = []string{FeatureText}
	}

	return Manifest{
		Identification: Identification{
			SpeakerURI:         Identity(cfg.SpeakerURI),
			ServiceURL:         cfg.ServiceURL,
			Organization:       cfg.Organization,
			ConversationalName: cfg.ConversationalName,
			Synopsis:           cfg.Synopsis,
		},
		Capabilities: []Capability{{
			Keyphrases:   keyphrases,
			Descriptions: descriptions,
			SupportedLayers: SupportedLayers{
				Input:  input,
				Output: output,
			},
		}},
	}
}

// LoadManifest reads a complete Manifest from a YAML document.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Validate checks the structural requirements of a manifest.
func (m Manifest) Validate() error {
	if m.Identification.SpeakerURI == "" {
		return fmt.Errorf("manifest: speaker uri is required")
	}
	if m.Identification.ConversationalName == "" {
		return fmt.Errorf("manifest: conversational name is required")
	}
	for i, c := range m.Capabilities {
		if len(c.Keyphrases) == 0 && len(c.Descriptions) == 0 {
			return fmt.Errorf("manifest: capability %d needs keyphrases or descriptions", i)
		}
	}
	return nil
}
