// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads Perico configuration from defaults, a YAML file and
// PERICO_-prefixed environment variables, in that order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Agent      AgentConfig      `koanf:"agent"`
	Log        LogConfig        `koanf:"log"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
	Transcript TranscriptConfig `koanf:"transcript"`
}

type ServerConfig struct {
	Listen          string        `koanf:"listen"`
	AllowedOrigins  []string      `koanf:"allowed_origins"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type AgentConfig struct {
	SpeakerURI   string `koanf:"speaker_uri"`
	ServiceURL   string `koanf:"service_url"`
	Name         string `koanf:"name"`
	Organization string `koanf:"organization"`
	Synopsis     string `koanf:"synopsis"`
	Marker       string `koanf:"marker"`
	ErrorStyle   string `koanf:"error_style"` // error, utterance
	ManifestPath string `koanf:"manifest_path"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type TelemetryConfig struct {
	Enabled      bool   `koanf:"enabled"`
	Exporter     string `koanf:"exporter"` // stdout, otlp
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

type TranscriptConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	k.Set("server.listen", ":8080")
	k.Set("server.allowed_origins", []string{"http://127.0.0.1:4000"})
	k.Set("server.read_timeout", "15s")
	k.Set("server.write_timeout", "15s")
	k.Set("server.shutdown_timeout", "10s")

	k.Set("agent.speaker_uri", "tag:openfloor-demo.com,2025:parrot-agent")
	k.Set("agent.service_url", "http://localhost:8080/")
	k.Set("agent.name", "Polly the Parrot")
	k.Set("agent.organization", "OpenFloor Demo Corp")
	k.Set("agent.synopsis", "A simple parrot agent that repeats whatever you say to it")
	k.Set("agent.marker", "🦜 ")
	k.Set("agent.error_style", "error")

	k.Set("log.level", "info")
	k.Set("log.format", "text")

	k.Set("telemetry.enabled", false)
	k.Set("telemetry.exporter", "stdout")

	k.Set("transcript.enabled", false)
	k.Set("transcript.path", "perico-transcript.db")

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV (PERICO_AGENT_SPEAKER_URI -> agent.speaker_uri)
	if err := k.Load(env.Provider("PERICO_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "PERICO_"))
		if i := strings.Index(key, "_"); i > 0 {
			return key[:i] + "." + key[i+1:]
		}
		return key
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks constraints that would otherwise surface mid-request.
func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("config: server.listen is required")
	}
	if c.Agent.SpeakerURI == "" && c.Agent.ManifestPath == "" {
		return fmt.Errorf("config: agent.speaker_uri or agent.manifest_path is required")
	}
	switch c.Agent.ErrorStyle {
	case "error", "utterance":
	default:
		return fmt.Errorf("config: agent.error_style must be %q or %q, got %q", "error", "utterance", c.Agent.ErrorStyle)
	}
	switch c.Telemetry.Exporter {
	case "", "stdout":
	case "otlp":
		if c.Telemetry.OTLPEndpoint == "" {
			return fmt.Errorf("config: telemetry.otlp_endpoint is required for the otlp exporter")
		}
	default:
		return fmt.Errorf("config: unknown telemetry.exporter %q", c.Telemetry.Exporter)
	}
	if c.Transcript.Enabled && c.Transcript.Path == "" {
		return fmt.Errorf("config: transcript.path is required when the transcript is enabled")
	}
	return nil
}
