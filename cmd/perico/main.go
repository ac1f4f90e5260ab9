// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

// Command perico runs the Open Floor parrot agent daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/jllopis/perico/pkg/agent"
	"github.com/jllopis/perico/pkg/config"
	"github.com/jllopis/perico/pkg/openfloor"
	"github.com/jllopis/perico/pkg/openfloor/discovery"
	"github.com/jllopis/perico/pkg/openfloor/httpjson"
	"github.com/jllopis/perico/pkg/telemetry"
	"github.com/jllopis/perico/pkg/transcript"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	listen := flag.String("listen", "", "listen address (overrides config)")
	logLevel := flag.String("log-level", "", "log level (overrides config)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	logger := telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitWithConfig("perico", version, telemetry.Config{
			Exporter:     cfg.Telemetry.Exporter,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			OTLPInsecure: cfg.Telemetry.OTLPInsecure,
		})
		if err != nil {
			logger.Error("initializing telemetry", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Error("telemetry shutdown", slog.Any("error", err))
			}
		}()
	}

	manifest, err := loadManifest(cfg)
	if err != nil {
		logger.Error("building manifest", slog.Any("error", err))
		os.Exit(1)
	}

	metrics, err := telemetry.NewDispatchMetrics()
	if err != nil {
		logger.Error("creating dispatch metrics", slog.Any("error", err))
		os.Exit(1)
	}

	bot, err := agent.New(manifest,
		agent.WithMarker(cfg.Agent.Marker),
		agent.WithErrorStyle(agent.ErrorStyle(cfg.Agent.ErrorStyle)),
		agent.WithLogger(logger),
		agent.WithMetrics(metrics),
	)
	if err != nil {
		logger.Error("constructing agent", slog.Any("error", err))
		os.Exit(1)
	}

	store := transcript.Store(transcript.NopStore{})
	if cfg.Transcript.Enabled {
		sqliteStore, err := transcript.Open(cfg.Transcript.Path)
		if err != nil {
			logger.Error("opening transcript store", slog.Any("error", err))
			os.Exit(1)
		}
		defer sqliteStore.Close()
		store = sqliteStore
	}

	floor := httpjson.New(bot,
		httpjson.WithLogger(logger),
		httpjson.WithAllowedOrigins(cfg.Server.AllowedOrigins),
		httpjson.WithTranscript(store),
	)

	router := mux.NewRouter()
	router.Handle(discovery.WellKnownPath, discovery.PublishHandler(manifest)).Methods(http.MethodGet, http.MethodHead)
	router.PathPrefix("/").Handler(floor)

	server := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("parrot agent listening",
			slog.String("addr", cfg.Server.Listen),
			slog.String("agent", string(bot.Identity())))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}
}

// loadManifest prefers a complete YAML manifest document over the flat
// config fields.
func loadManifest(cfg *config.Config) (openfloor.Manifest, error) {
	if cfg.Agent.ManifestPath != "" {
		return openfloor.LoadManifest(cfg.Agent.ManifestPath)
	}
	manifest := openfloor.BuildManifest(openfloor.ManifestConfig{
		SpeakerURI:         cfg.Agent.SpeakerURI,
		ServiceURL:         cfg.Agent.ServiceURL,
		ConversationalName: cfg.Agent.Name,
		Organization:       cfg.Agent.Organization,
		Synopsis:           cfg.Agent.Synopsis,
	})
	return manifest, manifest.Validate()
}
