// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jllopis/perico/pkg/openfloor"
)

func testManifest() openfloor.Manifest {
	return openfloor.BuildManifest(openfloor.ManifestConfig{
		SpeakerURI:         "tag:openfloor-demo.com,2025:parrot-agent",
		ConversationalName: "Polly the Parrot",
	})
}

func TestPublishHandlerServesManifest(t *testing.T) {
	handler := PublishHandler(testManifest())
	req := httptest.NewRequest(http.MethodGet, WellKnownPath, nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if got := recorder.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("expected no-store caching, got %q", got)
	}
	var manifest openfloor.Manifest
	if err := json.Unmarshal(recorder.Body.Bytes(), &manifest); err != nil {
		t.Fatalf("decoding manifest: %v", err)
	}
	if manifest.Identification.SpeakerURI != "tag:openfloor-demo.com,2025:parrot-agent" {
		t.Errorf("unexpected speaker uri %q", manifest.Identification.SpeakerURI)
	}
}

func TestPublishHandlerHead(t *testing.T) {
	handler := PublishHandler(testManifest())
	req := httptest.NewRequest(http.MethodHead, WellKnownPath, nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", recorder.Code)
	}
	if recorder.Body.Len() != 0 {
		t.Errorf("HEAD must not carry a body, got %d bytes", recorder.Body.Len())
	}
}

func TestPublishHandlerRejectsPost(t *testing.T) {
	handler := PublishHandler(testManifest())
	req := httptest.NewRequest(http.MethodPost, WellKnownPath, nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", recorder.Code)
	}
}

func TestFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle(WellKnownPath, PublishHandler(testManifest()))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	manifest, err := Fetch(context.Background(), server.URL+"/")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if manifest.Identification.ConversationalName != "Polly the Parrot" {
		t.Errorf("unexpected conversational name %q", manifest.Identification.ConversationalName)
	}
	if len(manifest.Capabilities) == 0 {
		t.Error("expected at least one capability")
	}
}

func TestFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)

	if _, err := Fetch(context.Background(), server.URL); err == nil {
		t.Error("expected an error for a missing manifest")
	}
}

func TestFetchUndecodableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	t.Cleanup(server.Close)

	if _, err := Fetch(context.Background(), server.URL); err == nil {
		t.Error("expected a decode error")
	}
}
