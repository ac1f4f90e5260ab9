// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

// Package discovery publishes and fetches Open Floor manifests over HTTP.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jllopis/perico/pkg/openfloor"
)

// Discovery constants for manifest HTTP endpoints.
const (
	// WellKnownPath is the standardized location for manifest discovery.
	WellKnownPath = "/.well-known/openfloor-manifest.json"
)

// PublishHandler serves the provided manifest as JSON.
func PublishHandler(manifest openfloor.Manifest) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		payload, err := json.Marshal(manifest)
		if err != nil {
			http.Error(w, "failed to encode manifest", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(payload)
	})
}

// Option configures Fetch.
type Option func(*fetcher)

type fetcher struct {
	httpClient *http.Client
}

// WithHTTPClient overrides the HTTP client used by Fetch.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(f *fetcher) {
		if httpClient != nil {
			f.httpClient = httpClient
		}
	}
}

// Fetch retrieves a peer manifest from the well-known path under baseURL.
func Fetch(ctx context.Context, baseURL string, opts ...Option) (openfloor.Manifest, error) {
	f := &fetcher{httpClient: http.DefaultClient}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	url := strings.TrimRight(baseURL, "/") + WellKnownPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return openfloor.Manifest{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return openfloor.Manifest{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return openfloor.Manifest{}, fmt.Errorf("manifest fetch failed: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return openfloor.Manifest{}, err
	}

	var manifest openfloor.Manifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return openfloor.Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return manifest, nil
}
