// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

package httpjson

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jllopis/perico/pkg/openfloor"
	"github.com/jllopis/perico/pkg/transcript"
)

type testProcessor struct {
	process func(context.Context, *openfloor.Envelope) *openfloor.Envelope
}

func (p *testProcessor) Process(ctx context.Context, inbound *openfloor.Envelope) *openfloor.Envelope {
	if p.process != nil {
		return p.process(ctx, inbound)
	}
	return openfloor.NewReply("tag:bot:1", inbound).Envelope()
}

func (p *testProcessor) Identity() openfloor.Identity { return "tag:bot:1" }

type testStore struct {
	recorded []transcript.Exchange
	listed   []transcript.Exchange
}

func (s *testStore) Record(_ context.Context, exchange transcript.Exchange) error {
	s.recorded = append(s.recorded, exchange)
	return nil
}

func (s *testStore) List(context.Context, transcript.Filter) ([]transcript.Exchange, error) {
	return s.listed, nil
}

func (s *testStore) Close() error { return nil }

func echoProcessor() *testProcessor {
	return &testProcessor{process: func(_ context.Context, inbound *openfloor.Envelope) *openfloor.Envelope {
		out := openfloor.NewReply("tag:bot:1", inbound)
		out.Append(&openfloor.UtteranceEvent{
			DialogEvent: openfloor.NewTextDialogEvent("tag:bot:1", "🦜 hello"),
			ToURI:       inbound.Sender,
		})
		return out.Envelope()
	}}
}

const envelopeBody = `{"sender":"tag:user:1","events":[{"type":"utterance","dialogEvent":{"speakerUri":"tag:user:1","features":{"text":{"tokens":[{"value":"hello"}]}}}}]}`

func postFloor(t *testing.T, server *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	return recorder
}

func decodeReply(t *testing.T, recorder *httptest.ResponseRecorder) *openfloor.Envelope {
	t.Helper()
	var payload openfloor.Payload
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if payload.OpenFloor == nil {
		t.Fatalf("response not wrapped: %s", recorder.Body.String())
	}
	return payload.OpenFloor
}

func TestFloorAcceptsWrapperAndBareEnvelope(t *testing.T) {
	server := New(echoProcessor())

	bare := postFloor(t, server, envelopeBody)
	wrapped := postFloor(t, server, `{"openFloor":`+envelopeBody+`}`)

	if bare.Code != http.StatusOK || wrapped.Code != http.StatusOK {
		t.Fatalf("expected 200/200, got %d/%d", bare.Code, wrapped.Code)
	}
	bareReply := decodeReply(t, bare)
	wrappedReply := decodeReply(t, wrapped)
	if len(bareReply.Events) != 1 || len(wrappedReply.Events) != 1 {
		t.Fatalf("expected one event in both replies")
	}
	bareJSON, _ := json.Marshal(bareReply.Events[0].(*openfloor.UtteranceEvent).DialogEvent.Features)
	wrappedJSON, _ := json.Marshal(wrappedReply.Events[0].(*openfloor.UtteranceEvent).DialogEvent.Features)
	if !bytes.Equal(bareJSON, wrappedJSON) {
		t.Errorf("wrapper and bare bodies produced different replies")
	}
}

func TestFloorRejectsInvalidPayload(t *testing.T) {
	called := false
	server := New(&testProcessor{process: func(_ context.Context, inbound *openfloor.Envelope) *openfloor.Envelope {
		called = true
		return openfloor.NewReply("tag:bot:1", inbound).Envelope()
	}})

	for _, body := range []string{"", "{not json", "[]"} {
		recorder := postFloor(t, server, body)
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, recorder.Code)
		}
		if ct := recorder.Header().Get("Content-Type"); ct != "application/problem+json" {
			t.Errorf("body %q: expected problem+json, got %q", body, ct)
		}
		var problem map[string]any
		if err := json.Unmarshal(recorder.Body.Bytes(), &problem); err != nil {
			t.Fatalf("body %q: decoding problem document: %v", body, err)
		}
		if problem["title"] != "InvalidArgument" {
			t.Errorf("body %q: unexpected problem title %v", body, problem["title"])
		}
	}
	if called {
		t.Error("processor must not run for invalid payloads")
	}
}

func TestFloorMethodRouting(t *testing.T) {
	server := New(echoProcessor())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404 for GET /, got %d", recorder.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	server := New(echoProcessor())
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://127.0.0.1:4000")
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", recorder.Code)
	}
	if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "http://127.0.0.1:4000" {
		t.Errorf("expected allowed origin echoed, got %q", got)
	}
	if got := recorder.Header().Get("Access-Control-Allow-Methods"); got != "POST, OPTIONS" {
		t.Errorf("unexpected allow methods %q", got)
	}
}

func TestCORSUnlistedOrigin(t *testing.T) {
	server := New(echoProcessor())
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(envelopeBody))
	req.Header.Set("Origin", "http://evil.example")
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("request should still be processed, got %d", recorder.Code)
	}
	if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS headers for unlisted origin, got %q", got)
	}
}

func TestCORSWildcard(t *testing.T) {
	server := New(echoProcessor(), WithAllowedOrigins([]string{"*"}))
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "http://anywhere.example" {
		t.Errorf("expected wildcard to echo origin, got %q", got)
	}
}

func TestHealthz(t *testing.T) {
	server := New(echoProcessor())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var health map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &health); err != nil {
		t.Fatalf("decoding health: %v", err)
	}
	if health["status"] != "ok" || health["agent"] != "tag:bot:1" {
		t.Errorf("unexpected health body %v", health)
	}
}

func TestTranscriptDisabled(t *testing.T) {
	server := New(echoProcessor())
	req := httptest.NewRequest(http.MethodGet, "/transcript", nil)
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404 without a store, got %d", recorder.Code)
	}
}

func TestTranscriptRecordsExchanges(t *testing.T) {
	store := &testStore{}
	server := New(echoProcessor(), WithTranscript(store))

	if recorder := postFloor(t, server, envelopeBody); recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if len(store.recorded) != 1 {
		t.Fatalf("expected one recorded exchange, got %d", len(store.recorded))
	}
	exchange := store.recorded[0]
	if exchange.Sender != "tag:user:1" {
		t.Errorf("unexpected exchange sender %q", exchange.Sender)
	}
	if exchange.Outcome != transcript.OutcomeOK {
		t.Errorf("expected ok outcome, got %q", exchange.Outcome)
	}
	if exchange.EventCount != 1 {
		t.Errorf("expected event count 1, got %d", exchange.EventCount)
	}
}

func TestTranscriptErrorOutcome(t *testing.T) {
	store := &testStore{}
	server := New(&testProcessor{process: func(_ context.Context, inbound *openfloor.Envelope) *openfloor.Envelope {
		out := openfloor.NewReply("tag:bot:1", inbound)
		out.Append(&openfloor.ErrorEvent{Message: "I can only repeat text messages!"})
		return out.Envelope()
	}}, WithTranscript(store))

	if recorder := postFloor(t, server, envelopeBody); recorder.Code != http.StatusOK {
		t.Fatalf("handler failure must still answer 200, got %d", recorder.Code)
	}
	if len(store.recorded) != 1 || store.recorded[0].Outcome != transcript.OutcomeError {
		t.Errorf("expected one exchange with error outcome, got %+v", store.recorded)
	}
}

func TestTranscriptListing(t *testing.T) {
	store := &testStore{listed: []transcript.Exchange{{ID: "x", Sender: "tag:user:1", Outcome: "ok"}}}
	server := New(echoProcessor(), WithTranscript(store))

	req := httptest.NewRequest(http.MethodGet, "/transcript?sender=tag:user:1&limit=5", nil)
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var exchanges []transcript.Exchange
	if err := json.Unmarshal(recorder.Body.Bytes(), &exchanges); err != nil {
		t.Fatalf("decoding transcript: %v", err)
	}
	if len(exchanges) != 1 || exchanges[0].ID != "x" {
		t.Errorf("unexpected transcript listing %+v", exchanges)
	}
}
