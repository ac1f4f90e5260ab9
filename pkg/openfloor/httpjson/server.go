// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

// Package httpjson exposes the Open Floor HTTP+JSON binding: the floor
// endpoint plus its operational routes.
package httpjson

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jllopis/perico/pkg/openfloor"
	"github.com/jllopis/perico/pkg/transcript"
)

// Processor consumes one inbound envelope and produces the reply.
// Implemented by *agent.Agent.
type Processor interface {
	Process(ctx context.Context, inbound *openfloor.Envelope) *openfloor.Envelope
}

// Server exposes the floor endpoint for a Processor.
type Server struct {
	processor Processor
	logger    *slog.Logger
	origins   []string
	recorder  transcript.Store
}

// Option configures the server.
type Option func(*Server)

// New creates the HTTP+JSON floor binding around a processor.
func New(processor Processor, opts ...Option) *Server {
	s := &Server{
		processor: processor,
		logger:    slog.Default(),
		origins:   []string{"http://127.0.0.1:4000"},
		recorder:  transcript.NopStore{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAllowedOrigins sets the CORS origin allowlist. "*" allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.origins = append([]string(nil), origins...)
	}
}

// WithTranscript attaches an exchange recorder.
func WithTranscript(store transcript.Store) Option {
	return func(s *Server) {
		if store != nil {
			s.recorder = store
		}
	}
}

// ServeHTTP routes floor requests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.processor == nil {
		writeError(w, status.Error(codes.Unimplemented, "processor not configured"))
		return
	}
	s.applyCORS(w, r)
	switch r.URL.Path {
	case "/", "":
		switch r.Method {
		case http.MethodPost:
			s.handleFloor(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	case "/healthz":
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		s.handleHealth(w, r)
	case "/transcript":
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		s.handleTranscript(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleFloor(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	requestID := uuid.NewString()
	received := time.Now().UTC()

	inbound, rawInbound, err := decodePayload(r)
	if err != nil {
		s.logger.WarnContext(ctx, "rejecting invalid payload",
			slog.String("request_id", requestID),
			slog.Any("error", err))
		writeError(w, status.Error(codes.InvalidArgument, "invalid open floor payload"))
		return
	}

	s.logger.InfoContext(ctx, "processing envelope",
		slog.String("request_id", requestID),
		slog.String("sender", string(inbound.Sender)),
		slog.Int("events", len(inbound.Events)))

	outbound := s.processor.Process(ctx, inbound)
	writeJSON(w, http.StatusOK, &openfloor.Payload{OpenFloor: outbound})
	s.record(ctx, requestID, received, inbound, rawInbound, outbound)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]string{"status": "ok"}
	if identified, ok := s.processor.(interface{ Identity() openfloor.Identity }); ok {
		body["agent"] = string(identified.Identity())
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.recorder.(transcript.NopStore); ok {
		writeError(w, status.Error(codes.NotFound, "transcript not enabled"))
		return
	}
	query := r.URL.Query()
	filter := transcript.Filter{
		Sender:  query.Get("sender"),
		Outcome: query.Get("outcome"),
		Limit:   50,
	}
	if limit := query.Get("limit"); limit != "" {
		if parsed, err := strconv.Atoi(limit); err == nil && parsed > 0 {
			filter.Limit = parsed
		}
	}
	exchanges, err := s.recorder.List(r.Context(), filter)
	if err != nil {
		writeError(w, status.Error(codes.Internal, "transcript lookup failed"))
		return
	}
	if exchanges == nil {
		exchanges = []transcript.Exchange{}
	}
	writeJSON(w, http.StatusOK, exchanges)
}

// record appends the exchange after the response is written. A recording
// failure is logged, never surfaced to the peer.
func (s *Server) record(ctx context.Context, requestID string, received time.Time, inbound *openfloor.Envelope, rawInbound []byte, outbound *openfloor.Envelope) {
	rawOutbound, err := json.Marshal(outbound)
	if err != nil {
		s.logger.ErrorContext(ctx, "encoding outbound envelope for transcript failed",
			slog.String("request_id", requestID),
			slog.Any("error", err))
		return
	}
	exchange := transcript.Exchange{
		ID:         requestID,
		ReceivedAt: received,
		Sender:     string(inbound.Sender),
		Inbound:    string(rawInbound),
		Outbound:   string(rawOutbound),
		EventCount: len(outbound.Events),
		Outcome:    exchangeOutcome(outbound),
	}
	if err := s.recorder.Record(ctx, exchange); err != nil {
		s.logger.ErrorContext(ctx, "recording exchange failed",
			slog.String("request_id", requestID),
			slog.Any("error", err))
	}
}

func exchangeOutcome(outbound *openfloor.Envelope) string {
	for _, event := range outbound.Events {
		if _, ok := event.(*openfloor.ErrorEvent); ok {
			return transcript.OutcomeError
		}
	}
	return transcript.OutcomeOK
}

// applyCORS echoes CORS headers for allowlisted origins. Requests from other
// origins are still processed; enforcement is browser-side.
func (s *Server) applyCORS(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	for _, allowed := range s.origins {
		if allowed == origin || allowed == "*" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			return
		}
	}
}

// decodePayload accepts either the {"openFloor": …} wrapper or a bare
// envelope object, returning the decoded envelope and the raw body.
func decodePayload(r *http.Request) (*openfloor.Envelope, []byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, nil, status.Error(codes.InvalidArgument, "invalid body")
	}
	if len(body) == 0 {
		return nil, nil, status.Error(codes.InvalidArgument, "empty body")
	}
	var payload openfloor.Payload
	if err := json.Unmarshal(body, &payload); err == nil && payload.OpenFloor != nil {
		return payload.OpenFloor, body, nil
	}
	var envelope openfloor.Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return &envelope, body, nil
}

func writeJSON(w http.ResponseWriter, httpStatus int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		writeError(w, status.Error(codes.Internal, err.Error()))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_, _ = w.Write(payload)
}

func writeError(w http.ResponseWriter, err error) {
	st, ok := status.FromError(err)
	if !ok {
		st = status.New(codes.Unknown, err.Error())
	}
	code := httpStatusFromCode(st.Code())
	body := map[string]interface{}{
		"type":   "about:blank",
		"title":  st.Code().String(),
		"detail": st.Message(),
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func httpStatusFromCode(code codes.Code) int {
	switch code {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.Unimplemented:
		return http.StatusNotImplemented
	case codes.FailedPrecondition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
