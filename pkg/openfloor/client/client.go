// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

// Package client sends Open Floor envelopes to a peer agent's floor
// endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	perrors "github.com/jllopis/perico/pkg/errors"
	"github.com/jllopis/perico/pkg/openfloor"
	"github.com/jllopis/perico/pkg/resilience"
)

// DefaultSender identifies this client on envelopes it originates.
const DefaultSender openfloor.Identity = "tag:perico.dev,2026:floor-client"

// Client talks to one peer agent's floor endpoint.
type Client struct {
	baseURL    string
	sender     openfloor.Identity
	httpClient *http.Client
	headers    map[string]string
	timeout    time.Duration
	retry      resilience.RetryConfig
}

// Option configures the client.
type Option func(*Client)

// New creates a floor client for the agent at baseURL.
func New(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		sender:     DefaultSender,
		httpClient: http.DefaultClient,
		timeout:    10 * time.Second,
		retry:      resilience.DefaultRetryConfig().WithMaxAttempts(1),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithHeaders sets default headers for each request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.headers = cloneHeaders(headers)
	}
}

// WithTimeout sets a per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRetries sets the number of retries for recoverable failures.
func WithRetries(retries int) Option {
	return func(c *Client) {
		if retries >= 0 {
			c.retry = c.retry.WithMaxAttempts(retries + 1)
		}
	}
}

// WithSender sets the identity stamped on envelopes this client originates.
func WithSender(sender openfloor.Identity) Option {
	return func(c *Client) {
		if sender != "" {
			c.sender = sender
		}
	}
}

// Send posts an envelope to the floor endpoint and returns the reply.
// Recoverable transport failures are retried with exponential backoff.
func (c *Client) Send(ctx context.Context, envelope *openfloor.Envelope) (*openfloor.Envelope, error) {
	if envelope == nil {
		return nil, fmt.Errorf("envelope is required")
	}
	var reply *openfloor.Envelope
	err := c.retry.Do(ctx, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		result, err := c.send(attemptCtx, envelope)
		if err != nil {
			return err
		}
		reply = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// Say is a convenience: send one text utterance and return the first spoken
// reply text.
func (c *Client) Say(ctx context.Context, text string) (string, error) {
	envelope := &openfloor.Envelope{
		Sender: c.sender,
		Events: []openfloor.Event{
			&openfloor.UtteranceEvent{
				DialogEvent: openfloor.NewTextDialogEvent(c.sender, text),
			},
		},
	}
	reply, err := c.Send(ctx, envelope)
	if err != nil {
		return "", err
	}
	for _, event := range reply.Events {
		switch ev := event.(type) {
		case *openfloor.UtteranceEvent:
			if feature, ok := ev.DialogEvent.TextFeature(); ok {
				return feature.Text(), nil
			}
		case *openfloor.ErrorEvent:
			return "", perrors.New(perrors.CodeTransport, ev.Message, nil).WithRecoverable(false)
		}
	}
	return "", fmt.Errorf("no spoken reply in response envelope")
}

// GetManifests requests the peer's manifests and returns the servicing set
// from the first publish-manifests event in the reply.
func (c *Client) GetManifests(ctx context.Context) ([]openfloor.Manifest, error) {
	envelope := &openfloor.Envelope{
		Sender: c.sender,
		Events: []openfloor.Event{&openfloor.GetManifestsEvent{}},
	}
	reply, err := c.Send(ctx, envelope)
	if err != nil {
		return nil, err
	}
	for _, event := range reply.Events {
		if publish, ok := event.(*openfloor.PublishManifestsEvent); ok {
			return publish.ServicingManifests, nil
		}
	}
	return nil, fmt.Errorf("no publishManifests event in response envelope")
}

func (c *Client) send(ctx context.Context, envelope *openfloor.Envelope) (*openfloor.Envelope, error) {
	payload, err := json.Marshal(&openfloor.Payload{OpenFloor: envelope})
	if err != nil {
		return nil, err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")
	c.applyHeaders(ctx, request)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, perrors.New(perrors.CodeTransport, "floor request failed", err)
	}
	defer response.Body.Close()
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, parseHTTPError(response)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, perrors.New(perrors.CodeTransport, "reading floor response failed", err)
	}
	var reply openfloor.Payload
	if err := json.Unmarshal(body, &reply); err != nil || reply.OpenFloor == nil {
		return nil, perrors.New(perrors.CodeTransport, "undecodable floor response", err).WithRecoverable(false)
	}
	return reply.OpenFloor, nil
}

func (c *Client) applyHeaders(ctx context.Context, request *http.Request) {
	for key, value := range c.headers {
		request.Header.Set(key, value)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(request.Header))
}

// parseHTTPError converts a problem+json response into a typed transport
// error. Server-side (5xx) failures stay retryable; client errors do not.
func parseHTTPError(response *http.Response) error {
	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	body, _ := io.ReadAll(response.Body)
	detail := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &problem); err == nil && problem.Detail != "" {
		detail = problem.Detail
	}
	if detail == "" {
		detail = response.Status
	}
	return perrors.New(perrors.CodeTransport, detail, nil).
		WithContext("http_status", response.StatusCode).
		WithRecoverable(response.StatusCode >= http.StatusInternalServerError)
}

func cloneHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	cloned := make(map[string]string, len(headers))
	for key, value := range headers {
		cloned[key] = value
	}
	return cloned
}
