// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/docchat-tui/internal/sse"
)

// Configuration constants for the backend API.
const (
	// DefaultTimeout bounds non-streaming requests. Streaming requests
	// are controlled by their context instead.
	DefaultTimeout = 60 * time.Second

	// sendRate and sendBurst throttle outgoing requests so a stuck key
	// or scripted caller cannot hammer the backend.
	sendRate  = rate.Limit(2)
	sendBurst = 5
)

// Error variables for common backend errors.
var (
	// ErrThrottled indicates the client-side send throttle rejected the
	// request before it reached the network.
	ErrThrottled = errors.New("request throttled")

	// ErrNoBody indicates the backend answered success without a
	// readable streaming body.
	ErrNoBody = errors.New("response has no body")
)

// APIError represents a non-success response from the backend.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error (status %d)", e.Status)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to one backend instance. Safe for concurrent use.
type Client struct {
	baseURL string

	// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
	httpClient *http.Client
	// streamClient has no overall timeout; streaming reads are bounded
	// by the exchange context.
	streamClient *http.Client

	limiter *rate.Limiter
}

// NewClient creates a client for the backend at baseURL (no trailing
// slash).
func NewClient(baseURL string) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   DefaultTimeout,
		},
		streamClient: &http.Client{
			Transport: transport,
		},
		limiter: rate.NewLimiter(sendRate, sendBurst),
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// ACTIVE DOCUMENT
// =============================================================================

// ActiveDoc is the optional document binding scoping an exchange. A
// document fresh from the backend carries an ID; one discovered on disk may
// only have a name. At most one of the two reaches the wire.
type ActiveDoc struct {
	ID   string
	Name string
}

// =============================================================================
// CHAT STREAM REQUEST
// =============================================================================

// ChatStreamRequest is the outbound body of one exchange.
type ChatStreamRequest struct {
	Query     string  `json:"query"`
	SessionID *string `json:"session_id"`
	DocID     *string `json:"doc_id"`
	DocName   *string `json:"pdf_name"`
}

// NewChatStreamRequest builds a request from the current bindings. The
// document ID and name are mutually exclusive: when the active document has
// an ID the name is dropped, and vice versa. Absent bindings are null on
// the wire.
func NewChatStreamRequest(query, sessionID string, doc *ActiveDoc) ChatStreamRequest {
	req := ChatStreamRequest{Query: query}
	if sessionID != "" {
		req.SessionID = &sessionID
	}
	if doc != nil {
		if doc.ID != "" {
			id := doc.ID
			req.DocID = &id
		} else if doc.Name != "" {
			name := doc.Name
			req.DocName = &name
		}
	}
	return req
}

// =============================================================================
// STREAMING EXCHANGE
// =============================================================================

// Stream is the readable side of one in-flight exchange. It owns the
// response body; Close must be called on every exit path.
type Stream struct {
	body      io.ReadCloser
	reader    *sse.Reader
	sessionID string
}

// Next returns the next response fragment. io.EOF signals the natural end
// of the stream; a context error signals cancellation.
func (s *Stream) Next() (string, error) {
	return s.reader.Next()
}

// SessionID returns the backend-assigned session ID for this exchange, or
// "" when the backend did not expose one.
func (s *Stream) SessionID() string {
	return s.sessionID
}

// SawDone reports whether the informational [DONE] sentinel was observed.
func (s *Stream) SawDone() bool {
	return s.reader.SawDone()
}

// Close releases the underlying connection. Safe to call more than once.
func (s *Stream) Close() error {
	return s.body.Close()
}

// ChatStream opens one streaming exchange. The returned Stream is live
// until io.EOF, an error, or cancellation of ctx; the caller owns it and
// must Close it.
func (c *Client) ChatStream(ctx context.Context, streamReq ChatStreamRequest) (*Stream, error) {
	if !c.limiter.Allow() {
		return nil, ErrThrottled
	}

	bodyBytes, err := json.Marshal(streamReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat/stream", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &APIError{Status: resp.StatusCode, Message: string(bytes.TrimSpace(body))}
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, ErrNoBody
	}

	return &Stream{
		body:      resp.Body,
		reader:    sse.NewReader(resp.Body),
		sessionID: resp.Header.Get("X-Session-Id"),
	}, nil
}
