// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/jeranaias/chatbot-tui/internal/model"
	"github.com/jeranaias/chatbot-tui/internal/stream"
)

// Configuration constants for the chat backend.
const (
	// DefaultBaseURL is where the development backend listens.
	DefaultBaseURL = "http://localhost:5050"

	// DefaultTimeout applies to single-shot and health requests only.
	DefaultTimeout = 120 * time.Second

	// MaxResponseSize caps a single-shot response body.
	MaxResponseSize = 10 * 1024 * 1024
)

var (
	// PERFORMANCE: Connection pooling across exchanges in one session.
	sharedTransport = &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	// Streaming requests have no client timeout; the context controls them.
	sharedStreamingClient = &http.Client{Transport: sharedTransport}
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ChatRequest is the JSON body of POST /chat.
type ChatRequest struct {
	Message       string               `json:"message"`
	AttachedFiles []model.PreparedFile `json:"attached_files"`
	Streaming     bool                 `json:"streaming"`
}

// chatResponse is the single-shot reply.
type chatResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// Health is the reply of GET /health.
type Health struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"-"`
	Latency time.Duration  `json:"-"`
}

// Stream is an open streaming response.
type Stream struct {
	Body    io.ReadCloser
	Charset string
	Status  int
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to one chat backend.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	streamClient    *http.Client
	maxResponseSize int64
}

// NewClient creates a client for baseURL (e.g. "http://localhost:5050").
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		httpClient:      &http.Client{Transport: sharedTransport, Timeout: DefaultTimeout},
		streamClient:    sharedStreamingClient,
		maxResponseSize: MaxResponseSize,
	}
}

// WithTimeout sets the single-shot request timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
	return c
}

// WithHTTPClient replaces both underlying clients. Used with httptest servers.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	c.streamClient = hc
	return c
}

// WithMaxResponseSize caps single-shot response bodies.
func (c *Client) WithMaxResponseSize(n int64) *Client {
	if n > 0 {
		c.maxResponseSize = n
	}
	return c
}

// BaseURL returns the configured backend URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// OpenStream posts req with streaming enabled and returns the open body.
// The caller must close Body. A non-2xx status is returned as *HTTPError.
func (c *Client) OpenStream(ctx context.Context, req ChatRequest) (*Stream, error) {
	req.Streaming = true
	resp, err := c.post(ctx, c.streamClient, req, "text/event-stream")
	if err != nil {
		return nil, err
	}
	return &Stream{Body: resp.Body, Charset: charsetOf(resp), Status: resp.StatusCode}, nil
}

// Complete posts req in single-shot mode and returns the reply text.
//
// A backend that answers with an event stream anyway is consumed to the end
// and its accumulated text returned.
func (c *Client) Complete(ctx context.Context, req ChatRequest) (string, error) {
	req.Streaming = false
	resp, err := c.post(ctx, c.httpClient, req, "application/json")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if isEventStream(resp) {
		res, err := stream.Consume(ctx, resp.Body, charsetOf(resp), nil)
		if err != nil {
			return "", err
		}
		return res.Text, nil
	}

	body, err := c.readResponse(resp)
	if err != nil {
		return "", err
	}
	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", errors.Wrap(err, "decode chat response")
	}
	if out.Error != "" {
		return "", &RemoteError{Message: out.Error}
	}
	return out.Response, nil
}

// Health queries GET /health.
func (c *Client) Health(ctx context.Context) (Health, error) {
	start := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return Health{}, errors.Wrap(err, "build health request")
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Health{}, errors.Wrap(err, "health request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Health{}, &HTTPError{Status: resp.StatusCode}
	}
	body, err := c.readResponse(resp)
	if err != nil {
		return Health{}, err
	}

	h := Health{Latency: time.Since(start)}
	if err := json.Unmarshal(body, &h.Details); err != nil {
		return Health{}, errors.Wrap(err, "decode health response")
	}
	if s, ok := h.Details["status"].(string); ok {
		h.Status = s
	}
	return h, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (c *Client) post(ctx context.Context, hc *http.Client, req ChatRequest, accept string) (*http.Response, error) {
	if req.AttachedFiles == nil {
		req.AttachedFiles = []model.PreparedFile{}
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "encode chat request")
	}

	url := c.baseURL + "/chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "build chat request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", accept)
	if req.Streaming {
		httpReq.Header.Set("Cache-Control", "no-cache")
	}

	log.Printf("backend: POST %s streaming=%t files=%d bytes=%d", url, req.Streaming, len(req.AttachedFiles), len(payload))
	resp, err := hc.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "send chat request")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		resp.Body.Close()
		log.Printf("backend: POST %s returned %d", url, resp.StatusCode)
		return nil, &HTTPError{Status: resp.StatusCode}
	}
	return resp, nil
}

func (c *Client) readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	if int64(len(body)) > c.maxResponseSize {
		return nil, errors.Errorf("response exceeded maximum size of %d bytes", c.maxResponseSize)
	}
	return body, nil
}

func isEventStream(resp *http.Response) bool {
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return err == nil && mediaType == "text/event-stream"
}

func charsetOf(resp *http.Response) string {
	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return params["charset"]
}
