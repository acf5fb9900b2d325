// Package delegate performs the external business calls requested by phase
// handlers: ID normalization, patient validation, and slot scheduling.
package delegate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/clinivoice/callflow/internal/callflow"
	"github.com/clinivoice/callflow/pkg/logging"
)

const maxResponseBytes = 1 << 20

// Client executes delegated calls as HTTP POSTs against the business
// service endpoint. Single-shot: one request per call, no retries; network
// errors, timeouts, non-success statuses, and unparsable payloads all
// collapse into an OK=false result.
type Client struct {
	endpoint string
	domain   string
	http     *http.Client
	logger   *logging.Logger
}

// NewClient creates a delegate client. timeout guards each request end to
// end; the engine additionally bounds the context.
func NewClient(endpoint, domain string, timeout time.Duration, logger *logging.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		endpoint: endpoint,
		domain:   domain,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// wireRequest is the JSON body of a delegated call.
type wireRequest struct {
	Event      string         `json:"event"`
	Action     string         `json:"action"`
	Domain     string         `json:"domain"`
	CallID     string         `json:"call_id"`
	Timestamp  string         `json:"timestamp"`
	Text       string         `json:"text"`
	Confidence float64        `json:"confidence"`
	Language   string         `json:"language"`
	Payload    map[string]any `json:"payload,omitempty"`
}

var _ callflow.Delegator = (*Client)(nil)

func (c *Client) Call(ctx context.Context, req callflow.DelegateRequest) callflow.DelegateResult {
	failed := callflow.DelegateResult{}

	body, err := json.Marshal(wireRequest{
		Event:      "delegate_call",
		Action:     req.Name,
		Domain:     c.domain,
		CallID:     req.SessionID,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Text:       req.Transcript,
		Confidence: req.Confidence,
		Language:   req.Language,
		Payload:    req.Payload,
	})
	if err != nil {
		c.logger.Error("delegate: marshal request", "action", req.Name, "error", err)
		return failed
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		c.logger.Error("delegate: build request", "action", req.Name, "error", err)
		return failed
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("delegate: request failed", "action", req.Name, "error", err)
		return failed
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("delegate: non-success status",
			"action", req.Name,
			"status", resp.StatusCode,
		)
		return failed
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.Warn("delegate: read response", "action", req.Name, "error", err)
		return failed
	}

	fields, err := decodeResult(data)
	if err != nil {
		c.logger.Warn("delegate: unparsable payload", "action", req.Name, "error", err)
		return failed
	}

	ok, _ := fields["ok"].(bool)
	return callflow.DelegateResult{OK: ok, Data: fields}
}

// decodeResult parses a delegate response, unwrapping the legacy
// {"output": "<json-encoded string>"} envelope when present.
func decodeResult(data []byte) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	wrapped, ok := fields["output"].(string)
	if !ok {
		return fields, nil
	}
	var inner map[string]any
	if err := json.Unmarshal([]byte(wrapped), &inner); err != nil {
		return nil, fmt.Errorf("decode wrapped output: %w", err)
	}
	return inner, nil
}
