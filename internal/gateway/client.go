package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// Row is a single loosely-typed sheet row. Column keys may be the English aliases
// or the Arabic sheet headers, depending on what the backend returns.
type Row map[string]any

// WriteResult is the decoded shape of every write action's response.
type WriteResult struct {
	Success bool
	Message string
	Fields  map[string]any // action-specific extras (e.g. "barcode", "timestamp")
}

// Config controls the remote endpoint and the retry policy.
type Config struct {
	BaseURL     string
	Timeout     time.Duration // default read/write timeout
	LongTimeout time.Duration // long-running writes
	Retries     int
	Backoff     time.Duration // base delay, doubled each attempt
}

// Client talks to the spreadsheet backend's single endpoint. GET for reads, POST
// with a JSON text body for writes, selected by the `action` query parameter.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	retries     int
	backoff     time.Duration
	timeout     time.Duration
	longTimeout time.Duration
}

// Actions that may take longer than the default window on the backend side.
var longActions = map[string]bool{
	ActionAddStockBatch:  true,
	ActionBranchTransfer: true,
	ActionGetHRReport:    true,
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 25 * time.Second
	}
	if cfg.LongTimeout <= 0 {
		cfg.LongTimeout = 30 * time.Second
	}
	if cfg.Retries <= 0 {
		cfg.Retries = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 500 * time.Millisecond
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		httpClient:  &http.Client{},
		retries:     cfg.Retries,
		backoff:     cfg.Backoff,
		timeout:     cfg.Timeout,
		longTimeout: cfg.LongTimeout,
	}
}

// Fetch performs a read action and returns the decoded rows. A `{status:"error"}`
// object in place of the expected array is surfaced as an error with the backend's
// message verbatim.
func (c *Client) Fetch(ctx context.Context, action string, params url.Values) ([]Row, error) {
	payload, err := c.call(ctx, http.MethodGet, action, params, nil)
	if err != nil {
		return nil, err
	}

	if isArray(payload) {
		var rows []Row
		if err := json.Unmarshal(payload, &rows); err != nil {
			return nil, fmt.Errorf("decode %s rows: %w", action, err)
		}
		return rows, nil
	}

	res, err := decodeStatus(payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s response: %w", action, err)
	}
	return nil, fmt.Errorf("%s failed: %s", action, res.Message)
}

// Do performs a write action. Network/HTTP failure after retry exhaustion yields
// WriteResult{Success:false} together with the wrapped error; a decoded
// `{status:"error"}` yields Success:false with the backend message and a nil error,
// since the call itself completed.
func (c *Client) Do(ctx context.Context, action string, params url.Values, body any) (WriteResult, error) {
	var encoded []byte
	if body != nil {
		var err error
		encoded, err = json.Marshal(body)
		if err != nil {
			return WriteResult{Message: err.Error()}, fmt.Errorf("encode %s body: %w", action, err)
		}
	}

	payload, err := c.call(ctx, http.MethodPost, action, params, encoded)
	if err != nil {
		return WriteResult{Message: "connection failed"}, err
	}

	res, err := decodeStatus(payload)
	if err != nil {
		return WriteResult{Message: "connection failed"}, fmt.Errorf("decode %s response: %w", action, err)
	}
	return res, nil
}

// call issues the request with bounded retry and exponential backoff, returning
// the raw response body of the first 2xx attempt.
func (c *Client) call(ctx context.Context, method, action string, params url.Values, body []byte) ([]byte, error) {
	endpoint, err := c.buildURL(action, params)
	if err != nil {
		return nil, err
	}

	timeout := c.timeout
	if longActions[action] {
		timeout = c.longTimeout
	}

	var lastErr error
	delay := c.backoff
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2
		}

		payload, err := c.attempt(ctx, method, endpoint, body, timeout)
		if err == nil {
			return payload, nil
		}
		lastErr = err
		log.Printf("gateway: %s attempt %d/%d failed: %v", action, attempt+1, c.retries, err)
	}
	return nil, fmt.Errorf("%s: retries exhausted: %w", action, lastErr)
}

func (c *Client) attempt(ctx context.Context, method, endpoint string, body []byte, timeout time.Duration) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		// Apps-Script style backends choke on preflights; text/plain keeps the
		// request simple while the body stays JSON.
		req.Header.Set("Content-Type", "text/plain;charset=utf-8")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return payload, nil
}

func (c *Client) buildURL(action string, params url.Values) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("action", action)
	for key, values := range params {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// isArray reports whether the payload's first significant byte opens a JSON list.
// The backend answers reads with a bare array and everything else with a status
// object, so this is the discrimination point between the two shapes.
func isArray(payload []byte) bool {
	for _, b := range payload {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}

func decodeStatus(payload []byte) (WriteResult, error) {
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return WriteResult{}, err
	}
	status, _ := fields["status"].(string)
	message, _ := fields["message"].(string)
	delete(fields, "status")
	delete(fields, "message")
	return WriteResult{
		Success: status == "success",
		Message: message,
		Fields:  fields,
	}, nil
}
