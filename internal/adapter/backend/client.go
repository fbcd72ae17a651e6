package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/aq2208/tableorder/internal/logging"
)

const maxBodyBytes = 1 << 20

// Client talks to the ordering backend over JSON/HTTP with bearer session
// tokens.
type Client struct {
	baseURL string
	hc      *http.Client
	timeout time.Duration
	ua      string
}

func NewClient(baseURL string, timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{},
		timeout: timeout,
		ua:      userAgent,
	}
}

// APIError is a non-2xx answer other than 401.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend status %d: %s", e.Status, e.Message)
}

// UserMessage is the text the backend meant for the customer.
func (e *APIError) UserMessage() string { return e.Message }

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// do sends one request and decodes the payload (unwrapping a {"data": ...}
// envelope when present) into out. 401 becomes domain.ErrSessionExpired;
// transport failures and timeouts become domain.ErrNetworkOrTimeout.
func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, body, out any) error {
	// ensure per-call timeout if caller didn't set one
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.ua != "" {
		req.Header.Set("User-Agent", c.ua)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrNetworkOrTimeout, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", domain.ErrNetworkOrTimeout, path, err)
	}
	logging.FromCtx(ctx).Debug("backend call",
		"method", method, "path", path, "status", resp.StatusCode, "dur_ms", time.Since(start).Milliseconds())

	if resp.StatusCode == http.StatusUnauthorized {
		return domain.ErrSessionExpired
	}

	var env envelope
	_ = json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	payload := raw
	if len(env.Data) > 0 && string(env.Data) != "null" {
		payload = env.Data
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &domain.DecodeError{What: path, Err: err}
	}
	return nil
}
