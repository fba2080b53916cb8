// Package apiclient is the single outbound HTTP gateway. It attaches
// the bearer token from the session cache, shapes server errors into
// the shared envelope, and tears the session down on any 401.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nurse24/platform/internal/observability/metrics"
	"github.com/nurse24/platform/internal/session"
	"github.com/nurse24/platform/pkg/logging"
)

const (
	defaultTimeout = 20 * time.Second

	// defaultBaseURL is the development server assumed when no endpoint
	// is configured.
	defaultBaseURL = "http://localhost:3000/api"
)

// Config configures the API client.
type Config struct {
	// BaseURL of the backend; empty falls back to the development default.
	BaseURL string
	// Transport overrides the HTTP transport. Development builds without
	// a configured server install the mock backend here.
	Transport http.RoundTripper
	// Sessions supplies the bearer token and is cleared on 401.
	Sessions session.Store
	Logger   *logging.Logger
	Metrics  *metrics.APIMetrics
	// OnUnauthorized runs after the session is cleared on a 401; the
	// shell uses it to force navigation to the login entry point.
	OnUnauthorized func()
	Timeout        time.Duration
}

// Client is the outbound HTTP gateway shared by all domain services.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	sessions       session.Store
	logger         *logging.Logger
	metrics        *metrics.APIMetrics
	onUnauthorized func()
}

// New creates an API client.
func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Sessions == nil {
		panic("apiclient: session store required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: cfg.Transport,
		},
		sessions:       cfg.Sessions,
		logger:         logger,
		metrics:        cfg.Metrics,
		onUnauthorized: cfg.OnUnauthorized,
	}
}

// Do sends a JSON request and decodes the JSON response into out when
// out is non-nil. Errors are either *Error (a response with status
// >=400) or *NetworkError (no response at all).
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("apiclient: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, path, out)
}

// Upload sends a multipart file upload and decodes the JSON response.
func (c *Client) Upload(ctx context.Context, path, field, filename string, file io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("apiclient: create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("apiclient: copy upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("apiclient: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("apiclient: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, path, out)
}

func (c *Client) send(req *http.Request, path string, out any) error {
	if snap, err := c.sessions.Load(req.Context()); err == nil && snap.Token != "" {
		req.Header.Set("Authorization", "Bearer "+snap.Token)
	} else if err != nil && !errors.Is(err, session.ErrNoSession) {
		c.logger.Warn("session load failed before request", "path", path, "error", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(req.Method, path, "network_error", time.Since(start).Seconds())
		return &NetworkError{Op: req.Method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("apiclient: read response: %w", err)
	}
	c.metrics.ObserveRequest(req.Method, path, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(req.Context(), path)
		return &Error{Status: resp.StatusCode, Message: envelopeMessage(respBody)}
	}
	if resp.StatusCode >= 400 {
		return &Error{Status: resp.StatusCode, Message: envelopeMessage(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("apiclient: unmarshal response: %w", err)
		}
	}
	return nil
}

// handleUnauthorized clears the cached session and hands control to the
// shell so the user lands back on the login entry point.
func (c *Client) handleUnauthorized(ctx context.Context, path string) {
	c.logger.Warn("unauthorized response, clearing session", "path", path)
	if err := c.sessions.Clear(ctx); err != nil {
		c.logger.Error("failed to clear session", "error", err)
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

func envelopeMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 300 {
		msg = msg[:300]
	}
	return msg
}
