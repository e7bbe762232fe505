package pestapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/pestguard/pestguard-web/internal/pkg/logger"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Client talks to the marketplace REST API on behalf of one browser session.
// It holds no credentials; every call receives them explicitly.
type Client struct {
	baseURL string
	ua      string
	http    *http.Client
	now     func() time.Time
}

// NewClient creates a marketplace API client. The base URL may carry a trailing slash.
func NewClient(baseURL string, timeout time.Duration, ua string) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		ua:      ua,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		now: time.Now,
	}
}

// BaseURL returns the normalized API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// call describes one API request.
type call struct {
	op          string
	method      string
	path        string
	body        io.Reader
	contentType string
	fallback    string
	// authRequired rejects the call locally when no usable token is present.
	authRequired bool
}

// do sends exactly one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, creds Credentials, cl call) ([]byte, error) {
	if c == nil || c.http == nil {
		return nil, fmt.Errorf("pestapi %s request error: client is nil", cl.op)
	}
	if cl.authRequired {
		if err := creds.check(c.now()); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, cl.body)
	if err != nil {
		return nil, fmt.Errorf("pestapi %s request error: %w", cl.op, err)
	}

	req.Header.Set("Accept", "application/json")
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	if token := creds.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.ua != "" {
		req.Header.Set("User-Agent", c.ua)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyRequestError(ctx, cl.op, err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if readErr != nil {
		return nil, classifyRequestError(ctx, cl.op, readErr)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	apiErr := &APIError{
		Op:      cl.op,
		Status:  resp.StatusCode,
		Message: messageFromBody(body, cl.fallback),
	}

	logger.FromContext(ctx).Debug().
		Str("op", cl.op).
		Int("status", resp.StatusCode).
		Str("body", truncate(string(body), 512)).
		Msg("Marketplace API returned error status")

	return nil, apiErr
}

func (c *Client) doJSON(ctx context.Context, creds Credentials, cl call, payload []byte) ([]byte, error) {
	cl.body = bytes.NewReader(payload)
	cl.contentType = "application/json"
	return c.do(ctx, creds, cl)
}

func classifyRequestError(ctx context.Context, op string, err error) error {
	if isTimeoutError(ctx, err) {
		return &NetworkError{Op: op, Timeout: true, Err: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("pestapi %s canceled: %w", op, context.Canceled)
	}
	if isNetworkError(err) {
		return &NetworkError{Op: op, Err: err}
	}
	return fmt.Errorf("pestapi %s request error: %w", op, err)
}

func isTimeoutError(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}

	return false
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "...<truncated>"
	}
	return s
}
