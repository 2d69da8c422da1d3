// Package gateway issues the authenticated form requests behind every share,
// revoke and delete action, and fetches the pages those actions live on.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"

	"sharectl/internal/share"
)

// RequestIDHeader carries the operation ID of the invocation that issued a request.
const RequestIDHeader = "X-Request-ID"

// maxBody caps how much of a response is read.
const maxBody = 4 << 20

// MetadataSource supplies the anti-forgery header name and token. It is
// consulted on every call so a rotated token is always picked up.
type MetadataSource interface {
	CSRF(ctx context.Context) (header, token string, err error)
}

// Options configure a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RequestID string
	Logger    share.Logger
	// Transport overrides http.DefaultTransport. Tests leave it nil.
	Transport http.RoundTripper
}

// Client is the HTTP implementation of share.Gateway.
type Client struct {
	base      *url.URL
	http      *http.Client
	timeout   time.Duration
	requestID string
	logger    share.Logger

	mu   sync.RWMutex
	meta MetadataSource
}

var _ share.Gateway = (*Client)(nil)

// New creates a Client for the server at opts.BaseURL with its own cookie jar.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", opts.BaseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = share.NewNopLogger()
	}

	httpClient := &http.Client{
		Jar:       jar,
		Transport: opts.Transport,
		// A redirect is the server bouncing an unauthenticated request to its login page.
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	return &Client{
		base:      base,
		http:      httpClient,
		timeout:   opts.Timeout,
		requestID: opts.RequestID,
		logger:    logger,
	}, nil
}

// UseMetadata sets where CSRF metadata is read from.
func (c *Client) UseMetadata(m MetadataSource) {
	c.mu.Lock()
	c.meta = m
	c.mu.Unlock()
}

// SetSessionCookie installs the authenticated session cookie for the server.
func (c *Client) SetSessionCookie(name, value string) {
	c.http.Jar.SetCookies(c.base, []*http.Cookie{{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.base.Scheme == "https",
	}})
}

// Resolve returns the absolute URL for a server-relative path or form action.
func (c *Client) Resolve(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", ref, err)
	}
	return c.base.ResolveReference(u), nil
}

// Call sends req as a multipart form with the CSRF header and normalizes the outcome.
// Every failure is a *share.RemoteError whose Message is never empty.
func (c *Client) Call(ctx context.Context, req share.Request) (*share.Response, error) {
	fail := func(status int, msg string, cause error) error {
		if msg == "" {
			msg = req.Fallback
		}
		if msg == "" {
			msg = http.StatusText(status)
		}
		if msg == "" {
			msg = "request failed"
		}
		return &share.RemoteError{Status: status, Message: msg, Err: cause}
	}

	if req.Action == "" {
		return nil, fail(0, "", errors.New("form has no action"))
	}
	target, err := c.Resolve(req.Action)
	if err != nil {
		return nil, fail(0, "", err)
	}

	header, token, err := c.csrf(ctx)
	if err != nil {
		return nil, fail(0, "", err)
	}

	body, contentType, err := encodeFields(req.Fields)
	if err != nil {
		return nil, fail(0, "", err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fail(0, "", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(header, token)
	if c.requestID != "" {
		httpReq.Header.Set(RequestIDHeader, c.requestID)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Error("request failed", "method", method, "url", target.String(), "error", err)
		return nil, fail(0, "", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fail(resp.StatusCode, "", fmt.Errorf("reading response: %w", err))
	}

	c.logger.Debug("request finished",
		"method", method, "url", target.String(), "status", resp.StatusCode, "elapsed", time.Since(start))

	if sessionLost(resp) {
		c.logger.Warn("session rejected", "method", method, "url", target.String(),
			"status", resp.StatusCode, "location", resp.Header.Get("Location"))
		return nil, fail(resp.StatusCode, "", fmt.Errorf("status %d: %w", resp.StatusCode, share.ErrSessionExpired))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fail(resp.StatusCode, "", fmt.Errorf("status %d: %w", resp.StatusCode, err))
		}
		return nil, fail(resp.StatusCode, strings.TrimSpace(e.Error), fmt.Errorf("status %d", resp.StatusCode))
	}

	// Every action answers with a JSON body. Anything else, an empty body
	// or an HTML page included, is not a confirmation.
	out := &share.Response{}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fail(resp.StatusCode, "", errors.New("empty response body"))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fail(resp.StatusCode, "", fmt.Errorf("decoding %s response: %w", resp.Header.Get("Content-Type"), err))
	}
	return out, nil
}

// sessionLost reports whether resp is the server turning away an
// unauthenticated request: a redirect (to the login page) or a 401.
func sessionLost(resp *http.Response) bool {
	return resp.StatusCode == http.StatusUnauthorized ||
		(resp.StatusCode >= 300 && resp.StatusCode <= 399)
}

// Get fetches a page and returns its body. Non-2xx statuses are errors.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	target, err := c.Resolve(path)
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	if c.requestID != "" {
		req.Header.Set(RequestIDHeader, c.requestID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", target, err)
	}
	defer resp.Body.Close()

	if sessionLost(resp) {
		return nil, &share.RemoteError{
			Status:  resp.StatusCode,
			Message: "session expired or missing; run 'sharectl session set'",
			Err:     share.ErrSessionExpired,
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &share.RemoteError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("fetching %s: %s", target.Path, http.StatusText(resp.StatusCode)),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", target, err)
	}
	return data, nil
}

func (c *Client) csrf(ctx context.Context) (string, string, error) {
	c.mu.RLock()
	meta := c.meta
	c.mu.RUnlock()

	if meta == nil {
		return "", "", share.ErrMissingCSRF
	}
	header, token, err := meta.CSRF(ctx)
	if err != nil {
		return "", "", err
	}
	if header == "" || token == "" {
		return "", "", share.ErrMissingCSRF
	}
	return header, token, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func encodeFields(fields []share.Field) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("encoding field %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("encoding form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
