package apiclient

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
)

const (
	defaultTimeout       = 10 * time.Second
	defaultUploadTimeout = 60 * time.Second
	maxErrorBody         = 64 << 10
)

// TokenSource yields the bearer token attached to each request. An empty
// token sends no Authorization header.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StaticToken always returns the same token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// Recorder observes every backend round trip.
type Recorder interface {
	ObserveBackend(method string, status int, d time.Duration)
}

// Options configures a Client.
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	UploadTimeout time.Duration
	Tokens        TokenSource

	// OnUnauthorized runs whenever the backend answers 401.
	OnUnauthorized func(ctx context.Context)

	Recorder  Recorder
	Transport http.RoundTripper
}

// Client is the shared backend client. Callers receive decoded payloads, never
// the HTTP envelope.
type Client struct {
	base           *url.URL
	http           *http.Client
	upload         *http.Client
	tokens         TokenSource
	onUnauthorized func(ctx context.Context)
	recorder       Recorder
}

// New creates a Client with a JSON client and a separate multipart client.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, ErrNoBaseURL
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base URL: %w", err)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UploadTimeout <= 0 {
		opts.UploadTimeout = defaultUploadTimeout
	}
	return &Client{
		base:           base,
		http:           &http.Client{Timeout: opts.Timeout, Transport: opts.Transport},
		upload:         &http.Client{Timeout: opts.UploadTimeout, Transport: opts.Transport},
		tokens:         opts.Tokens,
		onUnauthorized: opts.OnUnauthorized,
		recorder:       opts.Recorder,
	}, nil
}

// With returns a copy of c bound to another token source and 401 hook. The
// underlying HTTP clients are shared.
func (c *Client) With(tokens TokenSource, onUnauthorized func(ctx context.Context)) *Client {
	cp := *c
	cp.tokens = tokens
	cp.onUnauthorized = onUnauthorized
	return &cp
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do sends a JSON request and decodes the JSON response body into out.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: encode body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(c.http, req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("apiclient: token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

func (c *Client) send(hc *http.Client, req *http.Request, out any) error {
	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.observe(req.Method, 0, start)
		return fmt.Errorf("apiclient: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	c.observe(req.Method, resp.StatusCode, start)

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized(req.Context())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("apiclient: decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func (c *Client) observe(method string, status int, start time.Time) {
	if c.recorder != nil {
		c.recorder.ObserveBackend(method, status, time.Since(start))
	}
}

// errorBody covers the shapes the backend uses for failures.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Detail  string `json:"detail"`
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body errorBody
	if json.Unmarshal(raw, &body) == nil {
		switch {
		case body.Message != "":
			apiErr.Message = body.Message
		case body.Error != "":
			apiErr.Message = body.Error
		case body.Detail != "":
			apiErr.Message = body.Detail
		}
	}
	return apiErr
}
