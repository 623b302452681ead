// Package apiclient talks to the ChefHut backend REST API.
//
// A Client comes in two flavors. The plain client serves public reads; the
// secure flavor returned by Secure attaches the session's bearer token to
// every request. Paths are passed through as given, relative to the base URL.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Config struct {
	BaseURL         string
	Timeout         time.Duration
	MaxIdleConns    int
	IdleConnTimeout time.Duration
	// ReadRetries is how many times a failed GET is retried. Mutations are never retried.
	ReadRetries uint64
	RetryWait   time.Duration
}

// TokenSource yields the bearer token of the current session.
type TokenSource func(ctx context.Context) (string, error)

var ErrNoToken = errors.New("no session token")

type Client struct {
	baseURL string
	http    *http.Client
	retries uint64
	wait    time.Duration
	token   TokenSource
}

func New(cfg Config) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.MaxIdleConns > 0 {
		transport.MaxIdleConns = cfg.MaxIdleConns
		transport.MaxIdleConnsPerHost = cfg.MaxIdleConns
	}
	if cfg.IdleConnTimeout > 0 {
		transport.IdleConnTimeout = cfg.IdleConnTimeout
	}
	return NewWithHTTPClient(cfg, &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(transport),
	})
}

func NewWithHTTPClient(cfg Config, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		retries: cfg.ReadRetries,
		wait:    cfg.RetryWait,
	}
}

// Secure returns a copy of c that sends "Authorization: Bearer <token>" with
// every request. The token is looked up per request.
func (c *Client) Secure(ts TokenSource) *Client {
	cp := *c
	cp.token = ts
	return &cp
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	raw, err := c.GetRaw(ctx, path)
	if err != nil {
		return err
	}
	return decode(raw, out)
}

// GetRaw performs a GET and returns the undecoded body.
func (c *Client) GetRaw(ctx context.Context, path string) ([]byte, error) {
	var raw []byte
	op := func() error {
		body, err := c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			var apiErr *Error
			if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
				return backoff.Permanent(err)
			}
			if errors.Is(err, ErrNoToken) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		raw = body
		return nil
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(c.wait), c.retries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	return raw, nil
}

// Ping reports whether the backend answers at all. Any response below 500
// counts, so an unauthenticated or unknown root is still reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/", nil)
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		return nil
	}
	return err
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.send(ctx, http.MethodPost, path, in, out)
}

func (c *Client) Patch(ctx context.Context, path string, in, out any) error {
	return c.send(ctx, http.MethodPatch, path, in, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.send(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) send(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
	}
	raw, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	return decode(raw, out)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		token, err := c.token(ctx)
		if err != nil {
			return nil, err
		}
		if token == "" {
			return nil, ErrNoToken
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(resp.StatusCode, raw)
	}
	return raw, nil
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func decode(raw []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
