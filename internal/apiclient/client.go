// Package apiclient is the live HTTP client of the hero API.
//
// Every request carries a fresh X-Request-ID. Responses are returned as
// envelope.Live whatever their status; only transport failures (dial
// errors, timeouts, a connection closed before the response) are errors,
// and those are *mode.ConnectionError.
package apiclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/roach88/herocheck/internal/envelope"
	"github.com/roach88/herocheck/internal/mode"
)

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-ID"

// DefaultTimeout bounds a request when Options leaves it unset.
const DefaultTimeout = 10 * time.Second

// Options configures a Client.
type Options struct {
	// Timeout bounds each request, connect to last body byte.
	Timeout time.Duration

	// RequestID generates request ids. Default: UUIDv7.
	RequestID func() string

	// Logger receives a debug entry per request. Nil discards them.
	Logger *zap.Logger
}

// Client issues requests against one hero API base URL.
// Safe for concurrent use.
type Client struct {
	baseURL   string
	http      *fasthttp.Client
	timeout   time.Duration
	requestID func() string
	logger    *zap.Logger
}

// New creates a Client for baseURL, e.g. "http://localhost:9997".
func New(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", baseURL)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RequestID == nil {
		opts.RequestID = newRequestID
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &fasthttp.Client{
			Name:                "herocheck",
			ReadTimeout:         opts.Timeout,
			WriteTimeout:        opts.Timeout,
			MaxIdleConnDuration: time.Second,
		},
		timeout:   opts.Timeout,
		requestID: opts.RequestID,
		logger:    opts.Logger,
	}, nil
}

// BaseURL returns the base URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close drops idle keep-alive connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// PostJSON sends body as JSON to path. op names the facade operation in
// errors and logs.
func (c *Client) PostJSON(ctx context.Context, op, path string, body any) (envelope.Envelope, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%s: encode request body: %w", op, err)
	}
	return c.do(ctx, op, fasthttp.MethodPost, path, nil, data)
}

// Get requests path with query parameters.
func (c *Client) Get(ctx context.Context, op, path string, query url.Values) (envelope.Envelope, error) {
	return c.do(ctx, op, fasthttp.MethodGet, path, query, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body []byte) (envelope.Envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	uri := c.baseURL + path
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}
	id := c.requestID()

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, id)
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	if err := c.http.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
		c.logger.Debug("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", id),
			zap.Error(err),
		)
		return nil, mode.NewConnectionError(mode.SurfaceAPI, op, err)
	}

	status := resp.StatusCode()
	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", id),
		zap.Int("status", status),
	)

	// resp is released on return; keep a copy of the body
	return &envelope.Live{
		Status: status,
		Body:   append([]byte(nil), resp.Body()...),
	}, nil
}

// deadline is the earlier of the client timeout and the context deadline.
func (c *Client) deadline(ctx context.Context) time.Time {
	d := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
