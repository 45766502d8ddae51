package pantryapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
	"github.com/pantry-lab/sousschef/pkg/domain/types"
	"github.com/pantry-lab/sousschef/pkg/utils/logging"
)

// Client talks to the pantry REST backend. It classifies every failure into
// the sentinel errors of pkg/domain/types so callers dispatch on errors.Is
// rather than status codes. A canceled context is returned untouched.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid base URL", goerr.V("base_url", baseURL))
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, goerr.New("base URL must be absolute", goerr.V("base_url", baseURL))
	}

	c := &Client{
		baseURL: parsed,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

var _ interfaces.Transport = &Client{}

func (c *Client) Get(ctx context.Context, path string, query url.Values) (*interfaces.Response, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, "")
}

func (c *Client) Post(ctx context.Context, path string, body any) (*interfaces.Response, error) {
	return c.do(ctx, http.MethodPost, path, nil, body, "")
}

func (c *Client) Put(ctx context.Context, path string, body any, etag string) (*interfaces.Response, error) {
	return c.do(ctx, http.MethodPut, path, nil, body, etag)
}

func (c *Client) Delete(ctx context.Context, path string, etag string) (*interfaces.Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil, etag)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, etag string) (*interfaces.Response, error) {
	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode request body", goerr.V("path", path))
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build request", goerr.V("path", path))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if etag != "" {
		req.Header.Set("If-Match", etag)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		// Cancellation is not a failure; hand the context error back untouched
		// so callers can drop the result silently.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, goerr.Wrap(types.ErrNetworkUnavailable, "request failed",
			goerr.V("method", method), goerr.V("path", path), goerr.V("cause", err.Error()))
	}
	defer func() {
		if closeErr := httpResp.Body.Close(); closeErr != nil {
			logging.From(ctx).Warn("failed to close response body", "error", closeErr)
		}
	}()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, goerr.Wrap(types.ErrNetworkUnavailable, "failed to read response body",
			goerr.V("method", method), goerr.V("path", path))
	}

	resp := &interfaces.Response{
		StatusCode: httpResp.StatusCode,
		Body:       raw,
		Header:     httpResp.Header,
	}

	if err := classify(resp); err != nil {
		return nil, err
	}
	return resp, nil
}
