// Package httpclient is a small JSON-over-HTTP client. Non-2xx responses
// are returned as responses, not errors; use the status helpers to branch.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout  = 30 * time.Second
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

type Option func(*Client)

type Client struct {
	base    url.URL
	http    *http.Client
	headers http.Header
}

func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	c := &Client{
		base:    *base,
		http:    &http.Client{Timeout: defaultTimeout},
		headers: http.Header{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Add(key, value)
	}
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) Decode(dst any) error {
	if err := json.Unmarshal(r.Body, dst); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func (r *Response) IsSuccess() bool     { return IsSuccess(r.StatusCode) }
func (r *Response) IsClientError() bool { return IsClientError(r.StatusCode) }
func (r *Response) IsServerError() bool { return IsServerError(r.StatusCode) }

func (c *Client) Get(ctx context.Context, endpoint string, params url.Values, headers http.Header) (*Response, error) {
	return c.do(ctx, http.MethodGet, endpoint, params, nil, "", headers)
}

func (c *Client) GetJSON(ctx context.Context, endpoint string, params url.Values, headers http.Header) (*Response, error) {
	return c.do(ctx, http.MethodGet, endpoint, params, nil, contentTypeJSON, headers)
}

// Post sends form as application/x-www-form-urlencoded.
func (c *Client) Post(ctx context.Context, endpoint string, form url.Values, headers http.Header) (*Response, error) {
	return c.do(ctx, http.MethodPost, endpoint, nil, formBody(form), contentTypeForm, headers)
}

// PostJSON sends body as JSON. Strings, byte slices and json.RawMessage are
// sent as they are.
func (c *Client) PostJSON(ctx context.Context, endpoint string, body any, headers http.Header) (*Response, error) {
	return c.doJSON(ctx, http.MethodPost, endpoint, body, headers)
}

func (c *Client) Put(ctx context.Context, endpoint string, form url.Values, headers http.Header) (*Response, error) {
	return c.do(ctx, http.MethodPut, endpoint, nil, formBody(form), contentTypeForm, headers)
}

func (c *Client) PutJSON(ctx context.Context, endpoint string, body any, headers http.Header) (*Response, error) {
	return c.doJSON(ctx, http.MethodPut, endpoint, body, headers)
}

func (c *Client) Patch(ctx context.Context, endpoint string, form url.Values, headers http.Header) (*Response, error) {
	return c.do(ctx, http.MethodPatch, endpoint, nil, formBody(form), contentTypeForm, headers)
}

func (c *Client) PatchJSON(ctx context.Context, endpoint string, body any, headers http.Header) (*Response, error) {
	return c.doJSON(ctx, http.MethodPatch, endpoint, body, headers)
}

func (c *Client) Delete(ctx context.Context, endpoint string, form url.Values, headers http.Header) (*Response, error) {
	return c.do(ctx, http.MethodDelete, endpoint, nil, formBody(form), contentTypeForm, headers)
}

func (c *Client) DeleteJSON(ctx context.Context, endpoint string, body any, headers http.Header) (*Response, error) {
	return c.doJSON(ctx, http.MethodDelete, endpoint, body, headers)
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body any, headers http.Header) (*Response, error) {
	data, err := encodeJSON(body)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, method, endpoint, nil, data, contentTypeJSON, headers)
}

func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, body []byte, contentType string, headers http.Header) (*Response, error) {
	reqURL := c.base.JoinPath(endpoint)
	if len(params) > 0 {
		q := reqURL.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		reqURL.RawQuery = q.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	request, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return nil, err
	}

	for k, vs := range c.headers {
		for _, v := range vs {
			request.Header.Add(k, v)
		}
	}
	if contentType == contentTypeJSON {
		request.Header.Set("Accept", contentTypeJSON)
	}
	if contentType != "" && (body != nil || contentType == contentTypeJSON) {
		request.Header.Set("Content-Type", contentType)
	}
	for k, vs := range headers {
		request.Header.Del(k)
		for _, v := range vs {
			request.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(request)
	if err != nil {
		slog.Error("HTTP request failed", "method", method, "url", reqURL.String(), "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	slog.Info("HTTP request",
		"method", method,
		"url", reqURL.String(),
		"status", resp.StatusCode,
		"latency", time.Since(start),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

func encodeJSON(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		return data, nil
	}
}

func formBody(form url.Values) []byte {
	if form == nil {
		return nil
	}
	return []byte(strings.TrimSpace(form.Encode()))
}
