package esclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	elasticV8 "github.com/elastic/go-elasticsearch/v8"
	elasticV9 "github.com/elastic/go-elasticsearch/v9"
	"github.com/pkg/errors"
)

// ESClient is the core interface for Elasticsearch operations.
// It abstracts both v8 and v9 clients using HTTP transport layer.
type ESClient interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// esAdapter adapts ES v8/v9 clients to unified ESClient interface.
type esAdapter struct {
	perform func(req *http.Request) (*http.Response, error)
	baseURL *url.URL
}

// Do executes HTTP request with context, resolving relative URLs to absolute.
func (ea *esAdapter) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if req.URL == nil {
		return nil, errors.New("request url is nil")
	}

	r := req.Clone(ctx)
	if !r.URL.IsAbs() {
		if ea.baseURL == nil {
			return nil, errors.New("base url is nil")
		}
		u := *ea.baseURL
		u.Path = r.URL.Path
		u.RawPath = r.URL.RawPath
		u.RawQuery = r.URL.RawQuery
		r.URL = &u
	}

	return ea.perform(r)
}

// NewESClientV8 creates ESClient from Elasticsearch v8 client.
func NewESClientV8(c *elasticV8.Client, baseURL *url.URL) ESClient {
	return &esAdapter{
		perform: c.Transport.Perform,
		baseURL: baseURL,
	}
}

// NewESClientV9 creates ESClient from Elasticsearch v9 client.
func NewESClientV9(c *elasticV9.Client, baseURL *url.URL) ESClient {
	return &esAdapter{
		perform: c.Transport.Perform,
		baseURL: baseURL,
	}
}

// Client provides typed Elasticsearch operations on top of ESClient.
// It holds only immutable configuration and is safe for concurrent use.
type Client struct {
	es      ESClient
	baseURL *url.URL
	log     Logger
	metrics *Metrics
	tenant  *TenantFilter
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the debug logger. Nil disables logging.
func WithLogger(log Logger) Option {
	return func(c *Client) {
		c.log = safeLogger(log)
	}
}

// WithMetrics records request counters and latencies into m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTenantFilter makes Search inject a term filter on field for requests
// that carry a TenantID and target a shared index.
func WithTenantFilter(field string) Option {
	return func(c *Client) {
		c.tenant = NewTenantFilter(field)
	}
}

// NewClient creates a typed client wrapper around ESClient.
func NewClient(es ESClient, baseURL string, opts ...Option) (*Client, error) {
	if es == nil {
		return nil, errors.New("es client is required")
	}

	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		es:      es,
		baseURL: u,
		log:     noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// request describes a single call to the engine.
type request struct {
	op          string
	method      string
	path        []string
	query       url.Values
	body        io.Reader
	contentType string
}

// perform executes r and decodes a 2xx answer into out.
// Failed answers carry r.op in the returned *StatusError.
func (c *Client) perform(ctx context.Context, r request, out interface{}) (int, error) {
	u := newURL(c.baseURL, r.query, r.path...)

	httpReq, err := http.NewRequestWithContext(ctx, r.method, u.String(), r.body)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create %s request", r.op)
	}
	if r.body != nil {
		if r.contentType != "" {
			httpReq.Header.Set("Content-Type", r.contentType)
		} else {
			contentTypeJSON(httpReq)
		}
	}

	start := time.Now()
	status, err := doJSON(ctx, c.es, httpReq, out)
	elapsed := time.Since(start)

	var se *StatusError
	if errors.As(err, &se) {
		se.Op = r.op
	}

	c.metrics.observe(r.op, status, elapsed)
	c.log.DebugWithCtx(ctx, "elasticsearch request",
		"op", r.op,
		"method", r.method,
		"path", u.EscapedPath(),
		"status", status,
		"duration", elapsed,
	)

	return status, err
}
