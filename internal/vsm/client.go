package vsm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Searcher defines the calls the controller makes against a backend.
// This interface is implemented by *Client and can be used for testing.
type Searcher interface {
	Greet(ctx context.Context) (Document, error)
	BuildIndex(ctx context.Context, corpusDir string) (Document, error)
	Search(ctx context.Context, query string) (Document, error)
	URL(path string, params url.Values) string
}

// Ensure Client implements Searcher at compile time.
var _ Searcher = (*Client)(nil)

// Client talks to the Vector Space Model search API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

const (
	defaultUserAgent = "vsmbar/0.1"
	maxErrorBody     = 4 << 10

	// Smooths key-repeat bursts on Enter; never drops a request.
	defaultRate  = 8
	defaultBurst = 4
)

const (
	PathRoot   = "/"
	PathBuild  = "/build"
	PathSearch = "/search"
)

// Option customises a Client.
type Option func(*Client)

// WithTimeout sets a client-side deadline per request. Zero leaves requests
// bounded only by the caller's context and the transport defaults.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLimiter replaces the outgoing request limiter. A nil limiter disables
// throttling.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// NewClient builds a Client rooted at baseURL (scheme://host[:port]).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{},
		limiter:   rate.NewLimiter(rate.Limit(defaultRate), defaultBurst),
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized origin requests are sent to.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL.String()
}

// URL builds the absolute request URL for path and params.
func (c *Client) URL(path string, params url.Values) string {
	rel := &url.URL{Path: path}
	if len(params) > 0 {
		rel.RawQuery = params.Encode()
	}
	return c.baseURL.ResolveReference(rel).String()
}

// Greet calls the root endpoint used as a reachability handshake.
func (c *Client) Greet(ctx context.Context) (Document, error) {
	return c.Send(ctx, http.MethodGet, PathRoot, nil)
}

// BuildIndex asks the backend to index corpusDir. The directory travels as
// the corpus_dir query parameter; the body is empty.
func (c *Client) BuildIndex(ctx context.Context, corpusDir string) (Document, error) {
	return c.Send(ctx, http.MethodPost, PathBuild, url.Values{"corpus_dir": {corpusDir}})
}

// Search runs query against the most recently built index.
func (c *Client) Search(ctx context.Context, query string) (Document, error) {
	return c.Send(ctx, http.MethodGet, PathSearch, url.Values{"query": {query}})
}

// Send issues exactly one request and decodes the JSON object it returns.
// No retry is attempted.
func (c *Client) Send(ctx context.Context, method, path string, params url.Values) (Document, error) {
	if c == nil {
		return Document{}, fmt.Errorf("client is nil")
	}
	if method != http.MethodGet && method != http.MethodPost {
		return Document{}, fmt.Errorf("unsupported method %q", method)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Document{}, &Error{Kind: NetworkFailure, Msg: "request not sent", Err: err}
		}
	}

	reqURL := c.URL(path, params)
	req, err := http.NewRequestWithContext(ctx, method, reqURL, http.NoBody)
	if err != nil {
		return Document{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return Document{}, &Error{Kind: NetworkFailure, Msg: "backend unreachable", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Document{}, statusError(path, resp)
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return Document{}, &Error{Kind: UnrecognizedResponse, Msg: "decode response", Err: err}
	}
	return doc, nil
}

func statusError(path string, resp *http.Response) error {
	msg := fmt.Sprintf("backend %s returned status %d", path, resp.StatusCode)
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var doc Document
	if json.Unmarshal(body, &doc) == nil {
		switch {
		case doc.Error != "":
			msg += ": " + doc.Error
		case doc.Has("detail"):
			var detail struct {
				Detail json.RawMessage `json:"detail"`
			}
			if json.Unmarshal(body, &detail) == nil {
				msg += ": " + textValue(detail.Detail)
			}
		}
	}
	return &Error{Kind: BackendError, Msg: msg}
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultLocalURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = ""
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
