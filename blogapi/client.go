// Package blogapi is a client for the remote blog API that stores documents.
//
// Every response carries a "success" flag which is checked before any other
// field is trusted, whatever the HTTP status says.
package blogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/eringen/blockpress/content"
)

const defaultTimeout = 15 * time.Second

// Option configures a Client.
type Option func(*Client)

// Client talks to the blog API over HTTP.
type Client struct {
	base  url.URL
	http  *http.Client
	token string
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("blogapi: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("blogapi: base url %q must be absolute", baseURL)
	}
	c := &Client{
		base: *base,
		http: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithHTTPClient sends requests through a copy of hc. A nil hc is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		cp := *hc
		c.http = &cp
	}
}

// WithTimeout sets the per-request timeout. It never changes a client passed
// to WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			return
		}
		cp := *c.http
		cp.Timeout = d
		c.http = &cp
	}
}

// WithToken sends a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// Page selects a page of a listing.
type Page struct {
	Page  int
	Limit int
}

const (
	DefaultLimit = 9
	MaxLimit     = 100
)

// Normalize clamps the page to 1.. and the limit to 1..MaxLimit.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Page) query() url.Values {
	p = p.Normalize()
	return url.Values{
		"page":  {strconv.Itoa(p.Page)},
		"limit": {strconv.Itoa(p.Limit)},
	}
}

// Listing is one page of documents.
type Listing struct {
	Blogs      []content.Document `json:"blogs"`
	TotalPages int                `json:"totalPages"`
	TotalBlogs int                `json:"totalBlogs"`
	Page       int                `json:"page"`
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ListBlogs fetches one page of the listing.
func (c *Client) ListBlogs(ctx context.Context, p Page) (Listing, error) {
	var resp struct {
		envelope
		Listing
	}
	if err := c.do(ctx, http.MethodGet, "/blogs/get-all-blogs", p.query(), nil, &resp, &resp.envelope); err != nil {
		return Listing{}, err
	}
	if resp.Blogs == nil {
		resp.Blogs = []content.Document{}
	}
	return resp.Listing, nil
}

// GetBlog fetches a single document.
func (c *Client) GetBlog(ctx context.Context, id string) (content.Document, error) {
	var resp struct {
		envelope
		Blog *content.Document `json:"blog"`
	}
	if err := c.do(ctx, http.MethodGet, "/blogs/get-blog/"+url.PathEscape(id), nil, nil, &resp, &resp.envelope); err != nil {
		return content.Document{}, err
	}
	if resp.Blog == nil {
		return content.Document{}, &APIError{Status: http.StatusNotFound, Message: "blog missing from response"}
	}
	return *resp.Blog, nil
}

// CreateBlog stores a new document and returns it with the ID and publish
// time assigned by the API.
func (c *Client) CreateBlog(ctx context.Context, doc content.Document) (content.Document, error) {
	doc.ID = ""
	var resp struct {
		envelope
		Blog *content.Document `json:"blog"`
	}
	if err := c.do(ctx, http.MethodPost, "/blogs/create", nil, doc, &resp, &resp.envelope); err != nil {
		return content.Document{}, err
	}
	if resp.Blog == nil {
		return doc, nil
	}
	return *resp.Blog, nil
}

// UpdateBlog replaces the document stored under id.
func (c *Client) UpdateBlog(ctx context.Context, id string, doc content.Document) error {
	var resp envelope
	return c.do(ctx, http.MethodPut, "/blogs/update/"+url.PathEscape(id), nil, doc, &resp, &resp)
}

// DeleteBlog removes the document stored under id.
func (c *Client) DeleteBlog(ctx context.Context, id string) error {
	var resp envelope
	return c.do(ctx, http.MethodDelete, "/blogs/delete-blog/"+url.PathEscape(id), nil, nil, &resp, &resp)
}

// RelatedBlogs fetches documents the API considers related to id.
func (c *Client) RelatedBlogs(ctx context.Context, id string, p Page) ([]content.Document, error) {
	var resp struct {
		envelope
		RelatedBlogs []content.Document `json:"relatedBlogs"`
	}
	if err := c.do(ctx, http.MethodGet, "/blogs/"+url.PathEscape(id)+"/related", p.query(), nil, &resp, &resp.envelope); err != nil {
		return nil, err
	}
	return resp.RelatedBlogs, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, env *envelope) error {
	reqURL := c.base.JoinPath(path)
	if query != nil {
		reqURL.RawQuery = query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("blogapi: marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), bodyReader)
	if err != nil {
		return fmt.Errorf("blogapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return &TransportError{Op: method + " " + path, Err: fmt.Errorf("decode response: %w", err)}
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request was not successful"
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	return nil
}
