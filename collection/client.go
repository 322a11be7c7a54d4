// Package collection is a client for the remote article collection served by
// monk. The popup only needs Create; the monk CLI uses the rest.
package collection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/eringen/monk/collection")

// ErrNotFound is returned by Get and Delete when the article does not exist.
var ErrNotFound = errors.New("collection: article not found")

// UploadRecord is the body of a create request.
type UploadRecord struct {
	Name string   `json:"name"`
	URL  string   `json:"url"`
	Tags []string `json:"tags"`
}

// MarshalJSON always encodes Tags as an array, never null.
func (r UploadRecord) MarshalJSON() ([]byte, error) {
	type plain UploadRecord
	p := plain(r)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return json.Marshal(p)
}

// Article is a stored article as returned by the collection.
type Article struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("collection: %s %s: status %d", e.Method, e.URL, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client talks to one collection base URL.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// NewClient returns a client for the collection rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the collection root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Create issues one POST <base>/items with rec as JSON. The response body is
// not interpreted.
func (c *Client) Create(ctx context.Context, rec UploadRecord) error {
	ctx, span := tracer.Start(ctx, "collection.create")
	defer span.End()
	span.SetAttributes(attribute.String("article.url", rec.URL))

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("collection: encode record: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, "/items", bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Add is Create for callers that want the stored article back.
func (c *Client) Add(ctx context.Context, rec UploadRecord) (Article, error) {
	ctx, span := tracer.Start(ctx, "collection.add")
	defer span.End()
	span.SetAttributes(attribute.String("article.url", rec.URL))

	body, err := json.Marshal(rec)
	if err != nil {
		return Article{}, fmt.Errorf("collection: encode record: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, "/items", bytes.NewReader(body))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Article{}, err
	}
	defer resp.Body.Close()

	var a Article
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		return Article{}, fmt.Errorf("collection: decode article: %w", err)
	}
	span.SetAttributes(attribute.String("article.id", a.ID))
	return a, nil
}

// List returns stored articles, filtered by tag when tag is non-empty.
func (c *Client) List(ctx context.Context, tag string) ([]Article, error) {
	return c.list(ctx, "collection.list", url.Values{"tag": {tag}})
}

// Search returns articles whose name, URL or description contains query,
// ignoring case. A non-empty tag narrows the result further.
func (c *Client) Search(ctx context.Context, query, tag string) ([]Article, error) {
	return c.list(ctx, "collection.search", url.Values{"q": {query}, "tag": {tag}})
}

func (c *Client) list(ctx context.Context, name string, params url.Values) ([]Article, error) {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()

	for k, v := range params {
		if len(v) == 0 || v[0] == "" {
			params.Del(k)
		}
	}
	path := "/items"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	var articles []Article
	if err := json.NewDecoder(resp.Body).Decode(&articles); err != nil {
		return nil, fmt.Errorf("collection: decode list: %w", err)
	}
	span.SetAttributes(attribute.Int("article.count", len(articles)))
	return articles, nil
}

// Get returns one article by id.
func (c *Client) Get(ctx context.Context, id string) (Article, error) {
	ctx, span := tracer.Start(ctx, "collection.get")
	defer span.End()
	span.SetAttributes(attribute.String("article.id", id))

	resp, err := c.do(ctx, http.MethodGet, "/items/"+url.PathEscape(id), nil)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return Article{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		span.SetStatus(codes.Error, err.Error())
		return Article{}, err
	}
	defer resp.Body.Close()

	var a Article
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		return Article{}, fmt.Errorf("collection: decode article: %w", err)
	}
	return a, nil
}

// Delete removes one article by id.
func (c *Client) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "collection.delete")
	defer span.End()
	span.SetAttributes(attribute.String("article.id", id))

	resp, err := c.do(ctx, http.MethodDelete, "/items/"+url.PathEscape(id), nil)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	target := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("collection: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("collection: %s %s: %w", method, target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{
			Method: method,
			URL:    target,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}
	return resp, nil
}
