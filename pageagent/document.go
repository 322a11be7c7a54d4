package pageagent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// maxDocumentSize bounds how much of a fetched page is parsed.
const maxDocumentSize = 5 << 20

// LiveDocument is a Document whose title and location change over time.
type LiveDocument struct {
	mu    sync.RWMutex
	title string
	url   string
}

// NewLiveDocument returns a document showing title at url.
func NewLiveDocument(title, url string) *LiveDocument {
	return &LiveDocument{title: title, url: url}
}

func (d *LiveDocument) Title() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.title
}

func (d *LiveDocument) URL() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.url
}

// SetTitle changes the document title, as a script on the page might.
func (d *LiveDocument) SetTitle(title string) {
	d.mu.Lock()
	d.title = title
	d.mu.Unlock()
}

// Navigate moves the document to a new location with a new title.
func (d *LiveDocument) Navigate(url, title string) {
	d.mu.Lock()
	d.url = url
	d.title = title
	d.mu.Unlock()
}

// ParseDocument reads an HTML page and returns a document for it located at url.
// The title is the text of the first <title> element, whitespace-collapsed.
func ParseDocument(r io.Reader, url string) (*LiveDocument, error) {
	title, err := extractTitle(r)
	if err != nil {
		return nil, err
	}
	return NewLiveDocument(title, url), nil
}

func extractTitle(r io.Reader) (string, error) {
	tokenizer := html.NewTokenizer(r)
	inTitle := false
	var b strings.Builder
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			if err := tokenizer.Err(); err != nil && err != io.EOF {
				return "", fmt.Errorf("parse html: %w", err)
			}
			return collapseSpace(b.String()), nil
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "title":
				inTitle = true
			case "svg":
				// <title> inside inline SVG is not the document title.
				if err := skipElement(tokenizer, "svg"); err != nil {
					return "", err
				}
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if string(name) == "title" && inTitle {
				return collapseSpace(b.String()), nil
			}
		case html.TextToken:
			if inTitle {
				b.Write(tokenizer.Text())
			}
		}
	}
}

func skipElement(z *html.Tokenizer, tag string) error {
	depth := 1
	for depth > 0 {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return fmt.Errorf("parse html: %w", err)
			}
			return nil
		case html.StartTagToken:
			if name, _ := z.TagName(); string(name) == tag {
				depth++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == tag {
				depth--
			}
		}
	}
	return nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FetchDocument downloads url and parses it. The document URL is the final
// location after redirects.
func FetchDocument(ctx context.Context, client *http.Client, url string) (*LiveDocument, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	final := url
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	doc, err := ParseDocument(io.LimitReader(resp.Body, maxDocumentSize), final)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return doc, nil
}
