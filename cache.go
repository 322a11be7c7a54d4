package monk

import (
	"sync"
	"time"
)

// ArticleCache is an in-memory cache of all articles and tags with TTL. It
// serves the read-heavy web pages; the JSON API reads the store directly.
type ArticleCache struct {
	mu       sync.RWMutex
	articles []Article
	tags     []string
	fetched  time.Time
	ttl      time.Duration
	store    ArticleStore
}

// NewArticleCache creates an ArticleCache backed by the given store.
func NewArticleCache(s ArticleStore, ttl time.Duration) *ArticleCache {
	return &ArticleCache{store: s, ttl: ttl}
}

func (c *ArticleCache) valid() bool {
	return c.articles != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *ArticleCache) Invalidate() {
	c.mu.Lock()
	c.articles = nil
	c.tags = nil
	c.mu.Unlock()
}

func (c *ArticleCache) load() error {
	if c.valid() {
		return nil
	}
	articles, err := c.store.ListArticles("")
	if err != nil {
		return err
	}
	tags, err := c.store.ListTags()
	if err != nil {
		return err
	}
	if articles == nil {
		articles = []Article{}
	}
	c.articles = articles
	c.tags = tags
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns cached articles and tags after ensuring the cache is
// fresh. The write lock is taken only when a reload is needed.
func (c *ArticleCache) ensureLoaded() ([]Article, []string, error) {
	c.mu.RLock()
	if c.valid() {
		articles, tags := c.articles, c.tags
		c.mu.RUnlock()
		return articles, tags, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, err
	}
	return c.articles, c.tags, nil
}

// ListArticles returns articles, optionally filtered by tag.
func (c *ArticleCache) ListArticles(tag string) ([]Article, error) {
	articles, _, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return articles, nil
	}
	return filterByTag(articles, tag), nil
}

// ListTags returns all tags in use.
func (c *ArticleCache) ListTags() ([]string, error) {
	_, tags, err := c.ensureLoaded()
	return tags, err
}

// GetArticle returns a single article by id from the cache.
func (c *ArticleCache) GetArticle(id string) (Article, error) {
	articles, _, err := c.ensureLoaded()
	if err != nil {
		return Article{}, err
	}
	for _, a := range articles {
		if a.ID == id {
			return a, nil
		}
	}
	return Article{}, ErrNotFound
}
