package monk

import (
	"errors"
	"testing"
	"time"
)

// countingStore counts full list loads.
type countingStore struct {
	ArticleStore
	loads int
}

func (s *countingStore) ListArticles(tag string) ([]Article, error) {
	s.loads++
	return s.ArticleStore.ListArticles(tag)
}

func TestArticleCacheReloadsAfterInvalidate(t *testing.T) {
	store := &countingStore{ArticleStore: setupTestStore(t)}
	store.AddArticle(article("a", "A", []string{"go"}, time.Now()))
	c := NewArticleCache(store, time.Hour)

	for i := 0; i < 3; i++ {
		if _, err := c.ListArticles(""); err != nil {
			t.Fatalf("ListArticles failed: %v", err)
		}
	}
	if store.loads != 1 {
		t.Fatalf("loads = %d, want 1", store.loads)
	}

	store.AddArticle(article("b", "B", nil, time.Now()))
	c.Invalidate()
	got, _ := c.ListArticles("")
	if len(got) != 2 || store.loads != 2 {
		t.Errorf("after invalidate: %d articles, %d loads", len(got), store.loads)
	}
}

func TestArticleCacheExpires(t *testing.T) {
	store := &countingStore{ArticleStore: setupTestStore(t)}
	c := NewArticleCache(store, 10*time.Millisecond)

	c.ListTags()
	time.Sleep(20 * time.Millisecond)
	c.ListTags()
	if store.loads != 2 {
		t.Errorf("loads = %d, want 2", store.loads)
	}
}

func TestArticleCacheLookups(t *testing.T) {
	store := setupTestStore(t)
	store.AddArticle(article("a", "A", []string{"go"}, time.Now()))
	store.AddArticle(article("b", "B", []string{"web"}, time.Now()))
	c := NewArticleCache(store, time.Hour)

	got, err := c.ListArticles(" Go ")
	if err != nil || len(got) != 1 || got[0].ID != "a" {
		t.Errorf("ListArticles(go) = %v, %v", got, err)
	}
	if _, err := c.GetArticle("b"); err != nil {
		t.Errorf("GetArticle(b) failed: %v", err)
	}
	if _, err := c.GetArticle("zzz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetArticle(zzz) err = %v, want ErrNotFound", err)
	}
	tags, _ := c.ListTags()
	if len(tags) != 2 {
		t.Errorf("tags = %v", tags)
	}
}
