package monk

import (
	"time"

	"github.com/google/uuid"

	"github.com/eringen/monk/views"
)

// Article is a saved page. It is stored by an ArticleStore, returned by the
// /items API and rendered by the templates.
type Article struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags"`
	Cover       string    `json:"cover,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewArticle returns an article with a fresh ID and creation time. Tags are
// normalized; an empty name falls back to the URL.
func NewArticle(name, url string, tags []string) Article {
	if name == "" {
		name = url
	}
	return Article{
		ID:        uuid.NewString(),
		Name:      name,
		URL:       url,
		Tags:      NormalizeTags(tags),
		CreatedAt: time.Now().UTC(),
	}
}

// View converts a to its template form.
func (a Article) View() views.Article {
	return views.Article{
		ID:          a.ID,
		Name:        a.Name,
		URL:         a.URL,
		Description: a.Description,
		Tags:        a.Tags,
		Cover:       a.Cover,
		Saved:       a.CreatedAt.Format("2006-01-02"),
	}
}

func viewList(articles []Article) []views.Article {
	out := make([]views.Article, len(articles))
	for i, a := range articles {
		out[i] = a.View()
	}
	return out
}
