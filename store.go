package monk

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested article does not exist.
var ErrNotFound = sql.ErrNoRows

// ArticleStore persists articles. Store (SQLite) and PGStore (Postgres)
// implement it.
type ArticleStore interface {
	// ListArticles returns articles newest first, filtered by tag when tag
	// is non-empty.
	ListArticles(tag string) ([]Article, error)
	// SearchArticles returns articles whose name, URL or description
	// contains query, ignoring case, newest first.
	SearchArticles(query string) ([]Article, error)
	// ListTags returns every tag in use, sorted.
	ListTags() ([]string, error)
	GetArticle(id string) (Article, error)
	AddArticle(a Article) error
	// UpdateArticle replaces name, description and tags.
	UpdateArticle(a Article) error
	DeleteArticle(id string) error
	SetCover(id, cover string) error
	Close() error
}

// OpenStore opens the store selected by cfg: Postgres when DatabaseURL is
// set, SQLite at DatabasePath otherwise.
func OpenStore(cfg Config) (ArticleStore, error) {
	if cfg.DatabaseURL != "" {
		return NewPGStore(cfg.DatabaseURL)
	}
	return NewStore(cfg.DatabasePath)
}

// Store wraps a SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers run alongside the single writer; busy_timeout makes
	// writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    url TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT ',',
    cover TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS articles_created_at ON articles (created_at);
`)
	return err
}

const articleColumns = `id, name, url, description, tags, cover, created_at`

// createdLayout is fixed-width so created_at sorts correctly as text.
const createdLayout = "2006-01-02T15:04:05.000000000Z"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(r rowScanner) (Article, error) {
	var a Article
	var tags, created string
	if err := r.Scan(&a.ID, &a.Name, &a.URL, &a.Description, &tags, &a.Cover, &created); err != nil {
		return Article{}, err
	}
	a.Tags = ParseTags(tags)
	t, err := time.Parse(createdLayout, created)
	if err != nil {
		return Article{}, err
	}
	a.CreatedAt = t
	return a, nil
}

// ListArticles returns articles ordered by creation time, newest first.
func (s *Store) ListArticles(tag string) ([]Article, error) {
	var rows *sql.Rows
	var err error
	if tag == "" {
		rows, err = s.db.Query(`SELECT ` + articleColumns + ` FROM articles ORDER BY created_at DESC, id`)
	} else {
		rows, err = s.db.Query(`SELECT `+articleColumns+` FROM articles WHERE instr(tags, ',' || ? || ',') > 0 ORDER BY created_at DESC, id`, normalizeTag(tag))
	}
	return scanArticles(rows, err)
}

// SearchArticles returns articles matching query in name, url or description.
func (s *Store) SearchArticles(query string) ([]Article, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.ListArticles("")
	}
	rows, err := s.db.Query(`SELECT `+articleColumns+` FROM articles
WHERE instr(lower(name), ?1) > 0 OR instr(lower(url), ?1) > 0 OR instr(lower(description), ?1) > 0
ORDER BY created_at DESC, id`, q)
	return scanArticles(rows, err)
}

func scanArticles(rows *sql.Rows, err error) ([]Article, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := []Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// ListTags returns a sorted, deduplicated slice of all tags.
func (s *Store) ListTags() ([]string, error) {
	rows, err := s.db.Query(`SELECT tags FROM articles`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		columns = append(columns, tags)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return collectTags(columns), nil
}

// GetArticle returns a single article by id.
func (s *Store) GetArticle(id string) (Article, error) {
	return scanArticle(s.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id))
}

// AddArticle inserts a new article.
func (s *Store) AddArticle(a Article) error {
	_, err := s.db.Exec(`INSERT INTO articles (`+articleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.URL, a.Description, joinTagColumn(a.Tags), a.Cover, a.CreatedAt.UTC().Format(createdLayout))
	return err
}

// UpdateArticle replaces the editable fields of an existing article.
func (s *Store) UpdateArticle(a Article) error {
	res, err := s.db.Exec(`UPDATE articles SET name = ?, description = ?, tags = ? WHERE id = ?`,
		a.Name, a.Description, joinTagColumn(a.Tags), a.ID)
	return affectedOne(res, err)
}

// DeleteArticle removes an article by id.
func (s *Store) DeleteArticle(id string) error {
	res, err := s.db.Exec(`DELETE FROM articles WHERE id = ?`, id)
	return affectedOne(res, err)
}

// SetCover records the public path of an article's cover image.
func (s *Store) SetCover(id, cover string) error {
	res, err := s.db.Exec(`UPDATE articles SET cover = ? WHERE id = ?`, cover, id)
	return affectedOne(res, err)
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
