package monk

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// articleRow is the Postgres table layout. Tags use the same ",a,b,"
// encoding as the SQLite store.
type articleRow struct {
	ID          string    `gorm:"primaryKey"`
	Name        string    `gorm:"not null"`
	URL         string    `gorm:"not null"`
	Description string    `gorm:"not null"`
	Tags        string    `gorm:"not null"`
	Cover       string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"index"`
}

func (articleRow) TableName() string { return "articles" }

func (r articleRow) article() Article {
	return Article{
		ID:          r.ID,
		Name:        r.Name,
		URL:         r.URL,
		Description: r.Description,
		Tags:        ParseTags(r.Tags),
		Cover:       r.Cover,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

// PGStore keeps articles in Postgres through gorm.
type PGStore struct {
	db *gorm.DB
}

// NewPGStore connects to dsn and migrates the articles table.
func NewPGStore(dsn string) (*PGStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.AutoMigrate(&articleRow{}); err != nil {
		return nil, fmt.Errorf("migrate articles: %w", err)
	}
	return NewPGStoreFromDB(db), nil
}

// NewPGStoreFromDB wraps an open gorm connection without migrating.
func NewPGStoreFromDB(db *gorm.DB) *PGStore {
	return &PGStore{db: db}
}

// Close closes the underlying connection pool.
func (s *PGStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ListArticles returns articles newest first, optionally filtered by tag.
func (s *PGStore) ListArticles(tag string) ([]Article, error) {
	q := s.db.Order("created_at DESC").Order("id")
	if tag != "" {
		q = q.Where("strpos(tags, ?) > 0", ","+normalizeTag(tag)+",")
	}
	return s.find(q, "list articles")
}

// SearchArticles returns articles matching query in name, url or description.
func (s *PGStore) SearchArticles(query string) ([]Article, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.ListArticles("")
	}
	return s.find(s.db.
		Where("strpos(lower(name), ?) > 0 OR strpos(lower(url), ?) > 0 OR strpos(lower(description), ?) > 0", q, q, q).
		Order("created_at DESC").Order("id"), "search articles")
}

func (s *PGStore) find(q *gorm.DB, op string) ([]Article, error) {
	var rows []articleRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	articles := make([]Article, len(rows))
	for i, r := range rows {
		articles[i] = r.article()
	}
	return articles, nil
}

// ListTags returns a sorted, deduplicated slice of all tags.
func (s *PGStore) ListTags() ([]string, error) {
	var columns []string
	if err := s.db.Model(&articleRow{}).Pluck("tags", &columns).Error; err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return collectTags(columns), nil
}

// GetArticle returns a single article by id.
func (s *PGStore) GetArticle(id string) (Article, error) {
	var row articleRow
	if err := s.db.Take(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Article{}, ErrNotFound
		}
		return Article{}, fmt.Errorf("get article %s: %w", id, err)
	}
	return row.article(), nil
}

// AddArticle inserts a new article.
func (s *PGStore) AddArticle(a Article) error {
	row := articleRow{
		ID:          a.ID,
		Name:        a.Name,
		URL:         a.URL,
		Description: a.Description,
		Tags:        joinTagColumn(a.Tags),
		Cover:       a.Cover,
		CreatedAt:   a.CreatedAt.UTC(),
	}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("add article: %w", err)
	}
	return nil
}

// UpdateArticle replaces the editable fields of an existing article.
func (s *PGStore) UpdateArticle(a Article) error {
	res := s.db.Model(&articleRow{}).Where("id = ?", a.ID).Updates(map[string]any{
		"name":        a.Name,
		"description": a.Description,
		"tags":        joinTagColumn(a.Tags),
	})
	return gormAffectedOne(res, "update article")
}

// DeleteArticle removes an article by id.
func (s *PGStore) DeleteArticle(id string) error {
	return gormAffectedOne(s.db.Delete(&articleRow{}, "id = ?", id), "delete article")
}

// SetCover records the public path of an article's cover image.
func (s *PGStore) SetCover(id, cover string) error {
	res := s.db.Model(&articleRow{}).Where("id = ?", id).Update("cover", cover)
	return gormAffectedOne(res, "set cover")
}

func gormAffectedOne(res *gorm.DB, op string) error {
	if res.Error != nil {
		return fmt.Errorf("%s: %w", op, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
