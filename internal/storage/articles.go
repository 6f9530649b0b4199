package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhich05/wikiquiz/internal/models"
)

// SaveArticle upserts an extracted article keyed by its canonical URL and
// returns the stored row's ID.
func (s *Store) SaveArticle(ctx context.Context, doc *models.ArticleDocument) (int64, error) {
	sections, err := json.Marshal(doc.Sections)
	if err != nil {
		return 0, fmt.Errorf("marshaling sections: %w", err)
	}
	entities, err := json.Marshal(doc.Entities)
	if err != nil {
		return 0, fmt.Errorf("marshaling entities: %w", err)
	}

	const query = `
		INSERT INTO wiki_articles (url, title, summary, sections, entities)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title      = excluded.title,
			summary    = excluded.summary,
			sections   = excluded.sections,
			entities   = excluded.entities,
			updated_at = datetime('now')
	`
	if _, err := s.db.ExecContext(ctx, query,
		doc.URL, doc.Title, doc.Summary, string(sections), string(entities),
	); err != nil {
		return 0, fmt.Errorf("upserting article: %w", err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT id FROM wiki_articles WHERE url = ?", doc.URL,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("reading article id: %w", err)
	}
	return id, nil
}

// GetArticleByURL returns the stored article metadata for a canonical URL.
func (s *Store) GetArticleByURL(ctx context.Context, url string) (*models.StoredArticle, error) {
	const query = `
		SELECT id, url, title, summary, created_at
		FROM wiki_articles
		WHERE url = ?
	`
	var (
		a         models.StoredArticle
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, query, url).Scan(
		&a.ID, &a.URL, &a.Title, &a.Summary, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying article by url: %w", err)
	}
	a.CreatedAt = parseTime(createdAt)
	return &a, nil
}
