package models

import "time"

// Entities groups the in-article references classified by the heuristic
// entity rules. Each list is deduplicated, first occurrence first.
type Entities struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
}

// ArticleDocument is the structured result of fetching and extracting a
// Wikipedia article. It is immutable once produced; re-fetching a topic
// yields a new instance.
type ArticleDocument struct {
	URL       string            `json:"url"`
	Title     string            `json:"title"`
	Summary   string            `json:"summary"`
	Content   string            `json:"content"`
	Sections  []string          `json:"sections"`
	Entities  Entities          `json:"entities"`
	Infobox   map[string]string `json:"infobox,omitempty"`
	FetchedAt time.Time         `json:"fetched_at"`
}

// StoredArticle is an ArticleDocument persisted in the database.
type StoredArticle struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}
