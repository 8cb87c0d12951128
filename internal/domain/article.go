package domain

import "time"

// ArticleStatus enumerates publication states for knowledge-base articles.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
)

// Article is a knowledge-base entry. Read-only from the triage workflow's
// perspective; only the published ones are eligible for retrieval.
type Article struct {
	ID        string
	Title     string
	Body      string
	Tags      []string
	Status    ArticleStatus
	AuthorID  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
